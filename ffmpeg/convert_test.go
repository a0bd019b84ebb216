// Package ffmpeg provides functionality for detecting and working with FFmpeg.
package ffmpeg

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// AudioConverterTestSuite defines the test suite for the audio converter.
type AudioConverterTestSuite struct {
	suite.Suite
}

// TestBuildArgs verifies the conversion command line: video dropped, the
// right encoder selected, and bitrate only applied to lossy targets.
func (s *AudioConverterTestSuite) TestBuildArgs() {
	converter := &AudioConverter{FFmpegPath: "/usr/bin/ffmpeg"}

	testCases := []struct {
		name        string
		format      string
		codec       string
		bitrate     string
		wantBitrate string
		wantNoRate  bool
	}{
		{name: "mp3 explicit rate", format: "mp3", codec: "libmp3lame", bitrate: "192k", wantBitrate: "-b:a 192k"},
		{name: "mp3 default rate", format: "mp3", codec: "libmp3lame", wantBitrate: "-b:a " + DefaultAudioBitrate},
		{name: "flac ignores rate", format: "flac", codec: "flac", bitrate: "192k", wantNoRate: true},
		{name: "wav ignores rate", format: "wav", codec: "pcm_s16le", wantNoRate: true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			args := converter.buildArgs("/in.mp4", "/out."+tc.format, tc.codec, tc.format, tc.bitrate)
			joined := strings.Join(args, " ")

			assert.Contains(s.T(), joined, "-vn")
			assert.Contains(s.T(), joined, "-c:a "+tc.codec)
			assert.Equal(s.T(), "/out."+tc.format, args[len(args)-1])

			if tc.wantNoRate {
				assert.NotContains(s.T(), joined, "-b:a")
			} else {
				assert.Contains(s.T(), joined, tc.wantBitrate)
			}
		})
	}
}

// TestConvertUnsupportedFormat verifies that unknown targets are rejected
// before FFmpeg is invoked.
func (s *AudioConverterTestSuite) TestConvertUnsupportedFormat() {
	converter, err := NewAudioConverter(&FFmpegInfo{Installed: true, Path: "/usr/bin/ffmpeg"})
	require.NoError(s.T(), err)

	err = converter.Convert(context.Background(), "/in.mp4", "/out.xyz", ConvertOptions{Format: "xyz"}, nil)
	require.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "unsupported audio format")
	assert.Contains(s.T(), err.Error(), "mp3", "error should list the supported formats")
}

// TestNewAudioConverter verifies construction against present and absent
// FFmpeg installations.
func (s *AudioConverterTestSuite) TestNewAudioConverter() {
	converter, err := NewAudioConverter(&FFmpegInfo{Installed: true, Path: "/usr/bin/ffmpeg"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "/usr/bin/ffmpeg", converter.FFmpegPath)

	_, err = NewAudioConverter(nil)
	assert.Error(s.T(), err)
}

// TestSupportedAudioFormats verifies the advertised formats and their order.
func (s *AudioConverterTestSuite) TestSupportedAudioFormats() {
	assert.Equal(s.T(), []string{"aac", "flac", "mp3", "ogg", "wav"}, SupportedAudioFormats())
}

// TestAudioConverterTestSuite runs the test suite.
func TestAudioConverterTestSuite(t *testing.T) {
	suite.Run(t, new(AudioConverterTestSuite))
}
