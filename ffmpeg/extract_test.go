// Package ffmpeg provides functionality for detecting and working with FFmpeg.
package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ExtractorTestSuite defines the test suite for the segment extractor.
type ExtractorTestSuite struct {
	suite.Suite
	tempDir string // Temporary directory for test files
}

// SetupTest creates a scratch directory for each test.
func (s *ExtractorTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "fastmediatool-extract-test")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// TearDownTest removes the scratch directory.
func (s *ExtractorTestSuite) TearDownTest() {
	os.RemoveAll(s.tempDir)
}

// TestBuildArgs verifies the stream-copy command line: input seek before -i,
// copy codecs, and the output path last.
func (s *ExtractorTestSuite) TestBuildArgs() {
	extractor := &Extractor{FFmpegPath: "/usr/bin/ffmpeg"}
	args := extractor.buildArgs("/videos/movie.mp4", 62.5, 30.25, "/out/part.mp4")

	joined := strings.Join(args, " ")
	assert.Contains(s.T(), joined, "-ss 62.500 -i /videos/movie.mp4")
	assert.Contains(s.T(), joined, "-t 30.250")
	assert.Contains(s.T(), joined, "-c copy")
	assert.Contains(s.T(), joined, "-avoid_negative_ts 1")
	assert.Equal(s.T(), "/out/part.mp4", args[len(args)-1])

	// Seek must precede the input so FFmpeg seeks on the container
	ssIndex := indexOf(args, "-ss")
	inIndex := indexOf(args, "-i")
	require.GreaterOrEqual(s.T(), ssIndex, 0)
	require.GreaterOrEqual(s.T(), inIndex, 0)
	assert.Less(s.T(), ssIndex, inIndex)
}

// TestExtractFailureCleansPartialOutput verifies that a failed run removes
// whatever was written to the output path, so repeated trials never measure
// a stale file.
func (s *ExtractorTestSuite) TestExtractFailureCleansPartialOutput() {
	outPath := filepath.Join(s.tempDir, "part.mp4")
	require.NoError(s.T(), os.WriteFile(outPath, []byte("stale partial data"), 0o644))

	extractor := &Extractor{FFmpegPath: filepath.Join(s.tempDir, "no-such-ffmpeg")}
	result := extractor.Extract(context.Background(), "/videos/movie.mp4", 0, 10, outPath)

	assert.False(s.T(), result.OK)
	assert.Zero(s.T(), result.SizeMB)
	assert.NotEmpty(s.T(), result.Diagnostic)

	_, err := os.Stat(outPath)
	assert.True(s.T(), os.IsNotExist(err), "partial output must be removed on failure")
}

// TestExtractCancelled verifies that a cancelled context fails the
// extraction instead of blocking.
func (s *ExtractorTestSuite) TestExtractCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := &Extractor{FFmpegPath: filepath.Join(s.tempDir, "no-such-ffmpeg")}
	result := extractor.Extract(ctx, "/videos/movie.mp4", 0, 10, filepath.Join(s.tempDir, "part.mp4"))
	assert.False(s.T(), result.OK)
}

// TestNewExtractor verifies construction and the default timeout.
func (s *ExtractorTestSuite) TestNewExtractor() {
	extractor, err := NewExtractor(&FFmpegInfo{Installed: true, Path: "/usr/bin/ffmpeg"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "/usr/bin/ffmpeg", extractor.FFmpegPath)
	assert.Equal(s.T(), GetDefaultTimeout(), extractor.Timeout)

	_, err = NewExtractor(&FFmpegInfo{Installed: false})
	assert.Error(s.T(), err)
}

// TestTrialPath verifies trial file naming: unique names inside the chosen
// directory that keep the source extension.
func (s *ExtractorTestSuite) TestTrialPath() {
	first := TrialPath(s.tempDir, "/videos/movie.mkv")
	second := TrialPath(s.tempDir, "/videos/movie.mkv")

	assert.NotEqual(s.T(), first, second, "trial paths must be unique")
	assert.Equal(s.T(), s.tempDir, filepath.Dir(first))
	assert.True(s.T(), strings.HasPrefix(filepath.Base(first), "trial_"))
	assert.Equal(s.T(), ".mkv", filepath.Ext(first))

	// Extension-less inputs fall back to mp4
	assert.Equal(s.T(), ".mp4", filepath.Ext(TrialPath(s.tempDir, "/videos/movie")))
}

// indexOf returns the position of value in values, or -1.
func indexOf(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return -1
}

// TestExtractorTestSuite runs the test suite.
func TestExtractorTestSuite(t *testing.T) {
	suite.Run(t, new(ExtractorTestSuite))
}
