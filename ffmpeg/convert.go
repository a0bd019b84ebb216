// Package ffmpeg provides functionality for detecting and working with FFmpeg.
package ffmpeg

import (
	"context"
	"os/exec"
	"sort"
	"strings"
)

// Private variables (alphabetical)

// audioCodecByFormat maps target audio formats to the FFmpeg encoder that
// produces them. Formats absent from this map are rejected up front.
var audioCodecByFormat = map[string]string{
	"aac":  "aac",
	"flac": "flac",
	"mp3":  "libmp3lame",
	"ogg":  "libvorbis",
	"wav":  "pcm_s16le",
}

// losslessFormats are targets for which a bitrate option is meaningless.
var losslessFormats = map[string]bool{
	"flac": true,
	"wav":  true,
}

// Public types (alphabetical)

// AudioConverter converts media files to a different audio format, dropping
// any video streams and reporting progress parsed from FFmpeg's stderr.
type AudioConverter struct {
	// FFmpegPath is the path to the FFmpeg executable.
	FFmpegPath string

	prober *Prober
}

// Private methods (alphabetical)

// buildArgs assembles the FFmpeg argument list for an audio conversion.
func (a *AudioConverter) buildArgs(input, output, codec, format, bitrate string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-i", input,
		"-vn",
		"-c:a", codec,
	}

	if !losslessFormats[format] {
		if bitrate == "" {
			bitrate = DefaultAudioBitrate
		}
		args = append(args, "-b:a", bitrate)
	}

	return append(args, output)
}

// Public functions (alphabetical)

// NewAudioConverter creates an AudioConverter bound to the given FFmpeg
// installation.
func NewAudioConverter(ffmpegInfo *FFmpegInfo) (*AudioConverter, error) {
	if ffmpegInfo == nil || !ffmpegInfo.Installed {
		return nil, FormatError("ffmpeg not available")
	}

	prober, err := NewProber(ffmpegInfo)
	if err != nil {
		return nil, err
	}

	return &AudioConverter{
		FFmpegPath: ffmpegInfo.Path,
		prober:     prober,
	}, nil
}

// SupportedAudioFormats returns the audio formats Convert accepts, sorted
// alphabetically.
func SupportedAudioFormats() []string {
	formats := make([]string, 0, len(audioCodecByFormat))
	for format := range audioCodecByFormat {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Public methods (alphabetical)

// Convert transcodes input's audio into the format given by opts, writing to
// output. Progress is reported the same way Compressor.Compress does. The
// partial output is removed when the run fails or is cancelled.
func (a *AudioConverter) Convert(ctx context.Context, input, output string, opts ConvertOptions, progress ProgressFunc) error {
	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	codec, ok := audioCodecByFormat[format]
	if !ok {
		return FormatError("unsupported audio format %q (supported: %s)", opts.Format, strings.Join(SupportedAudioFormats(), ", "))
	}

	info := a.prober.Probe(ctx, input)
	if info.Duration <= 0 {
		return ErrCannotReadMedia
	}

	cmd := exec.CommandContext(ctx, a.FFmpegPath, a.buildArgs(input, output, codec, format, opts.Bitrate)...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return FormatError("error attaching to ffmpeg: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return FormatError("error starting ffmpeg: %w", err)
	}

	captured := watchProgress(stderr, info.Duration, progress)

	if err := cmd.Wait(); err != nil {
		removeIfExists(output)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return FormatError("audio conversion failed: %s", lastDiagnosticLine(captured))
	}

	if progress != nil {
		progress(100)
	}
	return nil
}
