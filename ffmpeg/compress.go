// Package ffmpeg provides functionality for detecting and working with FFmpeg.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Public types (alphabetical)

// Compressor re-encodes video files in a single FFmpeg pass, reporting
// progress parsed from the tool's stderr output.
type Compressor struct {
	// FFmpegPath is the path to the FFmpeg executable.
	FFmpegPath string

	prober *Prober
}

// Private methods (alphabetical)

// buildArgs assembles the FFmpeg argument list for a compression run.
func (c *Compressor) buildArgs(input, output string, opts CompressOptions) []string {
	// CRF 0 is valid (lossless); only out-of-range values fall back.
	crf := opts.CRF
	if crf < 0 || crf > 51 {
		crf = DefaultCRF
	}
	preset := opts.Preset
	if preset == "" {
		preset = DefaultPreset
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-i", input,
		"-c:v", "libx264",
		"-crf", fmt.Sprintf("%d", crf),
		"-preset", preset,
	}

	if opts.Width > 0 {
		// -2 keeps the height divisible by two, which libx264 requires.
		args = append(args, "-vf", fmt.Sprintf("scale=%d:-2", opts.Width))
	}

	args = append(args,
		"-c:a", "aac",
		"-b:a", DefaultAudioBitrate,
		output,
	)
	return args
}

// Public functions (alphabetical)

// NewCompressor creates a Compressor bound to the given FFmpeg installation.
func NewCompressor(ffmpegInfo *FFmpegInfo) (*Compressor, error) {
	if ffmpegInfo == nil || !ffmpegInfo.Installed {
		return nil, FormatError("ffmpeg not available")
	}

	prober, err := NewProber(ffmpegInfo)
	if err != nil {
		return nil, err
	}

	return &Compressor{
		FFmpegPath: ffmpegInfo.Path,
		prober:     prober,
	}, nil
}

// Public methods (alphabetical)

// Compress re-encodes input into output in one pass. Progress percentages
// are derived from the probed source duration and the time stamps FFmpeg
// prints while encoding; 100 is reported once on success. The partial output
// file is removed when the run fails or is cancelled.
func (c *Compressor) Compress(ctx context.Context, input, output string, opts CompressOptions, progress ProgressFunc) error {
	info := c.prober.Probe(ctx, input)
	if info.Duration <= 0 {
		return ErrCannotReadMedia
	}

	cmd := exec.CommandContext(ctx, c.FFmpegPath, c.buildArgs(input, output, opts)...)
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
		return FormatError("compression failed: %s", lastDiagnosticLine(captured))
	}

	if progress != nil {
		progress(100)
	}
	return nil
}

// Private functions (alphabetical)

// lastDiagnosticLine returns the last non-empty line of captured tool
// output, which for FFmpeg failures is the actual error message.
func lastDiagnosticLine(captured string) string {
	lines := strings.Split(strings.TrimSpace(captured), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "unknown error"
}
