// Package ffmpeg provides functionality for detecting and working with FFmpeg.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Public types (alphabetical)

// Extractor materializes time ranges of a media file into standalone files
// using FFmpeg's stream-copy mode (no re-encoding). Every invocation is
// bounded by Timeout: a copy that hangs on malformed input is killed and
// reported as failed rather than blocking the caller forever.
type Extractor struct {
	// FFmpegPath is the path to the FFmpeg executable.
	FFmpegPath string

	// Timeout caps the wall-clock execution of one extraction.
	// Zero selects GetDefaultTimeout().
	Timeout time.Duration
}

// SegmentExtractor is the interface consumed by the split engine. It is
// satisfied by Extractor and by test doubles that simulate FFmpeg.
type SegmentExtractor interface {
	// Extract copies the half-open range [start, start+duration) of the
	// input file into outPath and reports the result. Implementations must
	// remove any partially written outPath on failure.
	Extract(ctx context.Context, input string, start, duration float64, outPath string) ExtractResult
}

// Private methods (alphabetical)

// buildArgs assembles the FFmpeg argument list for a stream-copied extraction.
// The seek offset precedes -i so FFmpeg seeks on the input, which is both
// fast and keyframe-aligned.
func (e *Extractor) buildArgs(input string, start, duration float64, outPath string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(start),
		"-i", input,
		"-t", formatSeconds(duration),
		"-c", "copy",
		"-avoid_negative_ts", "1",
		outPath,
	}
}

// Private functions (alphabetical)

// formatSeconds renders a duration value for the FFmpeg command line.
func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds)
}

// removeIfExists deletes path, ignoring the file-does-not-exist case.
// Trial extractions call this on every exit path so stale partial files
// never corrupt a later size check.
func removeIfExists(path string) {
	// Removal failure is not actionable here; the next extraction passes
	// -y and overwrites the file anyway.
	_ = os.Remove(path)
}

// Public functions (alphabetical)

// NewExtractor creates an Extractor bound to the given FFmpeg installation,
// using the default per-extraction timeout.
func NewExtractor(ffmpegInfo *FFmpegInfo) (*Extractor, error) {
	if ffmpegInfo == nil || !ffmpegInfo.Installed {
		return nil, FormatError("ffmpeg not available")
	}

	return &Extractor{
		FFmpegPath: ffmpegInfo.Path,
		Timeout:    GetDefaultTimeout(),
	}, nil
}

// TrialPath returns a unique temp-file path inside dir for a trial
// extraction, preserving the source file's extension so FFmpeg picks the
// same container format the final segments will use.
func TrialPath(dir, input string) string {
	ext := filepath.Ext(input)
	if ext == "" {
		ext = ".mp4"
	}
	return filepath.Join(dir, "trial_"+uuid.NewString()+ext)
}

// Public methods (alphabetical)

// Extract copies the half-open time range [start, start+duration) of input
// into outPath without re-encoding. On success the result carries the output
// path and its size in megabytes. On any failure - nonzero exit, timeout,
// cancellation, missing output - the partial file is removed and a zero-size
// failed result is returned with the tool's stderr as diagnostic text.
func (e *Extractor) Extract(ctx context.Context, input string, start, duration float64, outPath string) ExtractResult {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = GetDefaultTimeout()
	}

	// CommandContext kills and reaps the process when the deadline fires or
	// the caller cancels, so no orphan holds the output file open.
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.FFmpegPath, e.buildArgs(input, start, duration, outPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		removeIfExists(outPath)
		diagnostic := stderr.String()
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		return ExtractResult{Diagnostic: diagnostic}
	}

	stat, err := os.Stat(outPath)
	if err != nil {
		return ExtractResult{Diagnostic: "output file missing after extraction"}
	}

	return ExtractResult{
		OK:     true,
		SizeMB: float64(stat.Size()) / (1024 * 1024),
		Output: outPath,
	}
}
