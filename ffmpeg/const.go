// Package ffmpeg provides functionality for detecting and working with FFmpeg.
// It includes tools for probing media files, extracting stream-copied segments,
// splitting videos under a size ceiling, compressing video, and converting audio.
package ffmpeg

import (
	"fmt"
	"time"
)

// Private constants (alphabetical)
const (
	// defaultTrialTimeout is the standard timeout for a single FFmpeg extraction.
	// Stream copies that exceed this timeout are terminated and treated as failed.
	defaultTrialTimeout = 30 * time.Second

	// errorPrefix is used as a prefix for all error messages from this package.
	// This ensures consistent error formatting across the package.
	errorPrefix = "ffmpeg: "

	// floatSlack absorbs floating-point rounding when comparing time offsets
	// against the total duration.
	floatSlack = 1e-6
)

// Public constants (alphabetical)
const (
	// DefaultAudioBitrate is the audio bitrate used for conversions when the
	// caller does not specify one.
	DefaultAudioBitrate = "128k"

	// DefaultCRF is the constant rate factor used for video compression when
	// no explicit quality is requested.
	DefaultCRF = 28

	// DefaultMaxSegmentSizeMB is the size ceiling, in megabytes, that each
	// split segment must stay at or under.
	DefaultMaxSegmentSizeMB = 50.0

	// DefaultPreset is the encoder preset used for video compression.
	DefaultPreset = "medium"

	// DurationTolerance is the bisection bracket width, in seconds, at which
	// the split-point search stops narrowing. Cut points land on keyframes
	// chosen by FFmpeg, so sub-second precision buys nothing.
	DurationTolerance = 1.0

	// MinSegmentDuration is the smallest segment duration, in seconds, the
	// search will consider. Stream copy cannot reliably cut below a frame
	// boundary, so this is also the best-effort fallback duration.
	MinSegmentDuration = 1.0

	// TailMergeWindow is the remaining-duration threshold, in seconds, below
	// which a trailing remainder is merged into the preceding segment rather
	// than emitted as a tiny final file.
	TailMergeWindow = 3.0
)

// Public functions (alphabetical)

// FormatError creates a standardized error message with the package prefix.
// It ensures all errors from this package have a consistent format and can be
// easily identified as originating from the ffmpeg package.
func FormatError(format string, args ...interface{}) error {
	return fmt.Errorf(errorPrefix+format, args...)
}

// GetDefaultTimeout returns the standard timeout duration for a single FFmpeg
// extraction. Applications can use this when creating contexts or configuring
// an Extractor.
func GetDefaultTimeout() time.Duration {
	return defaultTrialTimeout
}
