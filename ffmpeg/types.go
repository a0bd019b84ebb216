// Package ffmpeg provides functionality for detecting and working with FFmpeg.
package ffmpeg

// Private types (alphabetical)

// ffprobeFormat represents the "format" object of FFprobe's JSON output.
type ffprobeFormat struct {
	Filename       string `json:"filename"`
	FormatName     string `json:"format_name"`
	FormatLongName string `json:"format_long_name"`
	Duration       string `json:"duration"`
	Size           string `json:"size"`
	BitRate        string `json:"bit_rate"`
}

// ffprobeStream represents a single stream entry of FFprobe's JSON output.
type ffprobeStream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	AvgFrameRate string `json:"avg_frame_rate,omitempty"`
	SampleRate   string `json:"sample_rate,omitempty"`
	Channels     int    `json:"channels,omitempty"`
	Duration     string `json:"duration,omitempty"`
}

// ffprobeOutput represents the raw JSON document produced by
// "ffprobe -print_format json -show_format -show_streams".
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

// Public types (alphabetical)

// CompressOptions configures a video compression run.
type CompressOptions struct {
	// CRF is the constant rate factor passed to the encoder, in [0, 51].
	// Lower values produce higher quality and larger files; 0 is lossless.
	// Out-of-range values select DefaultCRF.
	CRF int

	// Preset is the x264 speed/efficiency preset (ultrafast ... veryslow).
	Preset string

	// Width scales the output to this width, preserving aspect ratio.
	// Zero keeps the source resolution.
	Width int
}

// ConvertOptions configures an audio conversion run.
type ConvertOptions struct {
	// Format is the target audio format (mp3, aac, flac, wav, ogg).
	Format string

	// Bitrate is the target audio bitrate, e.g. "128k". Ignored for
	// lossless targets.
	Bitrate string
}

// ExtractResult reports the outcome of a single segment extraction.
type ExtractResult struct {
	// OK is true when the extraction completed and the output file exists.
	OK bool

	// SizeMB is the size of the produced file in megabytes (bytes / 2^20).
	// Zero when OK is false.
	SizeMB float64

	// Output is the path of the produced file. Empty when OK is false.
	Output string

	// Diagnostic carries the tool's error text for logging. It never
	// propagates past the split engine as an error value.
	Diagnostic string
}

// FFmpegInfo contains information about the FFmpeg installation.
type FFmpegInfo struct {
	// Installed is true if FFmpeg is found on the system.
	Installed bool

	// Path is the full path to the FFmpeg executable.
	Path string

	// Version is the version of FFmpeg.
	Version string
}

// MediaInfo represents high-level information about a media file.
// A zero MediaInfo is the valid "could not read file" sentinel: probing
// never fails with an error, it returns zeroed fields instead, and callers
// must treat a zero Duration as "cannot split".
type MediaInfo struct {
	// Width is the pixel width of the first video stream.
	Width int `json:"width"`

	// Height is the pixel height of the first video stream.
	Height int `json:"height"`

	// Duration is the container duration in seconds.
	Duration float64 `json:"duration"`

	// SizeMB is the file size in megabytes (bytes / 2^20).
	SizeMB float64 `json:"size_mb"`

	// Format is the file extension without the leading dot.
	Format string `json:"format"`

	// FrameRate is the average frame rate of the first video stream.
	FrameRate float64 `json:"frame_rate"`
}

// ProgressFunc receives progress percentages in [0, 100]. Reported values
// are non-decreasing within a session and 100 is delivered exactly once,
// at completion.
type ProgressFunc func(percent int)

// Segment is one planned time range of a split. Ranges are half-open:
// the segment covers [Start, End) of the source file.
type Segment struct {
	// Index is the 1-based position of the segment in the plan.
	Index int

	// Start is the segment start offset in seconds.
	Start float64

	// End is the segment end offset in seconds.
	End float64

	// SizeMB is the materialized size of the segment file in megabytes.
	SizeMB float64

	// Oversized is true for best-effort segments whose materialized size
	// exceeds the ceiling because no smaller valid cut exists.
	Oversized bool
}

// SessionState identifies the current phase of a split session.
type SessionState int

// Split session states, in the order a successful session passes through them.
const (
	// StateIdle is the initial state before a split is requested.
	StateIdle SessionState = iota

	// StateProbing means the source file is being inspected.
	StateProbing

	// StateSearching means the engine is bisecting toward the next boundary.
	StateSearching

	// StateExtracting means an accepted segment is being written to its
	// final output file.
	StateExtracting

	// StateCompleted is the terminal state of a successful session.
	StateCompleted

	// StateCancelled is the terminal state after a cancellation request.
	StateCancelled

	// StateFailed is the terminal state after an unrecoverable error.
	StateFailed
)

// String returns the lowercase name of the state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProbing:
		return "probing"
	case StateSearching:
		return "searching"
	case StateExtracting:
		return "extracting"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SplitOptions configures a split session.
type SplitOptions struct {
	// MaxSizeMB is the segment size ceiling in megabytes.
	// Zero selects DefaultMaxSegmentSizeMB.
	MaxSizeMB float64

	// OutputDir is the directory receiving the segment files. It must
	// differ from the input file's directory.
	OutputDir string

	// Progress receives percentage updates after each accepted segment.
	// May be nil.
	Progress ProgressFunc
}

// SplitPlan is the ordered sequence of segments produced by a split session.
// Segments are contiguous: each segment's End equals the next segment's Start,
// the first starts at zero and the last ends at the source duration.
type SplitPlan struct {
	// Input is the source file the plan was computed for.
	Input string

	// TotalDuration is the source duration in seconds.
	TotalDuration float64

	// Segments are the planned ranges in increasing time order.
	Segments []Segment
}

// SplitSession tracks the mutable state of one split invocation. It is
// owned and mutated by the orchestrator only; concurrent sessions never
// share one.
type SplitSession struct {
	// Input is the source file path.
	Input string

	// OutputDir is the directory receiving segment files.
	OutputDir string

	// BaseName is the input file name without directory or extension.
	BaseName string

	// CurrentTime is the start offset, in seconds, of the next segment.
	CurrentTime float64

	// PartIndex is the 1-based index of the next segment to produce.
	PartIndex int

	// State is the current phase of the session.
	State SessionState

	// avgRateMB is the source's average size rate in megabytes per second,
	// used to seed the split-point estimate.
	avgRateMB float64
}
