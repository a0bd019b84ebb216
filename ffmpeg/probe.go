// Package ffmpeg provides functionality for detecting and working with FFmpeg.
package ffmpeg

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Public types (alphabetical)

// Prober retrieves high-level information about media files using FFprobe.
type Prober struct {
	// FFprobePath is the path to the FFprobe executable.
	FFprobePath string
}

// Private functions (alphabetical)

// parseFrameRate converts FFprobe's fractional frame rate ("30000/1001")
// into a float. Returns 0 for missing or malformed values.
func parseFrameRate(raw string) float64 {
	if raw == "" || raw == "0/0" {
		return 0
	}

	parts := strings.SplitN(raw, "/", 2)
	if len(parts) == 1 {
		rate, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0
		}
		return rate
	}

	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}

// parseProbeOutput maps FFprobe's JSON document onto a MediaInfo. The file
// size is taken from the filesystem rather than the format section so the
// value reflects the file as it is on disk right now.
func parseProbeOutput(raw []byte, path string) MediaInfo {
	var out ffprobeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return MediaInfo{}
	}

	info := MediaInfo{
		Format: strings.TrimPrefix(filepath.Ext(path), "."),
	}

	if duration, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil && duration > 0 {
		info.Duration = duration
	}

	// First video stream wins for dimensions and frame rate
	for _, stream := range out.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info.Width = stream.Width
		info.Height = stream.Height
		info.FrameRate = parseFrameRate(stream.AvgFrameRate)
		break
	}

	if stat, err := os.Stat(path); err == nil {
		info.SizeMB = float64(stat.Size()) / (1024 * 1024)
	}

	return info
}

// Public functions (alphabetical)

// NewProber creates a new Prober using the provided FFmpeg installation
// information. The FFprobe executable is assumed to live next to FFmpeg.
func NewProber(ffmpegInfo *FFmpegInfo) (*Prober, error) {
	if ffmpegInfo == nil || !ffmpegInfo.Installed {
		return nil, FormatError("ffmpeg not available")
	}

	return &Prober{
		FFprobePath: GetFFprobePath(ffmpegInfo.Path),
	}, nil
}

// Public methods (alphabetical)

// Probe inspects the media file at path and returns its MediaInfo. It never
// returns an error: on any failure (missing file, unreadable container,
// FFprobe not runnable) the zero MediaInfo sentinel is returned and the
// caller must treat a zero Duration as "cannot split". The file is reopened
// on every call; nothing is cached between probes.
func (p *Prober) Probe(ctx context.Context, path string) MediaInfo {
	cmd := exec.CommandContext(
		ctx,
		p.FFprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return MediaInfo{}
	}

	return parseProbeOutput(output, path)
}
