// Package ffmpeg provides functionality for detecting and working with FFmpeg.
package ffmpeg

import (
	"bufio"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Private variables (alphabetical)

// progressTimeRegex matches the out_time/time field of FFmpeg's periodic
// stats lines, e.g. "time=00:01:23.45".
var progressTimeRegex = regexp.MustCompile(`(?:^|\s)(?:out_)?time=\s*(\d+:\d+:\d+(?:\.\d+)?)`)

// progressSpeedRegex matches the speed multiplier, e.g. "speed=1.23x".
var progressSpeedRegex = regexp.MustCompile(`(?:^|\s)speed=\s*([0-9.]+)x?`)

// Public types (alphabetical)

// EncodeProgress is one sample of an in-flight encode, parsed from FFmpeg's
// stderr stats output.
type EncodeProgress struct {
	// Seconds is the source timestamp the encoder has reached.
	Seconds float64

	// Speed is the realtime multiplier reported by FFmpeg, 0 if absent.
	Speed float64
}

// Private functions (alphabetical)

// parseClock converts an FFmpeg "hh:mm:ss.cc" clock value into seconds.
// Returns -1 for malformed input.
func parseClock(clock string) float64 {
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return -1
	}

	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return -1
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return -1
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return -1
	}

	return hours*3600 + minutes*60 + seconds
}

// parseProgressLine extracts an EncodeProgress sample from one stderr line.
// Lines without a time field yield ok=false.
func parseProgressLine(line string) (EncodeProgress, bool) {
	matches := progressTimeRegex.FindStringSubmatch(line)
	if len(matches) < 2 {
		return EncodeProgress{}, false
	}

	seconds := parseClock(matches[1])
	if seconds < 0 {
		return EncodeProgress{}, false
	}

	sample := EncodeProgress{Seconds: seconds}
	if speedMatches := progressSpeedRegex.FindStringSubmatch(line); len(speedMatches) >= 2 {
		if speed, err := strconv.ParseFloat(speedMatches[1], 64); err == nil {
			sample.Speed = speed
		}
	}

	return sample, true
}

// watchProgress scans FFmpeg stderr line by line, converts time samples into
// percentages of totalDuration, and forwards non-decreasing values below 100
// to report. The terminal 100 is the caller's to emit on success. Returns the
// full stderr text for diagnostics.
func watchProgress(stderr io.Reader, totalDuration float64, report ProgressFunc) string {
	var captured strings.Builder
	lastPercent := -1

	scanner := bufio.NewScanner(stderr)
	// FFmpeg emits stats with \r separators; split on both.
	scanner.Split(scanCarriageLines)
	for scanner.Scan() {
		line := scanner.Text()
		captured.WriteString(line)
		captured.WriteByte('\n')

		if report == nil || totalDuration <= 0 {
			continue
		}
		sample, ok := parseProgressLine(line)
		if !ok {
			continue
		}

		percent := int(math.Round(sample.Seconds / totalDuration * 100))
		if percent > 99 {
			percent = 99
		}
		if percent > lastPercent {
			lastPercent = percent
			report(percent)
		}
	}

	return captured.String()
}

// scanCarriageLines is a bufio.SplitFunc that treats both \n and \r as line
// terminators, matching FFmpeg's in-place stats updates.
func scanCarriageLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
