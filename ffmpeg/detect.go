// Package ffmpeg provides functionality for detecting and working with FFmpeg.
// It includes capabilities for detecting the FFmpeg installation, its version,
// and the location of the companion FFprobe executable.
package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// Private variables (alphabetical)

// ffmpegVersionRegex is used to detect FFmpeg version from version string.
// It extracts the numeric version (e.g., 4.4.1) from FFmpeg's version output.
var ffmpegVersionRegex = regexp.MustCompile(`(?i)(?:version|ffmpeg)\s+(?:n|\w)?(\d+\.\d+(?:\.\d+(?:\.\d+)?)?)`)

// Private functions (alphabetical)

// checkFFmpegExistence confirms if FFmpeg is installed on the system by searching
// for the executable. It first looks for ffmpeg in the user's PATH environment
// variable and falls back to common installation directories per operating system.
func checkFFmpegExistence() (string, bool) {
	// Try to find FFmpeg in PATH
	pathCmd, err := exec.LookPath("ffmpeg")
	if err == nil {
		return pathCmd, true
	}

	// Get common paths and check each one
	for _, path := range getCommonInstallPaths() {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	return "", false
}

// getCommonInstallPaths returns a list of common FFmpeg installation paths for
// the current OS. It provides possible locations where FFmpeg might be installed
// based on the operating system.
func getCommonInstallPaths() []string {
	var execName string
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	} else {
		execName = "ffmpeg"
	}

	var searchPaths []string
	switch runtime.GOOS {
	case "windows":
		searchPaths = []string{
			filepath.Join("C:", "Program Files", "FFmpeg", "bin", execName),
			filepath.Join("C:", "Program Files (x86)", "FFmpeg", "bin", execName),
			filepath.Join("C:", "FFmpeg", "bin", execName),
		}

		// Add ProgramFiles path if environment variable is set
		programFiles := os.Getenv("ProgramFiles")
		if programFiles != "" {
			searchPaths = append(searchPaths, filepath.Join(programFiles, "FFmpeg", "bin", execName))
		}

	case "darwin":
		searchPaths = []string{
			filepath.Join("/usr", "local", "bin", execName),
			filepath.Join("/opt", "local", "bin", execName),
			filepath.Join("/opt", "homebrew", "bin", execName),
		}
	default:
		searchPaths = []string{
			filepath.Join("/usr", "bin", execName),
			filepath.Join("/usr", "local", "bin", execName),
			filepath.Join("/opt", "ffmpeg", "bin", execName),
		}
	}
	return searchPaths
}

// parseVersionFromFirstLine parses the version string from the first line of
// FFmpeg's -version output, handling git 'n' prefixes and '-dev' suffixes.
func parseVersionFromFirstLine(firstLine string) string {
	versionParts := strings.Split(firstLine, " version ")
	if len(versionParts) > 1 {
		remainingParts := strings.Split(versionParts[1], " ")
		if len(remainingParts) > 0 {
			versionStr := remainingParts[0]

			// Remove 'n' prefix if present (git versioning)
			versionStr = strings.TrimPrefix(versionStr, "n")

			// Remove development suffix if present (e.g., -dev-1234)
			if idx := strings.Index(versionStr, "-dev"); idx > 0 {
				versionStr = versionStr[:idx]
			}

			return versionStr
		}
	}

	return ""
}

// Public functions (alphabetical)

// FindFFmpeg locates and identifies the FFmpeg installation on the system.
// It returns an FFmpegInfo struct with the executable path and version.
// A missing installation is reported through Installed=false, not an error.
func FindFFmpeg(ctx context.Context) (*FFmpegInfo, error) {
	// Find the FFmpeg executable
	ffmpegPath, found := checkFFmpegExistence()
	if !found {
		return &FFmpegInfo{
			Installed: false,
		}, nil
	}

	// Execute FFmpeg to get its version output
	cmd := exec.CommandContext(ctx, ffmpegPath, "-version")
	output, err := cmd.Output()
	if err != nil {
		return &FFmpegInfo{
			Path:      ffmpegPath,
			Installed: false,
		}, FormatError("error getting FFmpeg version: %w", err)
	}

	// Extract the version number
	versionOutput := string(output)
	version := ""
	matches := ffmpegVersionRegex.FindStringSubmatch(versionOutput)
	if len(matches) >= 2 {
		version = matches[1]
	}

	// Fall back to parsing the first line directly
	if version == "" {
		lines := strings.Split(versionOutput, "\n")
		if len(lines) > 0 {
			version = parseVersionFromFirstLine(lines[0])
		}
	}

	if version == "" {
		version = "unknown"
	}

	return &FFmpegInfo{
		Installed: true,
		Path:      ffmpegPath,
		Version:   version,
	}, nil
}

// GetFFprobePath derives the FFprobe path from an FFmpeg path. It assumes
// FFprobe is located in the same directory as FFmpeg.
func GetFFprobePath(ffmpegPath string) string {
	ffprobePath := filepath.Join(filepath.Dir(ffmpegPath), "ffprobe")
	if runtime.GOOS == "windows" {
		ffprobePath += ".exe"
	}
	return ffprobePath
}
