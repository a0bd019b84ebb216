// Package ffmpeg provides functionality for detecting and working with FFmpeg.
package ffmpeg

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Public types (alphabetical)

// BundledTools holds the paths of FFmpeg executables unpacked from a bundled
// resource directory, together with ownership of the temporary directory they
// were unpacked into. Callers create it once at process startup via
// ExtractBundledTools and must call Cleanup before exiting.
type BundledTools struct {
	// FFmpeg is the path of the unpacked ffmpeg executable.
	FFmpeg string

	// FFprobe is the path of the unpacked ffprobe executable.
	FFprobe string

	// dir is the owned temporary directory holding the executables.
	dir string
}

// Private functions (alphabetical)

// copyExecutable copies src to dst and marks dst executable.
func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// executableName appends the platform executable suffix to a tool name.
func executableName(tool string) string {
	if runtime.GOOS == "windows" {
		return tool + ".exe"
	}
	return tool
}

// Public functions (alphabetical)

// ExtractBundledTools unpacks the ffmpeg and ffprobe executables shipped in
// resourceDir into a freshly created temporary directory owned by the returned
// BundledTools. This replaces on-demand extraction: it is an explicit
// initialization step performed once at startup, and the directory's lifetime
// is bounded by an explicit Cleanup call rather than finalization.
func ExtractBundledTools(resourceDir string) (*BundledTools, error) {
	ffmpegSrc := filepath.Join(resourceDir, executableName("ffmpeg"))
	ffprobeSrc := filepath.Join(resourceDir, executableName("ffprobe"))

	if _, err := os.Stat(ffmpegSrc); err != nil {
		return nil, FormatError("bundled ffmpeg not found in %s: %w", resourceDir, err)
	}
	if _, err := os.Stat(ffprobeSrc); err != nil {
		return nil, FormatError("bundled ffprobe not found in %s: %w", resourceDir, err)
	}

	tempDir, err := os.MkdirTemp("", "fastmediatool_")
	if err != nil {
		return nil, FormatError("error creating tool directory: %w", err)
	}

	tools := &BundledTools{
		FFmpeg:  filepath.Join(tempDir, executableName("ffmpeg")),
		FFprobe: filepath.Join(tempDir, executableName("ffprobe")),
		dir:     tempDir,
	}

	if err := copyExecutable(ffmpegSrc, tools.FFmpeg); err != nil {
		tools.Cleanup()
		return nil, FormatError("error unpacking ffmpeg: %w", err)
	}
	if err := copyExecutable(ffprobeSrc, tools.FFprobe); err != nil {
		tools.Cleanup()
		return nil, FormatError("error unpacking ffprobe: %w", err)
	}

	return tools, nil
}

// Public methods (alphabetical)

// Cleanup removes the temporary directory holding the unpacked executables.
// It is safe to call more than once.
func (b *BundledTools) Cleanup() {
	if b.dir == "" {
		return
	}
	os.RemoveAll(b.dir)
	b.dir = ""
}
