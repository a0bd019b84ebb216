// Package main provides the entry point for the fastmediatool application.
// It wraps FFmpeg to split videos into size-capped segments, compress video
// files, and convert audio between formats.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gertd/go-pluralize"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fastmediatool/fastmediatool/config"
	"github.com/fastmediatool/fastmediatool/ffmpeg"
)

// Public variables (alphabetical)

// BuildDate contains the date when the binary was built.
// This value is set during build using ldflags.
var BuildDate = "unknown"

// Commit contains the git commit hash that the binary was built from.
// This value is set during build using ldflags.
var Commit = "unknown"

// Version contains the current version of the application.
// This value can be overridden during build using ldflags.
var Version = "Development Version"

// Private functions (alphabetical)

// compressOptions merges the compress flags with the configured defaults.
// Flag presence decides the CRF fallback: an explicit --crf 0 selects
// lossless x264 and must not be mistaken for an unset flag.
func compressOptions(c *cli.Context, cfg *config.Config) ffmpeg.CompressOptions {
	opts := ffmpeg.CompressOptions{
		CRF:    cfg.CRF,
		Preset: c.String("preset"),
		Width:  c.Int("width"),
	}
	if c.IsSet("crf") {
		opts.CRF = c.Int("crf")
	}
	if opts.Preset == "" {
		opts.Preset = cfg.Preset
	}
	return opts
}

// formatDuration formats seconds into a human-readable duration string
// such as "10.5 seconds" or "1 hour, 2 minutes and 13 seconds".
func formatDuration(seconds float64) string {
	if seconds < 60 {
		if seconds == float64(int(seconds)) {
			if int(seconds) == 1 {
				return "1 second"
			}
			return fmt.Sprintf("%d seconds", int(seconds))
		}
		return fmt.Sprintf("%.3f seconds", seconds)
	}

	duration := time.Duration(seconds * float64(time.Second))
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	secs := int(duration.Seconds()) % 60

	var parts []string
	if hours > 0 {
		if hours == 1 {
			parts = append(parts, "1 hour")
		} else {
			parts = append(parts, fmt.Sprintf("%d hours", hours))
		}
	}
	if minutes > 0 {
		if minutes == 1 {
			parts = append(parts, "1 minute")
		} else {
			parts = append(parts, fmt.Sprintf("%d minutes", minutes))
		}
	}
	if secs > 0 || (hours == 0 && minutes == 0) {
		if secs == 1 {
			parts = append(parts, "1 second")
		} else {
			parts = append(parts, fmt.Sprintf("%d seconds", secs))
		}
	}

	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	case 3:
		return parts[0] + ", " + parts[1] + " and " + parts[2]
	default:
		return fmt.Sprintf("%.3f seconds", seconds)
	}
}

// formatSizeMB renders a megabyte value with a unit suitable for display.
func formatSizeMB(sizeMB float64) string {
	if sizeMB >= 1024 {
		return fmt.Sprintf("%.2f GB", sizeMB/1024)
	}
	return fmt.Sprintf("%.2f MB", sizeMB)
}

// loadConfig reads the configuration file selected by the --config flag.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	return cfg, nil
}

// newProgressBar creates the shared progress bar used by all commands.
func newProgressBar(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
}

// resolveFFmpeg locates the FFmpeg installation, honoring the --ffmpeg flag
// and the configuration file before falling back to auto-detection.
func resolveFFmpeg(ctx context.Context, c *cli.Context, cfg *config.Config) (*ffmpeg.FFmpegInfo, error) {
	override := c.String("ffmpeg")
	if override == "" {
		override = cfg.FFmpegBin
	}
	if override != "" {
		return &ffmpeg.FFmpegInfo{
			Installed: true,
			Path:      override,
			Version:   "user-provided",
		}, nil
	}

	info, err := ffmpeg.FindFFmpeg(ctx)
	if err != nil {
		return nil, fmt.Errorf("error finding FFmpeg: %w", err)
	}
	if !info.Installed {
		return nil, fmt.Errorf("ffmpeg not found; install it or pass --ffmpeg")
	}
	return info, nil
}

// resolveInput converts the command's first argument into an absolute path
// and verifies the file exists.
func resolveInput(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		errorStyle := color.New(color.FgRed)
		errorStyle.Printf("❌ Error: missing required argument: MEDIA_FILE\n\n")
		fmt.Printf("Run '%s %s --help' for more information.\n", c.App.Name, c.Command.Name)
		return "", fmt.Errorf("missing required argument: MEDIA_FILE")
	}

	absPath, err := filepath.Abs(c.Args().Get(0))
	if err != nil {
		return "", fmt.Errorf("error resolving path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("file not found: %s", absPath)
	}
	return absPath, nil
}

// setupLogging routes the diagnostic log to a rotating file and returns the
// logger handed to the ffmpeg package.
func setupLogging(cfg *config.Config) *log.Logger {
	logPath := cfg.LogFile
	if logPath == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = "."
		}
		logPath = filepath.Join(cacheDir, "fastmediatool", "fastmediatool.log")
	}

	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     7,    // days
		Compress:   true, // gzip
	}
	return log.New(rotator, "", log.LstdFlags)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM, so a
// Ctrl-C kills the in-flight FFmpeg process and lets cleanup run.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// versionPrinter renders the version banner for the --version flag.
func versionPrinter(_ *cli.Context) {
	summaryStyle := color.New(color.FgCyan, color.Bold)
	valueStyle := color.New(color.Bold)
	regularStyle := color.New(color.Reset)

	summaryStyle.Printf("🎬 fastmediatool %s\n", Version)
	regularStyle.Printf("  🛠️ Build date: ")
	valueStyle.Printf("%s\n", BuildDate)
	regularStyle.Printf("  🔍 Commit: ")
	valueStyle.Printf("%s\n", Commit)
}

// Public functions (alphabetical)

// compressCommand implements the compress subcommand: a single-pass
// re-encode of the input video at the requested quality.
func compressCommand(c *cli.Context) error {
	input, err := resolveInput(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	info, err := resolveFFmpeg(ctx, c, cfg)
	if err != nil {
		return err
	}

	compressor, err := ffmpeg.NewCompressor(info)
	if err != nil {
		return err
	}

	output := c.String("output")
	if output == "" {
		ext := filepath.Ext(input)
		output = input[:len(input)-len(ext)] + "_compressed" + ext
	}

	opts := compressOptions(c, cfg)

	bar := newProgressBar("🗜️ compressing")
	err = compressor.Compress(ctx, input, output, opts, func(percent int) {
		_ = bar.Set(percent)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			color.New(color.FgYellow).Println("\n⏹️ Compression cancelled")
			return nil
		}
		return err
	}

	color.New(color.FgGreen).Printf("\n✅ Compressed video saved to %s\n", output)
	return nil
}

// convertCommand implements the convert subcommand: audio format conversion
// with the video streams dropped.
func convertCommand(c *cli.Context) error {
	input, err := resolveInput(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	info, err := resolveFFmpeg(ctx, c, cfg)
	if err != nil {
		return err
	}

	converter, err := ffmpeg.NewAudioConverter(info)
	if err != nil {
		return err
	}

	format := c.String("format")
	output := c.String("output")
	if output == "" {
		ext := filepath.Ext(input)
		output = input[:len(input)-len(ext)] + "." + format
	}

	opts := ffmpeg.ConvertOptions{
		Format:  format,
		Bitrate: c.String("bitrate"),
	}
	if opts.Bitrate == "" {
		opts.Bitrate = cfg.AudioBitrate
	}

	bar := newProgressBar("🎵 converting")
	err = converter.Convert(ctx, input, output, opts, func(percent int) {
		_ = bar.Set(percent)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			color.New(color.FgYellow).Println("\n⏹️ Conversion cancelled")
			return nil
		}
		return err
	}

	color.New(color.FgGreen).Printf("\n✅ Converted audio saved to %s\n", output)
	return nil
}

// splitCommand implements the split subcommand: partition a video into
// stream-copied segments that each stay under the size ceiling.
func splitCommand(c *cli.Context) error {
	input, err := resolveInput(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	info, err := resolveFFmpeg(ctx, c, cfg)
	if err != nil {
		return err
	}

	valueStyle := color.New(color.Bold)
	regularStyle := color.New(color.Reset)
	regularStyle.Printf("🔧 Using FFmpeg at ")
	valueStyle.Printf("%s\n", info.Path)

	prober, err := ffmpeg.NewProber(info)
	if err != nil {
		return err
	}
	extractor, err := ffmpeg.NewExtractor(info)
	if err != nil {
		return err
	}
	extractor.Timeout = time.Duration(cfg.TrialTimeoutSeconds) * time.Second

	diag := setupLogging(cfg)
	splitter := ffmpeg.NewSplitter(prober, extractor)
	splitter.Log = func(message string) {
		diag.Println(message)
	}

	ceiling := c.Float64("max-size")
	if ceiling <= 0 {
		ceiling = cfg.MaxSegmentSizeMB
	}

	outputDir := c.String("dir")
	if outputDir == "" {
		outputDir = filepath.Join(filepath.Dir(input), "segments")
	}

	bar := newProgressBar("✂️ splitting")
	plan, err := splitter.Split(ctx, input, ffmpeg.SplitOptions{
		MaxSizeMB: ceiling,
		OutputDir: outputDir,
		Progress: func(percent int) {
			_ = bar.Set(percent)
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			color.New(color.FgYellow).Println("\n⏹️ Split cancelled")
			return nil
		}
		return err
	}

	// Summarize the plan
	pluralizeClient := pluralize.NewClient()
	successStyle := color.New(color.FgGreen)
	warningStyle := color.New(color.FgYellow)

	successStyle.Printf("\n✅ Wrote %d %s to %s\n",
		len(plan.Segments),
		pluralizeClient.Pluralize("segment", len(plan.Segments), false),
		outputDir)
	regularStyle.Printf("   Source duration: ")
	valueStyle.Printf("%s\n", formatDuration(plan.TotalDuration))

	for _, segment := range plan.Segments {
		regularStyle.Printf("   part %03d: %s - %s, ", segment.Index,
			formatDuration(segment.Start), formatDuration(segment.End))
		valueStyle.Printf("%s\n", formatSizeMB(segment.SizeMB))
		if segment.Oversized {
			warningStyle.Printf("   ⚠️ part %03d exceeds the %.0f MB ceiling: no smaller cut exists\n",
				segment.Index, ceiling)
		}
	}
	return nil
}

// main is the entry point of the application. It wires the CLI commands and
// delegates all work to the ffmpeg package.
func main() {
	// Override the default version printer
	cli.VersionPrinter = versionPrinter

	app := &cli.App{
		Name:  "fastmediatool",
		Usage: "Split, compress, and convert media files with FFmpeg",
		Description: "fastmediatool wraps FFmpeg to split videos into size-capped segments " +
			"without re-encoding, compress videos in a single pass, and convert audio between formats.",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the configuration file",
			},
			&cli.StringFlag{
				Name:  "ffmpeg",
				Usage: "Path to the FFmpeg executable (overrides auto-detection)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "split",
				Usage:     "Split a video into segments no larger than the size ceiling",
				ArgsUsage: "VIDEO_FILE",
				Action:    splitCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory where segments are written (must differ from the input directory)",
					},
					&cli.Float64Flag{
						Name:  "max-size",
						Usage: "Segment size ceiling in megabytes",
					},
				},
			},
			{
				Name:      "compress",
				Usage:     "Compress a video in a single re-encoding pass",
				ArgsUsage: "VIDEO_FILE",
				Action:    compressCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.IntFlag{
						Name:  "crf",
						Usage: "Constant rate factor (lower is higher quality)",
					},
					&cli.StringFlag{
						Name:  "preset",
						Usage: "x264 preset (ultrafast ... veryslow)",
					},
					&cli.IntFlag{
						Name:  "width",
						Usage: "Scale the output to this width, keeping aspect ratio",
					},
				},
			},
			{
				Name:      "convert",
				Usage:     "Convert a media file's audio to another format",
				ArgsUsage: "MEDIA_FILE",
				Action:    convertCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "format",
						Aliases:  []string{"f"},
						Usage:    "Target audio format (mp3, aac, flac, wav, ogg)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.StringFlag{
						Name:  "bitrate",
						Usage: "Audio bitrate for lossy targets, e.g. 192k",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		errorStyle := color.New(color.FgRed)
		errorStyle.Fprintf(os.Stderr, "⚠️ Error: %v\n", err)
		os.Exit(1)
	}
}
