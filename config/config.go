// Package config loads the fastmediatool configuration file and provides
// defaults for the split, compress, and convert operations.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fastmediatool/fastmediatool/ffmpeg"
)

// Config holds the user-tunable defaults for all operations. Values left
// unset in the file keep the defaults from NewDefault.
type Config struct {
	// MaxSegmentSizeMB is the split segment size ceiling in megabytes.
	MaxSegmentSizeMB float64 `yaml:"maxSegmentSizeMB"`

	// TrialTimeoutSeconds caps the wall-clock time of a single extraction.
	TrialTimeoutSeconds int `yaml:"trialTimeoutSeconds"`

	// CRF is the default constant rate factor for compression.
	CRF int `yaml:"crf"`

	// Preset is the default x264 preset for compression.
	Preset string `yaml:"preset"`

	// AudioBitrate is the default bitrate for lossy audio conversion.
	AudioBitrate string `yaml:"audioBitrate"`

	// FFmpegBin overrides FFmpeg auto-detection when set.
	FFmpegBin string `yaml:"ffmpegBin"`

	// LogFile is the path of the rotating diagnostic log. Empty keeps
	// logging next to the executable.
	LogFile string `yaml:"logFile"`
}

// NewDefault returns a Config populated with the package defaults.
func NewDefault() *Config {
	return &Config{
		MaxSegmentSizeMB:    ffmpeg.DefaultMaxSegmentSizeMB,
		TrialTimeoutSeconds: int(ffmpeg.GetDefaultTimeout().Seconds()),
		CRF:                 ffmpeg.DefaultCRF,
		Preset:              ffmpeg.DefaultPreset,
		AudioBitrate:        ffmpeg.DefaultAudioBitrate,
	}
}

// Load reads the configuration from path. A missing file is not an error:
// defaults are returned. An empty path selects the standard location under
// the user's config directory.
func Load(path string) (*Config, error) {
	cfg := NewDefault()

	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(configDir, "fastmediatool", "config.yaml")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the operations cannot work with.
func (c *Config) Validate() error {
	if c.MaxSegmentSizeMB <= 0 {
		return fmt.Errorf("maxSegmentSizeMB must be positive, got %.2f", c.MaxSegmentSizeMB)
	}
	if c.TrialTimeoutSeconds <= 0 {
		return fmt.Errorf("trialTimeoutSeconds must be positive, got %d", c.TrialTimeoutSeconds)
	}
	if c.CRF < 0 || c.CRF > 51 {
		return fmt.Errorf("crf must be in [0, 51], got %d", c.CRF)
	}
	return nil
}
