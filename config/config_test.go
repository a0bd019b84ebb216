// Package config loads the fastmediatool configuration file and provides
// defaults for the split, compress, and convert operations.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fastmediatool/fastmediatool/ffmpeg"
)

// ConfigTestSuite defines the test suite for configuration loading.
type ConfigTestSuite struct {
	suite.Suite
	tempDir string // Temporary directory for config fixtures
}

// SetupTest creates a scratch directory for config files.
func (s *ConfigTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "fastmediatool-config-test")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// TearDownTest removes the scratch directory.
func (s *ConfigTestSuite) TearDownTest() {
	os.RemoveAll(s.tempDir)
}

// writeConfig writes raw YAML to a fixture file and returns its path.
func (s *ConfigTestSuite) writeConfig(raw string) string {
	path := filepath.Join(s.tempDir, "config.yaml")
	require.NoError(s.T(), os.WriteFile(path, []byte(raw), 0o644))
	return path
}

// TestLoad verifies that file values override defaults while unset fields
// keep them.
func (s *ConfigTestSuite) TestLoad() {
	path := s.writeConfig(`
maxSegmentSizeMB: 25
crf: 20
ffmpegBin: /opt/ffmpeg/bin/ffmpeg
`)

	cfg, err := Load(path)
	require.NoError(s.T(), err)

	assert.InDelta(s.T(), 25.0, cfg.MaxSegmentSizeMB, 0.001)
	assert.Equal(s.T(), 20, cfg.CRF)
	assert.Equal(s.T(), "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegBin)

	// Unset fields keep the defaults
	assert.Equal(s.T(), ffmpeg.DefaultPreset, cfg.Preset)
	assert.Equal(s.T(), ffmpeg.DefaultAudioBitrate, cfg.AudioBitrate)
	assert.Equal(s.T(), int(ffmpeg.GetDefaultTimeout().Seconds()), cfg.TrialTimeoutSeconds)
}

// TestLoadInvalidValues verifies that a file with out-of-range values is
// rejected.
func (s *ConfigTestSuite) TestLoadInvalidValues() {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "negative ceiling", raw: "maxSegmentSizeMB: -5"},
		{name: "zero timeout", raw: "trialTimeoutSeconds: 0"},
		{name: "crf too high", raw: "crf: 99"},
		{name: "not yaml", raw: "{{{"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := Load(s.writeConfig(tc.raw))
			assert.Error(s.T(), err)
		})
	}
}

// TestLoadMissingFile verifies that a missing file yields defaults, not an
// error.
func (s *ConfigTestSuite) TestLoadMissingFile() {
	cfg, err := Load(filepath.Join(s.tempDir, "nope.yaml"))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), NewDefault(), cfg)
}

// TestNewDefault verifies the defaults mirror the ffmpeg package constants.
func (s *ConfigTestSuite) TestNewDefault() {
	cfg := NewDefault()
	assert.InDelta(s.T(), ffmpeg.DefaultMaxSegmentSizeMB, cfg.MaxSegmentSizeMB, 0.001)
	assert.Equal(s.T(), ffmpeg.DefaultCRF, cfg.CRF)
	assert.NoError(s.T(), cfg.Validate())
}

// TestValidate verifies each rejection rule.
func (s *ConfigTestSuite) TestValidate() {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}, wantErr: false},
		{name: "zero ceiling", mutate: func(c *Config) { c.MaxSegmentSizeMB = 0 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.TrialTimeoutSeconds = -1 }, wantErr: true},
		{name: "negative crf", mutate: func(c *Config) { c.CRF = -1 }, wantErr: true},
		{name: "crf above range", mutate: func(c *Config) { c.CRF = 52 }, wantErr: true},
		{name: "crf at bounds", mutate: func(c *Config) { c.CRF = 51 }, wantErr: false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			cfg := NewDefault()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(s.T(), err)
			} else {
				assert.NoError(s.T(), err)
			}
		})
	}
}

// TestConfigTestSuite runs the test suite.
func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
