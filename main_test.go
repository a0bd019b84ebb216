// Package main provides the entry point for the fastmediatool application.
package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v2"

	"github.com/fastmediatool/fastmediatool/config"
)

// MainTestSuite defines the test suite for the CLI helpers.
type MainTestSuite struct {
	suite.Suite
}

// newCompressContext builds a cli.Context with the compress flags parsed
// from args.
func (s *MainTestSuite) newCompressContext(args ...string) *cli.Context {
	set := flag.NewFlagSet("compress", flag.ContinueOnError)
	set.Int("crf", 0, "")
	set.String("preset", "", "")
	set.Int("width", 0, "")
	require.NoError(s.T(), set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

// TestCompressOptions verifies the merge of compress flags with configured
// defaults, in particular that an explicit --crf 0 (lossless) is kept
// instead of being replaced by the config default.
func (s *MainTestSuite) TestCompressOptions() {
	cfg := config.NewDefault()

	s.Run("absent flags fall back to config", func() {
		opts := compressOptions(s.newCompressContext(), cfg)
		assert.Equal(s.T(), cfg.CRF, opts.CRF)
		assert.Equal(s.T(), cfg.Preset, opts.Preset)
		assert.Zero(s.T(), opts.Width)
	})

	s.Run("explicit zero crf is kept", func() {
		opts := compressOptions(s.newCompressContext("--crf", "0"), cfg)
		assert.Equal(s.T(), 0, opts.CRF)
	})

	s.Run("explicit flags override config", func() {
		opts := compressOptions(s.newCompressContext("--crf", "18", "--preset", "fast", "--width", "1280"), cfg)
		assert.Equal(s.T(), 18, opts.CRF)
		assert.Equal(s.T(), "fast", opts.Preset)
		assert.Equal(s.T(), 1280, opts.Width)
	})
}

// TestFormatDuration verifies human-readable duration rendering.
func (s *MainTestSuite) TestFormatDuration() {
	testCases := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "whole seconds", seconds: 45, want: "45 seconds"},
		{name: "fractional seconds", seconds: 10.5, want: "10.500 seconds"},
		{name: "minutes and seconds", seconds: 83, want: "1 minute and 23 seconds"},
		{name: "exact minutes", seconds: 120, want: "2 minutes"},
		{name: "hours minutes seconds", seconds: 3733, want: "1 hour, 2 minutes and 13 seconds"},
		{name: "exact hour", seconds: 3600, want: "1 hour"},
		{name: "zero", seconds: 0, want: "0 seconds"},
		{name: "one second", seconds: 1, want: "1 second"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			assert.Equal(s.T(), tc.want, formatDuration(tc.seconds))
		})
	}
}

// TestFormatSizeMB verifies size rendering with unit promotion.
func (s *MainTestSuite) TestFormatSizeMB() {
	testCases := []struct {
		name   string
		sizeMB float64
		want   string
	}{
		{name: "megabytes", sizeMB: 49.5, want: "49.50 MB"},
		{name: "just under a gigabyte", sizeMB: 1023.99, want: "1023.99 MB"},
		{name: "gigabytes", sizeMB: 2048, want: "2.00 GB"},
		{name: "zero", sizeMB: 0, want: "0.00 MB"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			assert.Equal(s.T(), tc.want, formatSizeMB(tc.sizeMB))
		})
	}
}

// TestMainTestSuite runs the test suite.
func TestMainTestSuite(t *testing.T) {
	suite.Run(t, new(MainTestSuite))
}
