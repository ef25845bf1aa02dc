// Package config loads and validates the optional .glyphrun YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file looked up by Load.
const FileName = ".glyphrun"

// Default values for the execution pipeline.
const (
	DefaultTimeout          = 2 * time.Second
	DefaultMaxOutput        = 64 << 10 // 64 KB of captured print output
	DefaultMaxValues        = 10
	DefaultMinImageDim      = 30
	DefaultSampleRate       = 44100
	DefaultMaxAudioChannels = 5
	DefaultMinAudioSamples  = DefaultSampleRate / 10
	DefaultDocLines         = 5
	DefaultDocsURL          = "https://uiua.org/docs"
	DefaultPadURL           = "https://www.uiua.org/pad"
)

// Config holds the parsed .glyphrun configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int          `yaml:"version"`
	RawTimeout   string       `yaml:"timeout"`    // e.g. "2s", "500ms"
	RawMaxOutput int          `yaml:"max_output"` // bytes
	RawMaxValues int          `yaml:"max_values"` // stack values shown per run
	Output       OutputConfig `yaml:"output"`
	Docs         DocsConfig   `yaml:"docs"`
	Pad          PadConfig    `yaml:"pad"`
	Log          LogConfig    `yaml:"log"`
}

// OutputConfig controls how stack values are turned into artifacts.
type OutputConfig struct {
	MinImageDim      int `yaml:"min_image_dim"`      // smallest width/height rendered as an image
	SampleRate       int `yaml:"sample_rate"`        // Hz
	MaxAudioChannels int `yaml:"max_audio_channels"` // rows of a rank 2 array treated as channels
	MinAudioSamples  int `yaml:"min_audio_samples"`  // samples per channel
}

// DocsConfig controls documentation rendering.
type DocsConfig struct {
	Lines int    `yaml:"lines"` // long description lines rendered
	URL   string `yaml:"url"`   // base of the "More information" link
}

// PadConfig controls the playground link.
type PadConfig struct {
	URL string `yaml:"url"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level   string `yaml:"level"`   // debug, info, warn, error
	Format  string `yaml:"format"`  // text or json
	Journal bool   `yaml:"journal"` // also write to the systemd journal
}

// Timeout returns the configured timeout or the default.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeout
}

// MaxOutputBytes returns the configured max print output size or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// MaxValues returns the number of stack values shown before truncation.
func (c *Config) MaxValues() int {
	if c.RawMaxValues > 0 {
		return c.RawMaxValues
	}
	return DefaultMaxValues
}

// MinImageDim returns the image auto-detection threshold in pixels.
func (c *Config) MinImageDim() int {
	if c.Output.MinImageDim > 0 {
		return c.Output.MinImageDim
	}
	return DefaultMinImageDim
}

// SampleRate returns the audio sample rate in Hz.
func (c *Config) SampleRate() int {
	if c.Output.SampleRate > 0 {
		return c.Output.SampleRate
	}
	return DefaultSampleRate
}

// MaxAudioChannels returns the largest channel count accepted as audio.
func (c *Config) MaxAudioChannels() int {
	if c.Output.MaxAudioChannels > 0 {
		return c.Output.MaxAudioChannels
	}
	return DefaultMaxAudioChannels
}

// MinAudioSamples returns the shortest channel length accepted as audio.
func (c *Config) MinAudioSamples() int {
	if c.Output.MinAudioSamples > 0 {
		return c.Output.MinAudioSamples
	}
	return DefaultMinAudioSamples
}

// DocLines returns how many long description lines are rendered.
func (c *Config) DocLines() int {
	if c.Docs.Lines > 0 {
		return c.Docs.Lines
	}
	return DefaultDocLines
}

// DocsURL returns the documentation site base URL without a trailing slash.
func (c *Config) DocsURL() string {
	if c.Docs.URL != "" {
		return strings.TrimRight(c.Docs.URL, "/")
	}
	return DefaultDocsURL
}

// PadURL returns the playground URL.
func (c *Config) PadURL() string {
	if c.Pad.URL != "" {
		return c.Pad.URL
	}
	return DefaultPadURL
}

// LogLevel returns the configured log level, falling back to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// LoadResult holds the parsed config and the file it came from.
type LoadResult struct {
	Config *Config
	Path   string // empty when no .glyphrun file was found
}

// Load reads the nearest .glyphrun file, walking upward from dir.
// If no file exists, a default Config is returned.
func Load(dir string) (*LoadResult, error) {
	path, err := findConfig(dir)
	if err != nil {
		return &LoadResult{Config: &Config{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return &LoadResult{Config: cfg, Path: path}, nil
}

// findConfig walks upward from dir looking for a .glyphrun file.
func findConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found", FileName)
		}
		dir = parent
	}
}
