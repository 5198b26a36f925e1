// Package config loads vtftool settings from an optional YAML file, a .env
// file and VTFTOOL_* environment variables, in that order of precedence
// from lowest to highest.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/vtf/imageio"
	"github.com/woozymasta/vtf/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VTFTOOL_"

var (
	// ErrIO indicates the config or .env file could not be read.
	ErrIO = errors.New("i/o error")
	// ErrInvalidConfig indicates a malformed or out-of-range setting.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the full tool configuration.
type Config struct {
	Build  BuildConfig  `yaml:"build"`
	Export ExportConfig `yaml:"export"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// BuildConfig holds defaults for texture import.
type BuildConfig struct {
	Mipmaps   bool `yaml:"mipmaps"`
	NormalMap bool `yaml:"normal_map"`
	Clamp     bool `yaml:"clamp"`
	NoLOD     bool `yaml:"no_lod"`
}

// ExportConfig holds defaults for texture export.
type ExportConfig struct {
	// Format is the image file extension used when none is given.
	Format string `yaml:"format"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	Root         string        `yaml:"root"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Options converts the log settings for logging.New.
func (l LogConfig) Options() logging.Options {
	return logging.Options{
		Level:      l.Level,
		Format:     l.Format,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Build:  BuildConfig{Mipmaps: true},
		Export: ExportConfig{Format: "png"},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			Root:         ".",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: logging.FormatConsole},
	}
}

// Load reads the YAML file at path (skipped when empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrIO, path, err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding ones already set. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: %q: %w", ErrIO, path, err)
		}
	}

	return nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// ApplyEnv overrides fields from VTFTOOL_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	bools := map[string]*bool{
		"MIPMAPS":      &c.Build.Mipmaps,
		"NORMAL_MAP":   &c.Build.NormalMap,
		"CLAMP":        &c.Build.Clamp,
		"NO_LOD":       &c.Build.NoLOD,
		"LOG_COMPRESS": &c.Log.Compress,
	}
	strs := map[string]*string{
		"EXPORT_FORMAT": &c.Export.Format,
		"ADDR":          &c.Server.Addr,
		"ROOT":          &c.Server.Root,
		"LOG_LEVEL":     &c.Log.Level,
		"LOG_FORMAT":    &c.Log.Format,
		"LOG_FILE":      &c.Log.File,
	}
	durations := map[string]*time.Duration{
		"READ_TIMEOUT":  &c.Server.ReadTimeout,
		"WRITE_TIMEOUT": &c.Server.WriteTimeout,
	}

	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	for name, dst := range bools {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %w", ErrInvalidConfig, EnvPrefix, name, v, err)
		}
		*dst = b
	}
	for name, dst := range durations {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %w", ErrInvalidConfig, EnvPrefix, name, v, err)
		}
		*dst = d
	}

	return nil
}

// Validate rejects settings the tool cannot act on.
func (c *Config) Validate() error {
	c.Export.Format = strings.ToLower(strings.TrimPrefix(c.Export.Format, "."))
	if !imageio.CanEncode(c.Export.Format) {
		return fmt.Errorf("%w: export format %q", ErrInvalidConfig, c.Export.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: empty server address", ErrInvalidConfig)
	}
	if c.Server.Root == "" {
		return fmt.Errorf("%w: empty server root", ErrInvalidConfig)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("%w: server timeouts must be positive", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("%w: negative log rotation setting", ErrInvalidConfig)
	}

	return nil
}
