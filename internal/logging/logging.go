// Package logging builds the zap loggers used by vtftool and the preview
// server. Console output is either human-readable or JSON; an optional log
// file is always JSON and rotated through lumberjack.
package logging

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Console formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Rotation defaults applied to zero Options fields.
const (
	DefaultMaxSizeMB  = 100
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
)

// ErrInvalidFormat indicates an unknown console format.
var ErrInvalidFormat = errors.New("invalid log format")

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is FormatConsole or FormatJSON. Empty means console.
	Format string
	// File enables a rotated JSON log file when set.
	File string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New builds a logger writing to stderr and, if configured, to a file.
func New(opts Options) (*zap.Logger, error) {
	return NewWithWriter(opts, zapcore.Lock(os.Stderr))
}

// NewWithWriter builds a logger whose console output goes to console.
func NewWithWriter(opts Options, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level := ParseLevel(opts.Level, zapcore.InfoLevel)

	var encoder zapcore.Encoder
	switch opts.Format {
	case "", FormatConsole:
		encoder = zapcore.NewConsoleEncoder(consoleEncoderConfig())
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(encoderConfig())
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, opts.Format)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, console, level)}
	if opts.File != "" {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), fileWriter(opts), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// ParseLevel parses a level name case-insensitively, returning def for
// empty or unknown input.
func ParseLevel(s string, def zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return def
	}
}

func fileWriter(opts Options) zapcore.WriteSyncer {
	l := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    orDefault(opts.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: orDefault(opts.MaxBackups, DefaultMaxBackups),
		MaxAge:     orDefault(opts.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   opts.Compress,
	}

	return zapcore.AddSync(l)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := encoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return cfg
}
