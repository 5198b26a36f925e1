package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !cfg.Build.Mipmaps || cfg.Export.Format != "png" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vtftool.yaml")
	data := []byte(`
build:
  mipmaps: false
  normal_map: true
  clamp: true
export:
  format: .TGA
server:
  addr: ":9000"
  read_timeout: 5s
log:
  level: debug
  format: json
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// tga has no encoder
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for tga, got %v", err)
	}

	data = []byte(`
build:
  mipmaps: false
  normal_map: true
  clamp: true
export:
  format: .TIFF
server:
  addr: ":9000"
  read_timeout: 5s
log:
  level: debug
  format: json
`)

	cfg := Default()
	if err := cfg.decode(data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Build.Mipmaps || !cfg.Build.NormalMap || !cfg.Build.Clamp || cfg.Build.NoLOD {
		t.Fatalf("unexpected build config: %+v", cfg.Build)
	}
	if cfg.Export.Format != "tiff" {
		t.Fatalf("export format %q, want tiff", cfg.Export.Format)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout != 5*time.Second || cfg.Server.WriteTimeout != 30*time.Second {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "unknown-field", data: "build:\n  colour: red\n"},
		{name: "bad-type", data: "build:\n  mipmaps: maybe\n"},
		{name: "bad-duration", data: "server:\n  read_timeout: soon\n"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if err := Default().decode([]byte(tc.data)); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if err := Default().decode(nil); err != nil {
		t.Fatalf("empty document: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"VTFTOOL_MIPMAPS":       "false",
		"VTFTOOL_NO_LOD":        "1",
		"VTFTOOL_EXPORT_FORMAT": "jpg",
		"VTFTOOL_ADDR":          " 0.0.0.0:80 ",
		"VTFTOOL_WRITE_TIMEOUT": "1m",
		"VTFTOOL_LOG_FILE":      "/tmp/vtftool.log",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Build.Mipmaps || !cfg.Build.NoLOD {
		t.Fatalf("unexpected build config: %+v", cfg.Build)
	}
	if cfg.Export.Format != "jpg" || cfg.Server.Addr != "0.0.0.0:80" || cfg.Server.WriteTimeout != time.Minute {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.Log.File != "/tmp/vtftool.log" {
		t.Fatalf("log file %q", cfg.Log.File)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	t.Parallel()

	for _, env := range []map[string]string{
		{"VTFTOOL_CLAMP": "sometimes"},
		{"VTFTOOL_READ_TIMEOUT": "10"},
	} {
		if err := Default().ApplyEnv(envMap(env)); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%v: expected ErrInvalidConfig, got %v", env, err)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "export-format", modify: func(c *Config) { c.Export.Format = "xcf" }},
		{name: "empty-addr", modify: func(c *Config) { c.Server.Addr = "" }},
		{name: "empty-root", modify: func(c *Config) { c.Server.Root = "" }},
		{name: "zero-timeout", modify: func(c *Config) { c.Server.ReadTimeout = 0 }},
		{name: "log-level", modify: func(c *Config) { c.Log.Level = "verbose" }},
		{name: "log-format", modify: func(c *Config) { c.Log.Format = "xml" }},
		{name: "rotation", modify: func(c *Config) { c.Log.MaxBackups = -1 }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tc.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrIO) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrIO wrapping fs.ErrNotExist, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("VTFTOOL_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("VTFTOOL_TEST_DOTENV") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("VTFTOOL_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("VTFTOOL_TEST_DOTENV = %q, want loaded", got)
	}
}

func TestLogOptions(t *testing.T) {
	t.Parallel()

	opts := LogConfig{Level: "warn", Format: "json", File: "x.log", MaxBackups: 2, Compress: true}.Options()
	if opts.Level != "warn" || opts.Format != "json" || opts.File != "x.log" || opts.MaxBackups != 2 || !opts.Compress {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
