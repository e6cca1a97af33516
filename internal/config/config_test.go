package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.Equal(t, BackendAuto, cfg.Backend)
	assert.Equal(t, "inkscape", cfg.InkscapeBin)
	assert.Equal(t, "fswatch", cfg.FswatchBin)
	assert.Equal(t, 300, cfg.ExportDPI)
	assert.Equal(t, "inkscape", cfg.Editor)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "bad backend",
			mutate:  func(c *Config) { c.Backend = "inotifywait" },
			wantErr: "invalid watch backend",
		},
		{
			name:    "zero debounce",
			mutate:  func(c *Config) { c.Debounce = 0 },
			wantErr: "invalid debounce",
		},
		{
			name:    "negative dpi",
			mutate:  func(c *Config) { c.ExportDPI = -1 },
			wantErr: "invalid export dpi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEffectiveLogLevel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, LogLevelInfo, cfg.EffectiveLogLevel())

	cfg.Quiet = true
	assert.Equal(t, LogLevelError, cfg.EffectiveLogLevel())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.Equal(t, BackendAuto, cfg.Backend)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-level: debug\nexport-dpi: 600\ndebounce: 2s\n"), 0o644))

	cfg, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, 600, cfg.ExportDPI)
	assert.Equal(t, 2*time.Second, cfg.Debounce)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_InvalidValueRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-level: loud\n"), 0o644))

	_, err := Load(nil, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FIGWATCH_LOG_LEVEL", "warn")
	t.Setenv("FIGWATCH_WATCH_BACKEND", "native")

	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, LogLevelWarn, cfg.LogLevel)
	assert.Equal(t, BackendNative, cfg.Backend)
}

func TestContext_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = LogLevelDebug

	ctx := NewContext(context.Background(), cfg)
	assert.Equal(t, cfg, FromContext(ctx))
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	cfg := FromContext(context.Background())
	assert.Equal(t, Default(), cfg)
}

func TestPathsContext_RoundTrip(t *testing.T) {
	p := PathsIn(t.TempDir())

	ctx := NewContextWithPaths(context.Background(), p)
	assert.Equal(t, p, PathsFromContext(ctx))
	assert.Nil(t, PathsFromContext(context.Background()))
}
