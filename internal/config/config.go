// Package config provides configuration management for figwatch.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (FIGWATCH_ prefix)
//  3. Config file (.figwatch.yaml)
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Supported notification backends.
const (
	BackendAuto    = "auto"
	BackendNative  = "native"
	BackendFswatch = "fswatch"
)

// Config represents the global configuration for figwatch.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// LogFile, when set, redirects log output to a rotating file.
	// Used by the daemonized watch mode, which has no terminal.
	LogFile string `mapstructure:"log-file" json:"logFile"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Debounce is the quiet period after the last change event for a file
	// before its conversion is triggered.
	Debounce time.Duration `mapstructure:"debounce" json:"debounce"`

	// Backend selects the notification backend.
	// Valid values: auto, native, fswatch.
	Backend string `mapstructure:"watch-backend" json:"watchBackend"`

	// InkscapeBin is the Inkscape executable used for conversions.
	InkscapeBin string `mapstructure:"inkscape-bin" json:"inkscapeBin"`

	// FswatchBin is the fswatch executable used by the polling backend.
	FswatchBin string `mapstructure:"fswatch-bin" json:"fswatchBin"`

	// ExportDPI is the resolution passed to Inkscape's PDF export.
	ExportDPI int `mapstructure:"export-dpi" json:"exportDPI"`

	// Editor is the command used to open figure sources for editing.
	Editor string `mapstructure:"editor" json:"editor"`

	// SnippetTemplate overrides the built-in LaTeX include snippet. It is a
	// Go text/template with {{.Name}} and {{.Title}} fields.
	SnippetTemplate string `mapstructure:"snippet-template" json:"snippetTemplate"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load() — not read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:    LogLevelInfo,
		LogFormat:   LogFormatText,
		Quiet:       false,
		Debounce:    time.Second,
		Backend:     BackendAuto,
		InkscapeBin: "inkscape",
		FswatchBin:  "fswatch",
		ExportDPI:   300,
		Editor:      "inkscape",
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	switch c.Backend {
	case BackendAuto, BackendNative, BackendFswatch:
		// valid
	default:
		return fmt.Errorf("invalid watch backend %q: must be one of auto, native, fswatch", c.Backend)
	}

	if c.Debounce <= 0 {
		return fmt.Errorf("invalid debounce %s: must be positive", c.Debounce)
	}

	if c.ExportDPI <= 0 {
		return fmt.Errorf("invalid export dpi %d: must be positive", c.ExportDPI)
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Store the resolved config file path so downstream code can locate it.
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("log-file", d.LogFile)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("watch-backend", d.Backend)
	v.SetDefault("inkscape-bin", d.InkscapeBin)
	v.SetDefault("fswatch-bin", d.FswatchBin)
	v.SetDefault("export-dpi", d.ExportDPI)
	v.SetDefault("editor", d.Editor)
	v.SetDefault("snippet-template", d.SnippetTemplate)
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("FIGWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	// Auto-discovery mode.
	v.SetConfigName(".figwatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "figwatch"))
	}

	if err := v.ReadInConfig(); err != nil {
		// No config file found → perfectly fine in auto-discovery.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}

		// Found a file but it was malformed.
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	// Bind the current command's own flags.
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	// Walk up to root and bind all persistent flags at each level.
	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}
type ctxPathsKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}

// NewContextWithPaths returns a child context carrying the resolved
// application paths.
func NewContextWithPaths(ctx context.Context, p *Paths) context.Context {
	return context.WithValue(ctx, ctxPathsKey{}, p)
}

// PathsFromContext extracts the application paths from ctx. Returns nil if
// no paths were installed.
func PathsFromContext(ctx context.Context) *Paths {
	if p, ok := ctx.Value(ctxPathsKey{}).(*Paths); ok {
		return p
	}

	return nil
}
