package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// Default figure template, materialized into the config directory on first
// run so users can replace it with their own.
//
//go:embed template.svg
var defaultTemplate []byte

// Paths holds the well-known file locations figwatch operates on. It is
// constructed once at startup and passed explicitly into the daemon and
// converter instead of being touched as ambient global state.
type Paths struct {
	// ConfigDir is the figwatch configuration directory.
	ConfigDir string

	// RootsFile is the persisted list of watched directories, one absolute
	// path per line. A write to this file signals the daemon to rebuild its
	// watch set.
	RootsFile string

	// Template is the SVG file copied when creating a new figure.
	Template string

	// PIDFile records the PID of a daemonized watch process.
	PIDFile string
}

// DefaultPaths resolves the figwatch paths under the user config directory
// (e.g. ~/.config/figwatch on Linux).
func DefaultPaths() (*Paths, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolving user config dir: %w", err)
	}

	return PathsIn(filepath.Join(base, "figwatch")), nil
}

// PathsIn returns the figwatch paths rooted at dir. Used by tests to keep
// everything inside a temp directory.
func PathsIn(dir string) *Paths {
	return &Paths{
		ConfigDir: dir,
		RootsFile: filepath.Join(dir, "roots"),
		Template:  filepath.Join(dir, "template.svg"),
		PIDFile:   filepath.Join(dir, "figwatch.pid"),
	}
}

// Ensure creates the config directory, touches the roots file, and writes
// the default figure template if none exists yet.
func (p *Paths) Ensure() error {
	if err := os.MkdirAll(p.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if _, err := os.Stat(p.RootsFile); os.IsNotExist(err) {
		if err := os.WriteFile(p.RootsFile, nil, 0o644); err != nil {
			return fmt.Errorf("creating roots file: %w", err)
		}
	}

	if _, err := os.Stat(p.Template); os.IsNotExist(err) {
		if err := os.WriteFile(p.Template, defaultTemplate, 0o644); err != nil {
			return fmt.Errorf("writing default template: %w", err)
		}
	}

	return nil
}
