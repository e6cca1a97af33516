package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Supported notification backends.
const (
	BackendAuto    = "auto"
	BackendNative  = "native"
	BackendFswatch = "fswatch"
)

// Event is a single file-change notification. Events are transient; they
// exist only between the notification backend and the debouncer.
type Event struct {
	// Path is the absolute path of the file that changed.
	Path string
}

// Source produces an unbounded stream of change events for a fixed snapshot
// of roots plus the roots file. A Source is not restartable: once closed,
// the daemon builds a fresh one.
type Source interface {
	// Events returns the event stream. The channel is closed when the
	// source is torn down.
	Events() <-chan Event

	// Close tears the source down: watches are removed or the external
	// watcher process is terminated.
	Close() error
}

// SourceOptions configures NewSource.
type SourceOptions struct {
	// Backend selects the notification backend: auto, native, or fswatch.
	Backend string

	// Roots are the directories to watch.
	Roots []string

	// RootsFile is the persisted root list; a write to it signals a
	// rebuild. The native backend watches the file itself, the fswatch
	// backend watches ConfigDir.
	RootsFile string

	// ConfigDir is the directory containing RootsFile.
	ConfigDir string

	// FswatchBin is the fswatch executable for the polling backend.
	FswatchBin string

	// Logger is used for structured logging.
	Logger *slog.Logger
}

// NewSource constructs a notification source for the given roots. With the
// auto backend it prefers the native fsnotify implementation and falls back
// to spawning fswatch when the native watcher cannot be created.
func NewSource(opts SourceOptions) (Source, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	switch opts.Backend {
	case BackendNative:
		return newNativeSource(opts)
	case BackendFswatch:
		return newFswatchSource(opts)
	case BackendAuto, "":
		src, err := newNativeSource(opts)
		if err == nil {
			return src, nil
		}

		opts.Logger.Warn("native backend unavailable, falling back to fswatch",
			slog.String("error", err.Error()))

		return newFswatchSource(opts)
	default:
		return nil, fmt.Errorf("unknown watch backend %q", opts.Backend)
	}
}

// ignored filters editor temporary and hidden files out of the event
// stream. Both backends report such writes, and neither maps to a figure
// save.
func ignored(path string) bool {
	name := filepath.Base(path)

	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#")
}
