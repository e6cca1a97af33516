package watch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hupe1980/figwatch/internal/roots"
)

// HandleFunc receives a stabilized change path, i.e. one that survived its
// debounce window. It runs on a timer goroutine, concurrently with the
// daemon still pulling events.
type HandleFunc func(ctx context.Context, path string)

// DaemonOptions configures a Daemon.
type DaemonOptions struct {
	// Store is the persisted root list.
	Store *roots.Store

	// ConfigDir is the directory containing the roots file.
	ConfigDir string

	// Backend selects the notification backend (auto, native, fswatch).
	Backend string

	// FswatchBin is the fswatch executable for the polling backend.
	FswatchBin string

	// Debounce is the quiet period before a changed file is handed to
	// Handle.
	Debounce time.Duration

	// Handle is invoked for every stabilized change.
	Handle HandleFunc

	// Logger is used for structured logging.
	Logger *slog.Logger
}

// Daemon owns the watch control loop. It cycles through three phases:
// build a notification source from the current root list, pump its events
// through the debouncer, and — when the roots file itself changes — tear
// everything down and start over.
type Daemon struct {
	store      *roots.Store
	configDir  string
	backend    string
	fswatchBin string
	debounce   time.Duration
	handle     HandleFunc
	logger     *slog.Logger

	// newSource is swapped out by tests to inject a scripted source.
	newSource func(rootDirs []string) (Source, error)
}

// NewDaemon constructs a Daemon from opts.
func NewDaemon(opts DaemonOptions) *Daemon {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Debounce <= 0 {
		opts.Debounce = time.Second
	}

	d := &Daemon{
		store:      opts.Store,
		configDir:  opts.ConfigDir,
		backend:    opts.Backend,
		fswatchBin: opts.FswatchBin,
		debounce:   opts.Debounce,
		handle:     opts.Handle,
		logger:     opts.Logger,
	}

	d.newSource = func(rootDirs []string) (Source, error) {
		return NewSource(SourceOptions{
			Backend:    d.backend,
			Roots:      rootDirs,
			RootsFile:  d.store.Path(),
			ConfigDir:  d.configDir,
			FswatchBin: d.fswatchBin,
			Logger:     d.logger,
		})
	}

	return d
}

// Run executes the control loop until ctx is cancelled. Failing to build a
// notification source is fatal: a daemon that cannot watch anything has no
// reason to keep running.
func (d *Daemon) Run(ctx context.Context) error {
	debouncer := NewDebouncer(d.debounce, func(path string) {
		d.handle(ctx, path)
	})
	defer debouncer.CancelAll()

	for {
		rootDirs, err := d.store.List()
		if err != nil {
			return fmt.Errorf("reading roots: %w", err)
		}

		src, err := d.newSource(rootDirs)
		if err != nil {
			return fmt.Errorf("building notification source: %w", err)
		}

		d.logger.Info("watching directories",
			slog.String("roots", strings.Join(rootDirs, ", ")))

		rebuild := d.pump(ctx, src, debouncer)

		if err := src.Close(); err != nil {
			d.logger.Warn("tearing down notification source",
				slog.String("error", err.Error()))
		}

		// No trigger scheduled for the old watch generation may survive
		// into the new one.
		debouncer.CancelAll()

		if !rebuild {
			return nil
		}

		d.logger.Info("roots file changed, rebuilding watches")
	}
}

// pump forwards events into the debouncer until the roots file changes
// (returns true), the context is cancelled, or the source dries up
// (returns false).
func (d *Daemon) pump(ctx context.Context, src Source, debouncer *Debouncer) bool {
	for {
		select {
		case <-ctx.Done():
			return false

		case event, ok := <-src.Events():
			if !ok {
				d.logger.Warn("notification source closed unexpectedly")

				return false
			}

			// The roots file is a distinguished event class, checked
			// before ordinary dispatch. Any write to it triggers a
			// rebuild regardless of content.
			if event.Path == d.store.Path() {
				return true
			}

			d.logger.Debug("file changed", slog.String("path", event.Path))
			debouncer.Trigger(event.Path)
		}
	}
}
