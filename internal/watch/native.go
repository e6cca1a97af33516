package watch

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// nativeSource is the inode/event-based backend built on fsnotify. It
// registers one watch per root plus one for the roots file and forwards
// completed writes only, so partially written files never trigger a
// conversion.
type nativeSource struct {
	watcher *fsnotify.Watcher
	events  chan Event
	closing chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

func newNativeSource(opts SourceOptions) (*nativeSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating native watcher: %w", err)
	}

	// The roots file watch is what makes rebuilds possible; failing to
	// register it is fatal for this source.
	if err := watcher.Add(opts.RootsFile); err != nil {
		_ = watcher.Close()

		return nil, fmt.Errorf("watching roots file %q: %w", opts.RootsFile, err)
	}

	// A root that vanished since it was registered must not take the
	// daemon down; skip it and keep watching the rest.
	for _, root := range opts.Roots {
		if err := watcher.Add(root); err != nil {
			opts.Logger.Warn("could not watch root",
				slog.String("root", root),
				slog.String("error", err.Error()))
		}
	}

	s := &nativeSource{
		watcher: watcher,
		events:  make(chan Event, 1),
		closing: make(chan struct{}),
		logger:  opts.Logger,
	}

	go s.pump()

	return s, nil
}

// pump forwards relevant fsnotify events until the watcher is closed.
func (s *nativeSource) pump() {
	defer close(s.events)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if !relevant(event) || ignored(event.Name) {
				continue
			}

			select {
			case s.events <- Event{Path: event.Name}:
			case <-s.closing:
				return
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}

			s.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

func (s *nativeSource) Events() <-chan Event {
	return s.events
}

func (s *nativeSource) Close() error {
	var err error

	s.once.Do(func() {
		close(s.closing)
		err = s.watcher.Close()
	})

	return err
}

// relevant keeps completed writes and newly created files. Chmod, remove,
// and rename events never correspond to a figure save.
func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
