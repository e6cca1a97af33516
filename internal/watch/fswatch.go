package watch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
)

// fswatchSource is the polling backend. It spawns a long-lived fswatch
// process covering all roots plus the config directory and consumes its
// stdout line by line, each line being the absolute path of a changed
// file. fswatch offers no event-kind filtering, so every reported line is
// a candidate change.
type fswatchSource struct {
	cmd     *exec.Cmd
	events  chan Event
	closing chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

func newFswatchSource(opts SourceOptions) (*fswatchSource, error) {
	args := make([]string, 0, len(opts.Roots)+1)

	// fswatch exits immediately when handed a missing path, so vanished
	// roots are skipped up front instead of killing the whole watch.
	for _, root := range opts.Roots {
		if _, err := os.Stat(root); err != nil {
			opts.Logger.Warn("could not watch root",
				slog.String("root", root),
				slog.String("error", err.Error()))

			continue
		}

		args = append(args, root)
	}

	args = append(args, opts.ConfigDir)

	cmd := exec.Command(opts.FswatchBin, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("fswatch stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", opts.FswatchBin, err)
	}

	s := &fswatchSource{
		cmd:     cmd,
		events:  make(chan Event, 1),
		closing: make(chan struct{}),
		logger:  opts.Logger,
	}

	go s.scan(stdout)

	return s, nil
}

// scan reads change paths from the fswatch process until it exits or the
// source is closed. The process is reaped here, after the last read, so
// Wait never closes the pipe under the scanner.
func (s *fswatchSource) scan(r io.Reader) {
	defer func() {
		_ = s.cmd.Wait()
		close(s.events)
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || ignored(line) {
			continue
		}

		select {
		case s.events <- Event{Path: line}:
		case <-s.closing:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("reading fswatch output", slog.String("error", err.Error()))
	}
}

func (s *fswatchSource) Events() <-chan Event {
	return s.events
}

// Close terminates the fswatch process. Termination failures are reported
// but the source is considered closed regardless; the scan goroutine reaps
// the process once its output drains.
func (s *fswatchSource) Close() error {
	var err error

	s.once.Do(func() {
		close(s.closing)

		sigErr := s.cmd.Process.Signal(syscall.SIGTERM)
		if sigErr != nil && !errors.Is(sigErr, os.ErrProcessDone) {
			err = fmt.Errorf("terminating fswatch: %w", sigErr)
		}
	})

	return err
}
