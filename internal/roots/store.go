// Package roots persists the set of figure directories watched by the
// daemon. The store is a plain text file with one absolute path per line;
// writing it is the signal for the watch daemon to rebuild its watch set.
package roots

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Store reads and appends to the persisted root list.
//
// The store performs no cross-process locking: two processes appending at
// the same time can lose an update. Roots are only ever added by explicit
// user actions, so this is accepted.
type Store struct {
	path string
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the persisted root list.
func (s *Store) Path() string {
	return s.path
}

// List returns the persisted roots with empty lines filtered out, plus the
// current working directory if it is not already present. The working
// directory is a synthetic member — it is never written back to the store.
// A missing store file reads as empty.
func (s *Store) List() ([]string, error) {
	entries, err := s.read()
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	if !slices.Contains(entries, cwd) {
		entries = append(entries, cwd)
	}

	return entries, nil
}

// Add appends dir to the persisted root list. The path is normalized to an
// absolute, cleaned form first. Adding a root that is already present is a
// no-op, so Add is idempotent and preserves insertion order.
func (s *Store) Add(dir string) error {
	abs, err := Normalize(dir)
	if err != nil {
		return err
	}

	entries, err := s.read()
	if err != nil {
		return err
	}

	if slices.Contains(entries, abs) {
		return nil
	}

	entries = append(entries, abs)

	if err := os.WriteFile(s.path, []byte(strings.Join(entries, "\n")), 0o644); err != nil {
		return fmt.Errorf("writing roots file: %w", err)
	}

	return nil
}

// read returns the persisted entries without the synthetic cwd member.
func (s *Store) read() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading roots file: %w", err)
	}

	var entries []string

	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}

	return entries, nil
}

// Normalize converts dir to an absolute, cleaned path.
func Normalize(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("normalizing root %q: %w", dir, err)
	}

	return abs, nil
}
