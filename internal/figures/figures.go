// Package figures implements the interactive create and edit flows: new
// figures are stamped from the SVG template, existing ones are picked from
// a directory listing, and either way the containing directory is
// registered as a watch root.
package figures

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/figwatch/internal/config"
	"github.com/hupe1980/figwatch/internal/latex"
	"github.com/hupe1980/figwatch/internal/picker"
	"github.com/hupe1980/figwatch/internal/roots"
)

// ErrExists signals that a figure with the requested name already exists.
// Editor plugins detect this case by the "<title> 2" line the CLI prints,
// so creation must not silently overwrite.
var ErrExists = errors.New("figure already exists")

// PickFunc matches picker.Pick; swapped out by tests.
type PickFunc func(title string, names []string) (int, bool, error)

// Manager runs the create and edit flows.
type Manager struct {
	paths  *config.Paths
	store  *roots.Store
	editor string
	logger *slog.Logger
	pick   PickFunc

	// startEditor launches the figure editor detached; test seam.
	startEditor func(cmd *exec.Cmd) error
}

// NewManager constructs a Manager. editor is the command used to open
// figure sources.
func NewManager(paths *config.Paths, store *roots.Store, editor string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		paths:       paths,
		store:       store,
		editor:      editor,
		logger:      logger,
		pick:        picker.Pick,
		startEditor: (*exec.Cmd).Start,
	}
}

// Create stamps a new figure named after title inside root, registers root
// as watched, and opens the figure in the editor. It returns the figure
// path. When a figure with the same slug already exists, ErrExists is
// returned and nothing is modified.
func (m *Manager) Create(title, root string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("figure title must not be empty")
	}

	absRoot, err := roots.Normalize(root)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return "", fmt.Errorf("creating figure directory: %w", err)
	}

	figPath := filepath.Join(absRoot, Slug(title)+".svg")

	if _, err := os.Stat(figPath); err == nil {
		return figPath, ErrExists
	}

	if err := copyFile(m.paths.Template, figPath); err != nil {
		return "", fmt.Errorf("copying template: %w", err)
	}

	if err := m.store.Add(absRoot); err != nil {
		return "", err
	}

	if err := m.openEditor(figPath); err != nil {
		m.logger.Warn("could not open editor",
			slog.String("path", figPath),
			slog.String("error", err.Error()))
	}

	return figPath, nil
}

// Edit opens an existing figure. When target is an SVG file it is opened
// directly; when it is a directory, a picker over its figures (newest
// first) is shown. The boolean reports whether a figure was opened.
func (m *Manager) Edit(target string) (bool, error) {
	abs, err := roots.Normalize(target)
	if err != nil {
		return false, err
	}

	if strings.HasSuffix(abs, ".svg") {
		if err := m.open(filepath.Dir(abs), abs); err != nil {
			return false, err
		}

		return true, nil
	}

	figs, err := List(abs)
	if err != nil {
		return false, err
	}

	if len(figs) == 0 {
		return false, fmt.Errorf("no figures in %s", abs)
	}

	names := make([]string, len(figs))
	for i, fig := range figs {
		names[i] = fig.Title
	}

	index, selected, err := m.pick("Edit figure", names)
	if err != nil {
		return false, err
	}

	if !selected {
		return false, nil
	}

	if err := m.open(abs, figs[index].Path); err != nil {
		return false, err
	}

	return true, nil
}

// open registers root as watched and launches the editor on path.
func (m *Manager) open(root, path string) error {
	if err := m.store.Add(root); err != nil {
		return err
	}

	return m.openEditor(path)
}

// openEditor launches the editor detached; the daemon must not block on an
// interactive session.
func (m *Manager) openEditor(path string) error {
	cmd := exec.Command(m.editor, path) //nolint:gosec

	if err := m.startEditor(cmd); err != nil {
		return fmt.Errorf("starting editor %q: %w", m.editor, err)
	}

	// Reap the editor in the background so it never turns into a zombie.
	go func() { _ = cmd.Wait() }()

	return nil
}

// Figure describes one figure source in a directory.
type Figure struct {
	// Path is the absolute path of the SVG source.
	Path string

	// Title is the beautified display name ("bode_plot" → "Bode Plot").
	Title string
}

// List returns the SVG figures in dir, most recently modified first.
func List(dir string) ([]Figure, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.svg"))
	if err != nil {
		return nil, fmt.Errorf("listing figures: %w", err)
	}

	type entry struct {
		fig   Figure
		mtime int64
	}

	entries := make([]entry, 0, len(matches))

	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(match), ".svg")

		entries = append(entries, entry{
			fig:   Figure{Path: match, Title: latex.Beautify(stem)},
			mtime: info.ModTime().UnixNano(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].mtime > entries[j].mtime
	})

	figs := make([]Figure, len(entries))
	for i, e := range entries {
		figs[i] = e.fig
	}

	return figs, nil
}

// Slug converts a figure title to its file stem: spaces become hyphens and
// the result is lowercased.
func Slug(title string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "-"))
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, 0o644)
}
