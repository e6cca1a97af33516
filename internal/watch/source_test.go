package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNativeTestSource(t *testing.T, roots ...string) (Source, string) {
	t.Helper()

	dir := t.TempDir()
	rootsFile := filepath.Join(dir, "roots")
	require.NoError(t, os.WriteFile(rootsFile, nil, 0o644))

	src, err := NewSource(SourceOptions{
		Backend:   BackendNative,
		Roots:     roots,
		RootsFile: rootsFile,
		ConfigDir: dir,
		Logger:    slog.Default(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	return src, rootsFile
}

func waitForEvent(t *testing.T, src Source, path string) {
	t.Helper()

	deadline := time.After(3 * time.Second)

	for {
		select {
		case event, ok := <-src.Events():
			require.True(t, ok, "event channel closed while waiting for %s", path)

			if event.Path == path {
				return
			}
		case <-deadline:
			t.Fatalf("no event for %s", path)
		}
	}
}

// ---------------------------------------------------------------------------
// Backend selection
// ---------------------------------------------------------------------------

func TestNewSource_UnknownBackend(t *testing.T) {
	_, err := NewSource(SourceOptions{Backend: "inotifywait"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown watch backend "inotifywait"`)
}

// ---------------------------------------------------------------------------
// Native backend
// ---------------------------------------------------------------------------

func TestNativeSource_DeliversWriteEvents(t *testing.T) {
	root := t.TempDir()
	src, _ := newNativeTestSource(t, root)

	figure := filepath.Join(root, "diagram.svg")
	require.NoError(t, os.WriteFile(figure, []byte("<svg/>"), 0o644))

	waitForEvent(t, src, figure)
}

func TestNativeSource_DeliversRootsFileEvents(t *testing.T) {
	src, rootsFile := newNativeTestSource(t)

	require.NoError(t, os.WriteFile(rootsFile, []byte("/figs"), 0o644))

	waitForEvent(t, src, rootsFile)
}

func TestNativeSource_IgnoresHiddenAndTempFiles(t *testing.T) {
	root := t.TempDir()
	src, _ := newNativeTestSource(t, root)

	for _, name := range []string{".diagram.svg.swp", "diagram.svg~", "#diagram.svg#"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}

	// The real figure write must be the first event through; the junk
	// above must never surface.
	figure := filepath.Join(root, "diagram.svg")
	require.NoError(t, os.WriteFile(figure, []byte("<svg/>"), 0o644))

	select {
	case event := <-src.Events():
		assert.Equal(t, figure, event.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}
}

func TestNativeSource_MissingRootIsSkipped(t *testing.T) {
	good := t.TempDir()
	src, _ := newNativeTestSource(t, filepath.Join(good, "does-not-exist"), good)

	figure := filepath.Join(good, "diagram.svg")
	require.NoError(t, os.WriteFile(figure, []byte("<svg/>"), 0o644))

	waitForEvent(t, src, figure)
}

func TestNativeSource_MissingRootsFileIsFatal(t *testing.T) {
	dir := t.TempDir()

	_, err := NewSource(SourceOptions{
		Backend:   BackendNative,
		RootsFile: filepath.Join(dir, "does-not-exist"),
		ConfigDir: dir,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching roots file")
}

func TestNativeSource_CloseClosesEventChannel(t *testing.T) {
	src, _ := newNativeTestSource(t, t.TempDir())

	require.NoError(t, src.Close())

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok, "event channel should be closed")
	case <-time.After(3 * time.Second):
		t.Fatal("event channel not closed")
	}
}

func TestNativeSource_CloseIsIdempotent(t *testing.T) {
	src, _ := newNativeTestSource(t, t.TempDir())

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
}

// ---------------------------------------------------------------------------
// Filtering
// ---------------------------------------------------------------------------

func TestIgnored(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/figs/diagram.svg", false},
		{"/figs/diagram.afdesign", false},
		{"/figs/.diagram.svg.swp", true},
		{"/figs/.hidden", true},
		{"/figs/diagram.svg~", true},
		{"/figs/#diagram.svg#", true},
		{"/figs/notes.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ignored(tt.path))
		})
	}
}
