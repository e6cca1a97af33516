package roots

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	return NewStore(filepath.Join(t.TempDir(), "roots"))
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestList_MissingFileReadsAsEmpty(t *testing.T) {
	s := newTestStore(t)

	dirs, err := s.List()
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	// Only the implicit working directory.
	assert.Equal(t, []string{cwd}, dirs)
}

func TestList_AlwaysContainsCwd(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add("/figs"))

	dirs, err := s.List()
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	assert.Contains(t, dirs, "/figs")
	assert.Contains(t, dirs, cwd)
}

func TestList_CwdIsNotPersisted(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add("/figs"))

	_, err := s.List()
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	assert.NotContains(t, string(data), cwd)
}

func TestList_FiltersEmptyLines(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("/a\n\n/b\n\n"), 0o644))

	dirs, err := s.List()
	require.NoError(t, err)

	assert.Equal(t, "/a", dirs[0])
	assert.Equal(t, "/b", dirs[1])
	assert.NotContains(t, dirs, "")
}

// ---------------------------------------------------------------------------
// Add
// ---------------------------------------------------------------------------

func TestAdd_Idempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Add("/figs"))
	require.NoError(t, s.Add("/figs"))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(string(data), "/figs"))
}

func TestAdd_NormalizesBeforeComparing(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Add("/figs"))
	require.NoError(t, s.Add("/figs/"))
	require.NoError(t, s.Add("/figs/../figs"))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, "/figs", string(data))
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Add("/b"))
	require.NoError(t, s.Add("/a"))
	require.NoError(t, s.Add("/c"))
	require.NoError(t, s.Add("/a")) // no-op, must not reorder

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, "/b\n/a\n/c", string(data))
}

func TestAdd_RelativePathBecomesAbsolute(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Add("figs"))

	cwd, err := os.Getwd()
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "figs"), string(data))
}
