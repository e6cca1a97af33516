package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsIn(t *testing.T) {
	p := PathsIn("/home/u/.config/figwatch")

	assert.Equal(t, "/home/u/.config/figwatch", p.ConfigDir)
	assert.Equal(t, "/home/u/.config/figwatch/roots", p.RootsFile)
	assert.Equal(t, "/home/u/.config/figwatch/template.svg", p.Template)
	assert.Equal(t, "/home/u/.config/figwatch/figwatch.pid", p.PIDFile)
}

func TestDefaultPaths(t *testing.T) {
	p, err := DefaultPaths()
	require.NoError(t, err)

	assert.Equal(t, "figwatch", filepath.Base(p.ConfigDir))
}

func TestEnsure_CreatesEverything(t *testing.T) {
	p := PathsIn(filepath.Join(t.TempDir(), "figwatch"))

	require.NoError(t, p.Ensure())

	info, err := os.Stat(p.ConfigDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(p.RootsFile)
	require.NoError(t, err)
	assert.Empty(t, data)

	tmpl, err := os.ReadFile(p.Template)
	require.NoError(t, err)
	assert.Contains(t, string(tmpl), "<svg")
}

func TestEnsure_PreservesExistingFiles(t *testing.T) {
	p := PathsIn(filepath.Join(t.TempDir(), "figwatch"))
	require.NoError(t, p.Ensure())

	require.NoError(t, os.WriteFile(p.RootsFile, []byte("/figs"), 0o644))
	require.NoError(t, os.WriteFile(p.Template, []byte("custom"), 0o644))

	require.NoError(t, p.Ensure())

	roots, err := os.ReadFile(p.RootsFile)
	require.NoError(t, err)
	assert.Equal(t, "/figs", string(roots))

	tmpl, err := os.ReadFile(p.Template)
	require.NoError(t, err)
	assert.Equal(t, "custom", string(tmpl))
}

func TestEnsure_Idempotent(t *testing.T) {
	p := PathsIn(filepath.Join(t.TempDir(), "figwatch"))

	require.NoError(t, p.Ensure())
	require.NoError(t, p.Ensure())
}
