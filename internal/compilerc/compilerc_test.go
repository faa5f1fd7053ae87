package compilerc

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/szvest/electron-forge/internal/manifest"
)

// readSidecar decodes a .compilerc from the given directory.
func readSidecar(t *testing.T, dir string) map[string]any {
	t.Helper()

	contents, err := os.ReadFile(filepath.Join(dir, Filename))
	require.NoError(t, err)

	var cfg map[string]any
	require.NoError(t, json.Unmarshal(contents, &cfg))

	return cfg
}

// TestMigrateInlineBabel moves the manifest block into .compilerc and strips it.
func TestMigrateInlineBabel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := &manifest.Manifest{Babel: json.RawMessage(`{"presets": ["react"]}`)}

	migrated, err := Migrate(context.Background(), dir, m)
	require.NoError(t, err)
	require.True(t, migrated)
	require.Nil(t, m.Babel)

	cfg := readSidecar(t, dir)
	js, ok := cfg[JavaScriptMime].(map[string]any)
	require.True(t, ok)
	require.Equal(t, []any{"react"}, js["presets"])
}

// TestMigrateSidecarBabelrc picks up a .babelrc when no inline block exists.
func TestMigrateSidecarBabelrc(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, LegacySidecar), []byte(`{"plugins": ["transform-async"]}`), 0o644))

	migrated, err := Migrate(context.Background(), dir, &manifest.Manifest{})
	require.NoError(t, err)
	require.True(t, migrated)

	cfg := readSidecar(t, dir)
	js, ok := cfg[JavaScriptMime].(map[string]any)
	require.True(t, ok)
	require.Equal(t, []any{"transform-async"}, js["plugins"])
}

// TestMigrateMergesExistingCompilerc keeps unrelated keys of an existing document.
func TestMigrateMergesExistingCompilerc(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, Filename), []byte(`{"text/less": {"sourceMap": true}}`), 0o644))

	m := &manifest.Manifest{Babel: json.RawMessage(`{"presets": ["es2016"]}`)}

	migrated, err := Migrate(context.Background(), dir, m)
	require.NoError(t, err)
	require.True(t, migrated)

	cfg := readSidecar(t, dir)
	require.Contains(t, cfg, "text/less")
	require.Contains(t, cfg, JavaScriptMime)
}

// TestMigrateNothingToDo reports false when no legacy configuration exists.
func TestMigrateNothingToDo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	migrated, err := Migrate(context.Background(), dir, &manifest.Manifest{})
	require.NoError(t, err)
	require.False(t, migrated)

	_, err = os.Stat(filepath.Join(dir, Filename))
	require.ErrorIs(t, err, os.ErrNotExist)
}
