package maker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/szvest/electron-forge/internal/engine"
)

// stagingEngine stages a minimal bundle so the makers have something to archive.
type stagingEngine struct{}

func (stagingEngine) Package(_ context.Context, opts *engine.Options) (string, error) {
	buildDir := filepath.Join(opts.OutDir, fmt.Sprintf("%s-%s-%s", opts.Name, opts.Platform, opts.Arch))
	if err := os.MkdirAll(filepath.Join(buildDir, "resources", "app"), 0o755); err != nil {
		return "", err
	}

	if err := os.WriteFile(
		filepath.Join(buildDir, "resources", "app", "index.js"), []byte("// entry"), 0o644); err != nil {
		return "", err
	}

	return buildDir, nil
}

// newMakeProject lays out a project whose forge block requests a zip target.
func newMakeProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "index.js"), []byte("// entry"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{
  "name": "zipped-app",
  "version": "3.1.4",
  "main": "src/index.js",
  "config": {"forge": {"make_targets": {"linux": ["zip"]}, "electronPackagerConfig": {}}}
}`), 0o644))

	return dir
}

// TestRunProducesZipArtifact drives the whole package-then-make flow.
func TestRunProducesZipArtifact(t *testing.T) {
	t.Parallel()

	dir := newMakeProject(t)

	artifacts, err := Run(context.Background(), &Options{
		Dir:      dir,
		Platform: "linux",
		Arch:     "x64",
		Engine:   stagingEngine{},
	})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	expected := filepath.Join(dir, "out", "make", "zipped-app-linux-x64-3.1.4.zip")
	require.Equal(t, expected, artifacts[0])

	_, err = os.Stat(expected)
	require.NoError(t, err)
}

// TestRunRejectsUnknownTarget fails on a target no maker implements.
func TestRunRejectsUnknownTarget(t *testing.T) {
	t.Parallel()

	dir := newMakeProject(t)

	_, err := Run(context.Background(), &Options{
		Dir:      dir,
		Platform: "linux",
		Arch:     "x64",
		Engine:   stagingEngine{},
		Targets:  []string{"deb"},
	})
	require.ErrorIs(t, err, errUnknownTarget)
}

// TestTargetsForFallsBackToDefault covers the configured-target lookup.
func TestTargetsForFallsBackToDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"zip"}, targetsFor(map[string]any{}, "linux"))

	base := map[string]any{makeTargetsKey: map[string]any{"win32": []any{"zip"}}}
	require.Equal(t, []string{"zip"}, targetsFor(base, "linux"))

	base = map[string]any{makeTargetsKey: map[string]any{"linux": []any{"zip", "zip"}}}
	require.Equal(t, []string{"zip", "zip"}, targetsFor(base, "linux"))
}
