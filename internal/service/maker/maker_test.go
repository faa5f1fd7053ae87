package maker

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/szvest/electron-forge/internal/manifest"
)

// TestMakeOutputPath checks the deterministic artifact location and that the
// destination directory is created when absent.
func TestMakeOutputPath(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	dir := filepath.Join(parent, "MyApp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644))

	m := &manifest.Manifest{Version: "1.2.3"}

	artifact, err := NewZip().Make(context.Background(), dir, "MyApp", "linux", m)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(parent, "make", "MyApp-1.2.3.zip"), artifact)

	info, err := os.Stat(filepath.Join(parent, "make"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

// TestMakeArchivesWholeDirectory verifies non-darwin archives root at the
// staged directory with basename-prefixed entries.
func TestMakeArchivesWholeDirectory(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	dir := filepath.Join(parent, "app-linux-x64")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "resources", "app"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "resources", "app", "index.js"), []byte("// entry"), 0o644))

	m := &manifest.Manifest{Version: "0.1.0"}

	artifact, err := NewZip().Make(context.Background(), dir, "app", "linux", m)
	require.NoError(t, err)

	reader, err := zip.OpenReader(artifact)
	require.NoError(t, err)

	defer func() {
		_ = reader.Close()
	}()

	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}

	require.Contains(t, names, "app-linux-x64/resources/app/index.js")
}

// TestMakeDarwinArchivesAppBundle verifies the darwin family roots the
// archive at the .app bundle.
func TestMakeDarwinArchivesAppBundle(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	dir := filepath.Join(parent, "app-darwin-arm64")
	appDir := filepath.Join(dir, "app.app", "Contents", "Resources", "app")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "index.js"), []byte("// entry"), 0o644))

	m := &manifest.Manifest{Version: "2.0.0"}

	artifact, err := NewZip().Make(context.Background(), dir, "app", "darwin", m)
	require.NoError(t, err)

	reader, err := zip.OpenReader(artifact)
	require.NoError(t, err)

	defer func() {
		_ = reader.Close()
	}()

	require.NotEmpty(t, reader.File)
	for _, f := range reader.File {
		require.True(t, filepath.ToSlash(f.Name)[:8] == "app.app/", "entry %s outside bundle", f.Name)
	}
}

// TestMakeMissingRootFails propagates the underlying I/O error.
func TestMakeMissingRootFails(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	m := &manifest.Manifest{Version: "1.0.0"}

	_, err := NewZip().Make(context.Background(), filepath.Join(parent, "absent"), "app", "linux", m)
	require.Error(t, err)
}
