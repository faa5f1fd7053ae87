package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  "name": "my-app",
  "version": "1.2.3",
  "main": "src/index.js",
  "license": "MIT",
  "scripts": {"start": "electron ."},
  "dependencies": {"electron-prebuilt": "^1.4.0", "left-pad": "^1.0.0"},
  "devDependencies": {"electron-packager": "^8.0.0"},
  "config": {"forge": {"make_targets": {"linux": ["zip"]}}, "other": 42},
  "babel": {"presets": ["react"]}
}`

// writeSample puts the sample manifest into a fresh project directory.
func writeSample(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Filename), []byte(sampleManifest), 0o644))

	return dir
}

// TestLoadMissing verifies ErrNotFound surfaces for projects without a manifest.
func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(t.TempDir())
	require.ErrorIs(t, err, ErrNotFound)
}

// TestLoadRecognizedFields checks typed field extraction.
func TestLoadRecognizedFields(t *testing.T) {
	t.Parallel()

	m, err := Load(writeSample(t))
	require.NoError(t, err)

	require.Equal(t, "my-app", m.Name)
	require.Equal(t, "1.2.3", m.Version)
	require.Equal(t, "src/index.js", m.Main)
	require.Equal(t, "^1.4.0", m.Dependencies["electron-prebuilt"])
	require.Equal(t, "^8.0.0", m.DevDependencies["electron-packager"])
	require.True(t, m.HasForgeConfig())
	require.NotNil(t, m.Babel)
}

// TestRoundtripPreservesUnknownFields ensures the passthrough bag keeps
// fields and config siblings this package does not model.
func TestRoundtripPreservesUnknownFields(t *testing.T) {
	t.Parallel()

	dir := writeSample(t)

	m, err := Load(dir)
	require.NoError(t, err)

	_, removed := m.RemoveDependency("electron-prebuilt")
	require.True(t, removed)
	require.NoError(t, Save(dir, m))

	contents, err := os.ReadFile(filepath.Join(dir, Filename))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(contents, &raw))

	require.Equal(t, "MIT", raw["license"])
	require.Contains(t, raw, "scripts")

	cfg, ok := raw["config"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, cfg, "forge")
	require.EqualValues(t, 42, cfg["other"])

	deps, ok := raw["dependencies"].(map[string]any)
	require.True(t, ok)
	require.NotContains(t, deps, "electron-prebuilt")
	require.Contains(t, deps, "left-pad")
}

// TestRemoveDependencyCoversBothMaps verifies removal across dependency kinds
// and that the detected version range is reported.
func TestRemoveDependencyCoversBothMaps(t *testing.T) {
	t.Parallel()

	m := &Manifest{
		Dependencies:    map[string]string{"electron": "1.4.6"},
		DevDependencies: map[string]string{"electron-builder": "^7.0.0"},
	}

	ver, ok := m.RemoveDependency("electron")
	require.True(t, ok)
	require.Equal(t, "1.4.6", ver)

	_, ok = m.RemoveDependency("electron-builder")
	require.True(t, ok)

	_, ok = m.RemoveDependency("missing")
	require.False(t, ok)

	m.SetDevDependency("electron-prebuilt-compile", "1.4.6")
	ver, ok = m.RemoveDependency("electron-prebuilt-compile")
	require.True(t, ok)
	require.Equal(t, "1.4.6", ver)
}

// TestStripForgeConfigKeepsSiblings checks the staged-manifest rewrite path.
func TestStripForgeConfigKeepsSiblings(t *testing.T) {
	t.Parallel()

	dir := writeSample(t)

	m, err := Load(dir)
	require.NoError(t, err)

	m.StripForgeConfig()
	require.False(t, m.HasForgeConfig())
	require.NoError(t, Save(dir, m))

	reloaded, err := Load(dir)
	require.NoError(t, err)
	require.False(t, reloaded.HasForgeConfig())

	contents, err := os.ReadFile(filepath.Join(dir, Filename))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(contents, &raw))

	cfg, ok := raw["config"].(map[string]any)
	require.True(t, ok)
	require.NotContains(t, cfg, "forge")
	require.Contains(t, cfg, "other")
}

// TestBabelConfig decodes and drops the inline compiler settings.
func TestBabelConfig(t *testing.T) {
	t.Parallel()

	m, err := Load(writeSample(t))
	require.NoError(t, err)

	babel, err := m.BabelConfig()
	require.NoError(t, err)
	require.Equal(t, []any{"react"}, babel["presets"])

	m.RemoveBabel()

	babel, err = m.BabelConfig()
	require.NoError(t, err)
	require.Nil(t, babel)
}
