package importer

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/szvest/electron-forge/internal/manifest"
)

// installCall records one Install invocation of the fake runner.
type installCall struct {
	packages []string
	dev      bool
	exact    bool
}

// fakeRunner records package-manager calls instead of shelling out.
type fakeRunner struct {
	pruned   int
	installs []installCall
}

func (r *fakeRunner) Prune(context.Context) error {
	r.pruned++
	return nil
}

func (r *fakeRunner) Install(_ context.Context, packages []string, dev, exact bool) error {
	r.installs = append(r.installs, installCall{packages: packages, dev: dev, exact: exact})
	return nil
}

// newLegacyProject lays out a project with a legacy runtime and build tools.
// The .git directory is pre-created so git initialization is a no-op.
func newLegacyProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("node_modules/\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{
  "name": "legacy-app",
  "version": "0.0.1",
  "main": "src/index.js",
  "dependencies": {"electron": "^1.4.6", "left-pad": "^1.0.0"},
  "devDependencies": {"electron-packager": "^8.0.0"},
  "babel": {"presets": ["react"]}
}`), 0o644))

	return dir
}

// newImportService builds a non-interactive service over dir with a fake runner.
func newImportService(t *testing.T, dir string) (*service, *fakeRunner) {
	t.Helper()

	svc, err := newService(&Options{Dir: dir, OutDirName: "out"})
	require.NoError(t, err)

	runner := &fakeRunner{}
	svc.runner = runner

	return svc, runner
}

// TestNewServiceRejectsMissingDirectory covers the first fatal precondition.
func TestNewServiceRejectsMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := newService(&Options{Dir: filepath.Join(t.TempDir(), "absent")})
	require.ErrorIs(t, err, ErrProjectDirMissing)
}

// TestNewServiceRejectsMissingManifest aborts before any mutation.
func TestNewServiceRejectsMissingManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := newService(&Options{Dir: dir})
	require.ErrorIs(t, err, manifest.ErrNotFound)

	// Nothing was written into the project.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestImportStripsLegacyRuntime covers the destructive migration path:
// unconditional runtime removal, pinned replacement, template injection,
// ignore rule, compiler config migration.
func TestImportStripsLegacyRuntime(t *testing.T) {
	t.Parallel()

	dir := newLegacyProject(t)
	svc, runner := newImportService(t, dir)

	require.NoError(t, svc.run(context.Background()))

	mft, err := manifest.Load(dir)
	require.NoError(t, err)
	require.NotContains(t, mft.Dependencies, "electron")
	require.NotContains(t, mft.DevDependencies, "electron-packager")
	require.Contains(t, mft.Dependencies, "left-pad")
	require.True(t, mft.HasForgeConfig())
	require.Nil(t, mft.Babel)

	// Installed tree was pruned, fixed lists reinstalled, runtime pinned.
	require.Equal(t, 1, runner.pruned)
	require.Len(t, runner.installs, 3)

	last := runner.installs[len(runner.installs)-1]
	require.Equal(t, []string{"electron-prebuilt-compile@1.4.6"}, last.packages)
	require.True(t, last.dev)
	require.True(t, last.exact)

	// Ignore rule appended and compiler config migrated.
	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	require.Contains(t, string(ignore), "out/")

	_, err = os.Stat(filepath.Join(dir, ".compilerc"))
	require.NoError(t, err)

	// The marker was released.
	_, err = os.Stat(filepath.Join(dir, markerFilename))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestImportTwiceKeepsSingleIgnoreRule covers re-import idempotence.
func TestImportTwiceKeepsSingleIgnoreRule(t *testing.T) {
	t.Parallel()

	dir := newLegacyProject(t)

	svc, _ := newImportService(t, dir)
	require.NoError(t, svc.run(context.Background()))

	svc, runner := newImportService(t, dir)
	require.NoError(t, svc.run(context.Background()))

	// No legacy runtime left, so no reinstall happened.
	require.Zero(t, runner.pruned)
	require.Empty(t, runner.installs)

	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(ignore), "out/"))
}

// TestInteractiveDeclineAborts treats a declined confirmation as a clean exit
// with no file mutation.
func TestInteractiveDeclineAborts(t *testing.T) {
	t.Parallel()

	dir := newLegacyProject(t)

	before, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)

	svc, err := newService(&Options{
		Dir:         dir,
		Interactive: true,
		In:          strings.NewReader("n\n"),
		Out:         &strings.Builder{},
	})
	require.NoError(t, err)

	svc.runner = &fakeRunner{}

	require.ErrorIs(t, svc.run(context.Background()), ErrAborted)

	after, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

// TestPinnedRuntimeVersion normalizes ranges and falls back to latest.
func TestPinnedRuntimeVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	svc := &service{runtimeVersion: "^1.4.6"}
	require.Equal(t, "1.4.6", svc.pinnedRuntimeVersion(ctx))

	svc = &service{runtimeVersion: "~2.0.0"}
	require.Equal(t, "2.0.0", svc.pinnedRuntimeVersion(ctx))

	svc = &service{runtimeVersion: "not-a-version"}
	require.Equal(t, "latest", svc.pinnedRuntimeVersion(ctx))
}

// TestMarkerRefusesLiveProcess refuses to import while another live process
// holds the marker, and cleans up stale markers.
func TestMarkerRefusesLiveProcess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	// PID 1 is always alive.
	require.NoError(t, os.WriteFile(filepath.Join(dir, markerFilename), []byte("1"), 0o600))

	_, err := acquireMarker(ctx, dir)
	require.ErrorIs(t, err, errImportRunning)

	// Our own pid never counts as a conflict: the marker is stale.
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, markerFilename), []byte(strconv.Itoa(os.Getpid())), 0o600))

	release, err := acquireMarker(ctx, dir)
	require.NoError(t, err)

	release()

	_, err = os.Stat(filepath.Join(dir, markerFilename))
	require.ErrorIs(t, err, os.ErrNotExist)
}
