package importer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/szvest/electron-forge/internal/compilerc"
	"github.com/szvest/electron-forge/internal/forgeconfig"
	"github.com/szvest/electron-forge/internal/logger"
	"github.com/szvest/electron-forge/internal/manifest"
	"github.com/szvest/electron-forge/internal/npm"
	"github.com/szvest/electron-forge/internal/prompt"
)

const (
	// replacementRuntime supersedes the legacy runtime dependency.
	replacementRuntime = "electron-prebuilt-compile"

	// ignoreFilename is the project's ignore file the out rule is appended to.
	ignoreFilename = ".gitignore"
)

var (
	// legacyRuntimes are removed unconditionally; the detected version pins
	// the replacement runtime.
	legacyRuntimes = []string{"electron", "electron-prebuilt"}

	// legacyBuildTools are removed with per-package confirmation when
	// interactive.
	legacyBuildTools = []string{
		"electron-packager",
		"electron-builder",
		"electron-rebuild",
		"electron-compile",
		"electron-compilers",
	}

	// fixedDependencies are reinstalled after a legacy runtime was stripped.
	fixedDependencies = []string{"electron-compile"}

	// fixedDevDependencies are reinstalled after a legacy runtime was stripped.
	fixedDevDependencies = []string{
		"babel-plugin-transform-async-to-generator",
		"babel-preset-env",
		"babel-preset-react",
	}

	// staleShims are force-deleted from the installed tree before reinstalling.
	staleShims = []string{
		filepath.Join("node_modules", ".bin", "electron"),
		filepath.Join("node_modules", ".bin", "electron.cmd"),
		filepath.Join("node_modules", ".bin", "electron-prebuilt"),
		filepath.Join("node_modules", ".bin", "electron-prebuilt.cmd"),
	}
)

// depsRunner is the slice of the package-manager surface the import needs.
type depsRunner interface {
	Prune(ctx context.Context) error
	Install(ctx context.Context, packages []string, dev, exact bool) error
}

// service drives one import over a single project directory. Terminal on
// success or explicit early exit; any other failure propagates.
type service struct {
	// opts are the validated run options.
	opts *Options
	// asker poses the interactive confirmation gates.
	asker *prompt.Asker
	// runner performs dependency installs and pruning.
	runner depsRunner
	// runtimeName is the detected legacy runtime dependency, if any.
	runtimeName string
	// runtimeVersion is the version range the legacy runtime was pinned to.
	runtimeVersion string
}

// run executes the import state machine step by step. Steps are strictly
// sequential; each one completes before the next begins.
func (s *service) run(ctx context.Context) error {
	proceed, err := s.asker.Confirm(ctx,
		"This will modify the project to the forge packaging convention. Continue?")
	if err != nil {
		return err
	}

	if !proceed {
		return ErrAborted
	}

	release, err := acquireMarker(ctx, s.opts.Dir)
	if err != nil {
		return err
	}
	defer release()

	if err := npm.GitInit(ctx, s.opts.Dir, s.opts.GitBinary); err != nil {
		return err
	}

	mft, err := manifest.Load(s.opts.Dir)
	if err != nil {
		return err
	}

	if mft.HasForgeConfig() {
		proceed, err := s.asker.Confirm(ctx,
			"This project already carries forge configuration. Continue anyway?")
		if err != nil {
			return err
		}

		if !proceed {
			return ErrAborted
		}
	}

	if err := s.rewriteEntryPoint(ctx, mft); err != nil {
		return err
	}

	if err := s.stripLegacyDependencies(ctx, mft); err != nil {
		return err
	}

	if err := manifest.Save(s.opts.Dir, mft); err != nil {
		return err
	}

	if s.runtimeName != "" {
		if err := s.reinstallDependencies(ctx); err != nil {
			return err
		}
	}

	// Re-read: the installs above rewrote the manifest on disk.
	mft, err = manifest.Load(s.opts.Dir)
	if err != nil {
		return err
	}

	if !mft.HasForgeConfig() {
		logger.Info(ctx, "Injecting forge configuration template")

		mft.Forge = forgeconfig.Template()
	}

	if err := manifest.Save(s.opts.Dir, mft); err != nil {
		return err
	}

	if err := s.appendIgnoreRule(ctx); err != nil {
		return err
	}

	migrated, err := compilerc.Migrate(ctx, s.opts.Dir, mft)
	if err != nil {
		return err
	}

	if migrated {
		return manifest.Save(s.opts.Dir, mft)
	}

	return nil
}

// rewriteEntryPoint lets the user adjust the declared entry point.
// Non-interactive runs keep the declared value.
func (s *service) rewriteEntryPoint(ctx context.Context, mft *manifest.Manifest) error {
	entry, err := s.asker.Input(ctx, "Entry point of the application", mft.Main)
	if err != nil {
		return err
	}

	if entry != "" && entry != mft.Main {
		logger.InfoKV(ctx, "Rewriting entry point", "from", mft.Main, "to", entry)

		mft.Main = entry
	}

	return nil
}

// stripLegacyDependencies removes the legacy runtime unconditionally and the
// known build tools per confirmation, recording the runtime version for the
// later re-pin.
func (s *service) stripLegacyDependencies(ctx context.Context, mft *manifest.Manifest) error {
	for _, name := range legacyRuntimes {
		version, found := mft.RemoveDependency(name)
		if !found {
			continue
		}

		logger.InfoKV(ctx, "Removing legacy runtime dependency", "package", name, "version", version)

		s.runtimeName = name
		s.runtimeVersion = version
	}

	for _, name := range legacyBuildTools {
		if !dependencyDeclared(mft, name) {
			continue
		}

		proceed, err := s.asker.Confirm(ctx, fmt.Sprintf("Remove legacy build tool %q?", name))
		if err != nil {
			return err
		}

		if !proceed {
			logger.InfoKV(ctx, "Keeping legacy build tool", "package", name)
			continue
		}

		mft.RemoveDependency(name)
	}

	return nil
}

// reinstallDependencies prunes the removed packages from the installed tree,
// clears stale binary shims, and installs the fixed dependency lists plus the
// replacement runtime pinned to the detected version.
func (s *service) reinstallDependencies(ctx context.Context) error {
	if err := s.runner.Prune(ctx); err != nil {
		return err
	}

	for _, shim := range staleShims {
		if err := os.RemoveAll(filepath.Join(s.opts.Dir, shim)); err != nil {
			return fmt.Errorf("remove stale shim %s: %w", shim, err)
		}
	}

	if err := s.runner.Install(ctx, fixedDependencies, false, false); err != nil {
		return err
	}

	if err := s.runner.Install(ctx, fixedDevDependencies, true, false); err != nil {
		return err
	}

	pinned := replacementRuntime + "@" + s.pinnedRuntimeVersion(ctx)

	return s.runner.Install(ctx, []string{pinned}, true, true)
}

// pinnedRuntimeVersion normalizes the detected version range into an exact
// version for the replacement runtime.
func (s *service) pinnedRuntimeVersion(ctx context.Context) string {
	trimmed := strings.TrimLeft(s.runtimeVersion, "^~=v")

	if _, err := semver.NewVersion(trimmed); err != nil {
		logger.WarnKV(ctx, "Detected runtime version is not semantic, pinning latest",
			"package", s.runtimeName, "version", s.runtimeVersion)

		return "latest"
	}

	return trimmed
}

// appendIgnoreRule appends the output directory to the ignore file exactly
// once. A project without an ignore file is skipped gracefully.
func (s *service) appendIgnoreRule(ctx context.Context) error {
	rule := s.opts.OutDirName + "/"
	path := filepath.Join(s.opts.Dir, ignoreFilename)

	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug(ctx, "No ignore file, skipping")
			return nil
		}

		return fmt.Errorf("read ignore file: %w", err)
	}

	scanner := bufio.NewScanner(strings.NewReader(string(contents)))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == rule {
			return nil
		}
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ignore file: %w", err)
	}

	line := rule + "\n"
	if len(contents) > 0 && contents[len(contents)-1] != '\n' {
		line = "\n" + line
	}

	if _, err := file.WriteString(line); err != nil {
		_ = file.Close()

		return fmt.Errorf("append ignore rule: %w", err)
	}

	logger.InfoKV(ctx, "Added ignore rule", "rule", rule)

	return file.Close()
}

// dependencyDeclared reports whether the manifest declares the package in
// either dependency map.
func dependencyDeclared(mft *manifest.Manifest, name string) bool {
	if _, ok := mft.Dependencies[name]; ok {
		return true
	}

	_, ok := mft.DevDependencies[name]

	return ok
}
