package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/szvest/electron-forge/internal/engine"
	"github.com/szvest/electron-forge/internal/forgeconfig"
	"github.com/szvest/electron-forge/internal/hooks"
	"github.com/szvest/electron-forge/internal/logger"
	"github.com/szvest/electron-forge/internal/manifest"
	"github.com/szvest/electron-forge/internal/npm"
)

var (
	// errMainInProjectRoot rejects entry points sitting directly in the
	// project root: the staged manifest rewrite would clobber the source one.
	errMainInProjectRoot = errors.New(
		"the main entry point must live in a subdirectory of the project, not the project root")

	// errMainMissing rejects manifests without a declared entry point.
	errMainMissing = errors.New("the manifest declares no main entry point")

	// errAsarUnpackDir rejects the sparse-unpack archive mode.
	errAsarUnpackDir = errors.New("sparse asar unpacking (unpackDir) is not supported")

	// errOverwriteNotBool rejects a configured overwrite that is not a boolean.
	errOverwriteNotBool = errors.New("the overwrite option must be a boolean")
)

// service drives one packaging run over a resolved project directory.
type service struct {
	// opts are the validated run options.
	opts *Options
	// dir is the resolved project root.
	dir string
	// mft is the project manifest, decoded once.
	mft *manifest.Manifest
	// cfg is the forge configuration block of the manifest.
	cfg map[string]any
	// registry resolves named hooks for this run.
	registry *hooks.Registry
	// eng performs the opaque packaging work.
	eng engine.Engine
	// packagingStarted flips once the engine reaches the prune phase,
	// for progress reporting.
	packagingStarted bool
}

// newService resolves the project, validates preconditions and assembles the
// run state. All fatal precondition failures surface here, before any
// packaging work begins.
func newService(ctx context.Context, opts *Options) (*service, error) {
	dir, err := ResolveProjectDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	mft, err := manifest.Load(dir)
	if err != nil {
		return nil, err
	}

	if err := validateEntryPoint(dir, mft); err != nil {
		return nil, err
	}

	if opts.OutDir == "" {
		opts.OutDir = filepath.Join(dir, "out")
	}

	registry := opts.Registry
	if registry == nil {
		registry = hooks.NewRegistry()
	}

	eng := opts.Engine
	if eng == nil {
		eng = engine.NewLocal()
	}

	logger.InfoKV(ctx, "Packaging project",
		"dir", dir, "platform", opts.Platform, "arch", forgeconfig.ArchLabel(opts.Arch))

	return &service{
		opts:     opts,
		dir:      dir,
		mft:      mft,
		cfg:      forgeconfig.FromManifest(mft),
		registry: registry,
		eng:      eng,
	}, nil
}

// run sequences the packaging lifecycle: assemble options, fire the
// pre-engine hooks, delegate to the engine, fire postPackage.
func (s *service) run(ctx context.Context) (string, error) {
	engineOpts, err := s.assembleEngineOptions()
	if err != nil {
		return "", err
	}

	declared, err := hooks.FromConfig(s.cfg)
	if err != nil {
		return "", err
	}

	info := &hooks.BuildInfo{
		ProjectDir: s.dir,
		Platform:   s.opts.Platform,
		Arch:       s.opts.Arch,
	}

	for _, event := range []hooks.Event{hooks.GenerateAssets, hooks.PrePackage} {
		funcs, err := s.registry.Resolve(declared[event], s.dir)
		if err != nil {
			return "", err
		}

		if err := hooks.Run(ctx, event, funcs, info); err != nil {
			return "", err
		}
	}

	buildDir, err := s.eng.Package(ctx, engineOpts)
	if err != nil {
		return "", err
	}

	postFuncs, err := s.registry.Resolve(declared[hooks.PostPackage], s.dir)
	if err != nil {
		return "", err
	}

	info.BuildDir = buildDir
	if err := hooks.Run(ctx, hooks.PostPackage, postFuncs, info); err != nil {
		return "", err
	}

	return buildDir, nil
}

// assembleEngineOptions merges engine defaults, the shared packager section
// and the runtime parameters into the engine options object, injecting the
// fixed hooks ahead of any user-declared ones.
func (s *service) assembleEngineOptions() (*engine.Options, error) {
	defaults := map[string]any{
		"asar":      false,
		"overwrite": true,
	}

	merged := forgeconfig.Merge(defaults,
		forgeconfig.Section(s.cfg, forgeconfig.SharedSectionKey, s.opts.Arch))

	merged["dir"] = s.dir
	merged["out"] = s.opts.OutDir
	merged["platform"] = s.opts.Platform
	merged["arch"] = s.opts.Arch

	asar, err := asarEnabled(merged["asar"])
	if err != nil {
		return nil, err
	}

	overwrite, ok := merged["overwrite"].(bool)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", errOverwriteNotBool, merged["overwrite"])
	}

	declared, err := hooks.FromConfig(s.cfg)
	if err != nil {
		return nil, err
	}

	afterCopy, err := s.registry.Resolve(declared[hooks.AfterCopy], s.dir)
	if err != nil {
		return nil, err
	}

	afterExtract, err := s.registry.Resolve(declared[hooks.AfterExtract], s.dir)
	if err != nil {
		return nil, err
	}

	afterPrune, err := s.registry.Resolve(declared[hooks.AfterPrune], s.dir)
	if err != nil {
		return nil, err
	}

	return &engine.Options{
		Dir:       s.dir,
		OutDir:    s.opts.OutDir,
		Name:      s.mft.Name,
		Platform:  s.opts.Platform,
		Arch:      s.opts.Arch,
		Asar:      asar,
		Overwrite: overwrite,
		Prune:     true,
		NpmBinary: s.opts.NpmBinary,
		// Fixed hooks run first; user hooks follow in declaration order.
		AfterCopy: append([]hooks.Func{
			s.cleanStagedTree,
			s.compileStagedTree,
			s.rewriteStagedManifest,
		}, afterCopy...),
		AfterExtract: afterExtract,
		AfterPrune:   append([]hooks.Func{s.rebuildNativeModules}, afterPrune...),
	}, nil
}

// asarEnabled interprets the merged asar option: a plain boolean, or a
// mapping whose sparse-unpack mode is rejected outright.
func asarEnabled(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case map[string]any:
		if _, ok := v["unpackDir"]; ok {
			return false, errAsarUnpackDir
		}

		return true, nil
	default:
		return false, nil
	}
}

// validateEntryPoint checks that the declared main module resolves to a file
// in a subdirectory of the project, never the project root itself.
func validateEntryPoint(dir string, m *manifest.Manifest) error {
	if m.Main == "" {
		return errMainMissing
	}

	main := filepath.Clean(m.Main)
	if filepath.Dir(main) == "." {
		return fmt.Errorf("%w: %s", errMainInProjectRoot, m.Main)
	}

	if _, err := os.Stat(filepath.Join(dir, main)); err != nil {
		return fmt.Errorf("entry point %s: %w", m.Main, err)
	}

	return nil
}

// hasManifest reports whether a directory carries a manifest file.
func hasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, manifest.Filename))
	return err == nil && !info.IsDir()
}

// cleanStagedTree is the first fixed afterCopy hook: it removes test fixtures
// and stray binary shims from the staged build.
func (s *service) cleanStagedTree(ctx context.Context, info *hooks.BuildInfo) error {
	logger.Debug(ctx, "Cleaning staged tree")

	for _, stale := range []string{
		filepath.Join("node_modules", ".bin"),
		"test",
		"spec",
	} {
		path := filepath.Join(info.BuildDir, stale)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("clean %s: %w", stale, err)
		}
	}

	return nil
}

// compileStagedTree is the second fixed afterCopy hook: it runs the project's
// compile script against the staged tree when one is declared.
func (s *service) compileStagedTree(ctx context.Context, info *hooks.BuildInfo) error {
	logger.Debug(ctx, "Running compile step on staged tree")

	runner := npm.NewRunner(info.BuildDir, s.opts.NpmBinary)

	return runner.RunScript(ctx, "compile")
}

// rewriteStagedManifest is the third fixed afterCopy hook: it strips the
// forge configuration block from the staged manifest and rewrites it.
func (s *service) rewriteStagedManifest(ctx context.Context, info *hooks.BuildInfo) error {
	logger.Debug(ctx, "Stripping forge configuration from staged manifest")

	staged, err := manifest.Load(info.BuildDir)
	if err != nil {
		return err
	}

	staged.StripForgeConfig()

	return manifest.Save(info.BuildDir, staged)
}

// rebuildNativeModules is the fixed afterPrune hook: it recompiles native
// modules for the packaging target and marks the packaging phase as begun.
func (s *service) rebuildNativeModules(ctx context.Context, info *hooks.BuildInfo) error {
	if !s.packagingStarted {
		s.packagingStarted = true

		logger.InfoKV(ctx, "Packaging application",
			"platform", info.Platform, "arch", forgeconfig.ArchLabel(info.Arch))
	}

	runner := npm.NewRunner(info.BuildDir, s.opts.NpmBinary)

	return runner.Rebuild(ctx, info.Platform, info.Arch)
}
