package maker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/szvest/electron-forge/internal/engine"
	"github.com/szvest/electron-forge/internal/forgeconfig"
	"github.com/szvest/electron-forge/internal/hooks"
	"github.com/szvest/electron-forge/internal/logger"
	"github.com/szvest/electron-forge/internal/manifest"
	"github.com/szvest/electron-forge/internal/service/packager"
)

// makeTargetsKey selects the per-platform target lists in the forge block.
const makeTargetsKey = "make_targets"

// defaultTargets is used when the forge block names no targets for the platform.
var defaultTargets = []string{"zip"}

// errUnknownTarget rejects a configured target no maker implements.
var errUnknownTarget = errors.New("unknown make target")

// Options contains inputs for the make entry point.
type Options struct {
	// Dir is the directory to build; the project root is resolved from it.
	Dir string
	// Platform is the target platform.
	Platform string
	// Arch is the target architecture.
	Arch string
	// OutDir receives the staged bundle; defaults to <dir>/out.
	OutDir string
	// NpmBinary is the package manager used for pruning and rebuilds.
	NpmBinary string
	// Engine overrides the packaging engine; defaults to the local engine.
	Engine engine.Engine
	// Registry carries project-registered hooks.
	Registry *hooks.Registry
	// Targets overrides the configured target list when non-empty.
	Targets []string
}

// Run packages the project and archives the staged build for every requested
// target, returning the artifact paths in target order.
func Run(ctx context.Context, opts *Options) ([]string, error) {
	ctx = logger.WithName(ctx, "forge-make")

	dir, err := packager.ResolveProjectDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	// Read before packaging: the staged copy has its forge block stripped.
	mft, err := manifest.Load(dir)
	if err != nil {
		return nil, err
	}

	buildDir, err := packager.Run(ctx, &packager.Options{
		Dir:       dir,
		Arch:      opts.Arch,
		Platform:  opts.Platform,
		OutDir:    opts.OutDir,
		NpmBinary: opts.NpmBinary,
		Engine:    opts.Engine,
		Registry:  opts.Registry,
	})
	if err != nil {
		return nil, err
	}

	base := forgeconfig.FromManifest(mft)

	targets := opts.Targets
	if len(targets) == 0 {
		targets = targetsFor(base, opts.Platform)
	}

	runtime := forgeconfig.Runtime{
		Arch: opts.Arch,
		Dir:  buildDir,
		Out:  filepath.Join(filepath.Dir(buildDir), makeDirName),
	}

	artifacts := make([]string, 0, len(targets))

	for _, target := range targets {
		resolved := forgeconfig.ResolveMaker(base, target, runtime)
		logger.DebugKV(ctx, "Resolved maker configuration",
			"target", target, "options", resolved[forgeconfig.OptionsKey])

		switch target {
		case "zip":
			artifact, err := NewZip().Make(ctx, buildDir, mft.Name, opts.Platform, mft)
			if err != nil {
				return nil, fmt.Errorf("make %s: %w", target, err)
			}

			artifacts = append(artifacts, artifact)
		default:
			return nil, fmt.Errorf("%w: %s", errUnknownTarget, target)
		}
	}

	logger.InfoKV(ctx, "Make completed",
		"targets", targets, "architecture", forgeconfig.ArchLabel(opts.Arch))

	return artifacts, nil
}

// targetsFor reads the configured target list for one platform, falling back
// to the default list when the block names none.
func targetsFor(base map[string]any, platform string) []string {
	block, ok := base[makeTargetsKey].(map[string]any)
	if !ok {
		return defaultTargets
	}

	raw, ok := block[platform].([]any)
	if !ok {
		return defaultTargets
	}

	targets := make([]string, 0, len(raw))

	for _, entry := range raw {
		if name, ok := entry.(string); ok {
			targets = append(targets, name)
		}
	}

	if len(targets) == 0 {
		return defaultTargets
	}

	return targets
}
