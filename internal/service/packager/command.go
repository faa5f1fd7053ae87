package packager

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/szvest/electron-forge/internal/engine"
	"github.com/szvest/electron-forge/internal/hooks"
	"github.com/szvest/electron-forge/internal/logger"
)

// Options contains inputs for the package entry point.
type Options struct {
	// Dir is the directory to package; the actual project root may be an
	// ancestor and is resolved before packaging.
	Dir string
	// Interactive enables prompting. Packaging itself never prompts, but the
	// flag rides along to hooks through the environment of script hooks.
	Interactive bool
	// Arch is the target architecture.
	Arch string
	// Platform is the target platform.
	Platform string
	// OutDir receives the staged bundle; defaults to <dir>/out.
	OutDir string
	// NpmBinary is the package manager used for pruning and rebuilds.
	NpmBinary string
	// Engine overrides the packaging engine; defaults to the local engine.
	Engine engine.Engine
	// Registry carries project-registered hooks; a fresh registry is used
	// when nil.
	Registry *hooks.Registry
}

// Run executes the packaging workflow and returns the staged build directory.
func Run(ctx context.Context, opts *Options) (string, error) {
	ctx = logger.WithName(ctx, "forge-package")

	svc, err := newService(ctx, opts)
	if err != nil {
		return "", err
	}

	buildDir, err := svc.run(ctx)
	if err != nil {
		return "", fmt.Errorf("packaging failed: %w", err)
	}

	logger.InfoKV(ctx, "Packaging completed", "build_dir", buildDir)

	return buildDir, nil
}

// ResolveProjectDir walks up from the given directory to the nearest ancestor
// carrying a manifest. The starting directory itself wins when it has one.
func ResolveProjectDir(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if hasManifest(current) {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no manifest found in %s or any parent directory", dir)
		}

		current = parent
	}
}
