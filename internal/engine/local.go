package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/szvest/electron-forge/internal/hooks"
	"github.com/szvest/electron-forge/internal/logger"
	"github.com/szvest/electron-forge/internal/npm"
)

var (
	// errBundleExists is returned when the staged bundle exists and overwrite is off.
	errBundleExists = errors.New("staged bundle already exists")

	// errAsarUnsupported is returned when asar packing is requested from the local engine.
	errAsarUnsupported = errors.New("asar packing is not supported by the local engine")
)

// dirMode is used for directories created while staging.
const dirMode os.FileMode = 0o755

// Local is the built-in packaging engine: it stages the application sources
// under the output directory and drives the internal lifecycle hooks. Signing,
// installer generation and archive compression stay with external tooling.
type Local struct{}

// NewLocal returns the built-in engine.
func NewLocal() *Local {
	return &Local{}
}

// Package stages the bundle: copy sources, afterCopy hooks, prune, afterPrune
// hooks. Steps run strictly in sequence; the first failure aborts the run.
func (e *Local) Package(ctx context.Context, opts *Options) (string, error) {
	if opts.Asar {
		return "", errAsarUnsupported
	}

	buildDir := filepath.Join(opts.OutDir, fmt.Sprintf("%s-%s-%s", opts.Name, opts.Platform, opts.Arch))

	if _, err := os.Stat(buildDir); err == nil {
		if !opts.Overwrite {
			return "", fmt.Errorf("%w: %s", errBundleExists, buildDir)
		}

		if err := os.RemoveAll(buildDir); err != nil {
			return "", fmt.Errorf("remove previous bundle: %w", err)
		}
	}

	appDir := appRoot(buildDir, opts.Name, opts.Platform)

	logger.InfoKV(ctx, "Staging application sources", "from", opts.Dir, "to", appDir)

	if err := copyTree(opts.Dir, appDir, opts.OutDir); err != nil {
		return "", fmt.Errorf("stage sources: %w", err)
	}

	info := &hooks.BuildInfo{
		ProjectDir: opts.Dir,
		BuildDir:   appDir,
		Platform:   opts.Platform,
		Arch:       opts.Arch,
	}

	if err := hooks.Run(ctx, hooks.AfterCopy, opts.AfterCopy, info); err != nil {
		return "", err
	}

	if opts.Prune {
		logger.Info(ctx, "Pruning development dependencies from the staged tree")

		runner := npm.NewRunner(appDir, opts.NpmBinary)
		if err := runner.PruneProduction(ctx); err != nil {
			return "", err
		}
	}

	if err := hooks.Run(ctx, hooks.AfterPrune, opts.AfterPrune, info); err != nil {
		return "", err
	}

	return buildDir, nil
}

// appRoot returns the directory inside the bundle receiving the application
// sources: the .app bundle resources on the darwin family, a resources
// subtree elsewhere.
func appRoot(buildDir, name, platform string) string {
	switch platform {
	case "darwin", "mas":
		return filepath.Join(buildDir, name+".app", "Contents", "Resources", "app")
	default:
		return filepath.Join(buildDir, "resources", "app")
	}
}

// copyTree copies src into dst, skipping version control metadata and the
// output directory so a bundle never nests previous bundles.
func copyTree(src, dst, outDir string) error {
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}

	return filepath.WalkDir(src, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if entry.Name() == ".git" {
				return filepath.SkipDir
			}

			if abs, err := filepath.Abs(path); err == nil && abs == absOut {
				return filepath.SkipDir
			}
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		switch {
		case entry.IsDir():
			return os.MkdirAll(target, dirMode)
		case entry.Type()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}

			return os.Symlink(link, target)
		default:
			return copyFile(path, target)
		}
	})
}

// copyFile copies one regular file preserving its permissions.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
		return err
	}

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()

		return err
	}

	return out.Close()
}
