package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/szvest/electron-forge/internal/logger"
	"github.com/szvest/electron-forge/internal/manifest"
	"github.com/szvest/electron-forge/internal/npm"
	"github.com/szvest/electron-forge/internal/prompt"
)

// Options contains inputs for the import entry point.
type Options struct {
	// Dir is the existing project directory to import.
	Dir string
	// Interactive enables confirmation prompts; non-interactive runs always
	// proceed, including destructive dependency removal.
	Interactive bool
	// In supplies prompt replies; defaults to os.Stdin.
	In io.Reader
	// Out receives prompt questions; defaults to os.Stdout.
	Out io.Writer
	// NpmBinary is the package manager used for pruning and installs.
	NpmBinary string
	// GitBinary is the git executable used to initialize the repository.
	GitBinary string
	// OutDirName is the output directory name appended to the ignore file.
	OutDirName string
}

var (
	// ErrProjectDirMissing is the fatal precondition for an absent directory.
	ErrProjectDirMissing = errors.New("project directory does not exist")

	// ErrAborted marks a user-declined confirmation. It is an intentional
	// early exit, not a failure.
	ErrAborted = errors.New("import aborted by user")
)

// Run executes the import workflow. A user declining a confirmation returns
// ErrAborted; callers treat it as a clean exit.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithKV(logger.WithName(ctx, "forge-import"), "dir", opts.Dir)

	svc, err := newService(opts)
	if err != nil {
		return err
	}

	if err := svc.run(ctx); err != nil {
		if errors.Is(err, ErrAborted) {
			logger.Info(ctx, "Import cancelled")
			return err
		}

		return fmt.Errorf("import failed: %w", err)
	}

	logger.Info(ctx, "Import completed successfully")

	return nil
}

// newService validates the fatal preconditions and assembles the run state.
// No file is touched before both checks pass.
func newService(opts *Options) (*service, error) {
	info, err := os.Stat(opts.Dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrProjectDirMissing, opts.Dir)
	}

	if _, err := manifest.Load(opts.Dir); err != nil {
		return nil, err
	}

	in := opts.In
	if in == nil {
		in = os.Stdin
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if opts.OutDirName == "" {
		opts.OutDirName = "out"
	}

	return &service{
		opts:   opts,
		asker:  prompt.New(in, out, opts.Interactive),
		runner: npm.NewRunner(opts.Dir, opts.NpmBinary),
	}, nil
}
