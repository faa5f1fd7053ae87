package engine

import (
	"context"

	"github.com/szvest/electron-forge/internal/hooks"
)

// Options is the merged options object handed to a packaging engine.
// The orchestrator assembles it from the project configuration, engine
// defaults and runtime parameters; the engine treats it as read-only.
type Options struct {
	// Dir is the resolved project root to package.
	Dir string
	// OutDir is the directory receiving the staged bundle.
	OutDir string
	// Name is the application name.
	Name string
	// Platform is the packaging target platform.
	Platform string
	// Arch is the packaging target architecture.
	Arch string
	// Asar requests asar archive packing of the application sources.
	Asar bool
	// Overwrite replaces an existing staged bundle instead of failing.
	Overwrite bool
	// Prune drops development dependencies from the staged tree.
	Prune bool
	// NpmBinary is the package manager used for pruning.
	NpmBinary string

	// AfterCopy hooks fire once the application sources are staged.
	AfterCopy []hooks.Func
	// AfterExtract hooks fire after an asar archive is extracted. The local
	// engine never extracts, so these only run under engines that do.
	AfterExtract []hooks.Func
	// AfterPrune hooks fire once development dependencies are pruned.
	AfterPrune []hooks.Func
}

// Engine produces an application bundle on disk from assembled options.
// A Package call is a single opaque unit of work: it performs its own copy,
// prune and archive steps internally and invokes the options' hook lists at
// the matching internal lifecycle points.
type Engine interface {
	// Package builds the bundle and returns the staged build directory.
	Package(ctx context.Context, opts *Options) (string, error)
}
