package hooks

import (
	"context"

	"github.com/szvest/electron-forge/internal/logger"
)

// Event is a fixed lifecycle point at which a hook list executes.
type Event string

// The full set of lifecycle events. afterCopy, afterExtract and afterPrune
// fire inside the packaging engine; the rest fire in the orchestrator.
const (
	GenerateAssets Event = "generateAssets"
	PrePackage     Event = "prePackage"
	PostPackage    Event = "postPackage"
	AfterCopy      Event = "afterCopy"
	AfterExtract   Event = "afterExtract"
	AfterPrune     Event = "afterPrune"
)

// Events returns all lifecycle events in their conventional order.
func Events() []Event {
	return []Event{GenerateAssets, PrePackage, PostPackage, AfterCopy, AfterExtract, AfterPrune}
}

// Valid reports whether e names a known lifecycle event.
func (e Event) Valid() bool {
	switch e {
	case GenerateAssets, PrePackage, PostPackage, AfterCopy, AfterExtract, AfterPrune:
		return true
	default:
		return false
	}
}

// BuildInfo is handed to every hook invocation.
type BuildInfo struct {
	// ProjectDir is the resolved project root.
	ProjectDir string
	// BuildDir is the staged build directory. Empty for events that fire
	// before staging exists.
	BuildDir string
	// Platform is the packaging target platform.
	Platform string
	// Arch is the packaging target architecture.
	Arch string
}

// Func is a single lifecycle hook. Hooks run sequentially and are awaited;
// a later hook may depend on side effects of an earlier one.
type Func func(ctx context.Context, info *BuildInfo) error

// Reference is one entry of a hook list: either a direct function or a
// symbolic name to be resolved.
type Reference struct {
	// Name is the symbolic hook name; empty for direct references.
	Name string
	// Func is the direct hook function; nil for named references.
	Func Func
}

// Named builds a reference that must be resolved by name.
func Named(name string) Reference {
	return Reference{Name: name}
}

// Direct builds a reference wrapping an already-callable hook.
func Direct(fn Func) Reference {
	return Reference{Func: fn}
}

// Run executes resolved hooks for one event in order, stopping at the first
// failure. Errors propagate unchanged.
func Run(ctx context.Context, event Event, funcs []Func, info *BuildInfo) error {
	for i, fn := range funcs {
		logger.DebugKV(ctx, "Running lifecycle hook", "event", string(event), "index", i)

		if err := fn(ctx, info); err != nil {
			return err
		}
	}

	return nil
}
