package hooks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// candidateDirs are the fixed locations searched for hook scripts,
// relative to the project root.
var candidateDirs = []string{
	filepath.Join("forge", "hooks"),
	filepath.Join("scripts", "hooks"),
}

var (
	// ErrNotFound is wrapped into resolution errors for unknown hook names.
	ErrNotFound = errors.New("hook not found")

	// errDuplicateHook rejects double registration of one name.
	errDuplicateHook = errors.New("hook already registered")

	// errEmptyReference rejects references carrying neither a name nor a function.
	errEmptyReference = errors.New("empty hook reference")
)

// Registry maps symbolic hook names to typed functions. Built-in hooks are
// registered by the orchestrators; projects contribute additional entries via
// Register or by dropping executable scripts into the candidate locations.
type Registry struct {
	byName map[string]Func
}

// NewRegistry returns an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Func)}
}

// Register binds a symbolic name to a hook function.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" || fn == nil {
		return errEmptyReference
	}

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateHook, name)
	}

	r.byName[name] = fn

	return nil
}

// Resolve turns an ordered hook list into callables, preserving input order.
// Direct references pass through unchanged. Named references are looked up in
// the registry first, then as executable scripts under the project's candidate
// locations. An unresolvable name is an error identifying that name; it is
// never silently skipped. A nil list resolves to no hooks.
func (r *Registry) Resolve(refs []Reference, projectDir string) ([]Func, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	out := make([]Func, 0, len(refs))

	for _, ref := range refs {
		switch {
		case ref.Func != nil:
			out = append(out, ref.Func)
		case ref.Name != "":
			fn, err := r.resolveName(ref.Name, projectDir)
			if err != nil {
				return nil, err
			}

			out = append(out, fn)
		default:
			return nil, errEmptyReference
		}
	}

	return out, nil
}

// resolveName looks one symbolic name up in the registry, then on disk.
func (r *Registry) resolveName(name, projectDir string) (Func, error) {
	if fn, ok := r.byName[name]; ok {
		return fn, nil
	}

	if path, ok := findHookScript(projectDir, name); ok {
		return scriptHook(path), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// findHookScript searches the fixed candidate locations for a script matching
// the hook name, with or without a shell extension.
func findHookScript(projectDir, name string) (string, bool) {
	for _, dir := range candidateDirs {
		for _, file := range []string{name, name + ".sh"} {
			path := filepath.Join(projectDir, dir, file)

			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}

			return path, true
		}
	}

	return "", false
}
