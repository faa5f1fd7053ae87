package hooks

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEventsAreValid keeps the event list and Valid in sync.
func TestEventsAreValid(t *testing.T) {
	t.Parallel()

	for _, event := range Events() {
		require.True(t, event.Valid())
	}

	require.False(t, Event("afterBuild").Valid())
}

// TestResolveOrderAndPassthrough checks direct references pass through and
// order is preserved across mixed reference kinds.
func TestResolveOrderAndPassthrough(t *testing.T) {
	t.Parallel()

	var trace []string

	registry := NewRegistry()
	require.NoError(t, registry.Register("second", func(context.Context, *BuildInfo) error {
		trace = append(trace, "second")
		return nil
	}))

	refs := []Reference{
		Direct(func(context.Context, *BuildInfo) error {
			trace = append(trace, "first")
			return nil
		}),
		Named("second"),
		Direct(func(context.Context, *BuildInfo) error {
			trace = append(trace, "third")
			return nil
		}),
	}

	funcs, err := registry.Resolve(refs, t.TempDir())
	require.NoError(t, err)
	require.Len(t, funcs, 3)

	require.NoError(t, Run(context.Background(), AfterCopy, funcs, &BuildInfo{}))
	require.Equal(t, []string{"first", "second", "third"}, trace)
}

// TestResolveUnknownNameFails verifies the error identifies the missing hook.
func TestResolveUnknownNameFails(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	_, err := registry.Resolve([]Reference{Named("doesNotExist")}, t.TempDir())
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "doesNotExist")
}

// TestResolveNilListIsEmpty treats absence as an empty hook list.
func TestResolveNilListIsEmpty(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	funcs, err := registry.Resolve(nil, t.TempDir())
	require.NoError(t, err)
	require.Empty(t, funcs)
}

// TestRegisterDuplicateFails rejects double registration of a name.
func TestRegisterDuplicateFails(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	noop := func(context.Context, *BuildInfo) error { return nil }

	require.NoError(t, registry.Register("compile", noop))
	require.Error(t, registry.Register("compile", noop))
}

// TestResolveScriptFallback finds an executable script in a candidate location
// and runs it with the build environment.
func TestResolveScriptFallback(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not runnable on windows")
	}

	dir := t.TempDir()
	hookDir := filepath.Join(dir, "forge", "hooks")
	require.NoError(t, os.MkdirAll(hookDir, 0o755))

	marker := filepath.Join(dir, "ran.txt")
	script := "#!/bin/sh\necho \"$FORGE_ARCH\" > " + marker + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(hookDir, "stamp.sh"), []byte(script), 0o755))

	registry := NewRegistry()

	funcs, err := registry.Resolve([]Reference{Named("stamp")}, dir)
	require.NoError(t, err)
	require.Len(t, funcs, 1)

	info := &BuildInfo{ProjectDir: dir, Arch: "x64"}
	require.NoError(t, Run(context.Background(), PrePackage, funcs, info))

	contents, err := os.ReadFile(marker)
	require.NoError(t, err)
	require.Equal(t, "x64\n", string(contents))
}

// TestRunStopsAtFirstFailure ensures later hooks do not run after an error.
func TestRunStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	var ran []string

	funcs := []Func{
		func(context.Context, *BuildInfo) error {
			ran = append(ran, "a")
			return os.ErrPermission
		},
		func(context.Context, *BuildInfo) error {
			ran = append(ran, "b")
			return nil
		},
	}

	err := Run(context.Background(), AfterPrune, funcs, &BuildInfo{})
	require.ErrorIs(t, err, os.ErrPermission)
	require.Equal(t, []string{"a"}, ran)
}

// TestFromConfig parses declared hook names and rejects unknown events.
func TestFromConfig(t *testing.T) {
	t.Parallel()

	table, err := FromConfig(map[string]any{
		"hooks": map[string]any{
			"afterCopy":  []any{"cleanup", "compile"},
			"prePackage": []any{"assets"},
		},
	})
	require.NoError(t, err)
	require.Len(t, table[AfterCopy], 2)
	require.Equal(t, "cleanup", table[AfterCopy][0].Name)
	require.Equal(t, "compile", table[AfterCopy][1].Name)
	require.Len(t, table[PrePackage], 1)

	_, err = FromConfig(map[string]any{
		"hooks": map[string]any{"beforeTeatime": []any{"x"}},
	})
	require.Error(t, err)

	table, err = FromConfig(map[string]any{})
	require.NoError(t, err)
	require.Empty(t, table)
}
