package compilerc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/szvest/electron-forge/internal/forgeconfig"
	"github.com/szvest/electron-forge/internal/logger"
	"github.com/szvest/electron-forge/internal/manifest"
)

const (
	// Filename is the new-format compiler sidecar document.
	Filename = ".compilerc"

	// LegacySidecar is the legacy compiler sidecar this package migrates from.
	LegacySidecar = ".babelrc"

	// JavaScriptMime keys the migrated settings inside the sidecar document.
	JavaScriptMime = "application/javascript"

	// fileMode is used when writing the sidecar.
	fileMode os.FileMode = 0o644
)

// Migrate moves legacy compiler configuration — the manifest's inline babel
// block or a .babelrc sidecar — into the .compilerc document, merging with an
// existing .compilerc rather than overwriting it. The inline manifest block is
// stripped on success; the caller persists the manifest. Reports whether a
// migration happened.
func Migrate(ctx context.Context, dir string, m *manifest.Manifest) (bool, error) {
	legacy, err := legacyConfig(dir, m)
	if err != nil {
		return false, err
	}

	if legacy == nil {
		return false, nil
	}

	existing, err := load(dir)
	if err != nil {
		return false, err
	}

	merged := forgeconfig.Merge(existing, map[string]any{JavaScriptMime: legacy})

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", Filename, err)
	}

	data = append(data, '\n')

	path := filepath.Join(dir, Filename)
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return false, fmt.Errorf("write %s: %w", Filename, err)
	}

	m.RemoveBabel()

	logger.InfoKV(ctx, "Migrated legacy compiler configuration", "path", path)

	return true, nil
}

// legacyConfig finds the legacy compiler settings: the inline manifest block
// wins over the sidecar file.
func legacyConfig(dir string, m *manifest.Manifest) (map[string]any, error) {
	inline, err := m.BabelConfig()
	if err != nil {
		return nil, err
	}

	if inline != nil {
		return inline, nil
	}

	contents, err := os.ReadFile(filepath.Join(dir, LegacySidecar))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read %s: %w", LegacySidecar, err)
	}

	var cfg map[string]any
	if err := json.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", LegacySidecar, err)
	}

	return cfg, nil
}

// load reads an existing sidecar document, defaulting to an empty mapping.
func load(dir string) (map[string]any, error) {
	contents, err := os.ReadFile(filepath.Join(dir, Filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}

		return nil, fmt.Errorf("read %s: %w", Filename, err)
	}

	var cfg map[string]any
	if err := json.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", Filename, err)
	}

	return cfg, nil
}
