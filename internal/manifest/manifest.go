package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Filename is the canonical manifest filename inside a project directory.
const Filename = "package.json"

// defaultFileMode is used when writing the manifest back to disk.
const defaultFileMode os.FileMode = 0o644

// ErrNotFound is returned when the project has no manifest file.
var ErrNotFound = errors.New("manifest not found")

// Manifest is the project's dependency/metadata record, deserialized once and
// mutated through typed accessors. Unknown top-level fields survive a
// read-modify-write cycle through the passthrough bag.
type Manifest struct {
	// Name is the project name.
	Name string
	// Version is the project version.
	Version string
	// Main is the path to the entry module, relative to the project root.
	Main string
	// Dependencies maps runtime dependency names to version ranges.
	Dependencies map[string]string
	// DevDependencies maps development dependency names to version ranges.
	DevDependencies map[string]string
	// Forge is the nested packaging configuration stored under config.forge.
	// A nil map means the block is absent.
	Forge map[string]any
	// Babel is the legacy inline compiler configuration, kept raw.
	Babel json.RawMessage

	// extra preserves unknown top-level fields verbatim.
	extra map[string]json.RawMessage
	// configExtra preserves sibling keys of config.forge verbatim.
	configExtra map[string]json.RawMessage
}

// Load reads and decodes the manifest inside the given project directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(filepath.Clean(dir), Filename)

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}

		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &m, nil
}

// Save writes the manifest back into the given project directory.
// Last writer wins; the manifest carries no version stamp of its own.
func Save(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	data = append(data, '\n')
	path := filepath.Join(filepath.Clean(dir), Filename)

	if err := os.WriteFile(path, data, defaultFileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// UnmarshalJSON decodes the recognized top-level fields and stashes the rest
// in the passthrough bag.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}

		delete(raw, key)

		return json.Unmarshal(v, dst)
	}

	if err := take("name", &m.Name); err != nil {
		return fmt.Errorf("field name: %w", err)
	}

	if err := take("version", &m.Version); err != nil {
		return fmt.Errorf("field version: %w", err)
	}

	if err := take("main", &m.Main); err != nil {
		return fmt.Errorf("field main: %w", err)
	}

	if err := take("dependencies", &m.Dependencies); err != nil {
		return fmt.Errorf("field dependencies: %w", err)
	}

	if err := take("devDependencies", &m.DevDependencies); err != nil {
		return fmt.Errorf("field devDependencies: %w", err)
	}

	if v, ok := raw["babel"]; ok {
		m.Babel = v

		delete(raw, "babel")
	}

	if v, ok := raw["config"]; ok {
		delete(raw, "config")

		var cfg map[string]json.RawMessage
		if err := json.Unmarshal(v, &cfg); err != nil {
			return fmt.Errorf("field config: %w", err)
		}

		if forge, ok := cfg["forge"]; ok {
			delete(cfg, "forge")

			if err := json.Unmarshal(forge, &m.Forge); err != nil {
				return fmt.Errorf("field config.forge: %w", err)
			}
		}

		if len(cfg) > 0 {
			m.configExtra = cfg
		}
	}

	if len(raw) > 0 {
		m.extra = raw
	}

	return nil
}

// MarshalJSON re-assembles the document from the typed fields and the
// passthrough bag.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.extra)+8)
	for k, v := range m.extra {
		out[k] = v
	}

	put := func(key string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}

		out[key] = encoded

		return nil
	}

	if m.Name != "" {
		if err := put("name", m.Name); err != nil {
			return nil, err
		}
	}

	if m.Version != "" {
		if err := put("version", m.Version); err != nil {
			return nil, err
		}
	}

	if m.Main != "" {
		if err := put("main", m.Main); err != nil {
			return nil, err
		}
	}

	if m.Dependencies != nil {
		if err := put("dependencies", m.Dependencies); err != nil {
			return nil, err
		}
	}

	if m.DevDependencies != nil {
		if err := put("devDependencies", m.DevDependencies); err != nil {
			return nil, err
		}
	}

	if m.Babel != nil {
		out["babel"] = m.Babel
	}

	if cfg := m.assembleConfig(); len(cfg) > 0 {
		if err := put("config", cfg); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(out); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// assembleConfig rebuilds the config block from the forge map and preserved siblings.
func (m *Manifest) assembleConfig() map[string]any {
	if m.Forge == nil && len(m.configExtra) == 0 {
		return nil
	}

	cfg := make(map[string]any, len(m.configExtra)+1)
	for k, v := range m.configExtra {
		cfg[k] = v
	}

	if m.Forge != nil {
		cfg["forge"] = m.Forge
	}

	return cfg
}

// HasForgeConfig reports whether the manifest carries a config.forge block.
func (m *Manifest) HasForgeConfig() bool {
	return m.Forge != nil
}

// StripForgeConfig removes the config.forge block, keeping sibling config keys.
func (m *Manifest) StripForgeConfig() {
	m.Forge = nil
}

// RemoveDependency deletes the named package from both dependency maps and
// returns the version range it was pinned to, if any.
func (m *Manifest) RemoveDependency(name string) (string, bool) {
	var (
		ver   string
		found bool
	)

	if v, ok := m.Dependencies[name]; ok {
		ver, found = v, true

		delete(m.Dependencies, name)
	}

	if v, ok := m.DevDependencies[name]; ok {
		ver, found = v, true

		delete(m.DevDependencies, name)
	}

	return ver, found
}

// SetDevDependency pins a development dependency at the given version range.
func (m *Manifest) SetDevDependency(name, versionRange string) {
	if m.DevDependencies == nil {
		m.DevDependencies = make(map[string]string)
	}

	m.DevDependencies[name] = versionRange
}

// BabelConfig decodes the inline babel block into a generic mapping.
func (m *Manifest) BabelConfig() (map[string]any, error) {
	if m.Babel == nil {
		return nil, nil
	}

	var cfg map[string]any
	if err := json.Unmarshal(m.Babel, &cfg); err != nil {
		return nil, fmt.Errorf("decode babel config: %w", err)
	}

	return cfg, nil
}

// RemoveBabel drops the inline babel block from the manifest.
func (m *Manifest) RemoveBabel() {
	m.Babel = nil
}
