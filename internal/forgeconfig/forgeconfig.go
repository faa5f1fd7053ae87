package forgeconfig

import (
	"github.com/szvest/electron-forge/internal/manifest"
)

// Known keys inside a resolved maker configuration.
const (
	// OptionsKey is guaranteed to exist in every extracted section.
	OptionsKey = "options"

	// SharedSectionKey names the platform-wide packager section of the forge block.
	SharedSectionKey = "electronPackagerConfig"

	// archAllLabel is the fixed placeholder shown in place of the literal "all".
	archAllLabel = "all architectures"
)

// Runtime carries the values injected on top of the merged configuration.
// They always win over both the shared and the maker-specific sections.
type Runtime struct {
	// Arch is the target architecture, stored literally (including "all").
	Arch string
	// Dir is the staged source directory handed to the maker.
	Dir string
	// Out is the destination directory for produced artifacts.
	Out string
}

// FromManifest returns the forge configuration block of a manifest,
// defaulting to an empty mapping when the block is absent.
func FromManifest(m *manifest.Manifest) map[string]any {
	if m == nil || m.Forge == nil {
		return map[string]any{}
	}

	return m.Forge
}

// Section extracts the named sub-configuration from the base block.
// The result always carries an "options" mapping and an "arch" value; absent
// sections default to empty mappings. The arch value is the literal input,
// even when it is "all".
func Section(base map[string]any, key, arch string) map[string]any {
	section := map[string]any{}

	if base != nil {
		if raw, ok := base[key].(map[string]any); ok {
			section = cloneMap(raw)
		}
	}

	if _, ok := section[OptionsKey].(map[string]any); !ok {
		section[OptionsKey] = map[string]any{}
	}

	if _, ok := section["arch"]; !ok {
		section["arch"] = arch
	}

	return section
}

// ResolveMaker produces the effective configuration for one maker run:
// the shared platform section deep-merged with the maker-specific section,
// with the runtime values overlaid last.
func ResolveMaker(base map[string]any, makerKey string, rt Runtime) map[string]any {
	merged := Merge(
		Section(base, SharedSectionKey, rt.Arch),
		Section(base, makerKey, rt.Arch),
	)

	merged["arch"] = rt.Arch
	merged["dir"] = rt.Dir
	merged["out"] = rt.Out

	return merged
}

// Merge deep-merges high over low: mapping values merge recursively
// key-by-key, any other value is replaced wholesale by high.
// Neither input is mutated.
func Merge(low, high map[string]any) map[string]any {
	out := cloneMap(low)
	mergeInto(out, high)

	return out
}

// mergeInto merges src into dst in place with src taking precedence.
func mergeInto(dst, src map[string]any) {
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)

		if srcIsMap && dstIsMap {
			mergeInto(dstMap, srcMap)
			continue
		}

		if srcIsMap {
			dst[key] = cloneMap(srcMap)
			continue
		}

		dst[key] = value
	}
}

// cloneMap deep-copies a configuration mapping so merges never alias inputs.
func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		if nested, ok := value.(map[string]any); ok {
			out[key] = cloneMap(nested)
			continue
		}

		out[key] = value
	}

	return out
}

// ArchLabel renders an architecture for humans: the literal value, except
// "all", which reads better as a fixed placeholder.
func ArchLabel(arch string) string {
	if arch == "all" {
		return archAllLabel
	}

	return arch
}

// Template returns the forge configuration block injected into imported
// manifests: zip make targets per platform plus empty maker sections ready
// to be filled in.
func Template() map[string]any {
	return map[string]any{
		"make_targets": map[string]any{
			"win32":  []any{"zip"},
			"darwin": []any{"zip"},
			"linux":  []any{"zip"},
		},
		SharedSectionKey: map[string]any{},
		"zip":            map[string]any{},
	}
}
