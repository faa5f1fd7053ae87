package hooks

import (
	"fmt"
)

// FromConfig reads the hook lists declared under the "hooks" key of the forge
// configuration block. Entries are symbolic names; declaration order is kept.
// An absent block or event yields an empty list.
func FromConfig(base map[string]any) (map[Event][]Reference, error) {
	out := make(map[Event][]Reference)

	raw, ok := base["hooks"].(map[string]any)
	if !ok {
		return out, nil
	}

	for key, value := range raw {
		event := Event(key)
		if !event.Valid() {
			return nil, fmt.Errorf("unknown lifecycle event in hooks config: %q", key)
		}

		list, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("hooks config for %s must be a list", key)
		}

		refs := make([]Reference, 0, len(list))

		for _, entry := range list {
			name, ok := entry.(string)
			if !ok || name == "" {
				return nil, fmt.Errorf("hooks config for %s contains a non-name entry", key)
			}

			refs = append(refs, Named(name))
		}

		out[event] = refs
	}

	return out, nil
}
