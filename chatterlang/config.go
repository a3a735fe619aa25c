// SPDX-License-Identifier: GPL-3.0-or-later

package chatterlang

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfigYAML reads a YAML document at path into a map suitable for
// [CompileConfig.External] — ChatterLang scripts commonly ship alongside a
// sibling YAML file supplying the external configuration tier of the
// `$name` resolution order.
func LoadConfigYAML(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfigYAML(raw)
}

// ParseConfigYAML decodes a YAML document's top-level mapping into
// map[string]any, converting nested map[any]any values (as yaml.v3 decodes
// untyped mappings) to map[string]any so external config behaves
// predictably under [DollarRef] resolution and JSON-like collaborator code.
func ParseConfigYAML(raw []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return normalizeYAML(doc).(map[string]any), nil
}

func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[toString(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = normalizeYAML(vv)
		}
		return out
	default:
		return v
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
