// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// Record is the conventional higher-level item shape: a mapping from string
// keys to arbitrary values, supporting dynamic addition of new keys.
//
// The core itself imposes no schema; Record is a convenience for
// collaborators that want key-addressable items.
type Record map[string]any

// Clone returns a shallow copy of r. Field-segment convenience re-merges a copy of the original item with a computed field, so a
// shallow copy that leaves nested values shared is the right default: it
// matches "logical copy, not necessarily deep copy" used for fork broadcast
// and keeps the common case cheap.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// MissingPolicy selects what Extract does when a dot path does not resolve.
type MissingPolicy int

const (
	// MissingFail raises FieldMissing.
	MissingFail MissingPolicy = iota
	// MissingDefault returns the caller-supplied default value.
	MissingDefault
)

// Extract resolves path against item and returns the value found.
//
// path is a dot-separated string (e.g. "a.b.2.c"). "_" refers to the whole
// item. Each step is resolved, in order, by: struct field access, indexed
// access (if the step parses as an integer and the current value is a
// slice/array), mapped access (string key into a map or [Record]), and
// finally a nullary method call as a last resort.
//
// When policy is MissingDefault and resolution fails at any step, def is
// returned instead of an error.
func Extract(item any, path string, policy MissingPolicy, def any) (any, error) {
	v, err := resolvePath(item, path)
	if err != nil {
		if policy == MissingDefault {
			return def, nil
		}
		return nil, err
	}
	return v, nil
}

// ExtractOrFail is a convenience wrapper around Extract with MissingFail.
func ExtractOrFail(item any, path string) (any, error) {
	return Extract(item, path, MissingFail, nil)
}

func resolvePath(item any, path string) (any, error) {
	if path == "_" || path == "" {
		return item, nil
	}
	steps := strings.Split(path, ".")
	cur := item
	for _, step := range steps {
		next, ok := resolveStep(cur, step)
		if !ok {
			return nil, &FieldMissing{Path: path}
		}
		cur = next
	}
	return cur, nil
}

// resolveStep applies one dot-path component to cur: struct field, then
// map/slice/array index, then a nullary method call as a last resort.
func resolveStep(cur any, step string) (any, bool) {
	if cur == nil {
		return nil, false
	}

	// Mapped access (string keys) takes priority for map-like values,
	// including the common Record case, before falling back to generic
	// reflection so map[string]any lookups stay allocation-free.
	if m, ok := cur.(Record); ok {
		if v, ok := m[step]; ok {
			return v, true
		}
	}
	if m, ok := cur.(map[string]any); ok {
		if v, ok := m[step]; ok {
			return v, true
		}
	}

	rv := reflect.ValueOf(cur)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		key := reflect.ValueOf(step)
		if rv.Type().Key().Kind() == reflect.String {
			key = key.Convert(rv.Type().Key())
			v := rv.MapIndex(key)
			if v.IsValid() {
				return v.Interface(), true
			}
		}
	case reflect.Slice, reflect.Array:
		if idx, err := cast.ToIntE(step); err == nil && idx >= 0 && idx < rv.Len() {
			return rv.Index(idx).Interface(), true
		}
	case reflect.Struct:
		if f := rv.FieldByName(step); f.IsValid() && f.CanInterface() {
			return f.Interface(), true
		}
	}

	// Nullary method call as last resort, tried on the original (possibly
	// pointer) receiver so value-receiver and pointer-receiver methods are
	// both reachable.
	orig := reflect.ValueOf(cur)
	if method := orig.MethodByName(step); method.IsValid() {
		mt := method.Type()
		if mt.NumIn() == 0 && mt.NumOut() >= 1 {
			results := method.Call(nil)
			return results[0].Interface(), true
		}
	}
	return nil, false
}

// Assign writes value at path within item, creating intermediate [Record]
// containers as needed. The last path step must target an existing
// container or an addable map key.
func Assign(item any, path string, value any) error {
	if path == "_" || path == "" {
		return &PathNotAddressable{Path: path, At: "_"}
	}
	steps := strings.Split(path, ".")
	cur := item
	for i := 0; i < len(steps)-1; i++ {
		step := steps[i]
		next, ok := resolveStep(cur, step)
		if !ok {
			m, ok := cur.(Record)
			if !ok {
				return &PathNotAddressable{Path: path, At: step}
			}
			created := Record{}
			m[step] = created
			next = created
		}
		cur = next
	}
	last := steps[len(steps)-1]
	switch m := cur.(type) {
	case Record:
		m[last] = value
		return nil
	case map[string]any:
		m[last] = value
		return nil
	default:
		rv := reflect.ValueOf(cur)
		for rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		if rv.Kind() == reflect.Struct {
			f := rv.FieldByName(last)
			if f.IsValid() && f.CanSet() {
				f.Set(reflect.ValueOf(value).Convert(f.Type()))
				return nil
			}
		}
		return &PathNotAddressable{Path: path, At: last}
	}
}

// FormatItem renders item according to fieldSpec, a comma-separated list of
// "source:label" pairs ("_" means the whole item), as used by
// display/formatting segments.
func FormatItem(item any, fieldSpec string) (string, error) {
	parts := strings.Split(fieldSpec, ",")
	rendered := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		source, label := p, ""
		if idx := strings.Index(p, ":"); idx >= 0 {
			source, label = p[:idx], p[idx+1:]
		}
		val, err := ExtractOrFail(item, strings.TrimSpace(source))
		if err != nil {
			return "", err
		}
		text := cast.ToString(val)
		if text == "" {
			text = fmt.Sprintf("%v", val)
		}
		if label != "" {
			rendered = append(rendered, fmt.Sprintf("%s=%s", strings.TrimSpace(label), text))
		} else {
			rendered = append(rendered, text)
		}
	}
	return strings.Join(rendered, " "), nil
}
