// SPDX-License-Identifier: GPL-3.0-or-later

// Package builtins provides the small set of sources and segments needed to
// run ChatterLang scripts end-to-end: echo, cast, upper, identity, and
// scale. It registers them into the process-wide registries from an init
// function, the same eager "decorator registration on import" idiom
// database/sql uses for drivers — a collaborator need only blank-import
// this package to make its names resolvable.
package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandialabs/talkpipe-go"
	"github.com/sandialabs/talkpipe-go/registry"
	"github.com/spf13/cast"
)

func init() {
	registry.DefaultSources().Register("echo", newEcho)
	registry.DefaultSegments().Register("cast", newCast)
	registry.DefaultSegments().Register("upper", newUpper)
	registry.DefaultSegments().Register("identity", newIdentity)
	registry.DefaultSegments().Register("scale", newScale)
}

// newEcho builds a Source that emits the comma-separated items of its
// `data` parameter, in order, as strings.
func newEcho(params map[string]any) (talkpipe.Source, error) {
	raw, ok := params["data"]
	if !ok {
		return nil, fmt.Errorf("echo: missing required param %q", "data")
	}
	data := cast.ToString(raw)
	var items []any
	if data != "" {
		for _, s := range strings.Split(data, ",") {
			items = append(items, s)
		}
	}
	return talkpipe.SourceFunc(func(_ context.Context) talkpipe.Stream {
		return talkpipe.SliceStream(items)
	}), nil
}

// fieldParams reads the optional `field`/`setAs` params every builtin
// segment below accepts, so a ChatterLang author can target a nested path
// inside a [talkpipe.Record] item instead of the whole item.
func fieldParams(params map[string]any) (field, setAs string) {
	field, _ = params["field"].(string)
	setAs, _ = params["setAs"].(string)
	return field, setAs
}

// newCast builds a Segment converting each item (or field) to the type
// named by its `to` parameter: "int", "float", "string", or "bool".
func newCast(params map[string]any) (talkpipe.Segment, error) {
	to, _ := params["to"].(string)
	var convert talkpipe.FieldFunc
	switch to {
	case "int":
		convert = func(v any) (any, error) { return cast.ToIntE(v) }
	case "float":
		convert = func(v any) (any, error) { return cast.ToFloat64E(v) }
	case "string":
		convert = func(v any) (any, error) { return cast.ToStringE(v) }
	case "bool":
		convert = func(v any) (any, error) { return cast.ToBoolE(v) }
	default:
		return nil, fmt.Errorf("cast: unsupported target type %q", to)
	}
	field, setAs := fieldParams(params)
	return talkpipe.NewFieldSegment(talkpipe.FieldSegmentConfig{
		Name: "cast", Field: field, SetAs: setAs, Fn: convert,
	}), nil
}

// newUpper builds a Segment upper-casing each string item (or field).
func newUpper(params map[string]any) (talkpipe.Segment, error) {
	field, setAs := fieldParams(params)
	return talkpipe.NewFieldSegment(talkpipe.FieldSegmentConfig{
		Name: "upper", Field: field, SetAs: setAs,
		Fn: func(v any) (any, error) { return strings.ToUpper(cast.ToString(v)), nil },
	}), nil
}

// newIdentity builds a Segment passing each item through unchanged.
func newIdentity(map[string]any) (talkpipe.Segment, error) {
	return talkpipe.NewFieldSegment(talkpipe.FieldSegmentConfig{
		Name: "identity",
		Fn:   func(v any) (any, error) { return v, nil },
	}), nil
}

// newScale builds a Segment multiplying each numeric item (or field) by its
// `by` parameter, preserving whether the item was an int or a float.
func newScale(params map[string]any) (talkpipe.Segment, error) {
	by, err := cast.ToFloat64E(params["by"])
	if err != nil {
		return nil, fmt.Errorf("scale: invalid %q param: %w", "by", err)
	}
	field, setAs := fieldParams(params)
	return talkpipe.NewFieldSegment(talkpipe.FieldSegmentConfig{
		Name: "scale", Field: field, SetAs: setAs,
		Fn: func(v any) (any, error) {
			switch v.(type) {
			case int, int32, int64:
				n, _ := cast.ToIntE(v)
				return int(float64(n) * by), nil
			default:
				f, err := cast.ToFloat64E(v)
				if err != nil {
					return nil, err
				}
				return f * by, nil
			}
		},
	}), nil
}
