// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSegmentSetAs(t *testing.T) {
	seg := NewFieldSegment(FieldSegmentConfig{
		Field: "name",
		SetAs: "greeting",
		Fn: func(v any) (any, error) {
			return "hello " + v.(string), nil
		},
	})

	in := SliceStream([]any{Record{"name": "ada"}})
	out, err := Collect(seg.Transform(context.Background(), in))
	require.NoError(t, err)
	require.Len(t, out, 1)

	rec := out[0].(Record)
	assert.Equal(t, "ada", rec["name"])
	assert.Equal(t, "hello ada", rec["greeting"])
}

func TestFieldSegmentMultiEmit(t *testing.T) {
	seg := NewFieldSegment(FieldSegmentConfig{
		Field: "csv",
		SetAs: "value",
		MultiFn: func(v any) ([]any, error) {
			return []any{"x", "y"}, nil
		},
	})

	in := SliceStream([]any{Record{"csv": "x,y"}})
	out, err := Collect(seg.Transform(context.Background(), in))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "x", out[0].(Record)["value"])
	assert.Equal(t, "y", out[1].(Record)["value"])
}

func TestFieldSegmentErrorWrapsAsSegmentFailure(t *testing.T) {
	seg := NewFieldSegment(FieldSegmentConfig{
		Name: "boom",
		Fn:   func(v any) (any, error) { return nil, assert.AnError },
	})
	in := SliceStream([]any{"x"})
	_, err := Collect(seg.Transform(context.Background(), in))
	require.Error(t, err)
	var sf *SegmentFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, "boom", sf.Segment)
}
