// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBypassPreservesMultipleMetadataOrder checks that input
// [d0, m0, d1, m1, d2] through multiple non-metadata-processing segments
// preserves m0/m1 relative order against their preceding data.
func TestBypassPreservesMultipleMetadataOrder(t *testing.T) {
	ctx := NewContext()
	m0 := NewMetadata(Record{"tag": "m0"})
	m1 := NewMetadata(Record{"tag": "m1"})
	items := []any{"d0", m0, "d1", m1, "d2"}
	src := SourceFunc(func(ctx context.Context) Stream { return SliceStream(items) })

	p := NewPipeline(ctx, src, upperSegment(), identitySegment())
	out, err := Collect(p.Generate(context.Background()))
	require.NoError(t, err)

	require.Len(t, out, 5)
	assert.Equal(t, "D0", out[0])
	assert.Equal(t, m0, out[1])
	assert.Equal(t, "D1", out[2])
	assert.Equal(t, m1, out[3])
	assert.Equal(t, "D2", out[4])
}

func TestBypassWithLeadingMetadata(t *testing.T) {
	ctx := NewContext()
	m0 := NewMetadata(Record{"tag": "leading"})
	items := []any{m0, "d0"}
	src := SourceFunc(func(ctx context.Context) Stream { return SliceStream(items) })

	p := NewPipeline(ctx, src, upperSegment(), identitySegment())
	out, err := Collect(p.Generate(context.Background()))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, m0, out[0])
	assert.Equal(t, "D0", out[1])
}

// TestMetadataProcessingSegmentOwnsPropagation covers process_metadata=true:
// the segment receives metadata directly and controls its own ordering.
func TestMetadataProcessingSegmentOwnsPropagation(t *testing.T) {
	ctx := NewContext()
	m0 := NewMetadata(Record{"tag": "m0"})
	items := []any{"d0", m0}
	src := SourceFunc(func(ctx context.Context) Stream { return SliceStream(items) })

	seg := &SegmentFunc{
		Name:            "reorder",
		ProcessMetadata: true,
		Fn: func(ctx context.Context, in Stream) Stream {
			var buffered []any
			return func() (any, bool, error) {
				for {
					if len(buffered) > 0 {
						v := buffered[0]
						buffered = buffered[1:]
						return v, true, nil
					}
					item, ok, err := in()
					if err != nil || !ok {
						return item, ok, err
					}
					if IsMetadata(item) {
						// Hold the metadata item and return it on the next pull.
						buffered = append(buffered, item)
						continue
					}
					return item, true, nil
				}
			}
		},
	}

	p := NewPipeline(ctx, src, seg)
	out, err := Collect(p.Generate(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []any{"d0", m0}, out)
}
