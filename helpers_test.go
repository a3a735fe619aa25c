// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import (
	"context"
	"strings"

	"github.com/spf13/cast"
)

// countingSource yields the integers [0, n) and records, via the counter
// callback, how many items it actually produced — used to test laziness.
func countingSource(n int, counter func()) Source {
	return SourceFunc(func(ctx context.Context) Stream {
		i := 0
		return func() (any, bool, error) {
			if i >= n {
				return nil, false, nil
			}
			v := i
			i++
			if counter != nil {
				counter()
			}
			return v, true, nil
		}
	})
}

func upperSegment() Segment {
	return NewFieldSegment(FieldSegmentConfig{
		Name: "upper",
		Fn: func(v any) (any, error) {
			return strings.ToUpper(cast.ToString(v)), nil
		},
	})
}

func identitySegment() Segment {
	return NewFieldSegment(FieldSegmentConfig{
		Name: "identity",
		Fn:   func(v any) (any, error) { return v, nil },
	})
}

func scaleSegment(by int) Segment {
	return NewFieldSegment(FieldSegmentConfig{
		Name: "scale",
		Fn: func(v any) (any, error) {
			return cast.ToInt(v) * by, nil
		},
	})
}

func castSegment(to string) Segment {
	return NewFieldSegment(FieldSegmentConfig{
		Name: "cast",
		Fn: func(v any) (any, error) {
			switch to {
			case "int":
				return cast.ToIntE(v)
			case "string":
				return cast.ToStringE(v)
			default:
				return v, nil
			}
		},
	})
}

func echoSource(csv string) Source {
	parts := strings.Split(csv, ",")
	items := make([]any, len(parts))
	for i, p := range parts {
		items[i] = p
	}
	return SourceFunc(func(ctx context.Context) Stream {
		return SliceStream(items)
	})
}
