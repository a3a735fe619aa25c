// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import "context"

// FieldFunc is a per-item function wrapped by [NewFieldSegment]. It returns
// the single value that replaces the item or is written at SetAs; multi-emit
// uses [MultiFieldFunc] instead.
type FieldFunc func(value any) (any, error)

// MultiFieldFunc is the multi-emit counterpart of [FieldFunc]: it returns a
// sequence of values, each becoming its own output item.
type MultiFieldFunc func(value any) ([]any, error)

// FieldSegmentConfig configures [NewFieldSegment].
type FieldSegmentConfig struct {
	// Field is the dot path resolved against each input item to obtain the
	// value passed to Fn. "_" (the default) passes the whole item.
	Field string

	// SetAs is the dot path written with the computed result. If empty, the
	// whole item is replaced by the computed result.
	SetAs string

	// Fn computes the new value from the extracted field. Exactly one of Fn
	// or MultiFn must be set.
	Fn FieldFunc

	// MultiFn computes a sequence of values. When set, each result is
	// merged with a copy of the original item and emitted as its own output
	// item. The copy is shallow and is made for a [Record] or
	// map[string]any item; any other item is written in place.
	MultiFn MultiFieldFunc

	// ProcessMetadata mirrors [Segment.ProcessesMetadata].
	ProcessMetadata bool

	// Name is used in [SegmentFailure] and log messages.
	Name string
}

type fieldSegment struct {
	cfg FieldSegmentConfig
}

// NewFieldSegment wraps a per-item function as a [Segment], handling dot
// path extraction, assignment, and multi-emit re-merging.
func NewFieldSegment(cfg FieldSegmentConfig) Segment {
	if cfg.Field == "" {
		cfg.Field = "_"
	}
	if cfg.Name == "" {
		cfg.Name = "field"
	}
	return &fieldSegment{cfg: cfg}
}

func (s *fieldSegment) ProcessesMetadata() bool { return s.cfg.ProcessMetadata }

func (s *fieldSegment) Transform(ctx context.Context, in Stream) Stream {
	var pending []any
	return func() (any, bool, error) {
		for {
			if len(pending) > 0 {
				v := pending[0]
				pending = pending[1:]
				return v, true, nil
			}
			item, ok, err := in()
			if err != nil || !ok {
				return nil, ok, err
			}
			value, err := ExtractOrFail(item, s.cfg.Field)
			if err != nil {
				return nil, false, &SegmentFailure{Segment: s.cfg.Name, Cause: err}
			}
			if s.cfg.MultiFn != nil {
				results, err := s.cfg.MultiFn(value)
				if err != nil {
					return nil, false, &SegmentFailure{Segment: s.cfg.Name, Cause: err}
				}
				for _, r := range results {
					merged, err := s.merge(item, r)
					if err != nil {
						return nil, false, &SegmentFailure{Segment: s.cfg.Name, Cause: err}
					}
					pending = append(pending, merged)
				}
				continue
			}
			result, err := s.cfg.Fn(value)
			if err != nil {
				return nil, false, &SegmentFailure{Segment: s.cfg.Name, Cause: err}
			}
			merged, err := s.merge(item, result)
			if err != nil {
				return nil, false, &SegmentFailure{Segment: s.cfg.Name, Cause: err}
			}
			return merged, true, nil
		}
	}
}

func (s *fieldSegment) merge(original any, result any) (any, error) {
	if s.cfg.SetAs == "" {
		return result, nil
	}
	var out any
	switch orig := original.(type) {
	case Record:
		out = orig.Clone()
	case map[string]any:
		cp := make(map[string]any, len(orig))
		for k, v := range orig {
			cp[k] = v
		}
		out = cp
	default:
		out = original
	}
	if err := Assign(out, s.cfg.SetAs, result); err != nil {
		return nil, err
	}
	return out, nil
}
