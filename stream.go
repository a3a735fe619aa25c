// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import "context"

// Stream is a lazy pull iterator over items.
//
// Calling a Stream once yields at most one item: (item, true, nil) while
// items remain, (zero, false, nil) when exhausted, or (zero, false, err) if
// production failed. Once a Stream has returned ok=false or a non-nil
// error, further calls must keep returning ok=false.
//
// A closure-based pull iterator needs no extra dependency (the iter.Seq
// family is avoided so this package stays buildable without relying on a
// generic-iterator stdlib surface this module does not otherwise use) and
// composes the same way a generator does in a language with native
// iteration protocols.
type Stream func() (any, bool, error)

// Collect drains s entirely, returning every item it yields. Intended for
// tests and for [CompiledScript]-style callable adapters, never for
// production pipelines over a source documented as possibly infinite.
func Collect(s Stream) ([]any, error) {
	var out []any
	for {
		item, ok, err := s()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, item)
	}
}

// SliceStream returns a Stream that yields the elements of items in order.
func SliceStream(items []any) Stream {
	i := 0
	return func() (any, bool, error) {
		if i >= len(items) {
			return nil, false, nil
		}
		v := items[i]
		i++
		return v, true, nil
	}
}

// EmptyStream returns a Stream that yields nothing.
func EmptyStream() Stream {
	return func() (any, bool, error) { return nil, false, nil }
}

// Source lazily produces a sequence of items.
//
// Each call to Generate starts a fresh traversal; a Source is owned by
// exactly one pipeline at a time.
type Source interface {
	Generate(ctx context.Context) Stream
}

// SourceFunc adapts a function to the [Source] interface.
type SourceFunc func(ctx context.Context) Stream

// Generate implements [Source].
func (f SourceFunc) Generate(ctx context.Context) Stream { return f(ctx) }

// Segment lazily transforms an input sequence into an output sequence
//. Cardinality may be 1:1, 1:N, N:1, or 1:0.
//
// Resource cleanup contract: a Segment that receives a closeable resource
// as an input item and fails to process it is responsible for closing that
// resource before returning an error, so that composed pipelines do not
// leak resources on partial failure.
type Segment interface {
	// Transform consumes in lazily and returns a lazy output Stream. One
	// input item pulled must yield at most one output item ready, except
	// where an "all-at-once" segment explicitly documents bulk buffering.
	Transform(ctx context.Context, in Stream) Stream

	// ProcessesMetadata reports whether this Segment's Transform receives
	// Metadata items directly (true) or whether the execution bypasses them
	// around Transform per the §4.E contract (false, the default for most
	// segments).
	ProcessesMetadata() bool
}

// SegmentFunc adapts a function and a process-metadata flag to the
// [Segment] interface.
type SegmentFunc struct {
	Name            string
	Fn              func(ctx context.Context, in Stream) Stream
	ProcessMetadata bool
}

// Transform implements [Segment].
func (f *SegmentFunc) Transform(ctx context.Context, in Stream) Stream { return f.Fn(ctx, in) }

// ProcessesMetadata implements [Segment].
func (f *SegmentFunc) ProcessesMetadata() bool { return f.ProcessMetadata }

var _ Segment = &SegmentFunc{}
var _ Source = SourceFunc(nil)
