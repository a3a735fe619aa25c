// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import "context"

// Pipeline is an ordered composition of an optional [Source] at position 0
// followed by zero or more [Segment] values.
//
// A headed Pipeline (Source != nil) behaves as a [Source]; a headless
// Pipeline (Source == nil) behaves as a [Segment]. Both satisfy the
// invariant that pulling one item pulls at most one item through each
// stage.
type Pipeline struct {
	ctx     *Context
	source  Source
	segs    []Segment
	process bool
}

// NewPipeline builds a headed Pipeline from a Source and zero or more
// Segments, all sharing ctx.
func NewPipeline(ctx *Context, source Source, segs ...Segment) *Pipeline {
	return &Pipeline{ctx: ctx, source: source, segs: append([]Segment{}, segs...)}
}

// PipeSegments builds a headless Pipeline (no Source) from one or more
// Segments sharing ctx. A headless Pipeline must receive its input
// externally, via [*Pipeline.Transform].
func PipeSegments(ctx *Context, segs ...Segment) *Pipeline {
	return &Pipeline{ctx: ctx, segs: append([]Segment{}, segs...)}
}

// Context returns the runtime context shared by every stage of p.
func (p *Pipeline) Context() *Context { return p.ctx }

// Pipe extends p with seg, returning a new Pipeline headed the same way as
// p and sharing p's [Context]. Pipe performs no context check, since a
// Segment carries no Context of its own; [Pipeline.PipeContext] is the
// check that panics when another Context differs from p's.
func (p *Pipeline) Pipe(seg Segment) *Pipeline {
	return &Pipeline{ctx: p.ctx, source: p.source, segs: append(append([]Segment{}, p.segs...), seg)}
}

// PipeContext asserts that other shares p's Context, panicking otherwise.
// Collaborators building custom composition helpers should call this
// before wiring a foreign Segment/Source into a Pipeline.
func (p *Pipeline) PipeContext(other *Context) {
	if other != p.ctx {
		panic("talkpipe: cannot compose operations from different runtime contexts")
	}
}

// Generate implements [Source] for a headed Pipeline. It panics if p has no
// Source (a headless Pipeline is a Segment, not a Source — use Transform).
func (p *Pipeline) Generate(ctx context.Context) Stream {
	if p.source == nil {
		panic("talkpipe: Generate called on a headless Pipeline; use Transform")
	}
	s := p.source.Generate(ctx)
	for _, seg := range p.segs {
		s = applySegment(ctx, seg, s)
	}
	return s
}

// Transform implements [Segment] for a headless Pipeline: in is fed through
// every Segment in order. If p has a Source, in is ignored and the
// Pipeline's own Source supplies the initial sequence instead — this lets a
// headed Pipeline be nested as a single Segment-like stage inside an outer
// composition when needed, though the normal case is a headless Pipeline.
func (p *Pipeline) Transform(ctx context.Context, in Stream) Stream {
	s := in
	if p.source != nil {
		s = p.source.Generate(ctx)
	}
	for _, seg := range p.segs {
		s = applySegment(ctx, seg, s)
	}
	return s
}

// ProcessesMetadata implements [Segment]; a composite Pipeline reports true
// only if every stage processes metadata itself, since otherwise the
// bypass already resolved metadata handling internally.
func (p *Pipeline) ProcessesMetadata() bool {
	for _, seg := range p.segs {
		if !seg.ProcessesMetadata() {
			return false
		}
	}
	return true
}

// applySegment runs seg over s, applying the metadata bypass contract when
// seg does not process metadata itself.
//
// Every segment inside a Pipeline's chain has a downstream consumer by
// construction — if nothing else, the Pipeline's own caller — so bypassed
// metadata is always interleaved here, never dropped. A "terminal segment
// configuration (no downstream)" describes a different situation: a bare
// Segment used standalone with no Pipeline (or no further caller) around it
// at all; see [TerminalSegment] for that case.
func applySegment(ctx context.Context, seg Segment, s Stream) Stream {
	if seg.ProcessesMetadata() {
		return seg.Transform(ctx, s)
	}
	return bypassMetadata(ctx, seg, s, false)
}

var _ Source = (*Pipeline)(nil)
var _ Segment = (*Pipeline)(nil)
