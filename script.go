// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import "context"

// Runnable is satisfied by [Loop] and by the values [RunPipeline] and
// [RunSink] return: each produces a sequence of outputs when run against a
// shared [Context].
type Runnable interface {
	Run(ctx context.Context) Stream
}

// pipelineRunnable adapts a headed Pipeline to Runnable.
type pipelineRunnable struct{ p *Pipeline }

func (r pipelineRunnable) Run(ctx context.Context) Stream { return r.p.Generate(ctx) }

// RunPipeline wraps a headed Pipeline as a Runnable for use in a [Script].
func RunPipeline(p *Pipeline) Runnable { return pipelineRunnable{p: p} }

// sinkRunnable drains a Pipeline entirely for its side effects (writing a
// variable) without contributing any item to the Script's output stream.
type sinkRunnable struct{ p *Pipeline }

func (r sinkRunnable) Run(ctx context.Context) Stream {
	done := false
	return func() (any, bool, error) {
		if done {
			return nil, false, nil
		}
		done = true
		if _, err := Collect(r.p.Generate(ctx)); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
}

// RunSink wraps a headed Pipeline so it is fully consumed for its side
// effects but contributes nothing to the Script's output stream.
//
// The ChatterLang compiler (package chatterlang) uses this for any pipeline
// statement whose last stage is a bare Variable-Set (`| @name;` with
// nothing following): a Variable-Set segment ordinarily just writes its
// variable and passes items through unchanged, which is the behavior
// [RunPipeline] gives when `@name` has a downstream segment in the same
// pipeline. When `@name` is itself the pipeline's last stage, though, its
// emitted items are not part of the script's visible output — this package
// resolves that distinction by treating a terminal bare Variable-Set as a
// sink. See DESIGN.md.
func RunSink(p *Pipeline) Runnable { return sinkRunnable{p: p} }

// Script is an ordered list of Pipelines and Loops, executed left-to-right;
// it produces a flat sequence of final outputs concatenated in order.
type Script struct {
	ctx       *Context
	runnables []Runnable
	Logger    SLogger
}

// NewScript builds a Script over ctx. Logger defaults to a no-op logger;
// set it to observe per-pipeline lifecycle events.
func NewScript(ctx *Context, runnables ...Runnable) *Script {
	return &Script{ctx: ctx, runnables: append([]Runnable{}, runnables...), Logger: DefaultSLogger()}
}

// Context returns the Script's shared runtime Context.
func (s *Script) Context() *Context { return s.ctx }

// Append adds a Runnable to the end of the Script.
func (s *Script) Append(r Runnable) { s.runnables = append(s.runnables, r) }

// Run executes every Runnable in order, each one fully consumed before the
// next begins, and returns their concatenated outputs
// as one lazy Stream.
func (s *Script) Run(ctx context.Context) Stream {
	idx := 0
	var cur Stream
	return func() (any, bool, error) {
		for {
			if cur == nil {
				if idx >= len(s.runnables) {
					return nil, false, nil
				}
				s.Logger.Info("scriptPipelineStart", "index", idx)
				cur = s.runnables[idx].Run(ctx)
			}
			item, ok, err := cur()
			if err != nil {
				s.Logger.Info("scriptPipelineError", "index", idx, "err", err)
				return nil, false, err
			}
			if !ok {
				s.Logger.Info("scriptPipelineDone", "index", idx)
				cur = nil
				idx++
				continue
			}
			return item, true, nil
		}
	}
}

// RunAll is a convenience that drains Run entirely into a slice.
func (s *Script) RunAll(ctx context.Context) ([]any, error) {
	return Collect(s.Run(ctx))
}

// Loop executes an inner [Script] Times times sequentially, concatenating
// outputs.
type Loop struct {
	Times int
	Inner *Script
}

// NewLoop builds a Loop running inner Times times.
func NewLoop(times int, inner *Script) *Loop {
	return &Loop{Times: times, Inner: inner}
}

// Run implements [Runnable].
func (l *Loop) Run(ctx context.Context) Stream {
	iteration := 0
	var cur Stream
	return func() (any, bool, error) {
		for {
			if cur == nil {
				if iteration >= l.Times {
					return nil, false, nil
				}
				cur = l.Inner.Run(ctx)
			}
			item, ok, err := cur()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				cur = nil
				iteration++
				continue
			}
			return item, true, nil
		}
	}
}

var _ Runnable = (*Loop)(nil)
var _ Runnable = pipelineRunnable{}
