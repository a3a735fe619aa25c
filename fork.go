// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForkMode selects how a [Fork] distributes input items across branches.
type ForkMode int

const (
	// Broadcast delivers every input item to every branch. It is the zero
	// value and default mode: every branch seeing every item is the
	// least-surprising behavior for a caller that forgets to set a mode.
	Broadcast ForkMode = iota
	// RoundRobin delivers input item i to branch i mod N only.
	RoundRobin
)

// Fork runs N branches concurrently over a shared input and joins their
// outputs, preserving branch order per input item.
//
// Each branch is a [Segment]; all branches share the Pipeline's runtime
// [Context]. Branches execute as goroutines managed by an
// [golang.org/x/sync/errgroup.Group]: if any branch returns an error, the
// fork cancels every other branch's context and surfaces the first error.
// Branch goroutines run only inside a pull and have all finished when that
// pull returns, so a consumer that stops pulling leaves none behind.
// Cancelling ctx cancels every in-flight branch through the errgroup's
// derived context; the error a branch returns on cancellation is surfaced
// from the returned Stream, wrapped in [SegmentFailure].
type Fork struct {
	mode     ForkMode
	branches []Segment
	// BufferSize is handed to each branch's drain but does not limit it:
	// whatever the value, a branch's whole output for one input item is
	// collected in memory before the join emits it. There is no channel
	// between a branch and the join.
	BufferSize int
}

// NewFork builds a [Fork] over branches using mode.
func NewFork(mode ForkMode, branches ...Segment) *Fork {
	return &Fork{mode: mode, branches: append([]Segment{}, branches...)}
}

// ProcessesMetadata implements [Segment]. A Fork always processes metadata
// itself (it must decide, per mode, which branch if any sees a metadata
// item), so it never participates in the outer §4.E bypass.
func (f *Fork) ProcessesMetadata() bool { return true }

func (f *Fork) bufSize() int {
	if f.BufferSize > 0 {
		return f.BufferSize
	}
	return 1
}

// branchResult carries one branch's output items for one input item,
// preserving that branch's internal order.
type branchResult struct {
	branch int
	items  []any
	err    error
}

// Transform implements [Segment]. It buffers the (small, per-input-item)
// set of items each branch produces so that, per input item, results can be
// emitted branch 0 first, branch 1 second, ....
func (f *Fork) Transform(ctx context.Context, in Stream) Stream {
	n := len(f.branches)
	if n == 0 {
		return EmptyStream()
	}

	outQueue := make([]any, 0, n)
	inputIndex := -1

	return func() (any, bool, error) {
		for {
			if len(outQueue) > 0 {
				v := outQueue[0]
				outQueue = outQueue[1:]
				return v, true, nil
			}
			item, ok, err := in()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			inputIndex++

			results, err := f.runOnce(ctx, inputIndex, item)
			if err != nil {
				return nil, false, err
			}
			for _, r := range results {
				outQueue = append(outQueue, r.items...)
			}
			if len(outQueue) == 0 {
				continue
			}
		}
	}
}

// runOnce fans item out to the branches selected by f.mode for this input
// index, runs them concurrently via an errgroup, and returns their results
// ordered by branch index.
func (f *Fork) runOnce(ctx context.Context, inputIndex int, item any) ([]branchResult, error) {
	n := len(f.branches)
	results := make([]branchResult, n)
	group, gctx := errgroup.WithContext(ctx)

	for i, branch := range f.branches {
		i, branch := i, branch
		if f.mode == RoundRobin && i != inputIndex%n {
			continue
		}
		group.Go(func() error {
			single := SliceStream([]any{item})
			out := branch.Transform(gctx, single)
			collected, err := drainBounded(out, f.bufSize())
			if err != nil {
				return &SegmentFailure{Segment: "fork-branch", Cause: err}
			}
			results[i] = branchResult{branch: i, items: collected}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// drainBounded pulls every item out of s into one slice. bufSize is not
// used: the slice holds everything s yields, with no bound on its size.
func drainBounded(s Stream, bufSize int) ([]any, error) {
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

var _ Segment = (*Fork)(nil)
