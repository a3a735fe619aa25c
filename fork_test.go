// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestForkBroadcast checks that a broadcast fork delivers every input item
// to every branch, emitting branch 0's items before branch 1's per item.
func TestForkBroadcast(t *testing.T) {
	ctx := NewContext()
	f := NewFork(Broadcast, scaleSegment(10), scaleSegment(100))
	p := NewPipeline(ctx, echoSource("1,2"), castSegment("int"), f)
	out, err := Collect(p.Generate(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []any{10, 100, 20, 200}, out)
}

// TestForkRoundRobin checks that a round-robin fork delivers input item i
// to branch i mod N only.
func TestForkRoundRobin(t *testing.T) {
	ctx := NewContext()
	f := NewFork(RoundRobin, upperSegment(), identitySegment())
	p := NewPipeline(ctx, echoSource("a,b,c,d"), f)
	out, err := Collect(p.Generate(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "b", "C", "d"}, out)
}

// TestForkBranchErrorAbortsAll asserts that one failing branch surfaces its
// error rather than silently dropping results.
func TestForkBranchErrorAbortsAll(t *testing.T) {
	ctx := NewContext()
	failing := &SegmentFunc{
		Name: "failing",
		Fn: func(ctx context.Context, in Stream) Stream {
			return func() (any, bool, error) {
				return nil, false, assert.AnError
			}
		},
	}
	f := NewFork(Broadcast, scaleSegment(1), failing)
	p := NewPipeline(ctx, echoSource("1"), castSegment("int"), f)
	_, err := Collect(p.Generate(context.Background()))
	require.Error(t, err)
}

// blockingSegment is a branch Segment that never yields on its own; it only
// returns once ctx is cancelled, honoring the cancellation contract Fork
// documents for its branches.
func blockingSegment() Segment {
	return &SegmentFunc{
		Name: "blocking",
		Fn: func(ctx context.Context, in Stream) Stream {
			return func() (any, bool, error) {
				<-ctx.Done()
				return nil, false, ctx.Err()
			}
		},
	}
}

// TestForkCancellationLeavesNoGoroutines checks that closing the consumer
// (here, cancelling the context the Fork was driven with) terminates every
// branch, including one that is blocked, before resources are released.
func TestForkCancellationLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := NewContext()
	f := NewFork(Broadcast, scaleSegment(1), blockingSegment())
	p := NewPipeline(ctx, echoSource("1"), castSegment("int"), f)

	runCtx, cancel := context.WithCancel(context.Background())
	stream := p.Generate(runCtx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = stream()
	}()
	cancel()
	<-done
}
