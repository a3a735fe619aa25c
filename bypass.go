// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import "context"

// TerminalSegment wraps seg so that, when run with no downstream consumer
// at all (a "terminal segment configuration"), metadata items it bypasses
// are dropped instead of interleaved into the
// output. Ordinary segments composed into a [Pipeline] never need this —
// the Pipeline's own caller is always the downstream consumer, so
// [Pipeline.Generate]/[Pipeline.Transform] always interleave. Use
// TerminalSegment only when invoking a Segment directly, detached from any
// Pipeline, where bypassed metadata would otherwise have nowhere to go.
func TerminalSegment(seg Segment) Segment {
	if seg.ProcessesMetadata() {
		return seg
	}
	return &terminalSegment{seg: seg}
}

type terminalSegment struct{ seg Segment }

func (t *terminalSegment) Transform(ctx context.Context, in Stream) Stream {
	return bypassMetadata(ctx, t.seg, in, true)
}

func (t *terminalSegment) ProcessesMetadata() bool { return t.seg.ProcessesMetadata() }

var _ Segment = (*terminalSegment)(nil)

// bypassMetadata implements the metadata bypass contract for a Segment
// constructed with process_metadata=false.
//
// It follows the "tagged re-merge" strategy: the
// input is split into a data-only stream (fed to seg.Transform) and a
// pending FIFO of metadata items, each tagged with the index of the data
// item it preceded. When seg.Transform yields its n-th output, this driver
// first emits any pending metadata whose tag is below n, preserving each
// metadata item's relative position to the data that preceded it in the
// input. When terminal is true (no downstream
// consumer), metadata is dropped instead of interleaved.
//
// This embodies, in ordinary Go control flow, a driver object that owns two
// queues (data in, metadata pending) and a one-step transformer: Go has no
// native stackful coroutines, so rather than spin a goroutine per segment
// (which would need its own cancellation plumbing) the driver inlines the
// two-queue bookkeeping into a single pull-driven closure.
func bypassMetadata(ctx context.Context, seg Segment, in Stream, terminal bool) Stream {
	type pendingMeta struct {
		afterCount int
		item       Metadata
	}

	var pending []pendingMeta
	dataCount := 0
	inputDone := false
	var inputErr error

	dataStream := func() (any, bool, error) {
		for {
			item, ok, err := in()
			if err != nil {
				inputErr = err
				inputDone = true
				return nil, false, err
			}
			if !ok {
				inputDone = true
				return nil, false, nil
			}
			if IsMetadata(item) {
				pending = append(pending, pendingMeta{afterCount: dataCount, item: item.(Metadata)})
				continue
			}
			dataCount++
			return item, true, nil
		}
	}

	out := seg.Transform(ctx, dataStream)
	outCount := 0
	var flushed []any
	done := false

	return func() (any, bool, error) {
		for {
			if len(flushed) > 0 {
				v := flushed[0]
				flushed = flushed[1:]
				return v, true, nil
			}
			if done {
				return nil, false, inputErr
			}
			item, ok, err := out()
			if err != nil {
				done = true
				return nil, false, err
			}
			if !ok {
				done = true
				if terminal {
					return nil, false, inputErr
				}
				// Flush any metadata still pending (e.g. trailing metadata
				// after the last data item) before signalling exhaustion.
				for _, pm := range pending {
					flushed = append(flushed, pm.item)
				}
				pending = nil
				if len(flushed) > 0 {
					continue
				}
				return nil, false, inputErr
			}
			outCount++
			if terminal {
				return item, true, nil
			}
			// Emit any metadata items that preceded the data item just
			// produced, in order, then the data item itself.
			var toEmit []any
			rest := pending[:0]
			for _, pm := range pending {
				if pm.afterCount < outCount {
					toEmit = append(toEmit, pm.item)
				} else {
					rest = append(rest, pm)
				}
			}
			pending = rest
			toEmit = append(toEmit, item)
			flushed = append(flushed, toEmit...)
			continue
		}
	}
}
