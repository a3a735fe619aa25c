// SPDX-License-Identifier: GPL-3.0-or-later

// Package talkpipe provides composable primitives for lazy, pull-based
// streaming pipelines.
//
// # Core Abstraction
//
// The package is built around two small interfaces:
//
//	type Source interface {
//		Generate(ctx context.Context) Stream
//	}
//
//	type Segment interface {
//		Transform(ctx context.Context, in Stream) Stream
//		ProcessesMetadata() bool
//	}
//
// A [Stream] is a pull iterator: calling it once yields at most one item.
// Pipelines compose a single optional [Source] with zero or more [Segment]
// values via [NewPipeline], [*Pipeline.Pipe] and [PipeSegments]; pulling one
// item from the result pulls at most one item through each stage.
//
// # Available Primitives
//
// Data model:
//   - [Record]: a key-addressable map with dot-path field access ([Extract], [Assign])
//   - [Metadata]: a distinguished control-signal item, carried inline but bypassed
//     by segments that do not opt in to processing it
//
// Execution:
//   - [Context]: the mutable variable store and immutable constant store shared
//     by every operation in one execution
//   - [Fork]: parallel fan-out/fan-in with broadcast or round-robin distribution
//   - [Script] and [Loop]: sequential composition of pipelines
//
// Composition utilities:
//   - [NewPipeline], [PipeSegments]: chain a Source and/or Segments into a [Pipeline]
//   - [NewFieldSegment]: wrap a per-item function as a [Segment]
//
// # Observability
//
// [Script] supports structured logging via [SLogger] (compatible with
// [log/slog]): set its Logger field to a custom [*slog.Logger] to observe
// each pipeline's start, completion and failure. By default, logging is
// disabled, and no other primitive logs. Use [NewSpanID] to tag each
// [Script] execution with a correlation id.
//
// # Cancellation
//
// This package is context-transparent: operations never modify the context
// they receive. Closing the consumer of a pipeline (or cancelling its
// context) causes the whole upstream chain, including any [Fork] branches,
// to unwind within a bounded number of yields.
//
// # Design Boundaries
//
// This package intentionally provides only the data-flow core. Registry
// lookup (package `registry`) and the ChatterLang DSL (package `chatterlang`)
// are layered on top; provider-specific segments, HTTP hosting, and
// persistence are the responsibility of collaborators.
package talkpipe
