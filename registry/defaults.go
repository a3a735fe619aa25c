// SPDX-License-Identifier: GPL-3.0-or-later

package registry

import "github.com/sandialabs/talkpipe-go"

// SourceConstructor builds a Source from the parameter bag a ChatterLang
// `INPUT FROM name[k=v,...]` (or `NEW FROM`) reference (or an equivalent Go
// caller) supplies.
type SourceConstructor func(params map[string]any) (talkpipe.Source, error)

// SegmentConstructor builds a Segment from the parameter bag a ChatterLang
// `| name[k=v,...]` reference (or an equivalent Go caller) supplies.
type SegmentConstructor func(params map[string]any) (talkpipe.Segment, error)

var (
	defaultSources  = New[SourceConstructor]("sources")
	defaultSegments = New[SegmentConstructor]("segments")
)

// DefaultSources returns the process-wide source registry. Packages that
// provide built-in sources (see talkpipe-go/builtins) register into it from
// an init function, the same "decorator registration on import" idiom
// database/sql uses for drivers.
func DefaultSources() *Registry[SourceConstructor] { return defaultSources }

// DefaultSegments returns the process-wide segment registry.
func DefaultSegments() *Registry[SegmentConstructor] { return defaultSegments }
