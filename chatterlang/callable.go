// SPDX-License-Identifier: GPL-3.0-or-later

package chatterlang

import (
	"context"

	"github.com/sandialabs/talkpipe-go"
)

// Callable is the adapter shape spec.md §4.I describes: "a callable object
// equivalent to a Script that, when invoked with zero or one input,
// produces a sequence of outputs."
type Callable func(ctx context.Context, input any) (any, error)

// AsCallable builds a [Callable] over cs per spec.md §4.I / §6
// (`as_callable(single_in, single_out)`):
//   - singleIn=true: the Callable accepts one value and wraps it as a
//     one-element input sequence written to the well-known "_input"
//     variable before the script runs, readable from ChatterLang as `@_input`.
//   - singleIn=false: input must be a []any, used as the initial sequence.
//   - singleOut=true: the Callable returns the first output, or nil if none.
//   - singleOut=false: the Callable returns every output as []any.
func (cs *CompiledScript) AsCallable(singleIn, singleOut bool) Callable {
	return func(ctx context.Context, input any) (any, error) {
		if singleIn {
			cs.Ctx.SetVar("_input", []any{input})
		} else if input != nil {
			items, ok := input.([]any)
			if !ok {
				items = []any{input}
			}
			cs.Ctx.SetVar("_input", items)
		}

		out, err := talkpipe.Collect(cs.Script.Run(ctx))
		if err != nil {
			return nil, err
		}
		if singleOut {
			if len(out) == 0 {
				return nil, nil
			}
			return out[0], nil
		}
		return out, nil
	}
}
