// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScriptLoop runs a loop that doubles a shared variable three times.
func TestScriptLoop(t *testing.T) {
	ctx := NewContext()

	setN := func(varName string) Segment {
		return NewFieldSegment(FieldSegmentConfig{
			Name: "set-" + varName,
			Fn: func(v any) (any, error) {
				ctx.SetVar(varName, []any{v})
				return v, nil
			},
		})
	}

	p0 := NewPipeline(ctx, echoSource("2"), castSegment("int"), setN("n"))
	script := NewScript(ctx, RunSink(p0))

	loopBody := NewScript(ctx, RunSink(
		NewPipeline(ctx, newVariableSource(ctx, "n"), scaleSegment(2), setN("n")),
	))
	script.Append(NewLoop(3, loopBody))

	script.Append(RunPipeline(NewPipeline(ctx, newVariableSource(ctx, "n"))))

	out, err := script.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{16}, out)
}

// TestScriptVariableReuseScenario exercises variable reuse across
// statements at the Script level: the first statement's bare `| @xs;` tail is a sink and
// contributes nothing to the script's output.
func TestScriptVariableReuseScenario(t *testing.T) {
	ctx := NewContext()

	setXs := NewFieldSegment(FieldSegmentConfig{
		Fn: func(v any) (any, error) {
			ctx.AppendVar("xs", v)
			return v, nil
		},
	})

	stmt1 := NewPipeline(ctx, echoSource("a,b"), setXs)
	stmt2 := NewPipeline(ctx, newVariableSource(ctx, "xs"), upperSegment())
	stmt3 := NewPipeline(ctx, newVariableSource(ctx, "xs"), identitySegment())

	script := NewScript(ctx, RunSink(stmt1), RunPipeline(stmt2), RunPipeline(stmt3))
	out, err := script.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "B", "a", "b"}, out)
}

func TestScriptSequentialExecution(t *testing.T) {
	ctx := NewContext()
	order := []int{}
	markingSeg := func(id int) Segment {
		return NewFieldSegment(FieldSegmentConfig{
			Fn: func(v any) (any, error) {
				order = append(order, id)
				return v, nil
			},
		})
	}

	p1 := NewPipeline(ctx, echoSource("a"), markingSeg(1))
	p2 := NewPipeline(ctx, echoSource("b"), markingSeg(2))
	script := NewScript(ctx, RunPipeline(p1), RunPipeline(p2))

	out, err := script.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, out)
	assert.Equal(t, []int{1, 2}, order)
}
