// SPDX-License-Identifier: GPL-3.0-or-later

package chatterlang

import (
	"testing"

	"github.com/sandialabs/talkpipe-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinearChain(t *testing.T) {
	script, err := Parse(`INPUT FROM echo[data="1,2,3"] | cast[to=int];`)
	require.NoError(t, err)
	require.Len(t, script.Stmts, 1)
	ps, ok := script.Stmts[0].(*PipelineStmt)
	require.True(t, ok)
	require.NotNil(t, ps.Source)
	assert.Equal(t, "echo", ps.Source.Name)
	require.Len(t, ps.Chain, 1)
	seg, ok := ps.Chain[0].(*SegmentRef)
	require.True(t, ok)
	assert.Equal(t, "cast", seg.Name)
}

func TestParseLoop(t *testing.T) {
	script, err := Parse(`LOOP 3 TIMES { INPUT FROM @n | scale[by=2] | @n; };`)
	require.NoError(t, err)
	require.Len(t, script.Stmts, 1)
	loop, ok := script.Stmts[0].(*Loop)
	require.True(t, ok)
	assert.Equal(t, 3, loop.Times)
	require.Len(t, loop.Body, 1)
}

func TestParseForkWithMode(t *testing.T) {
	script, err := Parse(`INPUT FROM echo[data="a,b"] | fork[mode="rr"](| upper, | identity);`)
	require.NoError(t, err)
	ps := script.Stmts[0].(*PipelineStmt)
	require.Len(t, ps.Chain, 1)
	fork, ok := ps.Chain[0].(*Fork)
	require.True(t, ok)
	require.Len(t, fork.Branches, 2)
	assert.Equal(t, "mode", fork.Params[0].Key)
}

func TestParseConstAndDollarRef(t *testing.T) {
	script, err := Parse(`CONST n = 5; INPUT FROM echo[data=$n];`)
	require.NoError(t, err)
	require.Len(t, script.Stmts, 2)
	c, ok := script.Stmts[0].(*ConstDecl)
	require.True(t, ok)
	assert.Equal(t, "n", c.Name)
	ps := script.Stmts[1].(*PipelineStmt)
	assert.Equal(t, "data", ps.Source.Params[0].Key)
	_, ok = ps.Source.Params[0].Value.(*DollarRef)
	assert.True(t, ok)
}

func TestParseMalformedScriptReturnsParseError(t *testing.T) {
	_, err := Parse(`INPUT FROM ;`)
	require.Error(t, err)
	var pe *talkpipe.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseVariableReuseScript(t *testing.T) {
	script, err := Parse(`INPUT FROM echo[data="a,b"] | @xs; INPUT FROM @xs | upper; INPUT FROM @xs | identity;`)
	require.NoError(t, err)
	require.Len(t, script.Stmts, 3)
}
