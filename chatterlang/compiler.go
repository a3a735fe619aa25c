// SPDX-License-Identifier: GPL-3.0-or-later

package chatterlang

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sandialabs/talkpipe-go"
	"github.com/sandialabs/talkpipe-go/registry"
)

// CompileConfig supplies the caller-side inputs to [Compile].
type CompileConfig struct {
	// External is the external configuration map consulted for `$name`
	// resolution after const_store and before the environment.
	External map[string]any

	// EnvPrefix overrides the environment-variable prefix used for `$name`
	// resolution; defaults to "TALKPIPE" when empty, matching
	// [talkpipe.NewConfig]'s default.
	EnvPrefix string

	// Sources and Segments select which registries SourceRef/SegmentRef
	// nodes resolve against. Both default to the process-wide
	// registry.DefaultSources/DefaultSegments.
	Sources  *registry.Registry[registry.SourceConstructor]
	Segments *registry.Registry[registry.SegmentConstructor]

	// Logger is attached to the compiled [talkpipe.Script].
	Logger talkpipe.SLogger
}

// CompiledScript is the result of [Compile]: a runnable talkpipe Script
// plus the runtime Context it was built against.
type CompiledScript struct {
	Script *talkpipe.Script
	Ctx    *talkpipe.Context
}

// Compile strips comments, parses, and lowers ChatterLang source text into
// a [CompiledScript].
func Compile(src string, cfg *CompileConfig) (*CompiledScript, error) {
	if cfg == nil {
		cfg = &CompileConfig{}
	}
	if cfg.Sources == nil {
		cfg.Sources = registry.DefaultSources()
	}
	if cfg.Segments == nil {
		cfg.Segments = registry.DefaultSegments()
	}
	if cfg.EnvPrefix == "" {
		cfg.EnvPrefix = "TALKPIPE"
	}
	if cfg.Logger == nil {
		cfg.Logger = talkpipe.DefaultSLogger()
	}

	ast, err := Parse(src)
	if err != nil {
		return nil, err
	}

	ctx := talkpipe.NewContext()
	c := &compiler{cfg: cfg, ctx: ctx}

	script := talkpipe.NewScript(ctx)
	script.Logger = cfg.Logger

	for _, stmt := range ast.Stmts {
		if err := c.compileTopStmt(script, stmt); err != nil {
			return nil, err
		}
	}

	return &CompiledScript{Script: script, Ctx: ctx}, nil
}

type compiler struct {
	cfg *CompileConfig
	ctx *talkpipe.Context
}

func (c *compiler) compileTopStmt(script *talkpipe.Script, stmt Stmt) error {
	switch s := stmt.(type) {
	case *ConstDecl:
		v := literalValue(s.Literal)
		return c.ctx.AddConsts(map[string]any{s.Name: v}, false)
	case *SetDecl:
		c.ctx.SetVar(s.Name, []any{literalValue(s.Literal)})
		return nil
	case *Loop:
		loop, err := c.compileLoop(s)
		if err != nil {
			return err
		}
		script.Append(loop)
		return nil
	case *PipelineStmt:
		runnable, err := c.compilePipelineStmt(s)
		if err != nil {
			return err
		}
		script.Append(runnable)
		return nil
	default:
		return fmt.Errorf("chatterlang: unknown statement node %T", stmt)
	}
}

func (c *compiler) compileLoop(l *Loop) (talkpipe.Runnable, error) {
	inner := talkpipe.NewScript(c.ctx)
	inner.Logger = c.cfg.Logger
	for _, ps := range l.Body {
		runnable, err := c.compilePipelineStmt(ps)
		if err != nil {
			return nil, err
		}
		inner.Append(runnable)
	}
	return talkpipe.NewLoop(l.Times, inner), nil
}

// compilePipelineStmt implements spec.md §4.I steps 5-6: construct nodes
// for the source (if present) and each segment-position node, then compose
// them left-to-right into a Pipeline.
//
// A pipeline whose last stage is a bare Variable-Set (`@name` in terminal
// segment position, with nothing downstream in the same statement) is
// wrapped with [talkpipe.RunSink] rather than [talkpipe.RunPipeline]: see
// RunSink's doc comment and DESIGN.md for why spec.md §8 scenarios 2 and 3
// require this.
func (c *compiler) compilePipelineStmt(ps *PipelineStmt) (talkpipe.Runnable, error) {
	var src talkpipe.Source
	if ps.Source != nil {
		s, err := c.compileSourceRef(ps.Source)
		if err != nil {
			return nil, err
		}
		src = s
	}

	segs := make([]talkpipe.Segment, 0, len(ps.Chain))
	for _, node := range ps.Chain {
		seg, err := c.compileSegNode(node)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}

	terminalIsBareVarSet := false
	if n := len(ps.Chain); n > 0 {
		if _, ok := ps.Chain[n-1].(*VarRef); ok {
			terminalIsBareVarSet = true
		}
	}

	var p *talkpipe.Pipeline
	if src != nil {
		p = talkpipe.NewPipeline(c.ctx, src, segs...)
	} else {
		p = talkpipe.PipeSegments(c.ctx, segs...)
		if len(segs) == 0 {
			return nil, fmt.Errorf("chatterlang: empty pipeline statement")
		}
	}

	if src != nil {
		if terminalIsBareVarSet {
			return talkpipe.RunSink(p), nil
		}
		return talkpipe.RunPipeline(p), nil
	}

	// A headless pipeline statement (no source) at top level runs over an
	// empty input, so it yields nothing. AsCallable does not feed it
	// either: external input reaches a script only through the `_input`
	// variable, read as `@_input`.
	return talkpipe.RunPipeline(talkpipe.NewPipeline(c.ctx, talkpipe.SourceFunc(
		func(ctx context.Context) talkpipe.Stream { return talkpipe.EmptyStream() },
	), segs...)), nil
}

// compileSourceRef implements spec.md §4.I step 5's SourceRef case.
func (c *compiler) compileSourceRef(ref *SourceRef) (talkpipe.Source, error) {
	switch ref.Kind {
	case srcRefVar:
		return newVariableSource(c.ctx, ref.Var), nil
	case srcRefString:
		return nil, fmt.Errorf("chatterlang: bare string sources are not supported by any registered source")
	case srcRefName:
		params, err := c.resolveParams(ref.Params)
		if err != nil {
			return nil, err
		}
		ctor, err := c.cfg.Sources.Get(ref.Name)
		if err != nil {
			return nil, err
		}
		return ctor(params)
	default:
		return nil, fmt.Errorf("chatterlang: unknown source-ref kind")
	}
}

// compileSegNode implements spec.md §4.I step 5's SegmentRef/VarRef/Fork
// cases.
func (c *compiler) compileSegNode(node SegNode) (talkpipe.Segment, error) {
	switch n := node.(type) {
	case *SegmentRef:
		params, err := c.resolveParams(n.Params)
		if err != nil {
			return nil, err
		}
		ctor, err := c.cfg.Segments.Get(n.Name)
		if err != nil {
			return nil, err
		}
		return ctor(params)
	case *VarRef:
		return newVariableSetSegment(c.ctx, n.Name), nil
	case *Fork:
		return c.compileFork(n)
	default:
		return nil, fmt.Errorf("chatterlang: unknown segment node %T", node)
	}
}

func (c *compiler) compileFork(f *Fork) (talkpipe.Segment, error) {
	mode := talkpipe.Broadcast
	params, err := c.resolveParams(f.Params)
	if err != nil {
		return nil, err
	}
	if rawMode, ok := params["mode"]; ok {
		if s, ok := rawMode.(string); ok && strings.EqualFold(s, "rr") {
			mode = talkpipe.RoundRobin
		}
	}

	branches := make([]talkpipe.Segment, 0, len(f.Branches))
	for _, chain := range f.Branches {
		segs := make([]talkpipe.Segment, 0, len(chain))
		for _, node := range chain {
			seg, err := c.compileSegNode(node)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
		}
		branches = append(branches, talkpipe.PipeSegments(c.ctx, segs...))
	}
	return talkpipe.NewFork(mode, branches...), nil
}

// resolveParams implements spec.md §4.I step 4: each Param's value is
// replaced by its resolved runtime value before constructors see it.
func (c *compiler) resolveParams(params []Param) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for _, p := range params {
		v, err := c.resolveParamValue(p.Value)
		if err != nil {
			return nil, err
		}
		out[p.Key] = v
	}
	return out, nil
}

func (c *compiler) resolveParamValue(v ParamValue) (any, error) {
	switch val := v.(type) {
	case *IdentRef:
		if bound, ok := c.ctx.GetConst(val.Name); ok {
			return bound, nil
		}
		return val.Name, nil
	case *DollarRef:
		return c.resolveDollarRef(val.Name)
	case Literal:
		return literalValue(val), nil
	default:
		return nil, fmt.Errorf("chatterlang: unknown param value %T", v)
	}
}

// resolveDollarRef implements the `$name` precedence of spec.md §6 / P8:
// const_store, then external config, then PREFIX_<name> from the
// environment, else UnresolvedRef.
func (c *compiler) resolveDollarRef(name string) (any, error) {
	if v, ok := c.ctx.GetConst(name); ok {
		return v, nil
	}
	if c.cfg.External != nil {
		if v, ok := c.cfg.External[name]; ok {
			return v, nil
		}
	}
	envKey := c.cfg.EnvPrefix + "_" + name
	if v, ok := os.LookupEnv(envKey); ok {
		return v, nil
	}
	return nil, &talkpipe.UnresolvedRef{Name: name}
}

func literalValue(lit Literal) any {
	switch l := lit.(type) {
	case Number:
		return float64(l)
	case Bool:
		return bool(l)
	case String:
		return string(l)
	case Array:
		out := make([]any, len(l))
		for i, e := range l {
			out[i] = literalValue(e)
		}
		return out
	default:
		return nil
	}
}

// newVariableSource builds the "Variable-Source reading
// runtime.variable_store[name]" node spec.md §4.I step 5 describes for a
// `@x` source reference: each Generate call yields a fresh snapshot of the
// variable's current value.
func newVariableSource(ctx *talkpipe.Context, name string) talkpipe.Source {
	return talkpipe.SourceFunc(func(_ context.Context) talkpipe.Stream {
		return talkpipe.SliceStream(ctx.GetVar(name))
	})
}

// newVariableSetSegment builds the "Variable-Set segment writing into
// runtime.variable_store[name] and passing through" node spec.md §4.I step
// 5 describes for a `@x` segment reference: SetVar replaces the variable
// with the full batch of items this pipeline invocation sees, matching the
// "as-of the last complete pipeline that wrote it" semantics of spec.md §5.
func newVariableSetSegment(ctx *talkpipe.Context, name string) talkpipe.Segment {
	return &talkpipe.SegmentFunc{
		Name: "var-set:" + name,
		Fn: func(_ context.Context, in talkpipe.Stream) talkpipe.Stream {
			var collected []any
			done := false
			return func() (any, bool, error) {
				if done {
					return nil, false, nil
				}
				item, ok, err := in()
				if err != nil {
					return nil, false, err
				}
				if !ok {
					done = true
					ctx.SetVar(name, collected)
					return nil, false, nil
				}
				collected = append(collected, item)
				return item, true, nil
			}
		},
	}
}
