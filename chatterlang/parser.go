// SPDX-License-Identifier: GPL-3.0-or-later

package chatterlang

import (
	"strconv"

	"github.com/sandialabs/talkpipe-go"
)

// Parse lexes and parses src into a [Script] AST. Comment-stripping happens inside [lex].
func Parse(src string) (*Script, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, &talkpipe.ParseError{Pos: 0, Token: err.Error()}
	}
	p := &parser{toks: toks}
	script, err := p.parseScript()
	if err != nil {
		return nil, err
	}
	return script, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errAt(tok token) error {
	return &talkpipe.ParseError{Pos: tok.pos, Token: tok.text}
}

func (p *parser) expect(kind tokenKind, text string) (token, error) {
	t := p.cur()
	if t.kind != kind {
		return t, p.errAt(t)
	}
	if text != "" && t.text != text {
		return t, p.errAt(t)
	}
	return p.advance(), nil
}

func (p *parser) isKeyword(word string) bool {
	return p.cur().kind == tokIdent && p.cur().text == word
}

func (p *parser) parseScript() (*Script, error) {
	s := &Script{}
	for p.cur().kind != tokEOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		s.Stmts = append(s.Stmts, stmt)
	}
	return s, nil
}

func (p *parser) parseStmt() (Stmt, error) {
	switch {
	case p.isKeyword("CONST"):
		return p.parseConstOrSet(true)
	case p.isKeyword("SET"):
		return p.parseConstOrSet(false)
	case p.isKeyword("LOOP"):
		return p.parseLoop()
	default:
		return p.parsePipelineStmt()
	}
}

func (p *parser) parseConstOrSet(isConst bool) (Stmt, error) {
	p.advance() // CONST | SET
	name, err := p.expect(tokIdent, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEquals, ""); err != nil {
		return nil, err
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi, ""); err != nil {
		return nil, err
	}
	if isConst {
		return &ConstDecl{Name: name.text, Literal: lit}, nil
	}
	return &SetDecl{Name: name.text, Literal: lit}, nil
}

func (p *parser) parseLoop() (Stmt, error) {
	p.advance() // LOOP
	numTok, err := p.expect(tokNumber, "")
	if err != nil {
		return nil, err
	}
	times, err := strconv.Atoi(numTok.text)
	if err != nil {
		return nil, p.errAt(numTok)
	}
	if !p.isKeyword("TIMES") {
		return nil, p.errAt(p.cur())
	}
	p.advance()
	if _, err := p.expect(tokLBrace, ""); err != nil {
		return nil, err
	}
	var body []*PipelineStmt
	for p.cur().kind != tokRBrace {
		stmt, err := p.parsePipelineStmt()
		if err != nil {
			return nil, err
		}
		ps, ok := stmt.(*PipelineStmt)
		if !ok {
			return nil, p.errAt(p.cur())
		}
		body = append(body, ps)
	}
	if _, err := p.expect(tokRBrace, ""); err != nil {
		return nil, err
	}
	// A `;` after the closing brace (`LOOP n TIMES { ... };`) is optional.
	if p.cur().kind == tokSemi {
		p.advance()
	}
	return &Loop{Times: times, Body: body}, nil
}

// parsePipelineStmt parses `pipeline ";"` where pipeline is either
// `source "|" seg_chain` or a bare `seg_chain`.
func (p *parser) parsePipelineStmt() (Stmt, error) {
	stmt := &PipelineStmt{}
	if p.isKeyword("INPUT") || p.isKeyword("NEW") {
		src, err := p.parseSourceClause()
		if err != nil {
			return nil, err
		}
		stmt.Source = src
		if p.cur().kind == tokPipe {
			p.advance()
			chain, err := p.parseSegChain()
			if err != nil {
				return nil, err
			}
			stmt.Chain = chain
		}
	} else {
		chain, err := p.parseSegChain()
		if err != nil {
			return nil, err
		}
		stmt.Chain = chain
	}
	if _, err := p.expect(tokSemi, ""); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseSourceClause() (*SourceRef, error) {
	isNew := p.isKeyword("NEW")
	p.advance() // INPUT | NEW
	if !p.isKeyword("FROM") {
		return nil, p.errAt(p.cur())
	}
	p.advance()
	return p.parseSrcRef(isNew)
}

func (p *parser) parseSrcRef(isNew bool) (*SourceRef, error) {
	t := p.cur()
	switch t.kind {
	case tokAt:
		p.advance()
		name, err := p.expect(tokIdent, "")
		if err != nil {
			return nil, err
		}
		return &SourceRef{New: isNew, Kind: srcRefVar, Var: name.text}, nil
	case tokString:
		p.advance()
		return &SourceRef{New: isNew, Kind: srcRefString, Str: t.text}, nil
	case tokIdent:
		p.advance()
		params, err := p.maybeParseParams()
		if err != nil {
			return nil, err
		}
		return &SourceRef{New: isNew, Kind: srcRefName, Name: t.text, Params: params}, nil
	default:
		return nil, p.errAt(t)
	}
}

func (p *parser) parseSegChain() ([]SegNode, error) {
	var chain []SegNode
	seg, err := p.parseSeg()
	if err != nil {
		return nil, err
	}
	chain = append(chain, seg)
	for p.cur().kind == tokPipe {
		p.advance()
		seg, err := p.parseSeg()
		if err != nil {
			return nil, err
		}
		chain = append(chain, seg)
	}
	return chain, nil
}

func (p *parser) parseSeg() (SegNode, error) {
	t := p.cur()
	switch {
	case t.kind == tokAt:
		p.advance()
		name, err := p.expect(tokIdent, "")
		if err != nil {
			return nil, err
		}
		return &VarRef{Name: name.text}, nil
	case t.kind == tokIdent && t.text == "fork":
		return p.parseFork()
	case t.kind == tokIdent:
		p.advance()
		params, err := p.maybeParseParams()
		if err != nil {
			return nil, err
		}
		return &SegmentRef{Name: t.text, Params: params}, nil
	default:
		return nil, p.errAt(t)
	}
}

func (p *parser) parseFork() (SegNode, error) {
	p.advance() // fork
	params, err := p.maybeParseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, ""); err != nil {
		return nil, err
	}
	var branches [][]SegNode
	for {
		// Each branch is written `"|" seg_chain` in the literal scenarios
		//, a leading pipe marking "downstream of
		// the fork's input" even though a branch carries no Source of its
		// own; accept it but don't require it, since the formal grammar
		// (§4.H) only requires a bare seg_chain.
		if p.cur().kind == tokPipe {
			p.advance()
		}
		chain, err := p.parseSegChain()
		if err != nil {
			return nil, err
		}
		branches = append(branches, chain)
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen, ""); err != nil {
		return nil, err
	}
	return &Fork{Params: params, Branches: branches}, nil
}

func (p *parser) maybeParseParams() ([]Param, error) {
	if p.cur().kind != tokLBracket {
		return nil, nil
	}
	p.advance()
	var params []Param
	for {
		kv, err := p.parseKV()
		if err != nil {
			return nil, err
		}
		params = append(params, kv)
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tokRBracket, ""); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parser) parseKV() (Param, error) {
	key, err := p.expect(tokIdent, "")
	if err != nil {
		return Param{}, err
	}
	if _, err := p.expect(tokEquals, ""); err != nil {
		return Param{}, err
	}
	val, err := p.parseParamValue()
	if err != nil {
		return Param{}, err
	}
	return Param{Key: key.text, Value: val}, nil
}

func (p *parser) parseParamValue() (ParamValue, error) {
	t := p.cur()
	switch t.kind {
	case tokDollar:
		p.advance()
		name, err := p.expect(tokIdent, "")
		if err != nil {
			return nil, err
		}
		return &DollarRef{Name: name.text}, nil
	case tokIdent:
		if t.text == "true" || t.text == "false" {
			p.advance()
			return Bool(t.text == "true"), nil
		}
		p.advance()
		return &IdentRef{Name: t.text}, nil
	default:
		return p.parseLiteral()
	}
}

func (p *parser) parseLiteral() (Literal, error) {
	t := p.cur()
	switch t.kind {
	case tokNumber:
		p.advance()
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errAt(t)
		}
		return Number(f), nil
	case tokString:
		p.advance()
		return String(t.text), nil
	case tokIdent:
		if t.text == "true" || t.text == "false" {
			p.advance()
			return Bool(t.text == "true"), nil
		}
		return nil, p.errAt(t)
	case tokLBracket:
		p.advance()
		var arr Array
		if p.cur().kind != tokRBracket {
			for {
				lit, err := p.parseLiteral()
				if err != nil {
					return nil, err
				}
				arr = append(arr, lit)
				if p.cur().kind == tokComma {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(tokRBracket, ""); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, p.errAt(t)
	}
}
