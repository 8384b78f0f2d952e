package parser

import (
	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/lexer"
)

func (p *Parser) parseIf() (*ast.If, error) {
	start := p.cur()
	p.advance() // if
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.expectIndentedBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.If{N: p.nodeOf(start), Condition: cond, Body: body}
	for p.atAnyOf(kwElif) {
		p.advance()
		elifCond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		elifBody, err := p.expectIndentedBlock()
		if err != nil {
			return nil, err
		}
		node.Elifs = append(node.Elifs, ast.ElifClause{Condition: elifCond, Body: elifBody})
	}
	if p.atAnyOf(kwElse) {
		p.advance()
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		elseBody, err := p.expectIndentedBlock()
		if err != nil {
			return nil, err
		}
		node.Else = elseBody
	}
	return node, nil
}

func (p *Parser) parseWhile() (*ast.While, error) {
	start := p.cur()
	p.advance() // while
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.expectIndentedBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{N: p.nodeOf(start), Condition: cond, Body: body}, nil
}

func (p *Parser) parseRepeat() (*ast.Repeat, error) {
	start := p.cur()
	p.advance() // repeat
	count, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.expectIndentedBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Repeat{N: p.nodeOf(start), Count: count, Body: body}, nil
}

// parseMatch parses `match VALUE:` followed by a block of `case PATTERN
// [if GUARD]:` arms and an optional bare `else:` arm.
func (p *Parser) parseMatch() (*ast.Match, error) {
	start := p.cur()
	p.advance() // match
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, err
	}
	node := &ast.Match{N: p.nodeOf(start), Value: val}
	for !p.at(lexer.DEDENT) && !p.at(lexer.EOF) {
		if p.at(lexer.NEWLINE) {
			p.advance()
			continue
		}
		if p.atAnyOf(kwElse) {
			p.advance()
			if err := p.expectPunct(":"); err != nil {
				return nil, err
			}
			elseBody, err := p.expectIndentedBlock()
			if err != nil {
				return nil, err
			}
			node.Else = elseBody
			continue
		}
		if !p.atAnyOf(kwCase) {
			return nil, p.errf("expected case or else in match, found %q", p.cur().Literal)
		}
		p.advance()
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if p.atAnyOf(kwIf) {
			p.advance()
			guard, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		body, err := p.expectIndentedBlock()
		if err != nil {
			return nil, err
		}
		node.Cases = append(node.Cases, ast.MatchCase{Pattern: pat, Guard: guard, Body: body})
	}
	if p.at(lexer.DEDENT) {
		p.advance()
	}
	return node, nil
}

// parseUnsafe parses `unsafe "reason":` — the reason string is mandatory
// syntax, matching spec.md §4.E's requirement that every unsafe block
// carry a justification.
func (p *Parser) parseUnsafe() (*ast.UnsafeBlock, error) {
	start := p.cur()
	p.advance() // unsafe
	reasonTok, err := p.expect(lexer.STRING)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.expectIndentedBlock()
	if err != nil {
		return nil, err
	}
	return &ast.UnsafeBlock{N: p.nodeOf(start), Reason: reasonTok.Literal, Body: body}, nil
}

// parseAssign parses `set TARGET = VALUE`.
func (p *Parser) parseAssign() (*ast.Assign, error) {
	start := p.cur()
	p.advance() // set
	target, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp("="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return &ast.Assign{N: p.nodeOf(start), Target: target, Value: value}, nil
}

// parseAddAssign parses `add VALUE to TARGET`.
func (p *Parser) parseAddAssign() (*ast.AddAssign, error) {
	start := p.cur()
	p.advance() // add
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atAnyOf(kwTo) {
		return nil, p.errf("expected to/에게, found %q", p.cur().Literal)
	}
	p.advance()
	target, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return &ast.AddAssign{N: p.nodeOf(start), Target: target, Value: value}, nil
}

func (p *Parser) parsePrint() (*ast.Print, error) {
	start := p.cur()
	p.advance() // print
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return &ast.Print{N: p.nodeOf(start), Value: val}, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	start := p.cur()
	p.advance() // return
	if p.at(lexer.NEWLINE) {
		p.advance()
		return &ast.Return{N: p.nodeOf(start)}, nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return &ast.Return{N: p.nodeOf(start), Value: val}, nil
}

// parseBufferCreate parses `buffer NAME of SIZE bytes` (spec.md §4.E
// "Linear resources").
func (p *Parser) parseBufferCreate() (*ast.BufferCreate, error) {
	start := p.cur()
	p.advance() // buffer
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if !p.atAnyOf(kwOf) {
		return nil, p.errf("expected of/개의, found %q", p.cur().Literal)
	}
	p.advance()
	size, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atAnyOf(kwBytes) {
		return nil, p.errf("expected bytes/바이트, found %q", p.cur().Literal)
	}
	p.advance()
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return &ast.BufferCreate{N: p.nodeOf(start), Name: nameTok.Literal, Size: size}, nil
}

// parseBorrowSlice parses `view NAME = borrow [mut] BUFFER[START..END]`.
func (p *Parser) parseBorrowSlice() (*ast.BorrowSlice, error) {
	start := p.cur()
	p.advance() // view
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp("="); err != nil {
		return nil, err
	}
	if !p.atAnyOf(kwBorrow) {
		return nil, p.errf("expected borrow/빌림, found %q", p.cur().Literal)
	}
	p.advance()
	mutable := false
	if p.atAnyOf(kwMut) {
		mutable = true
		p.advance()
	}
	buf, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	startExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(".."); err != nil {
		return nil, err
	}
	endExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return &ast.BorrowSlice{
		N: p.nodeOf(start), Name: nameTok.Literal, Buffer: buf,
		Start: startExpr, End: endExpr, Mutable: mutable,
	}, nil
}

// parseMove parses `move SRC into DST`.
func (p *Parser) parseMove() (*ast.Move, error) {
	start := p.cur()
	p.advance() // move
	src, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atAnyOf(kwInto) {
		return nil, p.errf("expected into/안으로, found %q", p.cur().Literal)
	}
	p.advance()
	dstTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return &ast.Move{N: p.nodeOf(start), Dst: dstTok.Literal, Src: src}, nil
}

// parseRelease parses `release TARGET`.
func (p *Parser) parseRelease() (*ast.Release, error) {
	start := p.cur()
	p.advance() // release
	target, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return &ast.Release{N: p.nodeOf(start), Target: target}, nil
}
