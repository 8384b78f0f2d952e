package parser

import (
	"strconv"

	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/lexer"
)

// parsePattern parses one match-arm pattern: wildcard, literal, bare bind,
// `Struct(p1,...)` positional destructure, or `Enum.Case[(payload)]`
// (spec.md §3 "Pattern").
func (p *Parser) parsePattern() (ast.Pattern, error) {
	tok := p.cur()

	if tok.Type == lexer.IDENT && tok.Literal == "_" {
		p.advance()
		return ast.WildcardPattern{}, nil
	}

	if tok.Type == lexer.NUMBER {
		p.advance()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errf("invalid integer literal %q", tok.Literal)
		}
		return ast.LiteralPattern{Value: &ast.IntLit{N: p.nodeOf(tok), Value: v}}, nil
	}
	if tok.Type == lexer.STRING {
		p.advance()
		return ast.LiteralPattern{Value: &ast.StringLit{N: p.nodeOf(tok), Value: tok.Literal}}, nil
	}
	if tok.Literal == "true" || tok.Literal == "참" {
		p.advance()
		return ast.LiteralPattern{Value: &ast.BoolLit{N: p.nodeOf(tok), Value: true}}, nil
	}
	if tok.Literal == "false" || tok.Literal == "거짓" {
		p.advance()
		return ast.LiteralPattern{Value: &ast.BoolLit{N: p.nodeOf(tok), Value: false}}, nil
	}

	if tok.Type != lexer.IDENT {
		return nil, p.errf("expected pattern, found %s %q", tok.Type, tok.Literal)
	}
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	// Enum.Case[(payload)] — a dotted name denotes an enum case.
	if p.at(lexer.PUNCT) && p.cur().Literal == "." {
		p.advance()
		caseTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		var payload ast.Pattern
		if p.at(lexer.PUNCT) && p.cur().Literal == "(" {
			p.advance()
			payload, err = p.parsePattern()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		}
		return ast.EnumPattern{EnumName: nameTok.Literal, CaseName: caseTok.Literal, Payload: payload}, nil
	}

	// Struct(p1, p2, ...) — a bare name immediately followed by "(" denotes
	// a positional struct destructure; otherwise it is a plain bind.
	if p.at(lexer.PUNCT) && p.cur().Literal == "(" {
		p.advance()
		var fields []ast.Pattern
		if !(p.at(lexer.PUNCT) && p.cur().Literal == ")") {
			for {
				f, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				fields = append(fields, f)
				if p.at(lexer.PUNCT) && p.cur().Literal == "," {
					p.advance()
					continue
				}
				break
			}
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return ast.StructPattern{StructName: nameTok.Literal, Fields: fields}, nil
	}

	return ast.BindPattern{Name: nameTok.Literal}, nil
}
