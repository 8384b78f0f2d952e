package parser

import (
	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/lexer"
)

// parseTypeRef parses a type name with an optional `<T,...>` argument list
// (spec.md §3 "Type reference").
func (p *Parser) parseTypeRef() (*ast.TypeRef, error) {
	start := p.cur()
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	ref := &ast.TypeRef{Node: p.nodeOf(start), Name: nameTok.Literal}
	if p.at(lexer.OP) && p.cur().Literal == "<" {
		p.advance()
		for {
			arg, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			ref.Args = append(ref.Args, arg)
			if p.at(lexer.PUNCT) && p.cur().Literal == "," {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectOp(">"); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

func (p *Parser) expectOp(lit string) error {
	if !(p.at(lexer.OP) && p.cur().Literal == lit) {
		return p.errf("expected %q, found %q", lit, p.cur().Literal)
	}
	p.advance()
	return nil
}

func (p *Parser) expectPunct(lit string) error {
	if !(p.at(lexer.PUNCT) && p.cur().Literal == lit) {
		return p.errf("expected %q, found %q", lit, p.cur().Literal)
	}
	p.advance()
	return nil
}

// parseTypeParams parses an optional `<T: Bound1+Bound2, U>` generic
// parameter list on a struct/enum/trait/fn header.
func (p *Parser) parseTypeParams() ([]ast.TypeParam, error) {
	if !(p.at(lexer.OP) && p.cur().Literal == "<") {
		return nil, nil
	}
	p.advance()
	var params []ast.TypeParam
	for {
		nameTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		tp := ast.TypeParam{Name: nameTok.Literal}
		if p.at(lexer.PUNCT) && p.cur().Literal == ":" {
			p.advance()
			for {
				boundTok, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				tp.Bounds = append(tp.Bounds, boundTok.Literal)
				if p.at(lexer.OP) && p.cur().Literal == "+" {
					p.advance()
					continue
				}
				break
			}
		}
		params = append(params, tp)
		if p.at(lexer.PUNCT) && p.cur().Literal == "," {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectOp(">"); err != nil {
		return nil, err
	}
	return params, nil
}

// parseParams parses a parenthesized, comma-separated `(name: Type, ...)`
// parameter list.
func (p *Parser) parseParams() ([]ast.Param, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []ast.Param
	if p.at(lexer.PUNCT) && p.cur().Literal == ")" {
		p.advance()
		return params, nil
	}
	for {
		nameTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: nameTok.Literal, Type: typ})
		if p.at(lexer.PUNCT) && p.cur().Literal == "," {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return params, nil
}
