package parser

import (
	"strconv"

	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/lexer"
)

// parseExpr is the entry point for every expression context; precedence
// climbs from logical-or down to primary (spec.md §4.B "Expression
// grammar").
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Literal == "or" || p.cur().Literal == "또는" {
		start := p.cur()
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalOp{N: p.nodeOf(start), Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur().Literal == "and" || p.cur().Literal == "그리고" {
		start := p.cur()
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalOp{N: p.nodeOf(start), Op: "and", Left: left, Right: right}
	}
	return left, nil
}

// comparisonOps maps each infix comparison operator to its canonical
// BinOp.Op spelling. The Korean postfix forms `A 보다 B 크면`
// (greater-than) and `A 보다 B 작으면` (less-than), which read right-to-left
// relative to the English infix form, are not in this map; parseComparison
// matches them separately (spec.md §4.B "Korean comparisons").
var comparisonOps = map[string]string{
	"==": "==", "!=": "!=", "<": "<", ">": ">", "<=": "<=", ">=": ">=",
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.OP) {
		if canon, ok := comparisonOps[p.cur().Literal]; ok {
			start := p.cur()
			p.advance()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &ast.BinOp{N: p.nodeOf(start), Op: canon, Left: left, Right: right}, nil
		}
	}
	if p.cur().Literal == "보다" {
		start := p.cur()
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		switch p.cur().Literal {
		case "크면":
			p.advance()
			return &ast.BinOp{N: p.nodeOf(start), Op: ">", Left: left, Right: right}, nil
		case "작으면":
			p.advance()
			return &ast.BinOp{N: p.nodeOf(start), Op: "<", Left: left, Right: right}, nil
		}
		return nil, p.errf("expected 크면 or 작으면 after 보다, found %q", p.cur().Literal)
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.OP) && (p.cur().Literal == "+" || p.cur().Literal == "-") {
		start := p.cur()
		op := p.advance().Literal
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{N: p.nodeOf(start), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.OP) && (p.cur().Literal == "*" || p.cur().Literal == "/") {
		start := p.cur()
		op := p.advance().Literal
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{N: p.nodeOf(start), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(lexer.OP) && p.cur().Literal == "-" {
		start := p.cur()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{N: p.nodeOf(start), Op: "-", Operand: operand}, nil
	}
	if p.cur().Literal == "not" || p.cur().Literal == "아님" {
		start := p.cur()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{N: p.nodeOf(start), Op: "not", Operand: operand}, nil
	}
	if p.atAnyOf(kwBorrow) {
		start := p.cur()
		p.advance()
		mutable := false
		if p.atAnyOf(kwMut) {
			mutable = true
			p.advance()
		}
		target, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.BorrowExpr{N: p.nodeOf(start), Target: target, Mutable: mutable}, nil
	}
	if p.cur().Literal == "copy" || p.cur().Literal == "복사" {
		start := p.cur()
		p.advance()
		target, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.CopyExpr{N: p.nodeOf(start), Target: target}, nil
	}
	if p.cur().Literal == "try" || p.cur().Literal == "시도" {
		start := p.cur()
		p.advance()
		target, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.TryExpr{N: p.nodeOf(start), Target: target}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles `.field` member-access chains after a primary.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.PUNCT) && p.cur().Literal == "." {
		start := p.cur()
		p.advance()
		fieldTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		expr = &ast.MemberAccess{N: p.nodeOf(start), Value: expr, Field: fieldTok.Literal}
	}
	return expr, nil
}

// parsePrimary parses literals, names, parenthesized expressions, and
// calls — including explicit generic call syntax `f<T,...>(args)`
// (spec.md §9 "Specialization mangling").
func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch {
	case tok.Type == lexer.NUMBER:
		p.advance()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errf("invalid integer literal %q", tok.Literal)
		}
		return &ast.IntLit{N: p.nodeOf(tok), Value: v}, nil

	case tok.Type == lexer.STRING:
		p.advance()
		return &ast.StringLit{N: p.nodeOf(tok), Value: tok.Literal}, nil

	case tok.Literal == "true" || tok.Literal == "참":
		p.advance()
		return &ast.BoolLit{N: p.nodeOf(tok), Value: true}, nil

	case tok.Literal == "false" || tok.Literal == "거짓":
		p.advance()
		return &ast.BoolLit{N: p.nodeOf(tok), Value: false}, nil

	case tok.Type == lexer.PUNCT && tok.Literal == "(":
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return inner, nil

	case tok.Type == lexer.IDENT:
		return p.parseNameOrCall()
	}
	return nil, p.errf("unexpected token %s %q in expression", tok.Type, tok.Literal)
}

func (p *Parser) parseNameOrCall() (ast.Expr, error) {
	start := p.cur()
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	callee := nameTok.Literal
	for p.at(lexer.PUNCT) && p.cur().Literal == "." && p.peekAt(1).Type == lexer.IDENT {
		// dotted callee, e.g. module.function or Enum.Case — only fold into
		// the callee string when immediately followed by a call or another
		// dotted segment; a trailing bare member access is left to
		// parsePostfix.
		if p.peekAt(2).Type == lexer.PUNCT && (p.peekAt(2).Literal == "(" || p.peekAt(2).Literal == ".") {
			p.advance()
			seg, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			callee += "." + seg.Literal
			continue
		}
		break
	}

	var typeArgs []*ast.TypeRef
	if p.at(lexer.OP) && p.cur().Literal == "<" && p.looksLikeTypeArgList() {
		p.advance()
		for {
			arg, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			typeArgs = append(typeArgs, arg)
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

	if p.at(lexer.PUNCT) && p.cur().Literal == "(" {
		p.advance()
		var args []ast.Expr
		if !(p.at(lexer.PUNCT) && p.cur().Literal == ")") {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
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
		return &ast.Call{N: p.nodeOf(start), Callee: callee, TypeArgs: typeArgs, Args: args}, nil
	}

	if len(typeArgs) > 0 {
		return nil, p.errf("generic type arguments %q require a call", callee)
	}
	return &ast.Name{N: p.nodeOf(start), Ident: callee}, nil
}

// looksLikeTypeArgList does bounded lookahead to distinguish `f<T>(...)`
// generic call syntax from a less-than comparison, since both begin with
// IDENT "<". A type-argument list is followed eventually by `>(` with no
// intervening statement-ending NEWLINE.
func (p *Parser) looksLikeTypeArgList() bool {
	depth := 0
	for off := 0; ; off++ {
		t := p.peekAt(off)
		switch {
		case t.Type == lexer.NEWLINE || t.Type == lexer.EOF:
			return false
		case t.Type == lexer.OP && t.Literal == "<":
			depth++
		case t.Type == lexer.OP && t.Literal == ">":
			depth--
			if depth == 0 {
				next := p.peekAt(off + 1)
				return next.Type == lexer.PUNCT && next.Literal == "("
			}
		case t.Type == lexer.IDENT || (t.Type == lexer.PUNCT && t.Literal == ","):
			continue
		default:
			return false
		}
	}
}
