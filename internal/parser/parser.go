// Package parser implements the recursive-descent, bilingual-keyword
// statement/expression parser over the token stream produced by
// internal/lexer (spec.md §4.B).
package parser

import (
	"github.com/daisy-lang/daisy/internal/ast"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
	"github.com/daisy-lang/daisy/internal/lexer"
)

// Parser consumes a flat token slice (the lexer runs to completion first;
// there is no streaming interleave with lexing).
type Parser struct {
	toks []lexer.Token
	pos  int
	file string
	nextID ast.NodeID
}

// New builds a Parser over an already-lexed token stream.
func New(toks []lexer.Token, file string) *Parser {
	return &Parser{toks: toks, file: file}
}

// Parse lexes and parses a full source file in one call.
func Parse(source []byte, file string) (*ast.Module, error) {
	toks, err := lexer.Lex(source, file)
	if err != nil {
		return nil, err
	}
	return New(toks, file).ParseModule()
}

func (p *Parser) id() ast.NodeID {
	p.nextID++
	return p.nextID
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(tt lexer.TokenType) bool {
	return p.cur().Type == tt
}

func (p *Parser) atLiteral(lits ...string) bool {
	cur := p.cur().Literal
	for _, l := range lits {
		if cur == l {
			return true
		}
	}
	return false
}

func (p *Parser) atAnyOf(set map[string]bool) bool {
	return set[p.cur().Literal]
}

func (p *Parser) errf(format string, args ...any) error {
	t := p.cur()
	span := &ast.Span{File: p.file, StartLine: t.Line, StartCol: t.Column, EndLine: t.Line, EndCol: t.Column}
	return daisyerrors.NewFatal(daisyerrors.PAR001, span, format, args...)
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if !p.at(tt) {
		return lexer.Token{}, p.errf("expected %s, found %s %q", tt, p.cur().Type, p.cur().Literal)
	}
	return p.advance(), nil
}

func (p *Parser) expectLiteral(lit string) error {
	if p.cur().Literal != lit {
		return p.errf("expected %q, found %q", lit, p.cur().Literal)
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (lexer.Token, error) {
	if !p.at(lexer.IDENT) {
		return lexer.Token{}, p.errf("expected identifier, found %s %q", p.cur().Type, p.cur().Literal)
	}
	return p.advance(), nil
}

func (p *Parser) skipNewlines() {
	for p.at(lexer.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) spanOf(start lexer.Token) ast.Span {
	end := p.cur()
	return ast.Span{File: p.file, StartLine: start.Line, StartCol: start.Column, EndLine: end.Line, EndCol: end.Column}
}

func (p *Parser) nodeOf(start lexer.Token) ast.Node {
	return ast.Node{ID: p.id(), Span: p.spanOf(start)}
}

// moduleKeywords and other bilingual keyword-alternative sets used by
// statement dispatch (spec.md §4.B); both surface spellings denote the
// same construct.
var (
	kwModule  = map[string]bool{"module": true, "모듈": true}
	kwFn      = map[string]bool{"fn": true, "함수": true}
	kwExtern  = map[string]bool{"extern": true, "외부": true}
	kwExport  = map[string]bool{"export": true, "public": true, "공개": true}
	kwPrivate = map[string]bool{"private": true, "비공개": true}
	kwImport  = map[string]bool{"import": true, "가져오기": true}
	kwUse     = map[string]bool{"use": true, "사용": true}
	kwStruct  = map[string]bool{"struct": true, "구조체": true}
	kwEnum    = map[string]bool{"enum": true, "열거형": true}
	kwTrait   = map[string]bool{"trait": true, "특성": true}
	kwImpl    = map[string]bool{"impl": true, "구현": true}
	kwIf      = map[string]bool{"if": true, "만약": true}
	kwElif    = map[string]bool{"elif": true, "아니면만약": true}
	kwElse    = map[string]bool{"else": true, "아니면": true}
	kwWhile   = map[string]bool{"while": true, "동안": true}
	kwRepeat  = map[string]bool{"repeat": true, "반복": true}
	kwMatch   = map[string]bool{"match": true, "매치": true}
	kwCase    = map[string]bool{"case": true, "케이스": true}
	kwUnsafe  = map[string]bool{"unsafe": true, "안전하지않음": true}
	kwReturn  = map[string]bool{"return": true, "반환": true}
	kwPrint   = map[string]bool{"print": true, "출력": true}
	kwSet     = map[string]bool{"set": true, "설정": true}
	kwAdd     = map[string]bool{"add": true, "더하기": true}
	kwTo      = map[string]bool{"to": true, "에게": true}
	kwBreak   = map[string]bool{"break": true, "중단": true}
	kwContinue = map[string]bool{"continue": true, "계속": true}
	kwBuffer  = map[string]bool{"buffer": true, "버퍼": true}
	kwOf      = map[string]bool{"of": true, "개의": true}
	kwBytes   = map[string]bool{"bytes": true, "바이트": true}
	kwView    = map[string]bool{"view": true, "뷰": true}
	kwBorrow  = map[string]bool{"borrow": true, "빌림": true}
	kwMut     = map[string]bool{"mut": true, "가변": true}
	kwMove    = map[string]bool{"move": true, "이동": true}
	kwInto    = map[string]bool{"into": true, "안으로": true}
	kwRelease = map[string]bool{"release": true, "해제": true}
	kwAs      = map[string]bool{"as": true, "로서": true}
)

// ParseModule parses the module header and top-level statement block
// (spec.md §4.B "Module header").
func (p *Parser) ParseModule() (*ast.Module, error) {
	p.skipNewlines()
	start := p.cur()
	if !p.atAnyOf(kwModule) {
		return nil, p.errf("first line must declare module, found %q", p.cur().Literal)
	}
	p.advance()
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Module{
		Node: p.nodeOf(start),
		Name: nameTok.Literal,
		Body: body,
	}, nil
}

// parseBlock parses statements until DEDENT or EOF, consuming the trailing
// DEDENT if present (spec.md §4.A indentation rules).
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.at(lexer.EOF) && !p.at(lexer.DEDENT) {
		if p.at(lexer.NEWLINE) {
			p.advance()
			continue
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if p.at(lexer.DEDENT) {
		p.advance()
	}
	return stmts, nil
}

func (p *Parser) expectIndentedBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, err
	}
	return p.parseBlock()
}
