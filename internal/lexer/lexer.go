package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/daisy-lang/daisy/internal/ast"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// line is one non-blank source line after stanza-marker stripping, with its
// leading-space count and 1-based source line number.
type line struct {
	indent int
	text   string
	number int
}

const (
	markerEnglish = "English:"
	markerKorean  = "Korean:"
)

// splitLines drops blank lines, records each remaining line's indent depth,
// and strips a single leading bilingual stanza marker (spec.md §4.A).
func splitLines(source string) []line {
	var out []line
	raws := strings.Split(source, "\n")
	for i, raw := range raws {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		indent := len(raw) - len(strings.TrimLeft(raw, " "))
		text := raw
		content := text[indent:]
		switch {
		case strings.HasPrefix(content, markerEnglish):
			content = strings.TrimLeft(content[len(markerEnglish):], " ")
			text = strings.Repeat(" ", indent) + content
		case strings.HasPrefix(content, markerKorean):
			content = strings.TrimLeft(content[len(markerKorean):], " ")
			text = strings.Repeat(" ", indent) + content
		}
		out = append(out, line{indent: indent, text: text, number: i + 1})
	}
	return out
}

// Lex tokenizes a whole source file. The returned error is a
// *daisyerrors.FatalError: lex errors are single-shot and fatal for the
// file (spec.md §7).
func Lex(source []byte, file string) ([]Token, error) {
	normalized := Normalize(source)
	lines := splitLines(string(normalized))

	var toks []Token
	indentStack := []int{0}

	for _, ln := range lines {
		if ln.indent%2 != 0 {
			return nil, daisyerrors.NewFatal(daisyerrors.LEX001, oneColSpan(file, ln.number, 1),
				"indentation must be a multiple of two spaces")
		}
		top := indentStack[len(indentStack)-1]
		if ln.indent > top {
			indentStack = append(indentStack, ln.indent)
			toks = append(toks, NewToken(INDENT, "", ln.number, 1, file))
		}
		for ln.indent < indentStack[len(indentStack)-1] {
			indentStack = indentStack[:len(indentStack)-1]
			toks = append(toks, NewToken(DEDENT, "", ln.number, 1, file))
		}

		lineToks, err := tokenizeText(ln.text, ln.number, file)
		if err != nil {
			return nil, err
		}
		toks = append(toks, lineToks...)
		toks = append(toks, NewToken(NEWLINE, "", ln.number, utf8.RuneCountInString(ln.text)+1, file))
	}

	endLine := len(toks) + 1
	for len(indentStack) > 1 {
		indentStack = indentStack[:len(indentStack)-1]
		toks = append(toks, NewToken(DEDENT, "", endLine, 1, file))
	}
	toks = append(toks, NewToken(EOF, "", endLine, 1, file))
	return toks, nil
}

// oneColSpan builds a single-point span, used for fatal lex diagnostics
// that have no meaningful end position.
func oneColSpan(file string, l, c int) *ast.Span {
	return &ast.Span{File: file, StartLine: l, StartCol: c, EndLine: l, EndCol: c}
}

// tokenizeText scans one already-stripped line of source text into tokens,
// mirroring the reference character-class dispatch exactly (spec.md §4.A).
func tokenizeText(text string, lineNo int, file string) ([]Token, error) {
	var toks []Token
	runes := []rune(text)
	i := 0
	n := len(runes)

	for i < n {
		ch := runes[i]
		if ch == ' ' || ch == '\t' {
			i++
			continue
		}
		col := i + 1

		switch {
		case ch == '"':
			start := i + 1
			j := start
			closed := false
			for j < n {
				if runes[j] == '\\' && j+1 < n {
					j += 2
					continue
				}
				if runes[j] == '"' {
					closed = true
					break
				}
				j++
			}
			if !closed {
				return nil, daisyerrors.NewFatal(daisyerrors.LEX002, oneColSpan(file, lineNo, start+1),
					"unterminated string literal")
			}
			value := string(runes[start:j])
			toks = append(toks, NewToken(STRING, value, lineNo, start, file))
			i = j + 1

		case isDigit(ch):
			start := i
			for i < n && isDigit(runes[i]) {
				i++
			}
			toks = append(toks, NewToken(NUMBER, string(runes[start:i]), lineNo, start+1, file))

		case isIdentStart(ch):
			start := i
			for i < n && isIdentPart(runes[i]) {
				i++
			}
			value := string(runes[start:i])
			toks = append(toks, splitParticles(value, lineNo, start+1, file)...)

		case ch == '-' && i+1 < n && runes[i+1] == '>':
			toks = append(toks, NewToken(ARROW, "->", lineNo, col, file))
			i += 2

		case i+1 < n && isTwoCharOp(string(runes[i:i+2])):
			op := string(runes[i : i+2])
			toks = append(toks, NewToken(OP, op, lineNo, col, file))
			i += 2

		case ch == '.' && i+1 < n && runes[i+1] == '.':
			toks = append(toks, NewToken(PUNCT, "..", lineNo, col, file))
			i += 2

		case ch == '(' || ch == ')' || ch == '[' || ch == ']' || ch == ':' || ch == ',' || ch == '.':
			toks = append(toks, NewToken(PUNCT, string(ch), lineNo, col, file))
			i++

		case ch == '=' || ch == '<' || ch == '>':
			toks = append(toks, NewToken(OP, string(ch), lineNo, col, file))
			i++

		case ch == '+' || ch == '-' || ch == '*' || ch == '/':
			toks = append(toks, NewToken(OP, string(ch), lineNo, col, file))
			i++

		default:
			return nil, daisyerrors.NewFatal(daisyerrors.LEX003, oneColSpan(file, lineNo, col),
				"unexpected character %q", ch)
		}
	}
	return toks, nil
}

func isTwoCharOp(s string) bool {
	switch s {
	case "==", "!=", ">=", "<=", "&&", "||":
		return true
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isKorean(r rune) bool { return r >= 0xAC00 && r <= 0xD7A3 }

func isIdentStart(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		isKorean(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

// splitParticles peels a known Korean grammatical suffix off value's tail,
// emitting a stem IDENT followed by a PART token (spec.md §4.A); a value
// with no matching particle, or one no longer than the particle itself, is
// emitted whole.
func splitParticles(value string, lineNo, col int, file string) []Token {
	for _, p := range particles {
		if strings.HasSuffix(value, p) && utf8.RuneCountInString(value) > utf8.RuneCountInString(p) {
			stem := strings.TrimSuffix(value, p)
			stemRunes := utf8.RuneCountInString(stem)
			return []Token{
				NewToken(IDENT, stem, lineNo, col, file),
				NewToken(PART, p, lineNo, col+stemRunes, file),
			}
		}
	}
	return []Token{NewToken(IDENT, value, lineNo, col, file)}
}
