package ast

// Pattern is the closed sum type for match patterns (spec.md §3 "Pattern").
type Pattern interface {
	patternNode()
}

// WildcardPattern matches anything and binds nothing (`_`).
type WildcardPattern struct{}

func (WildcardPattern) patternNode() {}

// LiteralPattern matches a scrutinee equal to Value (an *IntLit, *StringLit,
// or *BoolLit produced by the parser).
type LiteralPattern struct {
	Value Expr
}

func (LiteralPattern) patternNode() {}

// BindPattern matches anything and binds it to Name.
type BindPattern struct {
	Name string
}

func (BindPattern) patternNode() {}

// StructPattern destructures a struct's fields positionally; StructName
// names the base (unmangled) struct, resolved to a specialized generic
// instance by the type checker when needed.
type StructPattern struct {
	StructName string
	Fields     []Pattern
}

func (StructPattern) patternNode() {}

// EnumPattern matches a specific enum case, optionally destructuring its
// payload either by nested pattern or by a bare binding name.
type EnumPattern struct {
	EnumName string
	CaseName string
	Payload  Pattern // nil when the case is nullary or the payload is ignored
}

func (EnumPattern) patternNode() {}
