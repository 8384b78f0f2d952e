// Package ast defines the Daisy surface syntax tree: the forest of sum types
// produced by the parser and mutated in place by the type checker (callee
// rewrites, monomorphization) as described in spec.md §3 and §9.
package ast

import "fmt"

// Pos is a single source location.
type Pos struct {
	Line   int
	Column int
	File   string
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a source range, attached to every node for diagnostics.
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol      int
	File                 string
}

func (s Span) Start() Pos { return Pos{Line: s.StartLine, Column: s.StartCol, File: s.File} }

// NodeID is a stable per-parse integer identity used to key side tables
// (expression -> type, in internal/types) since Go has no native per-object
// identity suitable for that role. Assigned monotonically by the parser.
type NodeID uint64

// Node is the common embedding for every AST node.
type Node struct {
	ID   NodeID
	Span Span
}

// Module is the root of a parsed file: a name plus an ordered list of
// top-level statements (spec.md §3 "Module").
type Module struct {
	Node
	Name string
	Body []Stmt
}

// TypeRef is a type name plus an ordered list of type arguments, possibly
// empty (spec.md §3 "Type reference").
type TypeRef struct {
	Node
	Name string
	Args []*TypeRef
}

func (t *TypeRef) IsGeneric() bool { return len(t.Args) > 0 }

// String renders a type reference in mangled-or-plain form, e.g. "int" or
// "Result<int,string>".
func (t *TypeRef) String() string {
	if t == nil {
		return "<nil>"
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	s := t.Name + "<"
	for i, a := range t.Args {
		if i > 0 {
			s += ","
		}
		s += a.String()
	}
	return s + ">"
}

// TypeParam is a generic parameter name plus an ordered list of trait bound
// names (spec.md §3 "Type param").
type TypeParam struct {
	Name   string
	Bounds []string
}

// Param is a function parameter: name plus declared type.
type Param struct {
	Name string
	Type *TypeRef
}

// Field is a struct field or extern-param shape: name plus declared type.
type Field struct {
	Name string
	Type *TypeRef
}

// EnumCase is one case of an enum def: a name plus an optional payload type.
type EnumCase struct {
	Name    string
	Payload *TypeRef // nil for a nullary case
}

// Visibility modifiers recognized on top-level defs (spec.md §4.B).
type Visibility int

const (
	VisDefault Visibility = iota
	VisPublic
	VisPrivate
)
