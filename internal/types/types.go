// Package types implements the checker: name resolution, structural type
// checking, trait/impl flat-method synthesis, and generic monomorphization
// (spec.md §4.D).
package types

// Type is a resolved, ground (non-generic) type. Generic structs/enums are
// resolved to a concrete Type the moment a call site supplies (or the
// checker infers) type arguments — there is no unresolved type-variable
// representation here, mirroring the reference checker's eager
// specialize-on-use strategy (spec.md §4.D "Monomorphization").
type Type struct {
	Name   string
	IsCopy bool
}

func (t Type) String() string { return t.Name }

// Equal compares types by name; IsCopy is a derived property of a
// definition, not part of a type's identity.
func (t Type) Equal(o Type) bool { return t.Name == o.Name }

// Zero reports whether this is the unset Type value.
func (t Type) Zero() bool { return t.Name == "" }

// Builtin ground types (spec.md §3 "Type").
var (
	Int     = Type{Name: "int", IsCopy: true}
	Bool    = Type{Name: "bool", IsCopy: true}
	String  = Type{Name: "string", IsCopy: false}
	Unit    = Type{Name: "unit", IsCopy: true}
	Buffer  = Type{Name: "buffer", IsCopy: false}
	View    = Type{Name: "view", IsCopy: true}
	Tensor  = Type{Name: "tensor", IsCopy: false}
	Channel = Type{Name: "channel", IsCopy: false}
	Vec     = Type{Name: "vec", IsCopy: false}
)

// FuncSig is a resolved function signature: parameter types plus a return
// type, keyed by function name in Checker.funcSigs.
type FuncSig struct {
	Params  []Type
	Returns Type
}
