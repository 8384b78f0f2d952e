// Package core defines the post-typecheck intermediate representation: a
// flat three-address form with structured markers for branches and loops
// (spec.md §4.F), plus the lowering pass from the checked surface AST down
// to it. Unlike the teacher's A-Normal-Form CoreExpr tree, every IR value
// here is a bare string name — a literal temp, a surface-level local, or a
// synthesized temp — exactly as original_source/.../irgen.py produces.
package core

// Param is one function/extern parameter's lowered name and type name.
type Param struct {
	Name     string
	TypeName string
}

// StructField is one lowered struct field's name and type name.
type StructField struct {
	Name     string
	TypeName string
}

// Struct is a lowered struct definition.
type Struct struct {
	Name   string
	Fields []StructField
}

// EnumCase is one lowered enum case; Payload is "" when the case carries
// none.
type EnumCase struct {
	Name    string
	Payload string
}

// Enum is a lowered enum definition.
type Enum struct {
	Name  string
	Cases []EnumCase
}

// Extern is a lowered `extern fn` declaration.
type Extern struct {
	Name       string
	Params     []Param
	ReturnType string
}

// Instr is one IR instruction: an opcode, its argument names (literal
// constants included — see SPEC_FULL.md §C.3 for which argument positions
// are uses vs. non-variable operands), an optional result name it binds,
// and an optional static type name attached at the point of creation.
type Instr struct {
	Op       string
	Args     []string
	Result   string
	TypeName string
}

// Block is one basic block: a label and its straight-line instruction
// sequence (branches/loops are structured markers within the sequence, not
// separate successor blocks, matching the reference's single-block-per-
// function emission).
type Block struct {
	Label        string
	Instructions []Instr
}

// Function is a lowered, non-generic function body.
type Function struct {
	Name       string
	Params     []Param
	ReturnType string
	Blocks     []Block
}

// Module is the complete lowered unit handed to internal/optimize,
// internal/validate, and internal/abi.
type Module struct {
	Name      string
	Functions []Function
	Externs   []Extern
	Structs   []Struct
	Enums     []Enum
}
