// Package errors centralizes the diagnostic taxonomy for the Daisy
// compiler core (spec.md §7). Every diagnostic produced anywhere in the
// pipeline carries one of these codes.
package errors

const (
	// ============================================================
	// Lex errors (LEX###)
	// ============================================================

	// LEX001 indicates leading whitespace on a line is not a multiple of two.
	LEX001 = "LEX001"
	// LEX002 indicates a string literal with no closing quote before EOL/EOF.
	LEX002 = "LEX002"
	// LEX003 indicates a character the lexer does not recognize.
	LEX003 = "LEX003"

	// ============================================================
	// Parse errors (PAR###)
	// ============================================================

	// PAR001 indicates an unexpected token shape, including a missing or
	// malformed module header.
	PAR001 = "PAR001"
	// PAR002 indicates a missing closing delimiter.
	PAR002 = "PAR002"
	// PAR003 indicates a malformed statement header (fn/struct/enum/trait/impl/...).
	PAR003 = "PAR003"
	// PAR004 indicates a malformed pattern in a match arm.
	PAR004 = "PAR004"
	// PAR005 indicates a malformed type reference or generic argument list.
	PAR005 = "PAR005"

	// ============================================================
	// Name resolution errors (NAM###)
	// ============================================================

	// NAM001 indicates a reference to an undefined name.
	NAM001 = "NAM001"
	// NAM002 indicates an unqualified call resolves against more than one
	// use-imported module.
	NAM002 = "NAM002"

	// ============================================================
	// Type errors (TYP###)
	// ============================================================

	// TYP001 indicates a type mismatch between expected and actual.
	TYP001 = "TYP001"
	// TYP002 indicates a call with the wrong argument count.
	TYP002 = "TYP002"
	// TYP003 indicates an unknown struct field or enum case.
	TYP003 = "TYP003"
	// TYP004 indicates an operator applied to an operand of the wrong type.
	TYP004 = "TYP004"
	// TYP005 indicates an unsafe block with a missing or empty reason string.
	TYP005 = "TYP005"
	// TYP006 indicates a try-expression used against a non-Result/Option type,
	// or whose family disagrees with the enclosing function's return type.
	TYP006 = "TYP006"
	// TYP007 indicates a generic type parameter the checker cannot infer.
	TYP007 = "TYP007"

	// ============================================================
	// Trait-bound errors (TRA###)
	// ============================================================

	// TRA001 indicates a type bound to a type parameter does not implement
	// one of the parameter's required traits.
	TRA001 = "TRA001"

	// ============================================================
	// Borrow/move errors (BOR###)
	// ============================================================

	// BOR001 indicates a new borrow conflicts with a still-live existing
	// borrow of the same owner.
	BOR001 = "BOR001"
	// BOR002 indicates use of a name after it was moved.
	BOR002 = "BOR002"
	// BOR003 indicates a move of a name while a borrow of it is still live.
	BOR003 = "BOR003"
	// BOR004 indicates a release of a name while a borrow of it is still live.
	BOR004 = "BOR004"

	// ============================================================
	// IR validation errors (VAL###) — fatal
	// ============================================================

	// VAL001 indicates a use of a name with no preceding definition.
	VAL001 = "VAL001"

	// ============================================================
	// ABI errors (ABI###) — fatal
	// ============================================================

	// ABI001 indicates a previously exported symbol is now missing.
	ABI001 = "ABI001"
	// ABI002 indicates a still-present symbol's signature hash changed.
	ABI002 = "ABI002"
	// ABI003 indicates the ABI major version changed, or the minor version
	// decreased, across builds.
	ABI003 = "ABI003"
	// ABI004 indicates new symbols were added without a minor version bump.
	ABI004 = "ABI004"

	// ============================================================
	// Dependency errors (DEP###)
	// ============================================================

	// DEP001 indicates a dependency's manifest could not be loaded.
	DEP001 = "DEP001"
	// DEP002 indicates a dependency's declared package.name does not match
	// the name it was required under.
	DEP002 = "DEP002"
	// DEP003 indicates a dependency's resolved version does not satisfy the
	// required version constraint.
	DEP003 = "DEP003"
	// DEP004 indicates a prior build artifact's ABI major version does not
	// match this build's, detected during the dependency ABI pre-flight.
	DEP004 = "DEP004"
	// DEP005 indicates an import could not be resolved to any module source
	// on the search path.
	DEP005 = "DEP005"
)

// Phase categorizes a code by which pipeline stage produces it.
type Phase string

const (
	PhaseLex      Phase = "lex"
	PhaseParse    Phase = "parse"
	PhaseName     Phase = "name"
	PhaseType     Phase = "type"
	PhaseTrait    Phase = "trait"
	PhaseBorrow   Phase = "borrow"
	PhaseValidate Phase = "validate"
	PhaseABI      Phase = "abi"
	PhaseDep      Phase = "dependency"
)

// CodeInfo describes a code's phase and short human-readable label, as
// returned by Lookup and consulted by IsFatal; codes_test.go asserts that
// every constant above is registered.
type CodeInfo struct {
	Code  string
	Phase Phase
	Label string
}

var registry = map[string]CodeInfo{
	LEX001: {LEX001, PhaseLex, "odd indentation"},
	LEX002: {LEX002, PhaseLex, "unterminated string literal"},
	LEX003: {LEX003, PhaseLex, "unknown character"},

	PAR001: {PAR001, PhaseParse, "unexpected token"},
	PAR002: {PAR002, PhaseParse, "missing closing delimiter"},
	PAR003: {PAR003, PhaseParse, "malformed statement header"},
	PAR004: {PAR004, PhaseParse, "malformed pattern"},
	PAR005: {PAR005, PhaseParse, "malformed type reference"},

	NAM001: {NAM001, PhaseName, "undefined name"},
	NAM002: {NAM002, PhaseName, "ambiguous use-import"},

	TYP001: {TYP001, PhaseType, "type mismatch"},
	TYP002: {TYP002, PhaseType, "wrong argument count"},
	TYP003: {TYP003, PhaseType, "unknown field or case"},
	TYP004: {TYP004, PhaseType, "bad operator operand"},
	TYP005: {TYP005, PhaseType, "missing unsafe reason"},
	TYP006: {TYP006, PhaseType, "invalid try expression"},
	TYP007: {TYP007, PhaseType, "cannot infer type parameter"},

	TRA001: {TRA001, PhaseTrait, "missing trait implementation"},

	BOR001: {BOR001, PhaseBorrow, "borrow conflict"},
	BOR002: {BOR002, PhaseBorrow, "use after move"},
	BOR003: {BOR003, PhaseBorrow, "move while borrowed"},
	BOR004: {BOR004, PhaseBorrow, "release while borrowed"},

	VAL001: {VAL001, PhaseValidate, "use before definition"},

	ABI001: {ABI001, PhaseABI, "symbol removed"},
	ABI002: {ABI002, PhaseABI, "signature changed"},
	ABI003: {ABI003, PhaseABI, "major version mismatch"},
	ABI004: {ABI004, PhaseABI, "missing minor bump"},

	DEP001: {DEP001, PhaseDep, "manifest load failure"},
	DEP002: {DEP002, PhaseDep, "dependency name mismatch"},
	DEP003: {DEP003, PhaseDep, "dependency version mismatch"},
	DEP004: {DEP004, PhaseDep, "dependency ABI major mismatch"},
	DEP005: {DEP005, PhaseDep, "module source not found"},
}

// Lookup returns the registered info for a code, if any.
func Lookup(code string) (CodeInfo, bool) {
	info, ok := registry[code]
	return info, ok
}

// IsFatal reports whether a diagnostic of this code halts the module's
// compile outright (spec.md §7 "Propagation"): lex/parse are single-shot
// fatal, IR validation and ABI errors are fatal; everything else
// accumulates.
func IsFatal(code string) bool {
	info, ok := registry[code]
	if !ok {
		return false
	}
	switch info.Phase {
	case PhaseLex, PhaseParse, PhaseValidate, PhaseABI:
		return true
	}
	return false
}
