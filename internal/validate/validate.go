// Package validate checks a lowered-and-optimized IR module for use-before-
// definition errors: every non-literal argument an instruction uses must
// already have been produced by an earlier instruction's result (or be a
// function parameter) within the same function. Grounded on
// original_source/.../ir_validate.py, followed verbatim — SPEC_FULL.md §C.3
// is the binding per-opcode use-set table.
package validate

import (
	"strconv"

	"github.com/daisy-lang/daisy/internal/core"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// Module walks every function in mod and returns the first use-before-def
// violation found, wrapped as a *daisyerrors.FatalError, or nil if the
// module is well-formed.
func Module(mod *core.Module) error {
	for _, fn := range mod.Functions {
		if err := function(fn); err != nil {
			return err
		}
	}
	return nil
}

func function(fn core.Function) error {
	defined := map[string]bool{}
	for _, p := range fn.Params {
		defined[p.Name] = true
	}
	for _, block := range fn.Blocks {
		for _, instr := range block.Instructions {
			for _, arg := range uses(instr) {
				if isLiteral(arg) {
					continue
				}
				if !defined[arg] {
					return daisyerrors.NewFatal(daisyerrors.VAL001, nil,
						"%s: use before def `%s` in %s", fn.Name, arg, instr.Op)
				}
			}
			if instr.Result != "" {
				defined[instr.Result] = true
			}
		}
	}
	return nil
}

var noUseOps = map[string]bool{
	"const": true, "const_str": true, "if_else": true, "if_end": true,
	"while_end": true, "loop_end": true, "break": true, "continue": true,
}

// uses returns the argument positions of instr that are variable
// references, per the fixed per-opcode table in SPEC_FULL.md §C.3.
func uses(instr core.Instr) []string {
	args := instr.Args
	switch {
	case noUseOps[instr.Op]:
		return nil
	case instr.Op == "assign", instr.Op == "neg", instr.Op == "print", instr.Op == "ret":
		return firstN(args, 1)
	case instr.Op == "add", instr.Op == "sub", instr.Op == "mul", instr.Op == "div":
		return firstN(args, 2)
	case instr.Op == "call":
		return skipFirst(args, 1)
	case instr.Op == "struct_new":
		return skipFirst(args, 1)
	case instr.Op == "struct_get":
		return firstN(args, 1)
	case instr.Op == "struct_set":
		if len(args) < 3 {
			return firstN(args, 1)
		}
		return []string{args[0], args[2]}
	case instr.Op == "enum_make":
		return skipFirst(args, 2)
	case instr.Op == "enum_tag", instr.Op == "enum_payload":
		return firstN(args, 1)
	case instr.Op == "buf_create":
		return firstN(args, 1)
	case instr.Op == "buf_borrow":
		return firstN(args, 3)
	case instr.Op == "borrow":
		return firstN(args, 2)
	case instr.Op == "if_begin", instr.Op == "while_begin":
		return firstN(args, 1)
	case instr.Op == "loop_begin":
		return firstN(args, 2)
	case instr.Op == "inc":
		return firstN(args, 1)
	default:
		return args
	}
}

func firstN(args []string, n int) []string {
	if len(args) < n {
		return args
	}
	return args[:n]
}

func skipFirst(args []string, n int) []string {
	if len(args) < n {
		return nil
	}
	return args[n:]
}

// isLiteral reports whether value is a base-10 integer literal, including
// the canonical boolean encodings "0"/"1".
func isLiteral(value string) bool {
	_, err := strconv.Atoi(value)
	return err == nil
}
