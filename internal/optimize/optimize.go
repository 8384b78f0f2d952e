// Package optimize runs a small fixed pipeline of IR-to-IR passes over a
// lowered module: leaf-function inlining, constant folding, algebraic
// simplification, bounded loop unrolling, and dead-code elimination.
// Grounded on original_source/.../optimize.py, followed pass-for-pass;
// SPEC_FULL.md §C.4 documents the one deliberate deviation (partial loop
// unroll re-emits a reduced loop holding two body copies instead of
// silently dropping iterations).
package optimize

import (
	"strconv"

	"github.com/daisy-lang/daisy/internal/core"
)

// Run applies every pass in order and returns mod, mutated in place.
func Run(mod *core.Module) *core.Module {
	o := &Optimizer{}
	o.inline(mod)
	for i := range mod.Functions {
		fn := &mod.Functions[i]
		o.constFold(fn)
		o.simplifyArith(fn)
		o.loopOpt(fn)
		o.dce(fn)
	}
	return mod
}

// Optimizer holds the fresh-name counter used by the partial-unroll pass.
type Optimizer struct {
	freshCounter int
}

func (o *Optimizer) freshName(prefix string) string {
	o.freshCounter++
	return prefix + "_" + strconv.Itoa(o.freshCounter)
}

type inlineKind int

const (
	inlineArg inlineKind = iota
	inlineConst
)

type inlineFact struct {
	kind    inlineKind
	argIdx  int
	constAt string
}

var sideEffectFreeButOpaque = map[string]bool{
	"print": true, "buf_create": true, "buf_borrow": true, "release": true,
	"loop_begin": true, "loop_end": true, "if_begin": true, "if_else": true, "if_end": true,
}

// inline replaces calls to single-block, side-effect-free leaf functions
// whose return value is either a parameter or a literal constant.
func (o *Optimizer) inline(mod *core.Module) {
	inlineable := o.collectInlineable(mod)
	if len(inlineable) == 0 {
		return
	}
	for fi := range mod.Functions {
		fn := &mod.Functions[fi]
		for bi := range fn.Blocks {
			block := &fn.Blocks[bi]
			var out []core.Instr
			for _, instr := range block.Instructions {
				if instr.Op == "call" && len(instr.Args) > 0 {
					callee := instr.Args[0]
					args := instr.Args[1:]
					if fact, ok := inlineable[callee]; ok {
						switch fact.kind {
						case inlineConst:
							out = append(out, core.Instr{Op: "const", Args: []string{fact.constAt}, Result: instr.Result, TypeName: "int"})
							continue
						case inlineArg:
							if fact.argIdx < len(args) {
								out = append(out, core.Instr{Op: "assign", Args: []string{args[fact.argIdx]}, Result: instr.Result})
								continue
							}
						}
					}
				}
				out = append(out, instr)
			}
			block.Instructions = out
		}
	}
}

func (o *Optimizer) collectInlineable(mod *core.Module) map[string]inlineFact {
	inlineable := map[string]inlineFact{}
	for _, fn := range mod.Functions {
		if fn.Name == "main" || len(fn.Blocks) != 1 {
			continue
		}
		block := fn.Blocks[0]
		if len(block.Instructions) == 0 {
			continue
		}
		last := block.Instructions[len(block.Instructions)-1]
		if last.Op != "ret" {
			continue
		}
		opaque := false
		for _, instr := range block.Instructions {
			if sideEffectFreeButOpaque[instr.Op] {
				opaque = true
				break
			}
		}
		if opaque {
			continue
		}
		callInBody := false
		for _, instr := range block.Instructions[:len(block.Instructions)-1] {
			if instr.Op == "call" {
				callInBody = true
				break
			}
		}
		if callInBody {
			continue
		}
		retArg := last.Args[0]
		if idx := paramIndex(fn.Params, retArg); idx >= 0 {
			inlineable[fn.Name] = inlineFact{kind: inlineArg, argIdx: idx}
			continue
		}
		if constVal, ok := findConstValue(block.Instructions, retArg); ok {
			inlineable[fn.Name] = inlineFact{kind: inlineConst, constAt: constVal}
		}
	}
	return inlineable
}

func paramIndex(params []core.Param, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func findConstValue(instrs []core.Instr, name string) (string, bool) {
	for _, instr := range instrs {
		if instr.Result == name && instr.Op == "const" {
			return instr.Args[0], true
		}
	}
	return "", false
}

// constFold folds arithmetic, comparison calls, and unary negation whose
// operands are already known constants within the same block.
func (o *Optimizer) constFold(fn *core.Function) {
	for bi := range fn.Blocks {
		block := &fn.Blocks[bi]
		consts := map[string]string{}
		for ii := range block.Instructions {
			instr := &block.Instructions[ii]
			switch instr.Op {
			case "const":
				consts[instr.Result] = instr.Args[0]
			case "assign":
				if v, ok := consts[instr.Args[0]]; ok {
					consts[instr.Result] = v
				}
			case "add", "sub", "mul", "div":
				left, right := instr.Args[0], instr.Args[1]
				lv, lok := consts[left]
				rv, rok := consts[right]
				if !lok || !rok {
					continue
				}
				l, r := atoi(lv), atoi(rv)
				var folded int
				switch instr.Op {
				case "add":
					folded = l + r
				case "sub":
					folded = l - r
				case "mul":
					folded = l * r
				case "div":
					if r == 0 {
						continue
					}
					folded = l / r
				}
				instr.Op = "const"
				instr.Args = []string{strconv.Itoa(folded)}
				consts[instr.Result] = instr.Args[0]
			case "neg":
				if v, ok := consts[instr.Args[0]]; ok {
					folded := -atoi(v)
					instr.Op = "const"
					instr.Args = []string{strconv.Itoa(folded)}
					consts[instr.Result] = instr.Args[0]
				}
			case "call":
				if len(instr.Args) != 3 {
					continue
				}
				callee, a, b := instr.Args[0], instr.Args[1], instr.Args[2]
				if !isComparison(callee) {
					continue
				}
				av, aok := consts[a]
				bv, bok := consts[b]
				if !aok || !bok {
					continue
				}
				result := evalComparison(callee, atoi(av), atoi(bv))
				instr.Op = "const"
				instr.Args = []string{result}
				consts[instr.Result] = instr.Args[0]
			}
		}
	}
}

func isComparison(op string) bool {
	switch op {
	case "gt", "lt", "eq", "ge", "le", "ne":
		return true
	}
	return false
}

func evalComparison(op string, left, right int) string {
	var ok bool
	switch op {
	case "gt":
		ok = left > right
	case "lt":
		ok = left < right
	case "eq":
		ok = left == right
	case "ge":
		ok = left >= right
	case "le":
		ok = left <= right
	case "ne":
		ok = left != right
	}
	if ok {
		return "1"
	}
	return "0"
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// simplifyArith rewrites identity/annihilator arithmetic (x+0, x-0, x*1,
// x*0, x/1) into plain assigns or consts, 0-x into neg, and the negation
// of a known constant into a const.
func (o *Optimizer) simplifyArith(fn *core.Function) {
	for bi := range fn.Blocks {
		block := &fn.Blocks[bi]
		consts := map[string]int{}
		var out []core.Instr
		for _, instr := range block.Instructions {
			if instr.Op == "const" {
				consts[instr.Result] = atoi(instr.Args[0])
			}
			if instr.Op == "assign" {
				if v, ok := consts[instr.Args[0]]; ok {
					consts[instr.Result] = v
				}
			}
			switch instr.Op {
			case "add":
				left, right := instr.Args[0], instr.Args[1]
				if v, ok := consts[left]; ok && v == 0 {
					instr = core.Instr{Op: "assign", Args: []string{right}, Result: instr.Result}
				} else if v, ok := consts[right]; ok && v == 0 {
					instr = core.Instr{Op: "assign", Args: []string{left}, Result: instr.Result}
				}
			case "sub":
				left, right := instr.Args[0], instr.Args[1]
				if v, ok := consts[right]; ok && v == 0 {
					instr = core.Instr{Op: "assign", Args: []string{left}, Result: instr.Result}
				} else if v, ok := consts[left]; ok && v == 0 {
					instr = core.Instr{Op: "neg", Args: []string{right}, Result: instr.Result}
				}
			case "mul":
				left, right := instr.Args[0], instr.Args[1]
				if v, ok := consts[left]; ok && v == 0 {
					instr = core.Instr{Op: "const", Args: []string{"0"}, Result: instr.Result, TypeName: "int"}
					consts[instr.Result] = 0
				} else if v, ok := consts[right]; ok && v == 0 {
					instr = core.Instr{Op: "const", Args: []string{"0"}, Result: instr.Result, TypeName: "int"}
					consts[instr.Result] = 0
				} else if v, ok := consts[left]; ok && v == 1 {
					instr = core.Instr{Op: "assign", Args: []string{right}, Result: instr.Result}
				} else if v, ok := consts[right]; ok && v == 1 {
					instr = core.Instr{Op: "assign", Args: []string{left}, Result: instr.Result}
				}
			case "div":
				left, right := instr.Args[0], instr.Args[1]
				if v, ok := consts[right]; ok && v == 1 {
					instr = core.Instr{Op: "assign", Args: []string{left}, Result: instr.Result}
				}
			case "neg":
				if v, ok := consts[instr.Args[0]]; ok {
					instr = core.Instr{Op: "const", Args: []string{strconv.Itoa(-v)}, Result: instr.Result, TypeName: "int"}
					consts[instr.Result] = -v
				}
			}
			out = append(out, instr)
		}
		block.Instructions = out
	}
}

// loopOpt unrolls `repeat` loops with a statically known constant count:
// drop count==0 entirely, inline count==1 with `inc` stripped, fully unroll
// count<=3, and for count>3 even unroll by two: a fresh loop over count/2
// iterations whose body holds two copies of the original body, so the body
// still runs count times (SPEC_FULL.md §C.4). Odd counts above 3 are left
// as they are.
func (o *Optimizer) loopOpt(fn *core.Function) {
	for bi := range fn.Blocks {
		block := &fn.Blocks[bi]
		instrs := block.Instructions
		consts := map[string]int{}
		var out []core.Instr
		i := 0
		for i < len(instrs) {
			instr := instrs[i]
			if instr.Op == "const" {
				consts[instr.Result] = atoi(instr.Args[0])
			}
			if instr.Op == "assign" {
				if v, ok := consts[instr.Args[0]]; ok {
					consts[instr.Result] = v
				}
			}
			if instr.Op != "loop_begin" {
				out = append(out, instr)
				i++
				continue
			}
			countVar := instr.Args[1]
			count, known := consts[countVar]
			if !known {
				out = append(out, instr)
				i++
				continue
			}
			depth := 1
			j := i + 1
			for j < len(instrs) {
				switch instrs[j].Op {
				case "loop_begin":
					depth++
				case "loop_end":
					depth--
					if depth == 0 {
						goto found
					}
				}
				j++
			}
		found:
			if j >= len(instrs) {
				out = append(out, instr)
				i++
				continue
			}
			body := instrs[i+1 : j]
			switch {
			case count == 0:
				i = j + 1
			case count == 1:
				out = append(out, stripInc(body)...)
				i = j + 1
			case count <= 3:
				for n := 0; n < count; n++ {
					out = append(out, stripInc(body)...)
				}
				i = j + 1
			case count%2 == 0:
				remaining := count / 2
				newLoopVar := o.freshName("lu")
				remainingConstVar := o.freshName("lu_count")
				out = append(out, core.Instr{Op: "const", Args: []string{"0"}, Result: newLoopVar, TypeName: "int"})
				out = append(out, core.Instr{Op: "const", Args: []string{strconv.Itoa(remaining)}, Result: remainingConstVar, TypeName: "int"})
				out = append(out, core.Instr{Op: "loop_begin", Args: []string{newLoopVar, remainingConstVar}})
				out = append(out, stripInc(body)...)
				out = append(out, stripInc(body)...)
				out = append(out, core.Instr{Op: "inc", Args: []string{newLoopVar}})
				out = append(out, core.Instr{Op: "loop_end"})
				i = j + 1
			default:
				out = append(out, instr)
				i++
				continue
			}
		}
		block.Instructions = out
	}
}

func stripInc(body []core.Instr) []core.Instr {
	var out []core.Instr
	for _, instr := range body {
		if instr.Op == "inc" {
			continue
		}
		out = append(out, instr)
	}
	return out
}

var sideEffectOps = map[string]bool{
	"print": true, "ret": true, "buf_create": true, "buf_borrow": true, "release": true,
	"assign": true, "loop_begin": true, "loop_end": true,
	"if_begin": true, "if_else": true, "if_end": true, "inc": true,
	"while_begin": true, "while_end": true, "break": true, "continue": true,
}

func isSideEffect(instr core.Instr) bool {
	if instr.Op == "call" {
		return true
	}
	return sideEffectOps[instr.Op]
}

// dce removes any instruction whose result is never used and which has no
// observable side effect, working backward over each block.
func (o *Optimizer) dce(fn *core.Function) {
	for bi := range fn.Blocks {
		block := &fn.Blocks[bi]
		live := map[string]bool{}
		instrs := block.Instructions
		var rev []core.Instr
		for k := len(instrs) - 1; k >= 0; k-- {
			instr := instrs[k]
			if isSideEffect(instr) {
				rev = append(rev, instr)
				for _, arg := range instr.Args {
					live[arg] = true
				}
				continue
			}
			if instr.Result != "" && live[instr.Result] {
				rev = append(rev, instr)
				for _, arg := range instr.Args {
					live[arg] = true
				}
			}
		}
		out := make([]core.Instr, len(rev))
		for k, instr := range rev {
			out[len(rev)-1-k] = instr
		}
		block.Instructions = out
	}
}
