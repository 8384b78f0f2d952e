package core

import (
	"testing"

	"github.com/daisy-lang/daisy/internal/parser"
	"github.com/daisy-lang/daisy/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowerSource(t *testing.T, src string) *Module {
	t.Helper()
	m, err := parser.Parse([]byte(src), "test.daisy")
	require.NoError(t, err)
	tc := types.NewChecker(types.ExternalInputs{})
	tc.CheckModule(m)
	require.False(t, tc.Diagnostics().HasErrors(), "type errors: %v", tc.Diagnostics().Items())
	return Lower(m, tc)
}

func findFunc(t *testing.T, mod *Module, name string) Function {
	t.Helper()
	for _, fn := range mod.Functions {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("no function named %s in lowered module", name)
	return Function{}
}

func TestLowerReturnConstant(t *testing.T) {
	mod := lowerSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  return 42\n")
	fn := findFunc(t, mod, "f")
	require.Len(t, fn.Blocks, 1)
	instrs := fn.Blocks[0].Instructions
	require.NotEmpty(t, instrs)
	last := instrs[len(instrs)-1]
	assert.Equal(t, "ret", last.Op)
	assert.Equal(t, "const", instrs[0].Op)
	assert.Equal(t, "42", instrs[0].Args[0])
}

func TestLowerArithmeticEmitsAddInstruction(t *testing.T) {
	mod := lowerSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  return 1 + 2\n")
	fn := findFunc(t, mod, "f")
	found := false
	for _, instr := range fn.Blocks[0].Instructions {
		if instr.Op == "add" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLowerComparisonEmitsCallInstruction(t *testing.T) {
	mod := lowerSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  if 1 < 2:\n"+
		"    return 1\n"+
		"  return 0\n")
	fn := findFunc(t, mod, "f")
	found := false
	for _, instr := range fn.Blocks[0].Instructions {
		if instr.Op == "call" && len(instr.Args) > 0 && instr.Args[0] == "lt" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLowerIfEmitsStructuredMarkers(t *testing.T) {
	mod := lowerSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  if 1 == 1:\n"+
		"    return 1\n"+
		"  else:\n"+
		"    return 0\n")
	fn := findFunc(t, mod, "f")
	var ops []string
	for _, instr := range fn.Blocks[0].Instructions {
		ops = append(ops, instr.Op)
	}
	assertContainsInOrder(t, ops, "if_begin", "if_else", "if_end")
}

func TestLowerRepeatEmitsLoopMarkers(t *testing.T) {
	mod := lowerSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  repeat 3:\n"+
		"    print 1\n"+
		"  return 0\n")
	fn := findFunc(t, mod, "f")
	var ops []string
	for _, instr := range fn.Blocks[0].Instructions {
		ops = append(ops, instr.Op)
	}
	assertContainsInOrder(t, ops, "loop_begin", "loop_end")
}

func TestLowerStructConstructorEmitsStructNew(t *testing.T) {
	mod := lowerSource(t, "module m\n"+
		"struct Point:\n"+
		"  x: int\n"+
		"  y: int\n"+
		"fn f() -> int:\n"+
		"  set p = Point(1, 2)\n"+
		"  return p.x\n")
	require.Len(t, mod.Structs, 1)
	assert.Equal(t, "Point", mod.Structs[0].Name)
	fn := findFunc(t, mod, "f")
	foundNew, foundGet := false, false
	for _, instr := range fn.Blocks[0].Instructions {
		if instr.Op == "struct_new" {
			foundNew = true
		}
		if instr.Op == "struct_get" {
			foundGet = true
		}
	}
	assert.True(t, foundNew)
	assert.True(t, foundGet)
}

func TestLowerEnumMatchEmitsTagCompare(t *testing.T) {
	mod := lowerSource(t, "module m\n"+
		"enum Option:\n"+
		"  case Some: int\n"+
		"  case None\n"+
		"fn f(o: Option) -> int:\n"+
		"  match o:\n"+
		"    case Option.Some(v):\n"+
		"      return v\n"+
		"    case Option.None:\n"+
		"      return 0\n")
	require.Len(t, mod.Enums, 1)
	fn := findFunc(t, mod, "f")
	foundTag, foundPayload := false, false
	for _, instr := range fn.Blocks[0].Instructions {
		if instr.Op == "enum_tag" {
			foundTag = true
		}
		if instr.Op == "enum_payload" {
			foundPayload = true
		}
	}
	assert.True(t, foundTag)
	assert.True(t, foundPayload)
}

func TestLowerBufferAndBorrowEmitBufOps(t *testing.T) {
	mod := lowerSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  buffer a of 16 bytes\n"+
		"  view s = borrow a[0..8]\n"+
		"  return 0\n")
	fn := findFunc(t, mod, "f")
	foundCreate, foundBorrow := false, false
	for _, instr := range fn.Blocks[0].Instructions {
		if instr.Op == "buf_create" {
			foundCreate = true
		}
		if instr.Op == "buf_borrow" {
			foundBorrow = true
		}
	}
	assert.True(t, foundCreate)
	assert.True(t, foundBorrow)
}

// TestLowerReturnConstantOpSequenceMatchesExactly diffs the full op sequence
// against the expected shape with cmp.Diff rather than a per-instruction
// loop, grounded on the teacher's internal/parser/testutil.go goldenCompare
// (cmp.Diff over a known-good form rather than reflect.DeepEqual's opaque
// bool).
func TestLowerReturnConstantOpSequenceMatchesExactly(t *testing.T) {
	mod := lowerSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  return 1 + 2\n")
	fn := findFunc(t, mod, "f")
	var ops []string
	for _, instr := range fn.Blocks[0].Instructions {
		ops = append(ops, instr.Op)
	}
	want := []string{"const", "const", "add", "ret"}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("lowered op sequence mismatch (-want +got):\n%s", diff)
	}
}

func assertContainsInOrder(t *testing.T, ops []string, wanted ...string) {
	t.Helper()
	idx := 0
	for _, op := range ops {
		if idx < len(wanted) && op == wanted[idx] {
			idx++
		}
	}
	assert.Equal(t, len(wanted), idx, "expected ops %v in order within %v", wanted, ops)
}
