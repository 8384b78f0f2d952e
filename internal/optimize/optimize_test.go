package optimize

import (
	"testing"

	"github.com/daisy-lang/daisy/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneBlockFunc(name string, params []core.Param, instrs []core.Instr) core.Function {
	return core.Function{Name: name, Params: params, ReturnType: "int", Blocks: []core.Block{{Label: "entry", Instructions: instrs}}}
}

func TestConstFoldFoldsAddition(t *testing.T) {
	fn := oneBlockFunc("f", nil, []core.Instr{
		{Op: "const", Args: []string{"2"}, Result: "t1", TypeName: "int"},
		{Op: "const", Args: []string{"3"}, Result: "t2", TypeName: "int"},
		{Op: "add", Args: []string{"t1", "t2"}, Result: "t3", TypeName: "int"},
		{Op: "ret", Args: []string{"t3"}},
	})
	(&Optimizer{}).constFold(&fn)
	folded := fn.Blocks[0].Instructions[2]
	assert.Equal(t, "const", folded.Op)
	assert.Equal(t, []string{"5"}, folded.Args)
}

func TestConstFoldFoldsComparisonCall(t *testing.T) {
	fn := oneBlockFunc("f", nil, []core.Instr{
		{Op: "const", Args: []string{"2"}, Result: "t1", TypeName: "int"},
		{Op: "const", Args: []string{"3"}, Result: "t2", TypeName: "int"},
		{Op: "call", Args: []string{"lt", "t1", "t2"}, Result: "t3"},
		{Op: "ret", Args: []string{"t3"}},
	})
	(&Optimizer{}).constFold(&fn)
	folded := fn.Blocks[0].Instructions[2]
	assert.Equal(t, "const", folded.Op)
	assert.Equal(t, []string{"1"}, folded.Args)
}

func TestSimplifyArithDropsAddZero(t *testing.T) {
	fn := oneBlockFunc("f", nil, []core.Instr{
		{Op: "const", Args: []string{"0"}, Result: "z", TypeName: "int"},
		{Op: "add", Args: []string{"x", "z"}, Result: "t1", TypeName: "int"},
		{Op: "ret", Args: []string{"t1"}},
	})
	(&Optimizer{}).simplifyArith(&fn)
	simplified := fn.Blocks[0].Instructions[1]
	assert.Equal(t, "assign", simplified.Op)
	assert.Equal(t, []string{"x"}, simplified.Args)
}

func TestSimplifyArithReducesMulByZero(t *testing.T) {
	fn := oneBlockFunc("f", nil, []core.Instr{
		{Op: "const", Args: []string{"0"}, Result: "z", TypeName: "int"},
		{Op: "mul", Args: []string{"x", "z"}, Result: "t1", TypeName: "int"},
		{Op: "ret", Args: []string{"t1"}},
	})
	(&Optimizer{}).simplifyArith(&fn)
	simplified := fn.Blocks[0].Instructions[1]
	assert.Equal(t, "const", simplified.Op)
	assert.Equal(t, []string{"0"}, simplified.Args)
}

func TestLoopOptFullyUnrollsSmallConstantCount(t *testing.T) {
	fn := oneBlockFunc("f", nil, []core.Instr{
		{Op: "const", Args: []string{"0"}, Result: "i", TypeName: "int"},
		{Op: "const", Args: []string{"3"}, Result: "n", TypeName: "int"},
		{Op: "loop_begin", Args: []string{"i", "n"}},
		{Op: "print", Args: []string{"i"}},
		{Op: "inc", Args: []string{"i"}},
		{Op: "loop_end"},
		{Op: "ret", Args: []string{"0"}},
	})
	(&Optimizer{}).loopOpt(&fn)
	var printCount, loopBeginCount int
	for _, instr := range fn.Blocks[0].Instructions {
		if instr.Op == "print" {
			printCount++
		}
		if instr.Op == "loop_begin" {
			loopBeginCount++
		}
	}
	assert.Equal(t, 3, printCount)
	assert.Equal(t, 0, loopBeginCount)
}

func TestLoopOptPartialUnrollReemitsReducedLoop(t *testing.T) {
	fn := oneBlockFunc("f", nil, []core.Instr{
		{Op: "const", Args: []string{"0"}, Result: "i", TypeName: "int"},
		{Op: "const", Args: []string{"10"}, Result: "n", TypeName: "int"},
		{Op: "loop_begin", Args: []string{"i", "n"}},
		{Op: "print", Args: []string{"i"}},
		{Op: "inc", Args: []string{"i"}},
		{Op: "loop_end"},
		{Op: "ret", Args: []string{"0"}},
	})
	(&Optimizer{}).loopOpt(&fn)
	var printCount, loopBeginCount int
	var reducedCount string
	for _, instr := range fn.Blocks[0].Instructions {
		if instr.Op == "print" {
			printCount++
		}
		if instr.Op == "loop_begin" {
			loopBeginCount++
		}
		if instr.Op == "const" && instr.Args[0] == "5" {
			reducedCount = instr.Args[0]
		}
	}
	assert.Equal(t, 2, printCount, "two body copies inside the reduced loop")
	require.Equal(t, 1, loopBeginCount, "partial unroll re-emits exactly one reduced loop")
	assert.Equal(t, "5", reducedCount, "reduced loop runs count/2 = 5 remaining iterations")
}

func TestLoopOptDropsZeroCountLoopEntirely(t *testing.T) {
	fn := oneBlockFunc("f", nil, []core.Instr{
		{Op: "const", Args: []string{"0"}, Result: "i", TypeName: "int"},
		{Op: "const", Args: []string{"0"}, Result: "n", TypeName: "int"},
		{Op: "loop_begin", Args: []string{"i", "n"}},
		{Op: "print", Args: []string{"i"}},
		{Op: "inc", Args: []string{"i"}},
		{Op: "loop_end"},
		{Op: "ret", Args: []string{"0"}},
	})
	(&Optimizer{}).loopOpt(&fn)
	for _, instr := range fn.Blocks[0].Instructions {
		assert.NotEqual(t, "print", instr.Op)
	}
}

func TestDCERemovesUnusedConstant(t *testing.T) {
	fn := oneBlockFunc("f", nil, []core.Instr{
		{Op: "const", Args: []string{"1"}, Result: "unused", TypeName: "int"},
		{Op: "const", Args: []string{"2"}, Result: "used", TypeName: "int"},
		{Op: "ret", Args: []string{"used"}},
	})
	(&Optimizer{}).dce(&fn)
	for _, instr := range fn.Blocks[0].Instructions {
		assert.NotEqual(t, "unused", instr.Result)
	}
	require.Len(t, fn.Blocks[0].Instructions, 2)
}

func TestDCEKeepsSideEffectingCallEvenWhenResultUnused(t *testing.T) {
	fn := oneBlockFunc("f", nil, []core.Instr{
		{Op: "call", Args: []string{"log", "1"}, Result: "ignored"},
		{Op: "ret", Args: []string{"0"}},
	})
	(&Optimizer{}).dce(&fn)
	require.Len(t, fn.Blocks[0].Instructions, 2)
	assert.Equal(t, "call", fn.Blocks[0].Instructions[0].Op)
}

func TestInlineReplacesCallToConstReturningLeafFunction(t *testing.T) {
	mod := &core.Module{
		Functions: []core.Function{
			oneBlockFunc("answer", nil, []core.Instr{
				{Op: "const", Args: []string{"42"}, Result: "t1", TypeName: "int"},
				{Op: "ret", Args: []string{"t1"}},
			}),
			oneBlockFunc("main", nil, []core.Instr{
				{Op: "call", Args: []string{"answer"}, Result: "r"},
				{Op: "ret", Args: []string{"r"}},
			}),
		},
	}
	(&Optimizer{}).inline(mod)
	mainFn := mod.Functions[1]
	first := mainFn.Blocks[0].Instructions[0]
	assert.Equal(t, "const", first.Op)
	assert.Equal(t, []string{"42"}, first.Args)
}

func TestInlineReplacesCallToIdentityLeafFunction(t *testing.T) {
	mod := &core.Module{
		Functions: []core.Function{
			oneBlockFunc("identity", []core.Param{{Name: "x", TypeName: "int"}}, []core.Instr{
				{Op: "ret", Args: []string{"x"}},
			}),
			oneBlockFunc("main", nil, []core.Instr{
				{Op: "const", Args: []string{"7"}, Result: "v", TypeName: "int"},
				{Op: "call", Args: []string{"identity", "v"}, Result: "r"},
				{Op: "ret", Args: []string{"r"}},
			}),
		},
	}
	(&Optimizer{}).inline(mod)
	mainFn := mod.Functions[1]
	second := mainFn.Blocks[0].Instructions[1]
	assert.Equal(t, "assign", second.Op)
	assert.Equal(t, []string{"v"}, second.Args)
}
