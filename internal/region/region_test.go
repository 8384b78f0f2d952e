package region

import (
	"testing"

	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstFunc(t *testing.T, m *ast.Module) *ast.FuncDecl {
	t.Helper()
	for _, stmt := range m.Body {
		if fn, ok := stmt.(*ast.FuncDecl); ok {
			return fn
		}
	}
	t.Fatal("no function declaration found")
	return nil
}

func TestInferAssignsFreshRegionPerBuffer(t *testing.T) {
	m, err := parser.Parse([]byte("module m\n"+
		"fn f() -> int:\n"+
		"  buffer a of 16 bytes\n"+
		"  buffer b of 16 bytes\n"+
		"  return 0\n"), "test.daisy")
	require.NoError(t, err)
	fn := firstFunc(t, m)
	info := Infer(fn.Body)
	assert.NotEmpty(t, info.Regions["a"])
	assert.NotEmpty(t, info.Regions["b"])
	assert.NotEqual(t, info.Regions["a"], info.Regions["b"])
	assert.Empty(t, info.Warnings)
}

func TestInferPropagatesRegionThroughBorrowSlice(t *testing.T) {
	m, err := parser.Parse([]byte("module m\n"+
		"fn f() -> int:\n"+
		"  buffer a of 16 bytes\n"+
		"  view s = borrow a[0..8]\n"+
		"  return 0\n"), "test.daisy")
	require.NoError(t, err)
	fn := firstFunc(t, m)
	info := Infer(fn.Body)
	require.NotEmpty(t, info.Regions["a"])
	assert.Equal(t, info.Regions["a"], info.Regions["s"])
}

func TestInferWarnsOnConflictingBranchRegions(t *testing.T) {
	m, err := parser.Parse([]byte("module m\n"+
		"fn f(cond: bool) -> int:\n"+
		"  buffer a of 16 bytes\n"+
		"  set x = a\n"+
		"  if cond:\n"+
		"    buffer c of 8 bytes\n"+
		"    set x = c\n"+
		"  return 0\n"), "test.daisy")
	require.NoError(t, err)
	fn := firstFunc(t, m)
	info := Infer(fn.Body)
	assert.NotEmpty(t, info.Warnings)
}
