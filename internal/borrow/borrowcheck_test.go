package borrow

import (
	"testing"

	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/parser"
	daisytypes "github.com/daisy-lang/daisy/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkBorrows(t *testing.T, src string) *Checker {
	t.Helper()
	m, err := parser.Parse([]byte(src), "test.daisy")
	require.NoError(t, err)
	tc := daisytypes.NewChecker(daisytypes.ExternalInputs{})
	tc.CheckModule(m)
	require.False(t, tc.Diagnostics().HasErrors(), "type errors: %v", tc.Diagnostics().Items())
	bc := NewChecker(tc.ExprTypes())
	bc.CheckModule(m)
	return bc
}

func TestBorrowAllowsSingleImmutableBorrow(t *testing.T) {
	bc := checkBorrows(t, "module m\n"+
		"fn f() -> int:\n"+
		"  buffer a of 16 bytes\n"+
		"  view s = borrow a[0..8]\n"+
		"  return 0\n")
	assert.False(t, bc.Diagnostics().HasErrors())
}

func TestBorrowDetectsMutableConflict(t *testing.T) {
	bc := checkBorrows(t, "module m\n"+
		"fn f() -> int:\n"+
		"  buffer a of 16 bytes\n"+
		"  view s = borrow mut a[0..8]\n"+
		"  view t = borrow a[0..8]\n"+
		"  print s\n"+
		"  return 0\n")
	require.True(t, bc.Diagnostics().HasErrors())
	assert.Equal(t, "BOR001", bc.Diagnostics().Items()[0].Code)
}

func TestBorrowDetectsUseAfterMove(t *testing.T) {
	bc := checkBorrows(t, "module m\n"+
		"fn f() -> int:\n"+
		"  buffer a of 16 bytes\n"+
		"  move b = a\n"+
		"  release a\n"+
		"  return 0\n")
	require.True(t, bc.Diagnostics().HasErrors())
	found := false
	for _, d := range bc.Diagnostics().Items() {
		if d.Code == "BOR002" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBorrowDetectsReleaseWhileBorrowed(t *testing.T) {
	bc := checkBorrows(t, "module m\n"+
		"fn f() -> int:\n"+
		"  buffer a of 16 bytes\n"+
		"  view s = borrow a[0..8]\n"+
		"  release a\n"+
		"  print s\n"+
		"  return 0\n")
	require.True(t, bc.Diagnostics().HasErrors())
	found := false
	for _, d := range bc.Diagnostics().Items() {
		if d.Code == "BOR004" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBorrowAllowsReleaseAfterBorrowEnds(t *testing.T) {
	bc := checkBorrows(t, "module m\n"+
		"fn f() -> int:\n"+
		"  buffer a of 16 bytes\n"+
		"  view s = borrow a[0..8]\n"+
		"  print s\n"+
		"  release a\n"+
		"  return 0\n")
	assert.False(t, bc.Diagnostics().HasErrors())
}

func TestBuildCFGAssignsReturnNoSuccessors(t *testing.T) {
	m, err := parser.Parse([]byte("module m\n"+
		"fn f() -> int:\n"+
		"  return 0\n"), "test.daisy")
	require.NoError(t, err)
	var body []ast.Stmt
	for _, stmt := range m.Body {
		if fn, ok := stmt.(*ast.FuncDecl); ok {
			body = fn.Body
		}
	}
	nodes := BuildCFG(body)
	require.Len(t, nodes, 1)
	assert.Empty(t, nodes[0].Succs)
}
