package parser

import (
	"testing"

	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHelloWorldModule(t *testing.T) {
	src := "module hello\n" +
		"fn main() -> int:\n" +
		"  print \"hi\"\n" +
		"  return 0\n"

	m, err := Parse([]byte(src), "hello.daisy")
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Name)
	require.Len(t, m.Body, 1)

	fn, ok := m.Body[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, "int", fn.Return.Name)
	require.Len(t, fn.Body, 2)
	_, isPrint := fn.Body[0].(*ast.Print)
	assert.True(t, isPrint)
	ret, isReturn := fn.Body[1].(*ast.Return)
	require.True(t, isReturn)
	intLit, ok := ret.Value.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(0), intLit.Value)
}

func TestParseKoreanHelloWorldMatchesEnglish(t *testing.T) {
	english := "module hello\n" +
		"fn main() -> int:\n" +
		"  print \"hi\"\n" +
		"  return 0\n"
	korean := "모듈 hello\n" +
		"함수 main() -> int:\n" +
		"  출력 \"hi\"\n" +
		"  반환 0\n"

	e, err := Parse([]byte(english), "e.daisy")
	require.NoError(t, err)
	k, err := Parse([]byte(korean), "k.daisy")
	require.NoError(t, err)

	assert.Equal(t, ast.Dump(e), ast.Dump(k))
}

func TestParseIfElifElse(t *testing.T) {
	src := "module m\n" +
		"fn f(x: int) -> int:\n" +
		"  if x == 0:\n" +
		"    return 1\n" +
		"  elif x == 1:\n" +
		"    return 2\n" +
		"  else:\n" +
		"    return 3\n"

	m, err := Parse([]byte(src), "if.daisy")
	require.NoError(t, err)
	fn := m.Body[0].(*ast.FuncDecl)
	ifStmt := fn.Body[0].(*ast.If)
	require.Len(t, ifStmt.Elifs, 1)
	require.NotNil(t, ifStmt.Else)
}

func TestParseKoreanComparison(t *testing.T) {
	src := "module m\n" +
		"fn f(x: int, y: int) -> bool:\n" +
		"  if x 보다 y 크면:\n" +
		"    return true\n" +
		"  return false\n"

	m, err := Parse([]byte(src), "cmp.daisy")
	require.NoError(t, err)
	fn := m.Body[0].(*ast.FuncDecl)
	ifStmt := fn.Body[0].(*ast.If)
	bin, ok := ifStmt.Condition.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, ">", bin.Op)
}

func TestParseGenericCall(t *testing.T) {
	src := "module m\n" +
		"fn f() -> int:\n" +
		"  return make<int>(1)\n"

	m, err := Parse([]byte(src), "gen.daisy")
	require.NoError(t, err)
	fn := m.Body[0].(*ast.FuncDecl)
	ret := fn.Body[0].(*ast.Return)
	call, ok := ret.Value.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "make", call.Callee)
	require.Len(t, call.TypeArgs, 1)
	assert.Equal(t, "int", call.TypeArgs[0].Name)
	require.Len(t, call.Args, 1)
}

func TestParseLessThanIsNotMistakenForGenericCall(t *testing.T) {
	src := "module m\n" +
		"fn f(a: int, b: int) -> bool:\n" +
		"  return a < b\n"

	m, err := Parse([]byte(src), "lt.daisy")
	require.NoError(t, err)
	fn := m.Body[0].(*ast.FuncDecl)
	ret := fn.Body[0].(*ast.Return)
	bin, ok := ret.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "<", bin.Op)
}

func TestParseStructAndImpl(t *testing.T) {
	src := "module m\n" +
		"struct Point:\n" +
		"  x: int\n" +
		"  y: int\n" +
		"impl Point:\n" +
		"  fn sum(self: Point) -> int:\n" +
		"    return 0\n"

	m, err := Parse([]byte(src), "struct.daisy")
	require.NoError(t, err)
	require.Len(t, m.Body, 2)
	sd := m.Body[0].(*ast.StructDecl)
	assert.Equal(t, "Point", sd.Name)
	require.Len(t, sd.Fields, 2)
	impl := m.Body[1].(*ast.ImplDecl)
	assert.Equal(t, "", impl.Trait)
	assert.Equal(t, "Point", impl.Target)
	require.Len(t, impl.Methods, 1)
}

func TestParseEnumAndMatch(t *testing.T) {
	src := "module m\n" +
		"enum Option:\n" +
		"  case Some: int\n" +
		"  case None\n" +
		"fn f(o: Option) -> int:\n" +
		"  match o:\n" +
		"    case Option.Some(v):\n" +
		"      return v\n" +
		"    case Option.None:\n" +
		"      return 0\n"

	m, err := Parse([]byte(src), "enum.daisy")
	require.NoError(t, err)
	ed := m.Body[0].(*ast.EnumDecl)
	require.Len(t, ed.Cases, 2)
	assert.Equal(t, "Some", ed.Cases[0].Name)
	require.NotNil(t, ed.Cases[0].Payload)
	assert.Nil(t, ed.Cases[1].Payload)

	fn := m.Body[1].(*ast.FuncDecl)
	match := fn.Body[0].(*ast.Match)
	require.Len(t, match.Cases, 2)
	ep, ok := match.Cases[0].Pattern.(ast.EnumPattern)
	require.True(t, ok)
	assert.Equal(t, "Option", ep.EnumName)
	assert.Equal(t, "Some", ep.CaseName)
	bp, ok := ep.Payload.(ast.BindPattern)
	require.True(t, ok)
	assert.Equal(t, "v", bp.Name)
}

func TestParseBufferAndBorrowSlice(t *testing.T) {
	src := "module m\n" +
		"fn f() -> int:\n" +
		"  buffer b of 16 bytes\n" +
		"  view s = borrow mut b[0..8]\n" +
		"  return 0\n"

	m, err := Parse([]byte(src), "buf.daisy")
	require.NoError(t, err)
	fn := m.Body[0].(*ast.FuncDecl)
	bc, ok := fn.Body[0].(*ast.BufferCreate)
	require.True(t, ok)
	assert.Equal(t, "b", bc.Name)

	bs, ok := fn.Body[1].(*ast.BorrowSlice)
	require.True(t, ok)
	assert.Equal(t, "s", bs.Name)
	assert.True(t, bs.Mutable)
}

func TestParseUnsafeRequiresReasonString(t *testing.T) {
	src := "module m\n" +
		"fn f() -> int:\n" +
		"  unsafe \"raw pointer arithmetic\":\n" +
		"    return 0\n"

	m, err := Parse([]byte(src), "unsafe.daisy")
	require.NoError(t, err)
	fn := m.Body[0].(*ast.FuncDecl)
	u, ok := fn.Body[0].(*ast.UnsafeBlock)
	require.True(t, ok)
	assert.Equal(t, "raw pointer arithmetic", u.Reason)
}

func TestParseMoveAndRelease(t *testing.T) {
	src := "module m\n" +
		"fn f() -> int:\n" +
		"  buffer b of 4 bytes\n" +
		"  move b into c\n" +
		"  release c\n" +
		"  return 0\n"

	m, err := Parse([]byte(src), "move.daisy")
	require.NoError(t, err)
	fn := m.Body[0].(*ast.FuncDecl)
	mv, ok := fn.Body[1].(*ast.Move)
	require.True(t, ok)
	assert.Equal(t, "c", mv.Dst)
	_, ok = fn.Body[2].(*ast.Release)
	require.True(t, ok)
}

func TestParseImportAndUseAlias(t *testing.T) {
	src := "module m\n" +
		"import \"std/io\"\n" +
		"use \"std/math\" as m2\n"

	m, err := Parse([]byte(src), "imp.daisy")
	require.NoError(t, err)
	require.Len(t, m.Body, 2)
	imp := m.Body[0].(*ast.ImportDecl)
	assert.Equal(t, "std/io", imp.Path)
	assert.False(t, imp.Use)
	use := m.Body[1].(*ast.ImportDecl)
	assert.Equal(t, "std/math", use.Path)
	assert.Equal(t, "m2", use.Alias)
	assert.True(t, use.Use)
}

func TestParseMissingColonIsFatal(t *testing.T) {
	src := "module m\n" +
		"fn f() -> int\n" +
		"  return 0\n"

	_, err := Parse([]byte(src), "bad.daisy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAR001")
}
