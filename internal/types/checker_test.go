package types

import (
	"testing"

	"github.com/daisy-lang/daisy/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkSource(t *testing.T, src string) *Checker {
	t.Helper()
	m, err := parser.Parse([]byte(src), "test.daisy")
	require.NoError(t, err)
	c := NewChecker(ExternalInputs{})
	c.CheckModule(m)
	return c
}

func TestCheckHelloWorldHasNoErrors(t *testing.T) {
	c := checkSource(t, "module hello\n"+
		"fn main() -> int:\n"+
		"  print \"hi\"\n"+
		"  return 0\n")
	assert.False(t, c.Diagnostics().HasErrors())
}

func TestCheckReturnTypeMismatchIsReported(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  return \"oops\"\n")
	require.True(t, c.Diagnostics().HasErrors())
	assert.Contains(t, c.Diagnostics().Items()[0].Code, "TYP")
}

func TestCheckUndefinedNameIsReported(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  return x\n")
	require.True(t, c.Diagnostics().HasErrors())
	assert.Equal(t, "NAM001", c.Diagnostics().Items()[0].Code)
}

func TestCheckStructConstructorAndFieldAccess(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"struct Point:\n"+
		"  x: int\n"+
		"  y: int\n"+
		"fn f() -> int:\n"+
		"  set p = Point(1, 2)\n"+
		"  return p.x\n")
	assert.False(t, c.Diagnostics().HasErrors())
	fields := c.StructDefs()["Point"]
	require.Len(t, fields, 2)
	assert.Equal(t, Int, fields[0].Type)
}

func TestCheckStructFieldTypeMismatchIsReported(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"struct Point:\n"+
		"  x: int\n"+
		"fn f() -> int:\n"+
		"  set p = Point(\"nope\")\n"+
		"  return 0\n")
	require.True(t, c.Diagnostics().HasErrors())
}

func TestCheckImplMethodCallRewritesToFlatName(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"struct Counter:\n"+
		"  n: int\n"+
		"impl Counter:\n"+
		"  fn get(self: Counter) -> int:\n"+
		"    return self.n\n"+
		"fn f() -> int:\n"+
		"  set c = Counter(1)\n"+
		"  return c.get()\n")
	assert.False(t, c.Diagnostics().HasErrors())
	_, ok := c.FuncSigs()["Counter__get"]
	assert.True(t, ok)
}

func TestCheckGenericStructSpecializationIsCached(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"struct Box<T>:\n"+
		"  value: T\n"+
		"fn f() -> int:\n"+
		"  set a = Box<int>(1)\n"+
		"  set b = Box<int>(2)\n"+
		"  return a.value\n")
	assert.False(t, c.Diagnostics().HasErrors())
	_, ok := c.StructDefs()["Box__int"]
	assert.True(t, ok)
	assert.Len(t, c.StructDefs(), 1)
}

func TestCheckTraitBoundViolationIsReported(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"trait Printable:\n"+
		"  fn show(self: Self) -> string\n"+
		"struct Widget:\n"+
		"  n: int\n"+
		"fn f<T: Printable>(x: T) -> int:\n"+
		"  return 0\n"+
		"fn g() -> int:\n"+
		"  return f<Widget>(Widget(1))\n")
	require.True(t, c.Diagnostics().HasErrors())
	found := false
	for _, d := range c.Diagnostics().Items() {
		if d.Code == "TRA001" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCheckUnsafeBlockMissingReasonIsReported(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  unsafe \"\":\n"+
		"    return 0\n")
	require.True(t, c.Diagnostics().HasErrors())
	assert.Equal(t, "TYP005", c.Diagnostics().Items()[0].Code)
}

func TestCheckMatchOverEnumBindsPayload(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"enum Option:\n"+
		"  case Some: int\n"+
		"  case None\n"+
		"fn f(o: Option) -> int:\n"+
		"  match o:\n"+
		"    case Option.Some(v):\n"+
		"      return v\n"+
		"    case Option.None:\n"+
		"      return 0\n")
	assert.False(t, c.Diagnostics().HasErrors())
}

func TestCheckBreakOutsideLoopIsReported(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  break\n"+
		"  return 0\n")
	require.True(t, c.Diagnostics().HasErrors())
	assert.Equal(t, "TYP004", c.Diagnostics().Items()[0].Code)
}

func TestCheckBorrowAndBufferTypes(t *testing.T) {
	c := checkSource(t, "module m\n"+
		"fn f() -> int:\n"+
		"  buffer b of 16 bytes\n"+
		"  view s = borrow b[0..8]\n"+
		"  return 0\n")
	assert.False(t, c.Diagnostics().HasErrors())
}
