package errors

import (
	"bytes"
	"testing"

	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/stretchr/testify/assert"
)

func TestDiagnosticStringWithAndWithoutSpan(t *testing.T) {
	withSpan := Diagnostic{Code: TYP001, Message: "type mismatch", Span: &ast.Span{StartLine: 3, StartCol: 5}}
	assert.Equal(t, "L3:5 type mismatch", withSpan.String())

	bare := Diagnostic{Code: DEP001, Message: "manifest not found"}
	assert.Equal(t, "manifest not found", bare.String())
}

func TestListHasErrorsIgnoresWarnings(t *testing.T) {
	var l List
	l.Warnf(LEX001, nil, "advisory only")
	assert.False(t, l.HasErrors())

	l.Errorf(TYP001, nil, "real problem")
	assert.True(t, l.HasErrors())
	assert.Len(t, l.Items(), 2)
}

func TestListMergePreservesOrder(t *testing.T) {
	var a, b List
	a.Errorf(PAR001, nil, "first")
	b.Errorf(PAR002, nil, "second")
	a.Merge(&b)

	got := a.Items()
	assert.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
}

func TestIsFatalByPhase(t *testing.T) {
	assert.True(t, IsFatal(LEX001))
	assert.True(t, IsFatal(VAL001))
	assert.True(t, IsFatal(ABI001))
	assert.False(t, IsFatal(TYP001))
	assert.False(t, IsFatal(BOR002))
}

func TestRendererWritesCodeAndCaret(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{
		Out:    &buf,
		Source: map[string][]string{"a.daisy": {"buffer b of 8 bytes"}},
	}
	var l List
	l.Errorf(BOR001, &ast.Span{File: "a.daisy", StartLine: 1, StartCol: 8}, "borrow conflict on b")
	r.Render("a.daisy", &l)

	out := buf.String()
	assert.Contains(t, out, "BOR001")
	assert.Contains(t, out, "borrow conflict on b")
	assert.Contains(t, out, "^")
}
