package types

import (
	"github.com/daisy-lang/daisy/internal/ast"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// checkExpr resolves an expression's type, recording it in the
// node-identity-keyed side table (spec.md §4.D "Expression typing").
func (c *Checker) checkExpr(expr ast.Expr, locals map[string]Type) Type {
	t := c.checkExprUncached(expr, locals)
	c.exprTypes[expr.Node().ID] = t
	return t
}

func (c *Checker) checkExprUncached(expr ast.Expr, locals map[string]Type) Type {
	switch e := expr.(type) {
	case *ast.IntLit:
		return Int
	case *ast.StringLit:
		return String
	case *ast.BoolLit:
		return Bool

	case *ast.Name:
		if t, ok := locals[e.Ident]; ok {
			return t
		}
		c.errorf(spanOf(e), daisyerrors.NAM001, "undefined name: %s", e.Ident)
		locals[e.Ident] = Unit
		return Unit

	case *ast.MemberAccess:
		baseType := c.checkExpr(e.Value, locals)
		fields, ok := c.structDefs[baseType.Name]
		if !ok {
			c.errorf(spanOf(e), daisyerrors.TYP003, "field access requires struct type")
			return Unit
		}
		for _, f := range fields {
			if f.Name == e.Field {
				return f.Type
			}
		}
		c.errorf(spanOf(e), daisyerrors.TYP003, "unknown field: %s", e.Field)
		return Unit

	case *ast.BorrowExpr:
		targetType := c.checkExpr(e.Target, locals)
		if !targetType.Equal(Buffer) && !targetType.Equal(View) {
			c.errorf(spanOf(e), daisyerrors.TYP004, "borrowing requires buffer/view")
		}
		return View

	case *ast.CopyExpr:
		targetType := c.checkExpr(e.Target, locals)
		if !targetType.IsCopy {
			c.errorf(spanOf(e), daisyerrors.TYP004, "copy requires a Copy type")
		}
		return targetType

	case *ast.UnaryOp:
		valueType := c.checkExpr(e.Operand, locals)
		if e.Op == "not" {
			if !valueType.Equal(Bool) {
				c.errorf(spanOf(e), daisyerrors.TYP004, "logical not requires bool")
			}
			return Bool
		}
		if !valueType.Equal(Int) {
			c.errorf(spanOf(e), daisyerrors.TYP004, "unary arithmetic requires int")
		}
		return Int

	case *ast.LogicalOp:
		leftType := c.checkExpr(e.Left, locals)
		rightType := c.checkExpr(e.Right, locals)
		if !leftType.Equal(Bool) || !rightType.Equal(Bool) {
			c.errorf(spanOf(e), daisyerrors.TYP004, "logical operands must be bool")
		}
		return Bool

	case *ast.TryExpr:
		innerType := c.checkExpr(e.Target, locals)
		return c.checkTryExpr(e, innerType)

	case *ast.BinOp:
		return c.checkBinOp(e, locals)

	case *ast.Call:
		return c.checkCall(e, locals)
	}
	c.errorf(expr.Node().Span, daisyerrors.TYP001, "unknown expression")
	return Unit
}

// checkBinOp handles both arithmetic (+ - * /) and comparison operators;
// comparisons demand matching operand types and yield bool, arithmetic
// demands int and yields int (spec.md §4.D "Expression typing").
func (c *Checker) checkBinOp(e *ast.BinOp, locals map[string]Type) Type {
	left := c.checkExpr(e.Left, locals)
	right := c.checkExpr(e.Right, locals)
	switch e.Op {
	case "==", "!=", "<", ">", "<=", ">=":
		if !left.Equal(right) {
			c.errorf(spanOf(e), daisyerrors.TYP004, "comparison operands must match")
		}
		return Bool
	default:
		if !left.Equal(Int) || !right.Equal(Int) {
			c.errorf(spanOf(e), daisyerrors.TYP004, "arithmetic operands must be int")
		}
		return Int
	}
}
