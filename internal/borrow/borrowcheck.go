package borrow

import (
	"fmt"

	"github.com/daisy-lang/daisy/internal/ast"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
	"github.com/daisy-lang/daisy/internal/region"
	"github.com/daisy-lang/daisy/internal/types"
)

// activeBorrow records one live borrow taken over an owning buffer/view.
type activeBorrow struct {
	owner   string
	mutable bool
	varName string
}

// Checker enforces the borrow/move/release discipline described by
// SPEC_FULL.md §C.2: at most one mutable (or many immutable, never mixed)
// borrow of an owner may be live at once, a moved-from name may not be used
// again until reassigned, and a buffer/view may not be released while any
// borrow over it is still live.
type Checker struct {
	errs *daisyerrors.List

	exprTypes map[ast.NodeID]types.Type

	activeBorrows map[string][]activeBorrow
	scopeStack    [][]activeBorrow
	moved         map[string]bool
	movedAt       map[string]ast.Span
	unsafeStack   []bool
	currentFunc   string

	stmtNode map[ast.NodeID]int
	liveIn   map[int]map[string]bool
	liveOut  map[int]map[string]bool

	borrowVarOwner   map[string]string
	borrowVarMutable map[string]bool
}

// NewChecker builds a borrow checker that consults a type checker's
// per-expression type side table to decide which values are Copy.
func NewChecker(exprTypes map[ast.NodeID]types.Type) *Checker {
	return &Checker{
		errs:      &daisyerrors.List{},
		exprTypes: exprTypes,
	}
}

// Diagnostics returns every borrow/move/release diagnostic recorded so far.
func (c *Checker) Diagnostics() *daisyerrors.List { return c.errs }

// CheckModule walks every top-level function, skipping externs, traits,
// impls (their methods are checked individually), and generic functions
// (checked only once specialized, per the type checker's own pass).
func (c *Checker) CheckModule(m *ast.Module) *daisyerrors.List {
	for _, stmt := range m.Body {
		switch s := stmt.(type) {
		case *ast.FuncDecl:
			if len(s.TypeParams) > 0 {
				continue
			}
			c.checkFunction(s)
		case *ast.ImplDecl:
			for _, method := range s.Methods {
				c.checkFunction(method)
			}
		}
	}
	return c.errs
}

func (c *Checker) checkFunction(fn *ast.FuncDecl) {
	localVars := map[string]types.Type{}
	c.activeBorrows = map[string][]activeBorrow{}
	c.scopeStack = [][]activeBorrow{{}}
	c.moved = map[string]bool{}
	c.movedAt = map[string]ast.Span{}
	c.unsafeStack = []bool{false}
	c.currentFunc = fn.Name

	regionInfo := region.Infer(fn.Body)
	for _, w := range regionInfo.Warnings {
		c.warn("region inference: " + w)
	}

	c.analyzeCFG(fn.Body)
	for _, stmt := range fn.Body {
		c.checkStmt(stmt, localVars)
	}
	c.currentFunc = ""
}

func (c *Checker) analyzeCFG(body []ast.Stmt) {
	nodes := BuildCFG(body)
	c.stmtNode = map[ast.NodeID]int{}
	for _, n := range nodes {
		if n.Stmt != nil {
			c.stmtNode[n.Stmt.Node().ID] = n.ID
		}
	}
	c.borrowVarOwner = collectBorrowMapping(nodes)
	c.liveIn, c.liveOut = ComputeLiveness(nodes)
}

func collectBorrowMapping(nodes []*Node) map[string]string {
	mapping := map[string]string{}
	for _, n := range nodes {
		switch s := n.Stmt.(type) {
		case *ast.BorrowSlice:
			if owner := extractName(s.Buffer); owner != "" {
				mapping[s.Name] = owner
			}
		case *ast.Assign:
			if target, ok := s.Target.(*ast.Name); ok {
				if be, ok := s.Value.(*ast.BorrowExpr); ok {
					if owner := extractName(be.Target); owner != "" {
						mapping[target.Ident] = owner
					}
				}
			}
		}
	}
	return mapping
}

func (c *Checker) checkStmt(stmt ast.Stmt, locals map[string]types.Type) {
	c.pruneDeadBorrows(stmt)
	switch s := stmt.(type) {
	case *ast.Assign:
		if target, ok := s.Target.(*ast.Name); ok {
			if be, ok := s.Value.(*ast.BorrowExpr); ok {
				if owner := extractName(be.Target); owner != "" {
					c.registerBorrow(owner, be.Mutable, target.Ident, stmt)
				}
			}
		}
		valueType := c.checkExpr(s.Value, locals)
		if target, ok := s.Target.(*ast.Name); ok {
			locals[target.Ident] = valueType
			if c.moved[target.Ident] {
				c.moved[target.Ident] = false
			}
		}
		if name, ok := s.Value.(*ast.Name); ok {
			c.moveIfNeeded(name.Ident, locals, stmt, name.Node().Span)
		}

	case *ast.AddAssign:
		c.checkExprNoMove(s.Target, locals)
		c.checkExpr(s.Value, locals)

	case *ast.If:
		c.checkExpr(s.Condition, locals)
		c.withScope(func() {
			for _, inner := range s.Body {
				c.checkStmt(inner, locals)
			}
		})
		for _, elif := range s.Elifs {
			c.checkExpr(elif.Condition, locals)
			c.withScope(func() {
				for _, inner := range elif.Body {
					c.checkStmt(inner, locals)
				}
			})
		}
		if s.Else != nil {
			c.withScope(func() {
				for _, inner := range s.Else {
					c.checkStmt(inner, locals)
				}
			})
		}

	case *ast.Repeat:
		c.checkExpr(s.Count, locals)
		c.withScope(func() {
			for _, inner := range s.Body {
				c.checkStmt(inner, locals)
			}
		})

	case *ast.While:
		c.checkExpr(s.Condition, locals)
		c.withScope(func() {
			for _, inner := range s.Body {
				c.checkStmt(inner, locals)
			}
		})

	case *ast.Match:
		c.checkExpr(s.Value, locals)
		for _, arm := range s.Cases {
			c.withScope(func() {
				c.checkPatternExprs(arm.Pattern, locals)
				if arm.Guard != nil {
					c.checkExpr(arm.Guard, locals)
				}
				for _, inner := range arm.Body {
					c.checkStmt(inner, locals)
				}
			})
		}
		if s.Else != nil {
			c.withScope(func() {
				for _, inner := range s.Else {
					c.checkStmt(inner, locals)
				}
			})
		}

	case *ast.UnsafeBlock:
		c.unsafeStack = append(c.unsafeStack, true)
		c.withScope(func() {
			for _, inner := range s.Body {
				c.checkStmt(inner, locals)
			}
		})
		c.unsafeStack = c.unsafeStack[:len(c.unsafeStack)-1]

	case *ast.Print:
		c.checkExpr(s.Value, locals)

	case *ast.Return:
		if s.Value != nil {
			c.checkExpr(s.Value, locals)
		}

	case *ast.BufferCreate:
		locals[s.Name] = types.Buffer

	case *ast.BorrowSlice:
		c.checkExprNoMove(s.Buffer, locals)
		if owner := extractName(s.Buffer); owner != "" {
			c.registerBorrow(owner, s.Mutable, s.Name, stmt)
		}
		locals[s.Name] = types.View

	case *ast.Move:
		if name, ok := s.Src.(*ast.Name); ok {
			c.moveIfNeeded(name.Ident, locals, stmt, name.Node().Span)
		}
		locals[s.Dst] = c.typeOfExpr(s.Src, locals)

	case *ast.Release:
		c.checkExprNoMove(s.Target, locals)
		if name := extractName(s.Target); name != "" {
			if len(c.activeBorrows[name]) > 0 {
				if !c.borrowsExpired(name, stmt) {
					if !c.inUnsafe() {
						c.diagCode(stmt, daisyerrors.BOR004, fmt.Sprintf("cannot release '%s' while borrows are alive", name))
					}
				}
				c.activeBorrows[name] = nil
			}
		}

	case *ast.FuncDecl:
		c.checkFunction(s)
	}
}

func (c *Checker) withScope(f func()) {
	c.enterScope()
	f()
	c.exitScope()
}

func (c *Checker) checkPatternExprs(pattern ast.Pattern, locals map[string]types.Type) {
	switch p := pattern.(type) {
	case ast.LiteralPattern:
		c.checkExpr(p.Value, locals)
	case ast.StructPattern:
		for _, field := range p.Fields {
			c.checkPatternExprs(field, locals)
		}
	case ast.EnumPattern:
		if p.Payload != nil {
			c.checkPatternExprs(p.Payload, locals)
		}
	}
}

func (c *Checker) checkExpr(expr ast.Expr, locals map[string]types.Type) types.Type {
	return c.checkExprOpt(expr, locals, true)
}

func (c *Checker) checkExprNoMove(expr ast.Expr, locals map[string]types.Type) types.Type {
	return c.checkExprOpt(expr, locals, false)
}

func (c *Checker) checkExprOpt(expr ast.Expr, locals map[string]types.Type, allowMove bool) types.Type {
	switch e := expr.(type) {
	case *ast.Name:
		if c.moved[e.Ident] {
			span, ok := c.movedAt[e.Ident]
			msg := fmt.Sprintf("use after move: %s", e.Ident)
			if ok {
				msg = fmt.Sprintf("use after move: %s (moved at L%d:%d)", e.Ident, span.StartLine, span.StartCol)
			}
			if !c.inUnsafe() {
				c.diagSpan(e.Node().Span, daisyerrors.BOR002, msg)
			}
		}
		if t, ok := locals[e.Ident]; ok {
			return t
		}
		return types.Unit

	case *ast.BorrowExpr:
		c.checkExprOpt(e.Target, locals, false)
		return c.lookupExprType(e, types.View)

	case *ast.CopyExpr:
		c.checkExprOpt(e.Target, locals, false)
		return c.lookupExprType(e, types.Unit)

	case *ast.MemberAccess:
		c.checkExprOpt(e.Value, locals, false)
		return c.lookupExprType(e, types.Unit)

	case *ast.Call:
		for _, arg := range e.Args {
			c.checkExpr(arg, locals)
		}
		return c.lookupExprType(e, types.Unit)

	case *ast.IntLit:
		return types.Int
	case *ast.StringLit:
		return types.String
	case *ast.BoolLit:
		return types.Bool

	case *ast.BinOp:
		c.checkExpr(e.Left, locals)
		c.checkExpr(e.Right, locals)
		leftType := c.typeOfExpr(e.Left, locals)
		rightType := c.typeOfExpr(e.Right, locals)
		if (!leftType.IsCopy || !rightType.IsCopy) && !c.inUnsafe() {
			c.diagSpan(e.Node().Span, daisyerrors.BOR002, "arithmetic operands must be Copy types")
		}
		return c.lookupExprType(e, types.Unit)

	case *ast.UnaryOp:
		c.checkExpr(e.Operand, locals)
		valueType := c.typeOfExpr(e.Operand, locals)
		if !valueType.IsCopy {
			c.diagSpan(e.Node().Span, daisyerrors.BOR002, "unary arithmetic requires Copy type")
		}
		return c.lookupExprType(e, types.Unit)

	case *ast.LogicalOp:
		c.checkExpr(e.Left, locals)
		c.checkExpr(e.Right, locals)
		return c.lookupExprType(e, types.Unit)

	case *ast.TryExpr:
		return c.checkExprOpt(e.Target, locals, allowMove)
	}
	return types.Unit
}

func (c *Checker) lookupExprType(expr ast.Expr, fallback types.Type) types.Type {
	if t, ok := c.exprTypes[expr.Node().ID]; ok {
		return t
	}
	return fallback
}

func (c *Checker) typeOfExpr(expr ast.Expr, locals map[string]types.Type) types.Type {
	if name, ok := expr.(*ast.Name); ok {
		if t, ok := locals[name.Ident]; ok {
			return t
		}
		return types.Unit
	}
	return c.lookupExprType(expr, types.Unit)
}

func (c *Checker) borrowsExpired(owner string, stmt ast.Stmt) bool {
	nodeID, ok := c.stmtNode[stmt.Node().ID]
	if !ok {
		return false
	}
	live := c.liveOut[nodeID]
	for _, b := range c.activeBorrows[owner] {
		if live[b.varName] {
			return false
		}
	}
	return true
}

func (c *Checker) pruneDeadBorrows(stmt ast.Stmt) {
	nodeID, ok := c.stmtNode[stmt.Node().ID]
	if !ok {
		return
	}
	live := c.liveIn[nodeID]
	for owner, borrows := range c.activeBorrows {
		var alive []activeBorrow
		for _, b := range borrows {
			if live[b.varName] {
				alive = append(alive, b)
			}
		}
		c.activeBorrows[owner] = alive
	}
}

func (c *Checker) registerBorrow(owner string, mutable bool, varName string, stmt ast.Stmt) {
	nodeID, ok := c.stmtNode[stmt.Node().ID]
	var live map[string]bool
	if ok {
		live = c.liveIn[nodeID]
	}
	for borrowVar, borrowOwner := range c.borrowVarOwner {
		if borrowOwner != owner || !live[borrowVar] {
			continue
		}
		existingMut := c.borrowVarMutable[borrowVar]
		if mutable || existingMut {
			conflict, existing := "immutable", "immutable"
			if mutable {
				conflict = "mutable"
			}
			if existingMut {
				existing = "mutable"
			}
			if !c.inUnsafe() {
				c.diagCode(stmt, daisyerrors.BOR001, fmt.Sprintf("borrow conflict: %s borrow overlaps %s borrow '%s'", conflict, existing, borrowVar))
				return
			}
		}
	}
	info := activeBorrow{owner: owner, mutable: mutable, varName: varName}
	c.activeBorrows[owner] = append(c.activeBorrows[owner], info)
	c.borrowVarOwner[varName] = owner
	if c.borrowVarMutable == nil {
		c.borrowVarMutable = map[string]bool{}
	}
	c.borrowVarMutable[varName] = mutable
	if len(c.scopeStack) > 0 {
		top := len(c.scopeStack) - 1
		c.scopeStack[top] = append(c.scopeStack[top], info)
	}
}

func (c *Checker) moveIfNeeded(name string, locals map[string]types.Type, stmt ast.Stmt, span ast.Span) {
	t, ok := locals[name]
	if !ok || t.IsCopy {
		return
	}
	if len(c.activeBorrows[name]) > 0 {
		if !c.borrowsExpired(name, stmt) && !c.inUnsafe() {
			c.diagCode(stmt, daisyerrors.BOR003, fmt.Sprintf("cannot move '%s' while it is borrowed", name))
			return
		}
	}
	c.moved[name] = true
	c.movedAt[name] = span
}

func (c *Checker) enterScope() {
	c.scopeStack = append(c.scopeStack, nil)
}

func (c *Checker) exitScope() {
	if len(c.scopeStack) == 0 {
		return
	}
	top := len(c.scopeStack) - 1
	borrows := c.scopeStack[top]
	c.scopeStack = c.scopeStack[:top]
	for _, info := range borrows {
		owner := c.activeBorrows[info.owner]
		var kept []activeBorrow
		for _, b := range owner {
			if b != info {
				kept = append(kept, b)
			}
		}
		c.activeBorrows[info.owner] = kept
	}
}

func (c *Checker) inUnsafe() bool {
	return len(c.unsafeStack) > 0 && c.unsafeStack[len(c.unsafeStack)-1]
}

func (c *Checker) diagCode(stmt ast.Stmt, code, message string) {
	if stmt == nil {
		c.errs.Errorf(code, nil, "%s", c.withFuncSuffix(message))
		return
	}
	c.diagSpan(stmt.Node().Span, code, message)
}

func (c *Checker) diagSpan(span ast.Span, code, message string) {
	c.errs.Errorf(code, &span, "%s", c.withFuncSuffix(message))
}

func (c *Checker) withFuncSuffix(message string) string {
	if c.currentFunc == "" {
		return message
	}
	return fmt.Sprintf("%s (in fn %s)", message, c.currentFunc)
}

// warn records a warning-level diagnostic, used for region-inference
// findings (advisory only — never mixed into the error count).
func (c *Checker) warn(message string) {
	c.errs.Warnf(daisyerrors.BOR002, nil, "%s", message)
}
