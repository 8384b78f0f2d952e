package ast

// Expr is the closed sum type for expressions (spec.md §3 "Expression").
type Expr interface {
	Node() Node
	exprNode()
}

// IntLit is an integer literal.
type IntLit struct {
	N     Node
	Value int64
}

func (l *IntLit) Node() Node { return l.N }
func (*IntLit) exprNode()    {}

// StringLit is a string literal.
type StringLit struct {
	N     Node
	Value string
}

func (l *StringLit) Node() Node { return l.N }
func (*StringLit) exprNode()    {}

// BoolLit is `true`/`false` (or their Korean surface spellings, normalized
// by the parser before this node is built).
type BoolLit struct {
	N     Node
	Value bool
}

func (l *BoolLit) Node() Node { return l.N }
func (*BoolLit) exprNode()    {}

// Name is a bare identifier reference.
type Name struct {
	N    Node
	Ident string
}

func (n *Name) Node() Node { return n.N }
func (*Name) exprNode()    {}

// Call is a function or method call. Callee starts as the surface name and
// is rewritten in place by the type checker to the mangled specialization
// name once monomorphization resolves it (spec.md §4.D, §9).
type Call struct {
	N        Node
	Callee   string
	TypeArgs []*TypeRef // explicit generic call syntax, possibly empty
	Args     []Expr
}

func (c *Call) Node() Node { return c.N }
func (*Call) exprNode()    {}

// MemberAccess is `value.Field` (struct field read or enum payload probe,
// disambiguated by the type checker, not the parser).
type MemberAccess struct {
	N     Node
	Value Expr
	Field string
}

func (m *MemberAccess) Node() Node { return m.N }
func (*MemberAccess) exprNode()    {}

// BinOp is an arithmetic, comparison, or bitwise binary operator.
type BinOp struct {
	N     Node
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinOp) Node() Node { return b.N }
func (*BinOp) exprNode()    {}

// UnaryOp is a prefix unary operator (`-`, `not`).
type UnaryOp struct {
	N       Node
	Op      string
	Operand Expr
}

func (u *UnaryOp) Node() Node { return u.N }
func (*UnaryOp) exprNode()    {}

// LogicalOp is short-circuiting `and`/`or`.
type LogicalOp struct {
	N     Node
	Op    string
	Left  Expr
	Right Expr
}

func (l *LogicalOp) Node() Node { return l.N }
func (*LogicalOp) exprNode()    {}

// BorrowExpr produces an immutable or mutable borrow of Target.
type BorrowExpr struct {
	N       Node
	Target  Expr
	Mutable bool
}

func (b *BorrowExpr) Node() Node { return b.N }
func (*BorrowExpr) exprNode()    {}

// CopyExpr explicitly requests a copy of Target rather than a move, legal
// only for types implementing the Copy trait (checked by the type checker,
// not the parser).
type CopyExpr struct {
	N      Node
	Target Expr
}

func (c *CopyExpr) Node() Node { return c.N }
func (*CopyExpr) exprNode()    {}

// TryExpr is `try EXPR`: propagates an Err/None case to the enclosing
// function's return on failure (spec.md §4.E "try propagation").
type TryExpr struct {
	N      Node
	Target Expr
}

func (t *TryExpr) Node() Node { return t.N }
func (*TryExpr) exprNode()    {}
