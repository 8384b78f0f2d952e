package ast

import (
	"fmt"
	"strings"
)

// Dump renders a module as an indented S-expression-like tree, used by
// fixture tests to compare parsed ASTs (e.g. bilingual-keyword equivalence)
// without depending on the concrete Go struct layout.
func Dump(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(module %s\n", m.Name)
	for _, s := range m.Body {
		dumpStmt(&b, s, 1)
	}
	b.WriteString(")")
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func dumpStmt(b *strings.Builder, s Stmt, depth int) {
	indent(b, depth)
	switch n := s.(type) {
	case *FuncDecl:
		fmt.Fprintf(b, "(func %s\n", n.Name)
		for _, inner := range n.Body {
			dumpStmt(b, inner, depth+1)
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *ExternFuncDecl:
		fmt.Fprintf(b, "(extern-func %s)\n", n.Name)
	case *StructDecl:
		fmt.Fprintf(b, "(struct %s)\n", n.Name)
	case *EnumDecl:
		fmt.Fprintf(b, "(enum %s)\n", n.Name)
	case *TraitDecl:
		fmt.Fprintf(b, "(trait %s)\n", n.Name)
	case *ImplDecl:
		fmt.Fprintf(b, "(impl %s for %s)\n", n.Trait, n.Target)
	case *ImportDecl:
		fmt.Fprintf(b, "(import %q)\n", n.Path)
	case *Assign:
		fmt.Fprintf(b, "(assign %s %s)\n", dumpExpr(n.Target), dumpExpr(n.Value))
	case *AddAssign:
		fmt.Fprintf(b, "(add-assign %s %s)\n", dumpExpr(n.Target), dumpExpr(n.Value))
	case *If:
		fmt.Fprintf(b, "(if %s\n", dumpExpr(n.Condition))
		for _, inner := range n.Body {
			dumpStmt(b, inner, depth+1)
		}
		for _, el := range n.Elifs {
			indent(b, depth)
			fmt.Fprintf(b, "(elif %s\n", dumpExpr(el.Condition))
			for _, inner := range el.Body {
				dumpStmt(b, inner, depth+1)
			}
		}
		if n.Else != nil {
			indent(b, depth)
			b.WriteString("(else\n")
			for _, inner := range n.Else {
				dumpStmt(b, inner, depth+1)
			}
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *Repeat:
		fmt.Fprintf(b, "(repeat %s\n", dumpExpr(n.Count))
		for _, inner := range n.Body {
			dumpStmt(b, inner, depth+1)
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *While:
		fmt.Fprintf(b, "(while %s\n", dumpExpr(n.Condition))
		for _, inner := range n.Body {
			dumpStmt(b, inner, depth+1)
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *Match:
		fmt.Fprintf(b, "(match %s\n", dumpExpr(n.Value))
		for _, c := range n.Cases {
			indent(b, depth+1)
			b.WriteString("(case\n")
			for _, inner := range c.Body {
				dumpStmt(b, inner, depth+2)
			}
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *Print:
		fmt.Fprintf(b, "(print %s)\n", dumpExpr(n.Value))
	case *Return:
		if n.Value == nil {
			b.WriteString("(return)\n")
		} else {
			fmt.Fprintf(b, "(return %s)\n", dumpExpr(n.Value))
		}
	case *Break:
		b.WriteString("(break)\n")
	case *Continue:
		b.WriteString("(continue)\n")
	case *UnsafeBlock:
		fmt.Fprintf(b, "(unsafe %q\n", n.Reason)
		for _, inner := range n.Body {
			dumpStmt(b, inner, depth+1)
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *BufferCreate:
		fmt.Fprintf(b, "(buffer-create %s %s)\n", n.Name, dumpExpr(n.Size))
	case *BorrowSlice:
		fmt.Fprintf(b, "(borrow-slice %s %s %s %s)\n", n.Name, dumpExpr(n.Buffer), dumpExpr(n.Start), dumpExpr(n.End))
	case *Move:
		fmt.Fprintf(b, "(move %s %s)\n", n.Dst, dumpExpr(n.Src))
	case *Release:
		fmt.Fprintf(b, "(release %s)\n", dumpExpr(n.Target))
	default:
		fmt.Fprintf(b, "(unknown-stmt %T)\n", n)
	}
}

func dumpExpr(e Expr) string {
	switch n := e.(type) {
	case *IntLit:
		return fmt.Sprintf("%d", n.Value)
	case *StringLit:
		return fmt.Sprintf("%q", n.Value)
	case *BoolLit:
		return fmt.Sprintf("%t", n.Value)
	case *Name:
		return n.Ident
	case *Call:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = dumpExpr(a)
		}
		return fmt.Sprintf("(call %s %s)", n.Callee, strings.Join(parts, " "))
	case *MemberAccess:
		return fmt.Sprintf("(member %s %s)", dumpExpr(n.Value), n.Field)
	case *BinOp:
		return fmt.Sprintf("(%s %s %s)", n.Op, dumpExpr(n.Left), dumpExpr(n.Right))
	case *UnaryOp:
		return fmt.Sprintf("(%s %s)", n.Op, dumpExpr(n.Operand))
	case *LogicalOp:
		return fmt.Sprintf("(%s %s %s)", n.Op, dumpExpr(n.Left), dumpExpr(n.Right))
	case *BorrowExpr:
		if n.Mutable {
			return fmt.Sprintf("(borrow-mut %s)", dumpExpr(n.Target))
		}
		return fmt.Sprintf("(borrow %s)", dumpExpr(n.Target))
	case *CopyExpr:
		return fmt.Sprintf("(copy %s)", dumpExpr(n.Target))
	case *TryExpr:
		return fmt.Sprintf("(try %s)", dumpExpr(n.Target))
	default:
		return fmt.Sprintf("<unknown-expr %T>", n)
	}
}
