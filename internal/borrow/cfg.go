// Package borrow implements the move/borrow/release discipline: a small
// control-flow graph over a function body, a liveness fixpoint over that
// graph, and the borrow checker itself, which uses liveness to know when a
// view's lifetime has ended (SPEC_FULL.md §C.2, grounded on
// original_source/.../borrowcheck.py).
package borrow

import "github.com/daisy-lang/daisy/internal/ast"

// Node is one control-flow node: either a real statement or a synthetic
// join/kill marker (Stmt == nil) introduced at the end of a nested block to
// retire the names that block defined.
type Node struct {
	ID    int
	Stmt  ast.Stmt
	Uses  map[string]bool
	Defs  map[string]bool
	Succs []int
}

type builder struct {
	nodes []*Node
}

func (b *builder) newNode(stmt ast.Stmt, uses, defs map[string]bool) *Node {
	n := &Node{ID: len(b.nodes), Stmt: stmt, Uses: uses, Defs: defs}
	b.nodes = append(b.nodes, n)
	return n
}

// BuildCFG builds the control-flow graph for one function body and returns
// its nodes; the body's first node, when it has one, is nodes[0].
func BuildCFG(stmts []ast.Stmt) []*Node {
	b := &builder{}
	b.buildBlock(stmts, map[string]bool{}, false)
	return b.nodes
}

// buildBlock threads a sequence of statements, wiring each statement's exits
// to the next statement's entry, and — when nested — appending a synthetic
// kill node for any name the block newly defined (SPEC_FULL.md §C.2).
func (b *builder) buildBlock(block []ast.Stmt, known map[string]bool, nested bool) (entry int, exits []int, newVars map[string]bool) {
	entry = -1
	newVars = map[string]bool{}
	for _, stmt := range block {
		subEntry, subExits, subNew := b.buildStmt(stmt, known)
		if entry == -1 {
			entry = subEntry
		}
		if subEntry != -1 {
			for _, exitID := range exits {
				b.nodes[exitID].Succs = append(b.nodes[exitID].Succs, subEntry)
			}
		}
		exits = subExits
		for name := range subNew {
			newVars[name] = true
		}
	}
	if nested && len(newVars) > 0 {
		kill := b.newNode(nil, map[string]bool{}, newVars)
		for _, exitID := range exits {
			b.nodes[exitID].Succs = append(b.nodes[exitID].Succs, kill.ID)
		}
		exits = []int{kill.ID}
	}
	return entry, exits, newVars
}

func registerDefs(defs, known, newVars map[string]bool) {
	for name := range defs {
		if !known[name] {
			newVars[name] = true
			known[name] = true
		}
	}
}

func (b *builder) buildStmt(stmt ast.Stmt, known map[string]bool) (entry int, exits []int, newVars map[string]bool) {
	newVars = map[string]bool{}
	switch s := stmt.(type) {
	case *ast.Return:
		node := b.newNode(stmt, usesInStmt(stmt), map[string]bool{})
		return node.ID, nil, newVars

	case *ast.UnsafeBlock:
		return b.buildBlock(s.Body, known, true)

	case *ast.If:
		header := b.newNode(stmt, usesInExpr(s.Condition), map[string]bool{})
		branchKnown := cloneSet(known)
		bodyEntry, bodyExits, bodyNew := b.buildBlock(s.Body, branchKnown, true)
		join := b.newNode(nil, map[string]bool{}, bodyNew)
		header.Succs = append(header.Succs, join.ID)
		if bodyEntry != -1 {
			header.Succs = append(header.Succs, bodyEntry)
			for _, exitID := range bodyExits {
				b.nodes[exitID].Succs = append(b.nodes[exitID].Succs, join.ID)
			}
		}
		joinExits := []int{join.ID}
		falseEdge := header.ID
		for _, elif := range s.Elifs {
			elifHeader := b.newNode(nil, usesInExpr(elif.Condition), map[string]bool{})
			b.nodes[falseEdge].Succs = append(b.nodes[falseEdge].Succs, elifHeader.ID)
			elifKnown := cloneSet(known)
			elifEntry, elifExits, elifNew := b.buildBlock(elif.Body, elifKnown, true)
			elifJoin := b.newNode(nil, map[string]bool{}, elifNew)
			for _, exitID := range joinExits {
				b.nodes[exitID].Succs = append(b.nodes[exitID].Succs, elifJoin.ID)
			}
			elifHeader.Succs = append(elifHeader.Succs, elifJoin.ID)
			if elifEntry != -1 {
				elifHeader.Succs = append(elifHeader.Succs, elifEntry)
				for _, exitID := range elifExits {
					b.nodes[exitID].Succs = append(b.nodes[exitID].Succs, elifJoin.ID)
				}
			}
			joinExits = []int{elifJoin.ID}
			falseEdge = elifHeader.ID
		}
		if s.Else != nil {
			elseKnown := cloneSet(known)
			elseEntry, elseExits, elseNew := b.buildBlock(s.Else, elseKnown, true)
			elseJoin := b.newNode(nil, map[string]bool{}, elseNew)
			for _, exitID := range joinExits {
				b.nodes[exitID].Succs = append(b.nodes[exitID].Succs, elseJoin.ID)
			}
			if elseEntry != -1 {
				b.nodes[falseEdge].Succs = append(b.nodes[falseEdge].Succs, elseEntry)
				for _, exitID := range elseExits {
					b.nodes[exitID].Succs = append(b.nodes[exitID].Succs, elseJoin.ID)
				}
			}
			joinExits = []int{elseJoin.ID}
		}
		return header.ID, joinExits, newVars

	case *ast.Repeat:
		header := b.newNode(stmt, usesInExpr(s.Count), map[string]bool{})
		loopKnown := cloneSet(known)
		bodyEntry, bodyExits, bodyNew := b.buildBlock(s.Body, loopKnown, false)
		kill := b.newNode(nil, map[string]bool{}, bodyNew)
		header.Succs = append(header.Succs, kill.ID)
		if bodyEntry != -1 {
			header.Succs = append(header.Succs, bodyEntry)
			for _, exitID := range bodyExits {
				b.nodes[exitID].Succs = append(b.nodes[exitID].Succs, header.ID)
			}
		}
		return header.ID, []int{kill.ID}, newVars

	case *ast.While:
		header := b.newNode(stmt, usesInExpr(s.Condition), map[string]bool{})
		loopKnown := cloneSet(known)
		bodyEntry, bodyExits, bodyNew := b.buildBlock(s.Body, loopKnown, false)
		kill := b.newNode(nil, map[string]bool{}, bodyNew)
		header.Succs = append(header.Succs, kill.ID)
		if bodyEntry != -1 {
			header.Succs = append(header.Succs, bodyEntry)
			for _, exitID := range bodyExits {
				b.nodes[exitID].Succs = append(b.nodes[exitID].Succs, header.ID)
			}
		}
		return header.ID, []int{kill.ID}, newVars

	default:
		defs := defsInStmt(stmt)
		node := b.newNode(stmt, usesInStmt(stmt), defs)
		registerDefs(defs, known, newVars)
		return node.ID, []int{node.ID}, newVars
	}
}

func cloneSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func defsInStmt(stmt ast.Stmt) map[string]bool {
	out := map[string]bool{}
	switch s := stmt.(type) {
	case *ast.Assign:
		if target, ok := s.Target.(*ast.Name); ok {
			out[target.Ident] = true
		}
	case *ast.AddAssign:
		if target, ok := s.Target.(*ast.Name); ok {
			out[target.Ident] = true
		}
	case *ast.BufferCreate:
		out[s.Name] = true
	case *ast.BorrowSlice:
		out[s.Name] = true
	case *ast.Move:
		out[s.Dst] = true
	}
	return out
}

func usesInStmt(stmt ast.Stmt) map[string]bool {
	out := map[string]bool{}
	switch s := stmt.(type) {
	case *ast.Assign:
		mergeInto(out, usesInExpr(s.Value))
	case *ast.AddAssign:
		mergeInto(out, usesInExpr(s.Target))
		mergeInto(out, usesInExpr(s.Value))
	case *ast.Print:
		mergeInto(out, usesInExpr(s.Value))
	case *ast.Return:
		if s.Value != nil {
			mergeInto(out, usesInExpr(s.Value))
		}
	case *ast.While:
		mergeInto(out, usesInExpr(s.Condition))
	case *ast.BufferCreate:
		mergeInto(out, usesInExpr(s.Size))
	case *ast.BorrowSlice:
		mergeInto(out, usesInExpr(s.Buffer))
		mergeInto(out, usesInExpr(s.Start))
		mergeInto(out, usesInExpr(s.End))
	case *ast.Move:
		mergeInto(out, usesInExpr(s.Src))
	case *ast.Release:
		mergeInto(out, usesInExpr(s.Target))
	case *ast.UnsafeBlock:
		for _, inner := range s.Body {
			mergeInto(out, usesInStmt(inner))
		}
	}
	return out
}

func usesInExpr(expr ast.Expr) map[string]bool {
	out := map[string]bool{}
	switch e := expr.(type) {
	case *ast.Name:
		out[e.Ident] = true
	case *ast.Call:
		for _, arg := range e.Args {
			mergeInto(out, usesInExpr(arg))
		}
	case *ast.BorrowExpr:
		mergeInto(out, usesInExpr(e.Target))
	case *ast.CopyExpr:
		mergeInto(out, usesInExpr(e.Target))
	case *ast.MemberAccess:
		mergeInto(out, usesInExpr(e.Value))
	case *ast.BinOp:
		mergeInto(out, usesInExpr(e.Left))
		mergeInto(out, usesInExpr(e.Right))
	case *ast.UnaryOp:
		mergeInto(out, usesInExpr(e.Operand))
	case *ast.LogicalOp:
		mergeInto(out, usesInExpr(e.Left))
		mergeInto(out, usesInExpr(e.Right))
	case *ast.TryExpr:
		mergeInto(out, usesInExpr(e.Target))
	}
	return out
}

func mergeInto(dst, src map[string]bool) {
	for k := range src {
		dst[k] = true
	}
}

func extractName(e ast.Expr) string {
	if n, ok := e.(*ast.Name); ok {
		return n.Ident
	}
	return ""
}
