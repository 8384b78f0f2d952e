// Package region performs advisory region inference over a function body:
// it tags buffer-owning names with a synthetic region id, propagates that id
// through borrow-slices and plain name-to-name assignments, and flags
// conflicting region merges across branches/loops. It never gates the borrow
// checker (spec.md §9 "Region inference"); a caller that wants its findings
// surfaced files them as warnings.
package region

import (
	"strconv"

	"github.com/daisy-lang/daisy/internal/ast"
)

// Info is the result of inferring regions for one function body.
type Info struct {
	Regions  map[string]string
	Warnings []string
}

// Infer walks a function body's statements, assigning each `buffer` name a
// fresh region id and propagating it to views taken over that buffer and to
// plain-name aliases, merging the regions seen at the end of each branch/loop
// body back into the surrounding scope (original_source/.../region_infer.py).
func Infer(body []ast.Stmt) Info {
	inf := &inferer{regionOf: map[string]string{}}
	inf.visitBlock(body)
	return Info{Regions: inf.regionOf, Warnings: inf.warnings}
}

type inferer struct {
	regionOf map[string]string
	warnings []string
	counter  int
}

func (inf *inferer) newRegion() string {
	inf.counter++
	return "r" + strconv.Itoa(inf.counter)
}

func (inf *inferer) visitBlock(stmts []ast.Stmt) {
	for _, s := range stmts {
		inf.visitStmt(s)
	}
}

func (inf *inferer) visitStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BufferCreate:
		inf.regionOf[s.Name] = inf.newRegion()

	case *ast.BorrowSlice:
		if owner := extractName(s.Buffer); owner != "" {
			if r, ok := inf.regionOf[owner]; ok {
				inf.regionOf[s.Name] = r
			}
		}

	case *ast.Assign:
		if target, ok := s.Target.(*ast.Name); ok {
			if value, ok := s.Value.(*ast.Name); ok {
				if r, ok := inf.regionOf[value.Ident]; ok {
					inf.regionOf[target.Ident] = r
				}
			}
		}

	case *ast.If:
		before := cloneRegions(inf.regionOf)
		inf.visitBlock(s.Body)
		after := cloneRegions(inf.regionOf)
		inf.regionOf = inf.mergeRegions(before, after)
		for _, elif := range s.Elifs {
			before := cloneRegions(inf.regionOf)
			inf.visitBlock(elif.Body)
			after := cloneRegions(inf.regionOf)
			inf.regionOf = inf.mergeRegions(before, after)
		}
		if s.Else != nil {
			before := cloneRegions(inf.regionOf)
			inf.visitBlock(s.Else)
			after := cloneRegions(inf.regionOf)
			inf.regionOf = inf.mergeRegions(before, after)
		}

	case *ast.Repeat:
		before := cloneRegions(inf.regionOf)
		inf.visitBlock(s.Body)
		after := cloneRegions(inf.regionOf)
		inf.regionOf = inf.mergeRegions(before, after)

	case *ast.While:
		before := cloneRegions(inf.regionOf)
		inf.visitBlock(s.Body)
		after := cloneRegions(inf.regionOf)
		inf.regionOf = inf.mergeRegions(before, after)
	}
}

// mergeRegions reconciles the regions observed before and after a branch or
// loop body, recording a warning (never an error) on conflicting region ids
// for the same name, and keeping the pre-branch id on conflict.
func (inf *inferer) mergeRegions(before, after map[string]string) map[string]string {
	merged := cloneRegions(before)
	for name, region := range after {
		if existing, ok := merged[name]; ok && existing != region {
			inf.warnings = append(inf.warnings, "region mismatch for "+name+": "+existing+" vs "+region)
			continue
		}
		merged[name] = region
	}
	return merged
}

func cloneRegions(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func extractName(e ast.Expr) string {
	if n, ok := e.(*ast.Name); ok {
		return n.Ident
	}
	return ""
}
