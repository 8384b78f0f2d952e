package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/sid"
)

// emitUnsafeReport writes a per-module audit log of every scoped unsafe
// block's location and reason string, so a reviewer can grep build/ for
// every escape hatch without reading the source. Grounded on driver.py's
// _emit_unsafe_report; writes nothing when a module has no unsafe blocks.
//
// Each entry also carries a sid.SID keyed on the block's span and nesting
// path: a reviewer diffing two builds' *.unsafe.log files can match entries
// by that ID across a build where unrelated lines shifted, rather than by
// line number alone. Grounded on the teacher's internal/sid/sid.go hash
// formula (path|start|end|kind|childpath), adapted from the teacher's byte
// offsets to this span's line/column pair since the parser does not track
// byte offsets.
func emitUnsafeReport(mod *ast.Module, buildDir string) error {
	var entries []string
	var walk func(stmts []ast.Stmt, childPath []int)
	walk = func(stmts []ast.Stmt, childPath []int) {
		for i, stmt := range stmts {
			path := append(append([]int{}, childPath...), i)
			switch s := stmt.(type) {
			case *ast.UnsafeBlock:
				reason := s.Reason
				if reason == "" {
					reason = "missing"
				}
				span := s.Node().Span
				start := span.StartLine*10000 + span.StartCol
				end := span.EndLine*10000 + span.EndCol
				id := sid.NewSID(mod.Name, start, end, "unsafe_block", path)
				entries = append(entries, fmt.Sprintf("L%d:%d [%s] %s", span.StartLine, span.StartCol, id, reason))
				walk(s.Body, path)
			case *ast.FuncDecl:
				walk(s.Body, path)
			case *ast.ImplDecl:
				for _, m := range s.Methods {
					walk(m.Body, path)
				}
			case *ast.Match:
				for _, arm := range s.Cases {
					walk(arm.Body, path)
				}
				walk(s.Else, path)
			case *ast.If:
				walk(s.Body, path)
				for _, elif := range s.Elifs {
					walk(elif.Body, path)
				}
				walk(s.Else, path)
			case *ast.Repeat:
				walk(s.Body, path)
			case *ast.While:
				walk(s.Body, path)
			}
		}
	}
	walk(mod.Body, nil)
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	lines := append([]string{"module: " + mod.Name}, entries...)
	logPath := filepath.Join(buildDir, mod.Name+".unsafe.log")
	return os.WriteFile(logPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}
