package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daisy-lang/daisy/internal/core"
)

// writeIRTrace renders a module's lowered-and-optimized IR as the
// human-readable text format driver.py's _format_ir produces, written when
// BuildOptions.EmitIR is set.
func writeIRTrace(buildDir string, mod *core.Module) error {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", mod.Name)
	for _, ext := range mod.Externs {
		fmt.Fprintf(&b, "extern %s(%s) -> %s\n", ext.Name, joinParams(ext.Params), ext.ReturnType)
	}
	for _, fn := range mod.Functions {
		fmt.Fprintf(&b, "fn %s(%s) -> %s:\n", fn.Name, joinParams(fn.Params), fn.ReturnType)
		for _, block := range fn.Blocks {
			fmt.Fprintf(&b, "  block %s:\n", block.Label)
			for _, instr := range block.Instructions {
				args := strings.Join(instr.Args, ", ")
				if instr.Result != "" {
					suffix := ""
					if instr.TypeName != "" {
						suffix = ":" + instr.TypeName
					}
					fmt.Fprintf(&b, "    %s%s = %s %s\n", instr.Result, suffix, instr.Op, args)
				} else {
					fmt.Fprintf(&b, "    %s %s\n", instr.Op, args)
				}
			}
		}
	}
	path := filepath.Join(buildDir, mod.Name+".ir.txt")
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func joinParams(params []core.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Name+":"+p.TypeName)
	}
	return strings.Join(parts, ", ")
}
