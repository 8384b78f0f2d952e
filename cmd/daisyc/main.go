// Command daisyc is a thin entry point over internal/driver: it parses just
// enough of `build <file>`/`run <file>` to populate a driver.BuildOptions
// and calls driver.Compile. It performs no C-toolchain invocation — linking
// and execution are an external collaborator's concern (spec.md §1/§6); this
// binary exists to exercise the BuildOptions plumbing end-to-end, not to
// replace the real CLI dispatcher. Grounded on the teacher's
// cmd/ailang/main.go flag-and-subcommand shape.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/daisy-lang/daisy/internal/driver"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

var (
	red  = color.New(color.FgRed).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

// linkLibs collects repeated `-link <lib>` flags.
type linkLibs []string

func (l *linkLibs) String() string { return fmt.Sprint([]string(*l)) }
func (l *linkLibs) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "build", "run":
		runCompile(command, os.Args[2:])
	case "help", "-h", "--help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func runCompile(command string, args []string) {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	lto := fs.Bool("lto", false, "enable link-time optimization in the C build")
	emitIR := fs.Bool("emit-ir", false, "write each module's lowered IR as a text trace")
	rtChecks := fs.Bool("rt-checks", false, "enable runtime bounds/overflow checks in the C build")
	profile := fs.Bool("profile", false, "build with profiling instrumentation")
	sanitize := fs.String("sanitize", "", "sanitizer to enable in the C build (e.g. address, undefined)")
	buildDir := fs.String("build-dir", "build", "directory for build artifacts")
	var links linkLibs
	fs.Var(&links, "link", "additional native library to link (repeatable)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
		fmt.Printf("Usage: daisyc %s <file> [flags]\n", command)
		os.Exit(1)
	}
	entry := fs.Arg(0)

	opts := driver.BuildOptions{
		LTO:      *lto,
		EmitIR:   *emitIR,
		RTChecks: *rtChecks,
		Profile:  *profile,
		Sanitize: *sanitize,
		LinkLibs: links,
	}

	result, err := driver.Compile(entry, *buildDir, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red("Error"), err)
		os.Exit(1)
	}

	renderer := &daisyerrors.Renderer{Out: os.Stdout}
	for _, name := range result.Order {
		mod := result.Modules[name]
		if len(mod.Diagnostics) == 0 {
			continue
		}
		list := &daisyerrors.List{}
		for _, d := range mod.Diagnostics {
			list.Add(d)
		}
		renderer.Render(name, list)
	}

	fmt.Printf("%s %s (%d module%s)\n", bold("compiled"), filepath.Base(entry),
		len(result.Order), plural(len(result.Order)))

	if command == "run" {
		fmt.Println("note: running the built program requires the C toolchain, which this binary does not invoke")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func printHelp() {
	fmt.Println(bold("daisyc - the Daisy compiler driver"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  daisyc build <file> [-lto] [-emit-ir] [-rt-checks] [-profile] [-sanitize <name>] [-link <lib>]")
	fmt.Println("  daisyc run <file> [flags]")
	fmt.Println()
	fmt.Println("build and run both stop at a validated, ABI-checked IR; producing and")
	fmt.Println("executing the native binary is left to the external C toolchain.")
}
