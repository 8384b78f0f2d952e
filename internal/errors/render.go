package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Renderer prints a List to a terminal, colorizing when the target
// supports it (color.NoColor already reflects go-isatty/NO_COLOR, the same
// convention the teacher's interactive output follows).
type Renderer struct {
	Out    io.Writer
	Source map[string][]string // file -> lines, for caret snippets; optional
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	caretColor = color.New(color.FgCyan)
)

// Render writes every diagnostic in l, one per line, followed by an
// optional source snippet with a caret under the offending column.
func (r *Renderer) Render(file string, l *List) {
	for _, d := range l.Items() {
		r.renderOne(file, d)
	}
}

func (r *Renderer) renderOne(file string, d Diagnostic) {
	label := errColor.Sprint("error")
	if d.Warning {
		label = warnColor.Sprint("warning")
	}
	fmt.Fprintf(r.Out, "%s[%s]: %s\n", label, d.Code, d.String())

	if d.Span == nil || r.Source == nil {
		return
	}
	lines, ok := r.Source[d.Span.File]
	if !ok || d.Span.StartLine < 1 || d.Span.StartLine > len(lines) {
		return
	}
	srcLine := lines[d.Span.StartLine-1]
	fmt.Fprintf(r.Out, "  %s\n", srcLine)
	col := d.Span.StartCol
	if col < 1 {
		col = 1
	}
	caret := "  " + strings.Repeat(" ", col-1) + "^"
	fmt.Fprintln(r.Out, caretColor.Sprint(caret))
}
