package errors

import (
	"fmt"

	"github.com/daisy-lang/daisy/internal/ast"
)

// Diagnostic is the canonical structured error/warning value produced by
// every phase of the pipeline (spec.md §7).
type Diagnostic struct {
	Code     string
	Message  string
	Span     *ast.Span // nil for diagnostics not bound to a source position
	Warning  bool      // true for advisory diagnostics (e.g. region mismatches)
	Data     map[string]any
}

// String renders a diagnostic as "L<line>:<col> <message>", or bare
// "<message>" when it has no span (spec.md §6 "Diagnostic string").
func (d Diagnostic) String() string {
	if d.Span == nil {
		return d.Message
	}
	return fmt.Sprintf("L%d:%d %s", d.Span.StartLine, d.Span.StartCol, d.Message)
}

// List accumulates diagnostics for a single module compile. Name/type/
// borrow errors never abort on first error; they are collected here and
// inspected once the phase completes (spec.md §4.D "Errors").
type List struct {
	items []Diagnostic
}

// Add appends a diagnostic.
func (l *List) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

// Errorf appends an error-level diagnostic built from a code and message.
func (l *List) Errorf(code string, span *ast.Span, format string, args ...any) {
	l.Add(Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// Warnf appends a warning-level diagnostic.
func (l *List) Warnf(code string, span *ast.Span, format string, args ...any) {
	l.Add(Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: span, Warning: true})
}

// HasErrors reports whether any non-warning diagnostic is present; its
// presence is what prevents a module from moving to the next stage
// (spec.md §7 "Propagation").
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if !d.Warning {
			return true
		}
	}
	return false
}

// Items returns the accumulated diagnostics in the order they were added
// (source order, per spec.md §5 "Ordering guarantees").
func (l *List) Items() []Diagnostic {
	return l.items
}

// Merge appends another list's diagnostics onto this one, preserving order.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.items = append(l.items, other.items...)
}

// FatalError is returned by phases whose errors are always fatal and
// singular rather than accumulated (IR validation, ABI checks, module
// I/O) — spec.md §7 lists these as halting the module's compile outright.
type FatalError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *FatalError) Error() string {
	d := Diagnostic{Code: e.Code, Message: e.Message, Span: e.Span}
	return fmt.Sprintf("%s: %s", e.Code, d.String())
}

// NewFatal builds a FatalError, the form returned by internal/validate and
// internal/abi for violations that stop a module's build outright.
func NewFatal(code string, span *ast.Span, format string, args ...any) *FatalError {
	return &FatalError{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}
