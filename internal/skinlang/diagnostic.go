// diagnostic.go — the error taxonomy and CLI-facing rendering.
//
// Three concrete error types mirror the checker's three failure axes:
// a malformed class model, an unevaluable expression, and a scope
// resolution failure that couldn't be downgraded to a Diagnostic in place
// (e.g. thrown from deep within a helper called before a Location is
// known). Every other failure in this package is reported directly as a
// Diagnostic value, never an error — see checker.go's per-element
// recover().
//
// Grounded on _examples/daios-ai-msg/errors.go: same "recognize known
// error types, wrap with source" entry point (there: WrapErrorWithSource
// over *LexError/*ParseError/*RuntimeError; here: RenderDiagnosticSnippet
// over *ClassModelError/*ExprError/*ScopeError), and the same
// caret-snippet renderer shape (one line of context each side, 1-based
// line/col, a right-aligned line-number gutter).
package skinlang

import (
	"fmt"
	"strings"
)

// ClassModelError reports a problem loading or querying the class model.
// A missing model file is reported through this error and disables
// schema-backed validation rather than failing the whole check.
type ClassModelError struct {
	Path string
	Msg  string
}

func (e *ClassModelError) Error() string {
	return fmt.Sprintf("class model error in %s: %s", e.Path, e.Msg)
}

// ExprError reports a Skin Expression Parser/evaluator failure. Line/Col
// are 1-based within the expression text.
type ExprError struct {
	Line, Col int
	Msg       string
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("expression error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ScopeError reports a cross-file resolution failure that could not be
// attributed to a specific document position.
type ScopeError struct {
	URI string
	Msg string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("scope error in %s: %s", e.URI, e.Msg)
}

// RenderDiagnosticSnippet renders err as a caret-annotated source snippet
// when it is a *ExprError (the only one of the three with a line/col that
// makes sense against a *single* source string); other error kinds are
// returned as their plain .Error() text.
func RenderDiagnosticSnippet(err error, src string) string {
	if e, ok := err.(*ExprError); ok {
		return prettySnippet(src, "EXPRESSION ERROR", e.Line, e.Col, e.Msg)
	}
	return err.Error()
}

func prettySnippet(src, header string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	pad := col - 1
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", pad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// FormatCLILine renders a single Diagnostic the way cmd/skinlint prints
// it: "Error: <msg> at <path>:<line>:<col>" with related info appended as
// "(msg file:line:col)". Lines/cols are rendered 1-based even though
// Diagnostic.Range is 0-based internally.
func FormatCLILine(path string, d Diagnostic) string {
	kind := "Warning"
	if d.Severity == SevError {
		kind = "Error"
	}
	line := fmt.Sprintf("%s: %s at %s:%d:%d", kind, d.Message, path, d.Range.Start.Line+1, d.Range.Start.Col+1)
	for _, r := range d.Related {
		line += fmt.Sprintf(" (%s %s:%d:%d)", r.Message, r.Location.URI, r.Location.Start.Line+1, r.Location.Start.Col+1)
	}
	return line
}
