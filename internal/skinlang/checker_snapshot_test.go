package skinlang

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// renderDiagnostics formats diags the way cmd/skinlint prints them, one
// line per diagnostic, sorted for stable comparison across runs.
func renderDiagnostics(uri string, diags []Diagnostic) string {
	SortDiagnostics(diags)
	lines := make([]string, 0, len(diags))
	for _, d := range diags {
		lines = append(lines, FormatCLILine(uri, d))
	}
	return strings.Join(lines, "\n")
}

// TestChecker_DiagnosticOutputIsStableAcrossIndependentRuns guards against
// nondeterminism creeping into the checker (unstable map iteration, unsorted
// output): two independently indexed copies of the same skin pack must
// render byte-identical CLI output. A regression here means skinlint and
// skin-lsp would show flaky diagnostics for unchanged input, so on mismatch
// this prints a unified diff instead of two walls of text.
func TestChecker_DiagnosticOutputIsStableAcrossIndependentRuns(t *testing.T) {
	const uri = "skin.xml"
	xml := `<Skin><Styles><Style name="Base" textsize="huge" bogusattr="1"/></Styles><Button command.name="Play"/></Skin>`

	c1, dp1, _ := newCheckerFixture(t, map[string]string{uri: xml})
	dp1.IndexSkinPack(uri)
	first := renderDiagnostics(uri, c1.CheckDocument(uri))

	c2, dp2, _ := newCheckerFixture(t, map[string]string{uri: xml})
	dp2.IndexSkinPack(uri)
	second := renderDiagnostics(uri, c2.CheckDocument(uri))

	if first != second {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(first),
			B:        difflib.SplitLines(second),
			FromFile: "run-1",
			ToFile:   "run-2",
			Context:  2,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("diagnostic output differs across independent runs of the same input:\n%s", text)
	}

	for _, want := range []string{
		"Expected an integer",
		`Unknown attribute "bogusattr"`,
		"command.name and command.category should be set together",
	} {
		if !strings.Contains(first, want) {
			t.Fatalf("expected rendered output to contain %q, got:\n%s", want, first)
		}
	}
}
