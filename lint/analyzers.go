// Copyright © 2024 The moqls authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rjmurillo/moq.autocomplete/moq"
)

// AnalyzerCallbackArity warns when a Callback or Returns lambda declares a
// different number of parameters than the mocked method takes.
var AnalyzerCallbackArity = &Analyzer{
	Name:     moq.RuleCallbackArity,
	Doc:      "Check that a callback lambda takes as many parameters as the mocked method.\n\nMoq invokes Callback and Returns lambdas with the arguments of the mocked call. A lambda with a different number of parameters compiles but throws when the setup is matched. A lambda with no parameters at all is always accepted.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		for _, f := range pass.Findings() {
			if f.Rule != moq.RuleCallbackArity {
				continue
			}
			d := Diagnostic{Message: f.Message}
			d.setSpan(pass.Tree, f.Span)
			pass.ReportWithNotes(d, "a callback may also take no parameters")
		}
		return nil
	},
}

// AnalyzerCallbackType warns when a callback lambda parameter has a
// different type than the mocked method's parameter at the same position.
var AnalyzerCallbackType = &Analyzer{
	Name:     moq.RuleCallbackType,
	Doc:      "Check that callback lambda parameter types match the mocked method.\n\nParameters are compared by position after conversion. When the mocked method is overloaded, the lambda only has to match one of the overloads.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		for _, f := range pass.Findings() {
			if f.Rule != moq.RuleCallbackType {
				continue
			}
			d := Diagnostic{Message: f.Message}
			d.setSpan(pass.Tree, f.Span)
			pass.Report(d)
		}
		return nil
	},
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// LookupAnalyzer returns the default analyzer called name.
func LookupAnalyzer(name string) (*Analyzer, bool) {
	for _, a := range DefaultAnalyzers() {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// docWidth is the wrap width of analyzer documentation.
const docWidth = 76

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		b.WriteString(indent.String(wordwrap.String(lines[0], docWidth-4), 4))
		b.WriteString("\n\n")
	}
	return b.String()
}

// AnalyzerLongDoc returns the full documentation of a, wrapped to width.
func AnalyzerLongDoc(a *Analyzer, width int) string {
	if width <= 0 {
		width = docWidth
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (default severity: %s)\n\n", a.Name, a.Severity)
	for i, para := range strings.Split(a.Doc, "\n\n") {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(indent.String(wordwrap.String(para, width-2), 2))
	}
	b.WriteString("\n")
	return b.String()
}
