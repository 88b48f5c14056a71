// Copyright © 2024 The moqls authors

package cmd

import (
	"io"

	"github.com/rjmurillo/moq.autocomplete/diagnostic"
	lintpkg "github.com/rjmurillo/moq.autocomplete/lint"
)

func colorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(colorFlag)
	if err != nil {
		return diagnostic.ColorAuto
	}
	return mode
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lintpkg.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: mapSeverity(ld.Severity),
		Code:     ld.Analyzer,
		Message:  ld.Message,
	}
	if ld.Pos.Line > 0 {
		span := diagnostic.Span{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		}
		// Underline to the end position when it is on the same line.
		if ld.End.Line == ld.Pos.Line && ld.End.Col > ld.Pos.Col {
			span.EndCol = ld.End.Col - 1
		}
		d.Spans = append(d.Spans, span)
	}
	d.Notes = append(d.Notes, ld.Notes...)
	d.Notes = append(d.Notes, "to suppress: add \"// nolint:"+ld.Analyzer+"\" as a comment on this line")
	return d
}

func mapSeverity(sev lintpkg.Severity) diagnostic.Severity {
	switch sev {
	case lintpkg.SeverityError:
		return diagnostic.SeverityError
	case lintpkg.SeverityInfo, lintpkg.SeverityHint:
		return diagnostic.SeverityNote
	default:
		return diagnostic.SeverityWarning
	}
}

// renderLintDiagnostics renders lint diagnostics with diagnostic formatting to w.
func renderLintDiagnostics(w io.Writer, r *diagnostic.Renderer, diags []lintpkg.Diagnostic) error {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	return r.RenderAll(w, ds)
}
