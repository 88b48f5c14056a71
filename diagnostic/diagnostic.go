// Copyright © 2024 The moqls authors

// Package diagnostic provides Rust-style annotated rendering of findings for
// terminal output. It is independent of the lint and moq packages so that
// any command can use it without creating import cycles.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
	SeverityHelp
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	case SeverityHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	// Code is the rule that produced the diagnostic, shown as
	// warning[callback-arity].
	Code    string
	Message string
	Spans   []Span
	Notes   []string // "= note:" lines
	Help    string   // "= help:" line, e.g. a suggested replacement
}
