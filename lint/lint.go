// Copyright © 2024 The moqls authors

// Package lint reports mismatches between Moq callbacks and the methods
// they stand in for.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives a parsed tree and its semantic model and reports
// diagnostics. The framework handles parsing, running analyzers, collecting
// results, suppression and formatting output.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rjmurillo/moq.autocomplete/analysis"
	"github.com/rjmurillo/moq.autocomplete/config"
	"github.com/rjmurillo/moq.autocomplete/csharp"
	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/rjmurillo/moq.autocomplete/syntax"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// ParseSeverity parses a configured severity. off reports the "off"
// setting, which disables an analyzer.
func ParseSeverity(s string) (sev Severity, off bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, false, nil
	case "warning":
		return SeverityWarning, false, nil
	case "info":
		return SeverityInfo, false, nil
	case "hint":
		return SeverityHint, false, nil
	case "off":
		return severityUnset, true, nil
	}
	return severityUnset, false, fmt.Errorf("unknown severity: %q", s)
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	sev, off, err := ParseSeverity(str)
	if err != nil || off {
		return fmt.Errorf("unknown severity: %q", str)
	}
	*s = sev
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "callback-arity").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// Tree is the parsed file.
	Tree *syntax.Tree

	// Resolver answers semantic queries about Tree.
	Resolver moq.Resolver

	// Engine is the shared callback engine.
	Engine *moq.Engine

	findings    func() []moq.Finding
	diagnostics []Diagnostic
}

// Findings returns the engine findings for the whole file. They are
// computed once per file and shared by every analyzer.
func (p *Pass) Findings() []moq.Finding {
	if p.findings == nil {
		return p.Engine.AnalyzeTree(p.Tree, p.Resolver)
	}
	return p.findings()
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	if d.Pos.File == "" {
		d.Pos.File = p.Filename
		d.End.File = p.Filename
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic over a span.
func (p *Pass) Reportf(span syntax.Span, format string, args ...interface{}) {
	d := Diagnostic{Message: fmt.Sprintf(format, args...)}
	d.setSpan(p.Tree, span)
	p.Report(d)
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// End is the location just past the problem.
	End Position `json:"end"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`

	// Fingerprint identifies the problem across edits that do not touch
	// its line.
	Fingerprint string `json:"fingerprint"`

	// Span is the byte range of the problem.
	Span syntax.Span `json:"-"`
}

func (d *Diagnostic) setSpan(tree *syntax.Tree, span syntax.Span) {
	d.Span = span
	start, end := tree.Position(span.Start), tree.Position(span.End)
	d.Pos = Position{File: tree.Filename, Line: start.Line, Col: start.Col}
	d.End = Position{File: tree.Filename, Line: end.Line, Col: end.Col}
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Config supplies the Moq patterns, implicit usings and severity
	// overrides. Nil means config.Default().
	Config *config.Config

	// Engine is the callback engine. Nil means an engine over Config.
	Engine *moq.Engine
}

func (l *Linter) config() *config.Config {
	if l.Config == nil {
		return config.Default()
	}
	return l.Config
}

func (l *Linter) engine() (*moq.Engine, error) {
	if l.Engine != nil {
		return l.Engine, nil
	}
	p, err := moq.Compile(l.config())
	if err != nil {
		return nil, err
	}
	return moq.NewEngine(p), nil
}

// LintFile parses and analyzes a single source file and returns all
// diagnostics.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	tree, err := csharp.Parse(filename, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return l.LintTree(tree, analysis.Build(tree, l.config()))
}

// LintTree analyzes an already parsed file.
func (l *Linter) LintTree(tree *syntax.Tree, res moq.Resolver) ([]Diagnostic, error) {
	engine, err := l.engine()
	if err != nil {
		return nil, err
	}
	overrides := l.config().Rules

	var cached []moq.Finding
	var done bool
	findings := func() []moq.Finding {
		if !done {
			cached, done = engine.AnalyzeTree(tree, res), true
		}
		return cached
	}

	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		sev := severityUnset
		if s, ok := overrides[analyzer.Name]; ok {
			parsed, off, err := ParseSeverity(s)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", analyzer.Name, err)
			}
			if off {
				continue
			}
			sev = parsed
		}
		pass := &Pass{
			Analyzer: analyzer,
			Filename: tree.Filename,
			Tree:     tree,
			Resolver: res,
			Engine:   engine,
			findings: findings,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", tree.Filename, analyzer.Name, err)
		}
		for i := range pass.diagnostics {
			if sev != severityUnset {
				pass.diagnostics[i].Severity = sev
			}
			pass.diagnostics[i].Fingerprint = fingerprint(tree, pass.diagnostics[i])
		}
		all = append(all, pass.diagnostics...)
	}

	// Filter suppressed diagnostics (// nolint comments)
	all = filterSuppressed(all, tree)

	// Sort by file, then line, then column
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pos.File != all[j].Pos.File {
			return all[i].Pos.File < all[j].Pos.File
		}
		if all[i].Pos.Line != all[j].Pos.Line {
			return all[i].Pos.Line < all[j].Pos.Line
		}
		return all[i].Pos.Col < all[j].Pos.Col
	})

	return all, nil
}

// fingerprint hashes the analyzer, the file and the trimmed source line, so
// it survives edits elsewhere in the file.
func fingerprint(tree *syntax.Tree, d Diagnostic) string {
	line := strings.TrimSpace(tree.LineText(d.Pos.Line))
	h := xxhash.New()
	_, _ = h.WriteString(d.Analyzer)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(d.Pos.File)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(line)
	return fmt.Sprintf("%016x", h.Sum64())
}

// filterSuppressed removes diagnostics on lines with // nolint comments.
func filterSuppressed(diags []Diagnostic, tree *syntax.Tree) []Diagnostic {
	nolintLines := nolintDirectives(tree) // line -> "" (all) or "analyzer1,analyzer2"

	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := nolintLines[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		// Empty directive = suppress all
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerCallbackArity,
		AnalyzerCallbackType,
	}
}
