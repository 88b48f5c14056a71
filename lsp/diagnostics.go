// Copyright © 2024 The moqls authors

package lsp

import (
	"context"
	"time"

	"github.com/rjmurillo/moq.autocomplete/lint"
	"github.com/tliron/glsp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	debounceDelay    = 300 * time.Millisecond
	diagnosticSource = "moqls"
)

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	defer s.recoverFault(protocol.MethodTextDocumentDidOpen)
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		params.TextDocument.Version,
		params.TextDocument.Text,
	)
	s.analyzeAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	defer s.recoverFault(protocol.MethodTextDocumentDidChange)
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		params.TextDocument.Version,
		content,
	)

	// Debounce: delay analysis to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	uri := doc.URI
	var t *time.Timer
	t = time.AfterFunc(s.debounceDelay, func() {
		defer s.recoverFault("debounce")
		s.debounceMu.Lock()
		if s.debounce[uri] == t {
			delete(s.debounce, uri)
		}
		s.debounceMu.Unlock()
		if d := s.docs.Get(uri); d != nil {
			s.analyzeAndPublish(d)
		}
	})
	s.debounce[uri] = t
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	defer s.recoverFault(protocol.MethodTextDocumentDidSave)
	s.captureNotify(ctx)
	s.cancelDebounce(params.TextDocument.URI)
	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.analyzeAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	defer s.recoverFault(protocol.MethodTextDocumentDidClose)
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// analyzeAndPublish lints the current version of a document and publishes
// the resulting diagnostics to the client.
func (s *Server) analyzeAndPublish(doc *Document) {
	diags := s.diagnose(context.Background(), doc)
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: diags,
	})
}

// diagnose runs the linter over a document snapshot. It never returns nil
// so that an empty publish clears stale diagnostics.
func (s *Server) diagnose(ctx context.Context, doc *Document) []protocol.Diagnostic {
	tree, model, version := doc.snapshot()
	_, span := s.tracer.Start(ctx, "moqls.analyze", trace.WithAttributes(
		attribute.String("uri", doc.URI),
		attribute.Int("version", int(version)),
	))
	defer span.End()

	diags := []protocol.Diagnostic{}
	if tree == nil {
		return diags
	}
	found, err := s.linter.LintTree(tree, model)
	if err != nil {
		span.RecordError(err)
		log.Errorf("lint %s: %s", doc.URI, err)
		return diags
	}
	for _, d := range found {
		s.metrics.findings.WithLabelValues(d.Analyzer).Inc()
		diags = append(diags, protocol.Diagnostic{
			Range:    toLSPRange(tree, d.Span),
			Severity: mapLintSeverity(d.Severity),
			Source:   strPtr(diagnosticSource),
			Code:     &protocol.IntegerOrString{Value: d.Analyzer},
			Message:  d.Message,
		})
	}
	span.SetAttributes(attribute.Int("findings", len(diags)))
	return diags
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) *protocol.DiagnosticSeverity {
	s := protocol.DiagnosticSeverityWarning
	switch sev {
	case lint.SeverityError:
		s = protocol.DiagnosticSeverityError
	case lint.SeverityInfo:
		s = protocol.DiagnosticSeverityInformation
	case lint.SeverityHint:
		s = protocol.DiagnosticSeverityHint
	}
	return &s
}
