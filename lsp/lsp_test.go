// Copyright © 2024 The moqls authors

package lsp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rjmurillo/moq.autocomplete/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testURI = "file:///src/FooTests.cs"

// cursor marks the completion position in test sources.
const cursor = "$$"

const header = `using System;
using Moq;

namespace App
{
    public interface IFoo
    {
        int Do(int a, string b);
    }

    public class FooTests
    {
        public void Test()
        {
            var mock = new Mock<IFoo>();
            `

const footer = `
        }
    }
}
`

func body(stmts string) string { return header + stmts + footer }

// position converts a byte offset of an ASCII source to an LSP position.
func position(src string, offset int) protocol.Position {
	line := strings.Count(src[:offset], "\n")
	char := offset - (strings.LastIndex(src[:offset], "\n") + 1)
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)}
}

// splitCursor removes the cursor marker and returns its position.
func splitCursor(t *testing.T, src string) (string, protocol.Position) {
	t.Helper()
	at := strings.Index(src, cursor)
	require.GreaterOrEqual(t, at, 0, "source has no cursor")
	src = src[:at] + src[at+len(cursor):]
	return src, position(src, at)
}

type testServer struct {
	*Server
	spans *tracetest.InMemoryExporter
}

func newTestServer(t *testing.T, opts ...Option) testServer {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		assert.NoError(t, tp.Shutdown(context.Background()))
	})
	s, err := New(append([]Option{WithTracerProvider(tp)}, opts...)...)
	require.NoError(t, err)
	s.exitFn = func(int) {}
	t.Cleanup(func() { _ = s.shutdown(nil) })
	return testServer{Server: s, spans: exporter}
}

// publishes returns a context whose notifications are delivered on the
// returned channel. Debounced publishes arrive from timer goroutines.
func publishes() (*glsp.Context, chan *protocol.PublishDiagnosticsParams) {
	ch := make(chan *protocol.PublishDiagnosticsParams, 16)
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				ch <- params.(*protocol.PublishDiagnosticsParams)
			}
		},
	}
	return ctx, ch
}

func nextPublish(t *testing.T, ch chan *protocol.PublishDiagnosticsParams) *protocol.PublishDiagnosticsParams {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for diagnostics")
		return nil
	}
}

func (s testServer) open(t *testing.T, ctx *glsp.Context, src string) {
	t.Helper()
	require.NoError(t, s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, LanguageID: "csharp", Version: 1, Text: src},
	}))
}

func (s testServer) complete(t *testing.T, pos protocol.Position) []protocol.CompletionItem {
	t.Helper()
	result, err := s.textDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
			Position:     pos,
		},
	})
	require.NoError(t, err)
	if result == nil {
		return nil
	}
	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok, "completion result should be []CompletionItem, got %T", result)
	return items
}

// counterValue reads one labelled sample of a counter from reg.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func spanNames(e *tracetest.InMemoryExporter) []string {
	var names []string
	for _, s := range e.GetSpans() {
		names = append(names, s.Name)
	}
	return names
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t)
	result, err := s.initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, "moqls", init.ServerInfo.Name)
	require.NotNil(t, init.Capabilities.CompletionProvider)
	assert.Equal(t, []string{"(", ",", " ", ">"}, init.Capabilities.CompletionProvider.TriggerCharacters)
	actions, ok := init.Capabilities.CodeActionProvider.(*protocol.CodeActionOptions)
	require.True(t, ok)
	assert.Equal(t, []protocol.CodeActionKind{protocol.CodeActionKindQuickFix}, actions.CodeActionKinds)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Setup.Pattern = "("
	_, err := New(WithConfig(cfg))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestCompletion_CallbackSkeletons(t *testing.T) {
	s := newTestServer(t)
	src, pos := splitCursor(t, body(`mock.Setup(x => x.Do(1, "a")).Callback($$);`))
	ctx, _ := publishes()
	s.open(t, ctx, src)

	items := s.complete(t, pos)
	require.Len(t, items, 2)

	assert.Equal(t, "() => { }", items[0].Label)
	assert.Nil(t, items[0].Preselect)
	assert.Equal(t, "0000", *items[0].SortText)

	assert.Equal(t, "(int a, string b) => { }", items[1].Label)
	require.NotNil(t, items[1].Preselect)
	assert.True(t, *items[1].Preselect)
	assert.Equal(t, protocol.CompletionItemKindSnippet, *items[1].Kind)
	assert.Equal(t, protocol.InsertTextFormatSnippet, *items[1].InsertTextFormat)
	assert.Equal(t, "(int a, string b) => { $0 }", *items[1].InsertText)
	assert.Equal(t, "0001", *items[1].SortText)

	reg := s.Registry()
	assert.Equal(t, 1.0, counterValue(t, reg, "moqls_requests_total", "method", protocol.MethodTextDocumentCompletion))
	assert.Equal(t, 2.0, counterValue(t, reg, "moqls_suggestions_total", "kind", "lambda"))
	assert.Contains(t, spanNames(s.spans), "moqls.suggest")
}

func TestCompletion_Matchers(t *testing.T) {
	s := newTestServer(t)
	src, pos := splitCursor(t, body(`mock.Setup(x => x.Do($$));`))
	ctx, _ := publishes()
	s.open(t, ctx, src)

	items := s.complete(t, pos)
	require.Len(t, items, 2)
	assert.Equal(t, "It.IsAny<int>(), It.IsAny<string>()", items[0].Label)
	assert.Equal(t, protocol.CompletionItemKindValue, *items[0].Kind)
	assert.Nil(t, items[0].InsertTextFormat)
	assert.Equal(t, "It.IsAny<int>()", items[1].Label)
}

func TestCompletion_UnclosedCall(t *testing.T) {
	s := newTestServer(t)
	src, pos := splitCursor(t, body(`mock.Setup(x => x.Do(1, "a")).Callback($$`))
	ctx, _ := publishes()
	s.open(t, ctx, src)

	items := s.complete(t, pos)
	require.Len(t, items, 2)
	assert.Equal(t, "() => { }", items[0].Label)
	assert.Equal(t, "(int a, string b) => { }", items[1].Label)
}

func TestCompletion_Nothing(t *testing.T) {
	s := newTestServer(t)
	assert.Nil(t, s.complete(t, protocol.Position{}), "unknown document")

	src, pos := splitCursor(t, body(`Console.WriteLine($$);`))
	ctx, _ := publishes()
	s.open(t, ctx, src)
	assert.Nil(t, s.complete(t, pos))
}

const mismatch = `mock.Setup(x => x.Do(1, "a")).Callback((int a) => { });`

func TestDiagnostics_PublishedOnOpen(t *testing.T) {
	s := newTestServer(t)
	ctx, ch := publishes()
	src := body(mismatch)
	s.open(t, ctx, src)

	p := nextPublish(t, ch)
	assert.Equal(t, testURI, p.URI)
	require.Len(t, p.Diagnostics, 1)
	d := p.Diagnostics[0]
	assert.Equal(t, "moqls", *d.Source)
	assert.Equal(t, "callback-arity", d.Code.Value)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *d.Severity)
	assert.Equal(t, "callback should take 2 parameters to match the mocked method, but takes 1", d.Message)
	assert.Equal(t, position(src, strings.Index(src, "((int a)")), d.Range.Start)

	assert.Equal(t, 1.0, counterValue(t, s.Registry(), "moqls_findings_total", "rule", "callback-arity"))
	assert.Contains(t, spanNames(s.spans), "moqls.analyze")
}

func TestDiagnostics_Debounced(t *testing.T) {
	s := newTestServer(t, WithDebounce(10*time.Millisecond))
	ctx, ch := publishes()
	s.open(t, ctx, body(`mock.Setup(x => x.Do(1, "a")).Callback((int a, string b) => { });`))
	assert.Empty(t, nextPublish(t, ch).Diagnostics)

	require.NoError(t, s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: body(mismatch)}},
	}))

	p := nextPublish(t, ch)
	require.Len(t, p.Diagnostics, 1)
	assert.Equal(t, "callback-arity", p.Diagnostics[0].Code.Value)

	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()
	assert.Empty(t, s.debounce, "fired timers are forgotten")
}

func TestDiagnostics_SaveAndClose(t *testing.T) {
	s := newTestServer(t)
	ctx, ch := publishes()
	s.open(t, ctx, body(mismatch))
	require.Len(t, nextPublish(t, ch).Diagnostics, 1)

	require.NoError(t, s.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}))
	require.Len(t, nextPublish(t, ch).Diagnostics, 1)

	require.NoError(t, s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}))
	p := nextPublish(t, ch)
	assert.NotNil(t, p.Diagnostics)
	assert.Empty(t, p.Diagnostics)
	assert.Nil(t, s.docs.Get(testURI))
}

func TestDiagnostics_SeverityOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Rules = map[string]string{"callback-arity": "off", "callback-type": "error"}
	s := newTestServer(t, WithConfig(cfg))
	ctx, ch := publishes()
	s.open(t, ctx, body(`mock.Setup(x => x.Do(1, "a")).Callback((int a) => { });
            mock.Setup(x => x.Do(1, "a")).Callback((int a, int b) => { });`))

	p := nextPublish(t, ch)
	require.Len(t, p.Diagnostics, 1)
	assert.Equal(t, "callback-type", p.Diagnostics[0].Code.Value)
	assert.Equal(t, protocol.DiagnosticSeverityError, *p.Diagnostics[0].Severity)
}

func TestCodeAction_FixCallbackSignature(t *testing.T) {
	s := newTestServer(t)
	ctx, ch := publishes()
	src := body(mismatch)
	s.open(t, ctx, src)
	diags := nextPublish(t, ch).Diagnostics
	require.Len(t, diags, 1)

	result, err := s.textDocumentCodeAction(ctx, &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Range:        diags[0].Range,
		Context:      protocol.CodeActionContext{Diagnostics: diags},
	})
	require.NoError(t, err)
	actions, ok := result.([]protocol.CodeAction)
	require.True(t, ok, "got %T", result)
	require.Len(t, actions, 1)

	a := actions[0]
	assert.Equal(t, "Fix callback signature", a.Title)
	assert.Equal(t, protocol.CodeActionKindQuickFix, *a.Kind)
	assert.Equal(t, diags, a.Diagnostics)
	edits := a.Edit.Changes[testURI]
	require.Len(t, edits, 1)
	assert.Equal(t, "(int a, string b)", edits[0].NewText)
	start := strings.Index(src, "(int a)")
	assert.Equal(t, protocol.Range{
		Start: position(src, start),
		End:   position(src, start+len("(int a)")),
	}, edits[0].Range)
}

func TestCodeAction_Nothing(t *testing.T) {
	s := newTestServer(t)
	ctx, _ := publishes()
	s.open(t, ctx, body(mismatch))

	// Only refactorings requested.
	result, err := s.textDocumentCodeAction(ctx, &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Range:        protocol.Range{End: protocol.Position{Line: 100}},
		Context:      protocol.CodeActionContext{Only: []protocol.CodeActionKind{protocol.CodeActionKindRefactor}},
	})
	require.NoError(t, err)
	assert.Nil(t, result)

	// Range outside the callback.
	result, err = s.textDocumentCodeAction(ctx, &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Range:        protocol.Range{},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRecoverFault(t *testing.T) {
	s := newTestServer(t)
	assert.NotPanics(t, func() {
		defer s.recoverFault("textDocument/hover")
		panic("boom")
	})
	assert.Equal(t, 1.0, counterValue(t, s.Registry(), "moqls_faults_total", "op", "textDocument/hover"))
}

func TestDocumentStore_IgnoresStaleVersions(t *testing.T) {
	store := NewDocumentStore(nil)
	store.Open(testURI, 3, body(mismatch))
	doc := store.Change(testURI, 2, "class Stale { }")
	tree, model, version := doc.snapshot()
	assert.Equal(t, int32(3), version)
	assert.Contains(t, string(tree.Source), "Callback")
	assert.NotNil(t, model)

	doc = store.Change(testURI, 4, "")
	_, _, version = doc.snapshot()
	assert.Equal(t, int32(4), version)
}

func TestRangesOverlap(t *testing.T) {
	r := func(l1, c1, l2, c2 protocol.UInteger) protocol.Range {
		return protocol.Range{Start: protocol.Position{Line: l1, Character: c1}, End: protocol.Position{Line: l2, Character: c2}}
	}
	assert.True(t, rangesOverlap(r(1, 0, 1, 10), r(1, 5, 1, 5)))
	assert.True(t, rangesOverlap(r(1, 0, 1, 10), r(1, 10, 2, 0)), "touching")
	assert.False(t, rangesOverlap(r(1, 0, 1, 10), r(1, 11, 1, 12)))
	assert.False(t, rangesOverlap(r(2, 0, 3, 0), r(0, 0, 1, 99)))
}

func TestLambdaSnippet(t *testing.T) {
	assert.Equal(t, "() => { $0 }", lambdaSnippet("() => { }"))
	assert.Equal(t, `(Price\$ p) => { $0 }`, lambdaSnippet("(Price$ p) => { }"))
}
