// Copyright © 2024 The moqls authors

package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/tliron/glsp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCompletion handles the textDocument/completion request.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	defer s.recoverFault(protocol.MethodTextDocumentCompletion)
	s.metrics.request(protocol.MethodTextDocumentCompletion)

	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	tree, model, version := doc.snapshot()
	if tree == nil {
		return nil, nil
	}
	offset := offsetAt(tree, params.Position)

	_, span := s.tracer.Start(context.Background(), "moqls.suggest", trace.WithAttributes(
		attribute.String("uri", doc.URI),
		attribute.Int("version", int(version)),
		attribute.Int("offset", offset),
	))
	suggestions := s.engine.Suggest(tree, model, offset)
	span.SetAttributes(attribute.Int("suggestions", len(suggestions)))
	span.End()

	if len(suggestions) == 0 {
		return nil, nil
	}
	return completionItems(suggestions, s.metrics), nil
}

// completionItems converts suggestions in generation order. SortText pins
// that order, since clients otherwise sort by label.
func completionItems(suggestions []moq.Suggestion, m *metrics) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(suggestions))
	for i, sg := range suggestions {
		if m != nil {
			m.suggestions.WithLabelValues(sg.Kind.String()).Inc()
		}
		kind := completionKind(sg.Kind)
		item := protocol.CompletionItem{
			Label:    sg.Text,
			Kind:     &kind,
			SortText: strPtr(fmt.Sprintf("%04d", i)),
		}
		if sg.Priority == moq.Preselect {
			item.Preselect = boolPtr(true)
		}
		if sg.Kind == moq.SuggestLambda {
			format := protocol.InsertTextFormatSnippet
			item.InsertTextFormat = &format
			item.InsertText = strPtr(lambdaSnippet(sg.Text))
		}
		items = append(items, item)
	}
	return items
}

func completionKind(k moq.SuggestionKind) protocol.CompletionItemKind {
	switch k {
	case moq.SuggestLambda:
		return protocol.CompletionItemKindSnippet
	case moq.SuggestName, moq.SuggestMockObject:
		return protocol.CompletionItemKindVariable
	default:
		return protocol.CompletionItemKindValue
	}
}

// lambdaSnippet places the cursor inside the lambda body. Type names never
// contain snippet metacharacters other than '$', which is escaped.
func lambdaSnippet(text string) string {
	text = strings.ReplaceAll(text, "$", `\$`)
	return strings.Replace(text, "{ }", "{ $0 }", 1)
}
