// Copyright © 2024 The moqls authors

package lsp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/tliron/glsp"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const fixCallbackTitle = "Fix callback signature"

// textDocumentCodeAction handles the textDocument/codeAction request. It
// offers one quick fix per mismatching callback in the requested range.
func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	defer s.recoverFault(protocol.MethodTextDocumentCodeAction)
	s.metrics.request(protocol.MethodTextDocumentCodeAction)

	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	// If the client only wants specific kinds, check we support them.
	if len(params.Context.Only) > 0 && !slices.Contains(params.Context.Only, protocol.CodeActionKindQuickFix) {
		return nil, nil
	}

	tree, model, _ := doc.snapshot()
	if tree == nil {
		return nil, nil
	}

	var actions []protocol.CodeAction
	seen := make(map[syntax.NodeID]bool)
	for _, f := range s.engine.AnalyzeTree(tree, model) {
		if s.ruleDisabled(f.Rule) {
			continue
		}
		if !rangesOverlap(toLSPRange(tree, f.Span), params.Range) {
			continue
		}
		inv := tree.Ancestor(f.Node, syntax.KindInvocation)
		if inv == syntax.NoNode || seen[inv] {
			continue
		}
		seen[inv] = true
		fix, ok := s.engine.Fix(tree, model, inv)
		if !ok {
			continue
		}
		kind := protocol.CodeActionKindQuickFix
		actions = append(actions, protocol.CodeAction{
			Title:       fixCallbackTitle,
			Kind:        &kind,
			Diagnostics: matchingDiagnostics(params.Context.Diagnostics, tree, inv),
			IsPreferred: boolPtr(true),
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentUri][]protocol.TextEdit{
					params.TextDocument.URI: {{
						Range:   toLSPRange(tree, fix.Span),
						NewText: fix.Text,
					}},
				},
			},
		})
	}

	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

func (s *Server) ruleDisabled(rule string) bool {
	sev, ok := s.cfg.Rules[rule]
	return ok && strings.EqualFold(strings.TrimSpace(sev), "off")
}

// matchingDiagnostics returns the client's moqls diagnostics that fall
// inside the callback invocation inv.
func matchingDiagnostics(diags []protocol.Diagnostic, tree *syntax.Tree, inv syntax.NodeID) []protocol.Diagnostic {
	within := toLSPRange(tree, tree.Span(inv))
	var out []protocol.Diagnostic
	for _, d := range diags {
		if d.Source == nil || *d.Source != diagnosticSource || d.Code == nil {
			continue
		}
		switch fmt.Sprint(d.Code.Value) {
		case moq.RuleCallbackArity, moq.RuleCallbackType:
		default:
			continue
		}
		if rangesOverlap(d.Range, within) {
			out = append(out, d)
		}
	}
	return out
}
