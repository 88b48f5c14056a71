// Copyright © 2024 The moqls authors

package moq

import (
	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/syntax"
)

// SymbolResolver classifies resolutions of one tree against the compiled
// patterns. Every predicate runs its surface-name filter before asking the
// host Resolver, which is the expensive step.
type SymbolResolver struct {
	Tree     *syntax.Tree
	Host     Resolver
	Patterns *Patterns
}

// Resolve returns the resolution of expr.
func (r SymbolResolver) Resolve(expr syntax.NodeID) Resolution {
	if !expr.Valid() || r.Host == nil {
		return Resolution{}
	}
	return r.Host.Symbol(expr)
}

// MatchesNamePattern reports whether the unique symbol, or any candidate
// of an ambiguous resolution, satisfies pred.
func MatchesNamePattern(res Resolution, pred func(*Symbol) bool) bool {
	switch res.Kind() {
	case Unique:
		s, _ := res.Symbol()
		return pred(s)
	case Ambiguous:
		for _, c := range res.Candidates() {
			if pred(c) {
				return true
			}
		}
	}
	return false
}

// IsSetup reports whether inv calls a setup method through a member
// access, e.g. mock.Setup(...).
func (r SymbolResolver) IsSetup(inv syntax.NodeID) bool {
	if r.Tree.Kind(inv) != syntax.KindInvocation || astutil.MemberAccess(r.Tree, inv) == syntax.NoNode {
		return false
	}
	if !r.Patterns.IsSetupName(astutil.MemberName(r.Tree, inv)) {
		return false
	}
	return MatchesNamePattern(r.Resolve(inv), r.Patterns.IsSetupSymbol)
}

// IsCallbackOrReturn reports whether inv calls a callback or return-value
// method through a member access.
func (r SymbolResolver) IsCallbackOrReturn(inv syntax.NodeID) bool {
	if r.Tree.Kind(inv) != syntax.KindInvocation || astutil.MemberAccess(r.Tree, inv) == syntax.NoNode {
		return false
	}
	if !r.Patterns.IsCallbackName(astutil.MemberName(r.Tree, inv)) {
		return false
	}
	return MatchesNamePattern(r.Resolve(inv), r.Patterns.IsCallbackSymbol)
}

// methods returns the method or constructor symbols expr could denote.
func (r SymbolResolver) methods(expr syntax.NodeID, kind SymbolKind) []*Symbol {
	var out []*Symbol
	for _, c := range r.Resolve(expr).Candidates() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
