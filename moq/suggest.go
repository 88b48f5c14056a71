// Copyright © 2024 The moqls authors

package moq

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/syntax"
)

// Priority says how strongly a suggestion should be offered. Every
// suggestion is soft-selected; Preselect marks the most likely one.
type Priority uint8

const (
	Standard Priority = iota
	Preselect
)

func (p Priority) String() string {
	if p == Preselect {
		return "preselect"
	}
	return "standard"
}

// SuggestionKind tells the host what a suggestion inserts.
type SuggestionKind uint8

const (
	SuggestLambda SuggestionKind = iota
	SuggestMatcher
	SuggestName
	SuggestMockObject
)

func (k SuggestionKind) String() string {
	switch k {
	case SuggestMatcher:
		return "matcher"
	case SuggestName:
		return "name"
	case SuggestMockObject:
		return "mock-object"
	}
	return "lambda"
}

// Suggestion is one completion.
type Suggestion struct {
	Text     string
	Priority Priority
	Kind     SuggestionKind
}

const emptyLambda = "() => { }"

// LambdaSkeletons returns the zero-parameter skeleton followed by one fully
// typed skeleton per candidate that takes parameters.
func LambdaSkeletons(candidates []*Symbol) []Suggestion {
	out := []Suggestion{{Text: emptyLambda, Priority: Standard, Kind: SuggestLambda}}
	for _, c := range candidates {
		if len(c.Params) == 0 {
			continue
		}
		out = append(out, Suggestion{
			Text:     "(" + paramList(c.Params, nil) + ") => { }",
			Priority: Preselect,
			Kind:     SuggestLambda,
		})
	}
	return out
}

// paramList renders "int a, string b". Names from keep override the
// candidate's own where present.
func paramList(params []Param, keep []string) string {
	parts := make([]string, len(params))
	for i, p := range params {
		name := p.Name
		if i < len(keep) && keep[i] != "" {
			name = keep[i]
		}
		if name == "" {
			name = "arg" + strconv.Itoa(i+1)
		}
		parts[i] = typeText(p.Type) + " " + name
	}
	return strings.Join(parts, ", ")
}

func typeText(t Type) string {
	if t.Display != "" {
		return t.Display
	}
	return "object"
}

// MatcherSuggestions returns any-value matchers for slot of each candidate.
// At the open paren the whole signature comes first, preselected, followed
// by the first slot alone when the candidate takes more than one argument.
func MatcherSuggestions(p *Patterns, candidates []*Symbol, slot int, atOpen bool) []Suggestion {
	var out []Suggestion
	for _, c := range candidates {
		if len(c.Params) == 0 {
			continue
		}
		if atOpen {
			all := make([]string, len(c.Params))
			for i, prm := range c.Params {
				all[i] = p.Matcher(typeText(prm.Type))
			}
			out = append(out, Suggestion{Text: strings.Join(all, ", "), Priority: Preselect, Kind: SuggestMatcher})
			if len(c.Params) > 1 {
				out = append(out, Suggestion{Text: all[0], Priority: Standard, Kind: SuggestMatcher})
			}
			continue
		}
		if slot < len(c.Params) {
			out = append(out, Suggestion{Text: p.Matcher(typeText(c.Params[slot].Type)), Priority: Standard, Kind: SuggestMatcher})
		}
	}
	return out
}

// MockName derives a variable name for a mock of typeName: IFooBar becomes
// fooBarMock and Baz becomes bazMock.
func MockName(p *Patterns, typeName string) string {
	if typeName == "" {
		return ""
	}
	name := typeName
	if len(name) > 1 && name[0] == 'I' {
		if r, _ := utf8.DecodeRuneInString(name[1:]); unicode.IsUpper(r) {
			name = name[1:]
		}
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:] + p.mockSuffix
}

// dedupe collapses suggestions with equal text. The first position is kept
// and the highest priority seen wins.
func dedupe(in []Suggestion) []Suggestion {
	at := make(map[string]int, len(in))
	out := in[:0:0]
	for _, s := range in {
		if i, ok := at[s.Text]; ok {
			if s.Priority > out[i].Priority {
				out[i].Priority = s.Priority
			}
			continue
		}
		at[s.Text] = len(out)
		out = append(out, s)
	}
	return out
}

// callbackSuggestions handles Callback(|) and Returns(|) with no arguments
// written yet.
func (r SymbolResolver) callbackSuggestions(a Anchor) []Suggestion {
	t := r.Tree
	if !a.AtOpen(t) || len(astutil.Arguments(t, a.List)) > 0 {
		return nil
	}
	inv := t.Parent(a.List)
	if !r.IsCallbackOrReturn(inv) {
		return nil
	}
	c := r.Correlate(inv)
	var candidates []*Symbol
	if c.Found() {
		candidates = r.methods(c.Mocked, SymbolMethod)
	}
	return LambdaSkeletons(candidates)
}

// matcherSuggestions handles Setup(f => f.Do(|, |)).
func (r SymbolResolver) matcherSuggestions(a Anchor) []Suggestion {
	mocked := r.correlateMatcherSlot(a.List)
	if mocked == syntax.NoNode {
		return nil
	}
	return MatcherSuggestions(r.Patterns, r.methods(mocked, SymbolMethod), a.Slot, a.AtOpen(r.Tree))
}

// nameSuggestions handles a member declared as Mock<IFoo>| where the
// name has not been typed yet.
func (r SymbolResolver) nameSuggestions(a Anchor) []Suggestion {
	t := r.Tree
	if len(t.NamedChildren(a.List)) != 1 {
		return nil
	}
	generic := t.Parent(a.List)
	if t.Kind(generic) != syntax.KindGenericName || !inMemberDeclaration(t, generic) {
		return nil
	}
	res := r.Resolve(generic)
	s, ok := res.Symbol()
	if !ok || s.Kind != SymbolType || !r.Patterns.IsMockType(s.ConstructedFrom, s.TypeArgs) {
		return nil
	}
	name := MockName(r.Patterns, s.TypeArgs[0].Name)
	if name == "" {
		return nil
	}
	return []Suggestion{{Text: name, Priority: Preselect, Kind: SuggestName}}
}

// inMemberDeclaration reports whether id sits in the declaration part of a
// type member, as opposed to a statement or expression.
func inMemberDeclaration(t *syntax.Tree, id syntax.NodeID) bool {
	for p := t.Parent(id); p != syntax.NoNode; p = t.Parent(p) {
		switch k := t.Kind(p); {
		case k.IsTypeDecl():
			return k != syntax.KindEnumDecl
		case k == syntax.KindBlock, k == syntax.KindArrowClause, k == syntax.KindLambda,
			k == syntax.KindArgumentList, k == syntax.KindEqualsValue, k == syntax.KindCompilationUnit,
			k == syntax.KindGlobalStatement:
			return false
		}
	}
	return false
}

// mockArgumentSuggestions handles new Sut(|, |): visible mocks whose mocked
// type fits the constructor parameter at the slot.
func (r SymbolResolver) mockArgumentSuggestions(a Anchor) []Suggestion {
	t := r.Tree
	creation := t.Parent(a.List)
	if t.Kind(creation) != syntax.KindObjectCreation {
		return nil
	}
	ctors := r.methods(creation, SymbolConstructor)
	if len(ctors) == 0 {
		return nil
	}
	var out []Suggestion
	for _, v := range r.Host.VisibleVariables(a.Token) {
		if !r.Patterns.IsMockType(v.ConstructedFrom, v.TypeArgs) || !v.TypeArgs[0].Known() {
			continue
		}
		for _, c := range ctors {
			if a.Slot < len(c.Params) && c.Params[a.Slot].Type.ID == v.TypeArgs[0].ID {
				out = append(out, Suggestion{Text: v.Name + ".Object", Priority: Preselect, Kind: SuggestMockObject})
				break
			}
		}
	}
	return out
}
