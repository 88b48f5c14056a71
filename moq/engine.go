// Copyright © 2024 The moqls authors

package moq

import (
	"runtime/debug"

	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("moqls.moq")

// Engine answers completion and diagnostic queries over one immutable
// (tree, resolver) snapshot at a time. It holds no per-request state and
// is safe for concurrent use.
type Engine struct {
	patterns *Patterns
	onFault  func(op string, recovered any)
	reparse  Reparser
}

// Reparser parses src and builds its resolver. Suggest uses it to retry a
// position inside a call the user has not closed yet.
type Reparser func(filename string, src []byte) (*syntax.Tree, Resolver, error)

// Option configures an Engine.
type Option func(*Engine)

// WithFaultHook registers fn to be called with every recovered fault.
func WithFaultHook(fn func(op string, recovered any)) Option {
	return func(e *Engine) { e.onFault = fn }
}

// WithReparser lets Suggest complete inside unclosed calls by reparsing a
// repaired copy of the source.
func WithReparser(fn Reparser) Option {
	return func(e *Engine) { e.reparse = fn }
}

// NewEngine returns an engine over p. A nil p uses DefaultPatterns.
func NewEngine(p *Patterns, opts ...Option) *Engine {
	if p == nil {
		p = DefaultPatterns()
	}
	e := &Engine{patterns: p}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Patterns returns the patterns the engine was built with.
func (e *Engine) Patterns() *Patterns { return e.patterns }

func (e *Engine) resolver(tree *syntax.Tree, res Resolver) SymbolResolver {
	return SymbolResolver{Tree: tree, Host: res, Patterns: e.patterns}
}

// Suggest returns the completions for the position offset, in generation
// order. It returns nothing when the position is not one it understands.
func (e *Engine) Suggest(tree *syntax.Tree, res Resolver, offset int) (out []Suggestion) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			e.fault("suggest", r)
		}
	}()
	if tree == nil || res == nil {
		return nil
	}
	out = e.suggest(tree, res, offset)
	if len(out) > 0 || e.reparse == nil {
		return out
	}
	src, ok := CloseDanglingCall(tree, offset)
	if !ok {
		return nil
	}
	fixed, fixedRes, err := e.reparse(tree.Filename, src)
	if err != nil || fixed == nil || fixedRes == nil {
		return nil
	}
	return e.suggest(fixed, fixedRes, offset)
}

func (e *Engine) suggest(tree *syntax.Tree, res Resolver, offset int) []Suggestion {
	var out []Suggestion
	r := e.resolver(tree, res)
	arg, atArg := LocateArgumentToken(tree, offset)
	if atArg {
		out = append(out, r.callbackSuggestions(arg)...)
		out = append(out, r.matcherSuggestions(arg)...)
	}
	if a, ok := LocateTypeArgumentToken(tree, offset); ok {
		out = append(out, r.nameSuggestions(a)...)
	}
	if atArg {
		out = append(out, r.mockArgumentSuggestions(arg)...)
	}
	return dedupe(out)
}

// Analyze returns the findings for one invocation.
func (e *Engine) Analyze(tree *syntax.Tree, res Resolver, inv syntax.NodeID) (out []Finding) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			e.fault("analyze", r)
		}
	}()
	if tree == nil || res == nil {
		return nil
	}
	return e.resolver(tree, res).analyze(inv)
}

// AnalyzeTree runs Analyze over every invocation of tree in source order.
// A fault in one invocation drops only that invocation's findings.
func (e *Engine) AnalyzeTree(tree *syntax.Tree, res Resolver) []Finding {
	if tree == nil {
		return nil
	}
	var out []Finding
	astutil.WalkInvocations(tree, func(inv syntax.NodeID) {
		out = append(out, e.Analyze(tree, res, inv)...)
	})
	return out
}

// Fix returns the parameter list replacement for a mismatching callback at
// inv.
func (e *Engine) Fix(tree *syntax.Tree, res Resolver, inv syntax.NodeID) (fix Fix, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			fix, ok = Fix{}, false
			e.fault("fix", r)
		}
	}()
	if tree == nil || res == nil {
		return Fix{}, false
	}
	return e.resolver(tree, res).fix(inv)
}

func (e *Engine) fault(op string, recovered any) {
	log.Errorf("%s: recovered internal fault: %v\n%s", op, recovered, debug.Stack())
	if e.onFault != nil {
		e.onFault(op, recovered)
	}
}
