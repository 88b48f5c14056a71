// Copyright © 2024 The moqls authors

package moq

import "github.com/rjmurillo/moq.autocomplete/syntax"

// TypeID is a comparable converted-type identity such as "System.Int32" or
// "Moq.Mock<App.IFoo>". The empty TypeID means the type is unknown.
type TypeID string

// Type describes a resolved type.
type Type struct {
	ID      TypeID
	Display string // minimal display, e.g. "int" or "Mock<IFoo>"
	Name    string // simple name without type arguments, e.g. "IFoo"
}

// Known reports whether the type was resolved.
func (t Type) Known() bool { return t.ID != "" }

// Param describes one parameter of a method or lambda.
type Param struct {
	Name string
	Type Type
}

// SymbolKind classifies a Symbol.
type SymbolKind uint8

const (
	SymbolMethod SymbolKind = iota
	SymbolConstructor
	SymbolProperty
	SymbolType
)

// Symbol is a resolved method, constructor, property or type.
type Symbol struct {
	Kind SymbolKind
	Name string
	// QualifiedName is the full display used for pattern matching, e.g.
	// "Moq.Mock<App.IFoo>.Setup(System.Linq.Expressions.Expression<System.Action<App.IFoo>>)".
	QualifiedName string
	Params        []Param
	// ConstructedFrom is the generic definition of a constructed type,
	// e.g. "Moq.Mock<T>". It is empty for non-generic types and members.
	ConstructedFrom string
	TypeArgs        []Type
}

// ResolutionKind is the tag of a Resolution.
type ResolutionKind uint8

const (
	NotResolved ResolutionKind = iota
	Unique
	Ambiguous
)

func (k ResolutionKind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	}
	return "not-resolved"
}

// Resolution is the outcome of resolving an expression: nothing, a single
// symbol, or an ordered set of candidates. The zero value is NotResolved.
type Resolution struct {
	kind    ResolutionKind
	symbols []*Symbol
}

// ResolvedTo returns a unique resolution.
func ResolvedTo(s *Symbol) Resolution {
	if s == nil {
		return Resolution{}
	}
	return Resolution{kind: Unique, symbols: []*Symbol{s}}
}

// AmbiguousAmong returns an ambiguous resolution over candidates. With no
// candidates the result is NotResolved.
func AmbiguousAmong(candidates ...*Symbol) Resolution {
	var set []*Symbol
	for _, c := range candidates {
		if c != nil {
			set = append(set, c)
		}
	}
	if len(set) == 0 {
		return Resolution{}
	}
	return Resolution{kind: Ambiguous, symbols: set}
}

// Kind returns the resolution tag.
func (r Resolution) Kind() ResolutionKind { return r.kind }

// Symbol returns the symbol of a unique resolution.
func (r Resolution) Symbol() (*Symbol, bool) {
	if r.kind != Unique {
		return nil, false
	}
	return r.symbols[0], true
}

// Candidates returns every symbol the resolution could denote: the single
// symbol when unique, the candidate set when ambiguous, nothing otherwise.
func (r Resolution) Candidates() []*Symbol {
	switch r.kind {
	case Unique, Ambiguous:
		return r.symbols
	}
	return nil
}

// Variable is a named value visible at some position.
type Variable struct {
	Name            string
	Type            Type
	ConstructedFrom string
	TypeArgs        []Type
}

// Resolver answers semantic queries about nodes of one syntax tree. The
// tree and the resolver form an immutable snapshot; implementations must
// be safe for concurrent use.
type Resolver interface {
	// Symbol resolves an invocation, member access, object creation or
	// type syntax node.
	Symbol(id syntax.NodeID) Resolution
	// TypeOf returns the converted type of an expression or type syntax.
	TypeOf(id syntax.NodeID) (Type, bool)
	// VisibleVariables lists fields, properties, parameters and locals in
	// scope at id.
	VisibleVariables(at syntax.NodeID) []Variable
}
