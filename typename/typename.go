// Copyright © 2024 The moqls authors

// Package typename parses C# type syntax such as
// "System.Collections.Generic.IDictionary<string, int?>[]" into a Ref.
//
// The grammar is written with goparsec combinators. It covers qualified and
// generic names, unbound generic argument lists, nullable and pointer
// suffixes, array ranks and tuples.
package typename

import (
	"errors"
	"fmt"
	"strings"

	parsec "github.com/prataprc/goparsec"
)

// Ref is a parsed type reference.
type Ref struct {
	// Name is the dotted name of a named type, e.g. "System.Int32". It is
	// empty for tuples, arrays and pointers.
	Name string
	// Args are the type arguments of the last name segment.
	Args []*Ref
	// Unbound is the arity of an unbound generic such as Dictionary<,>.
	Unbound int
	// Tuple holds the element types of a tuple type.
	Tuple []*Ref
	// Elem is the element type of an array or pointer.
	Elem    *Ref
	Rank    int
	Pointer bool

	Nullable bool
}

// ErrSyntax is returned for text that is not a type.
var ErrSyntax = errors.New("invalid type syntax")

var grammar = newGrammar()

// Parse parses a type reference.
func Parse(text string) (*Ref, error) {
	clean := normalize(text)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty", ErrSyntax)
	}
	s := parsec.NewScanner([]byte(clean))
	node, s := grammar(s)
	_, s = s.SkipWS()
	ref, ok := node.(*Ref)
	if !ok || !s.Endof() {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, text)
	}
	return ref, nil
}

// MustParse is like Parse but panics on error. It is meant for tables of
// well-known signatures.
func MustParse(text string) *Ref {
	r, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return r
}

// normalize drops the global alias and turns alias qualifiers into dots.
func normalize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "global::")
	return strings.ReplaceAll(text, "::", ".")
}

// Simple returns the last segment of the name.
func (r *Ref) Simple() string {
	if i := strings.LastIndexByte(r.Name, '.'); i >= 0 {
		return r.Name[i+1:]
	}
	return r.Name
}

// Qualified reports whether the name has more than one segment.
func (r *Ref) Qualified() bool {
	return strings.IndexByte(r.Name, '.') >= 0
}

// Arity returns the number of type arguments, bound or not.
func (r *Ref) Arity() int {
	if r.Unbound > 0 {
		return r.Unbound
	}
	return len(r.Args)
}

// String renders the reference in canonical C# form.
func (r *Ref) String() string {
	var b strings.Builder
	r.write(&b)
	return b.String()
}

func (r *Ref) write(b *strings.Builder) {
	switch {
	case r.Elem != nil && r.Pointer:
		r.Elem.write(b)
		b.WriteByte('*')
	case r.Elem != nil:
		r.Elem.write(b)
		b.WriteByte('[')
		b.WriteString(strings.Repeat(",", r.Rank-1))
		b.WriteByte(']')
	case r.Tuple != nil:
		b.WriteByte('(')
		for i, e := range r.Tuple {
			if i > 0 {
				b.WriteString(", ")
			}
			e.write(b)
		}
		b.WriteByte(')')
	default:
		b.WriteString(r.Name)
		if r.Unbound > 0 {
			b.WriteByte('<')
			b.WriteString(strings.Repeat(",", r.Unbound-1))
			b.WriteByte('>')
		} else if len(r.Args) > 0 {
			b.WriteByte('<')
			for i, a := range r.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				a.write(b)
			}
			b.WriteByte('>')
		}
	}
	if r.Nullable {
		b.WriteByte('?')
	}
}
