// Copyright © 2024 The moqls authors

package analysis

import (
	"strings"

	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/rjmurillo/moq.autocomplete/typename"
)

// Type is a bound type. Named types carry their metadata name in Name, e.g.
// "System.Int32" or "Moq.Mock", with Decl set when the name was found. A
// name that could not be bound keeps the text it was written with.
type Type struct {
	Name  string
	Args  []*Type
	Decl  *TypeDecl
	Param bool // unbound type parameter

	Elem    *Type
	Rank    int
	Pointer bool
	Tuple   []*Type

	null bool // the type of the null literal
}

var (
	nullType = &Type{null: true}
	voidType = &Type{Name: "System.Void"}
)

// ID returns the canonical identity used to compare types. It is empty for
// the null literal.
func (t *Type) ID() string {
	if t == nil || t.null {
		return ""
	}
	var b strings.Builder
	t.write(&b, func(t *Type) string { return t.Name }, ",")
	return b.String()
}

// Display renders the fully qualified form, using keywords for the
// predefined types: "Moq.Mock<App.IFoo>", "int", "System.Action<int>".
func (t *Type) Display() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.write(&b, func(t *Type) string {
		if k, ok := typename.Alias(t.Name); ok && len(t.Args) == 0 {
			return k
		}
		return t.Name
	}, ", ")
	return b.String()
}

// Minimal renders the form a user would write with the namespaces
// imported: "Mock<IFoo>", "int", "string?".
func (t *Type) Minimal() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.write(&b, func(t *Type) string {
		if k, ok := typename.Alias(t.Name); ok && len(t.Args) == 0 {
			return k
		}
		return simpleName(t.Name)
	}, ", ")
	return b.String()
}

// Simple returns the simple name of a named type, or of the element type
// of an array.
func (t *Type) Simple() string {
	switch {
	case t == nil:
		return ""
	case t.Elem != nil:
		return t.Elem.Simple()
	}
	return simpleName(t.Name)
}

func (t *Type) write(b *strings.Builder, name func(*Type) string, sep string) {
	switch {
	case t.null:
		b.WriteString("null")
	case t.Elem != nil && t.Pointer:
		t.Elem.write(b, name, sep)
		b.WriteByte('*')
	case t.Elem != nil:
		t.Elem.write(b, name, sep)
		b.WriteByte('[')
		b.WriteString(strings.Repeat(",", t.Rank-1))
		b.WriteByte(']')
	case t.Tuple != nil:
		b.WriteByte('(')
		for i, e := range t.Tuple {
			if i > 0 {
				b.WriteString(sep)
			}
			e.write(b, name, sep)
		}
		b.WriteByte(')')
	case t.isNullable() && sep != ",":
		t.Args[0].write(b, name, sep)
		b.WriteByte('?')
	default:
		b.WriteString(name(t))
		if len(t.Args) > 0 {
			b.WriteByte('<')
			for i, a := range t.Args {
				if i > 0 {
					b.WriteString(sep)
				}
				a.write(b, name, sep)
			}
			b.WriteByte('>')
		}
	}
}

func simpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (t *Type) isNullable() bool {
	return t != nil && t.Name == "System.Nullable" && len(t.Args) == 1
}

func (t *Type) isVoid() bool { return t != nil && t.Name == voidType.Name }

// known reports whether the type is bound to a declaration, or is composed
// only of bound types.
func (t *Type) known() bool {
	switch {
	case t == nil || t.null:
		return false
	case t.Elem != nil:
		return t.Elem.known()
	case t.Tuple != nil:
		for _, e := range t.Tuple {
			if !e.known() {
				return false
			}
		}
		return true
	}
	return t.Decl != nil || t.Param
}

// isValue reports whether values of the type cannot be null.
func (t *Type) isValue() bool {
	if t == nil || t.null || t.isNullable() {
		return false
	}
	if t.Tuple != nil {
		return true
	}
	return t.Decl != nil && t.Decl.Value
}

// delegate returns the parameter types and return type of a delegate type.
// Expression<D> is unwrapped to D. System.Delegate reports ok with any set
// to true.
func (t *Type) delegate() (params []*Type, ret *Type, any bool, ok bool) {
	if t == nil {
		return nil, nil, false, false
	}
	if t.Name == "System.Linq.Expressions.Expression" && len(t.Args) == 1 {
		return t.Args[0].delegate()
	}
	switch t.Name {
	case "System.Delegate", "System.MulticastDelegate":
		return nil, nil, true, true
	case "System.Action":
		return t.Args, voidType, false, true
	case "System.Func":
		if len(t.Args) == 0 {
			return nil, nil, false, false
		}
		return t.Args[:len(t.Args)-1], t.Args[len(t.Args)-1], false, true
	}
	return nil, nil, false, false
}

// subst replaces type parameters bound in env.
func subst(t *Type, env map[string]*Type) *Type {
	if t == nil || len(env) == 0 {
		return t
	}
	if t.Param {
		if b, ok := env[t.Name]; ok && b != nil {
			return b
		}
		return t
	}
	out := *t
	if t.Elem != nil {
		out.Elem = subst(t.Elem, env)
	}
	if t.Args != nil {
		out.Args = make([]*Type, len(t.Args))
		for i, a := range t.Args {
			out.Args[i] = subst(a, env)
		}
	}
	if t.Tuple != nil {
		out.Tuple = make([]*Type, len(t.Tuple))
		for i, e := range t.Tuple {
			out.Tuple[i] = subst(e, env)
		}
	}
	return &out
}

// bind pairs the type parameters of d with the arguments of t.
func bind(d *TypeDecl, t *Type, env map[string]*Type) map[string]*Type {
	if env == nil {
		env = make(map[string]*Type)
	}
	if d == nil || t == nil {
		return env
	}
	for i, p := range d.TypeParams {
		if i < len(t.Args) {
			env[p] = t.Args[i]
		}
	}
	return env
}

// moqType converts a bound type for callers outside the package.
func moqType(t *Type) moq.Type {
	if t == nil || t.null {
		return moq.Type{}
	}
	return moq.Type{ID: moq.TypeID(t.ID()), Display: t.Minimal(), Name: t.Simple()}
}

func moqTypes(ts []*Type) []moq.Type {
	if len(ts) == 0 {
		return nil
	}
	out := make([]moq.Type, len(ts))
	for i, t := range ts {
		out[i] = moqType(t)
	}
	return out
}
