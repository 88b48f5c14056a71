// Copyright © 2024 The moqls authors

package analysis

import (
	"strings"

	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/rjmurillo/moq.autocomplete/typename"
)

// DeclKind classifies a type declaration.
type DeclKind int

const (
	DeclClass DeclKind = iota
	DeclInterface
	DeclStruct
	DeclRecord
	DeclEnum
	DeclDelegate
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclInterface:
		return "interface"
	case DeclStruct:
		return "struct"
	case DeclRecord:
		return "record"
	case DeclEnum:
		return "enum"
	case DeclDelegate:
		return "delegate"
	default:
		return "unknown"
	}
}

// TypeDecl is a declared or built-in named type. Member signatures hold
// unresolved type references; they are bound on demand in the context of
// the declaration.
type TypeDecl struct {
	Name       string
	Namespace  string
	Kind       DeclKind
	TypeParams []string
	Bases      []*typename.Ref
	Methods    []*MethodDecl
	Ctors      []*MethodDecl
	Props      []*PropertyDecl
	Outer      *TypeDecl
	Value      bool // struct, enum or record struct
	Builtin    bool
	Node       syntax.NodeID // NoNode for built-ins
}

// FullName returns the namespace-qualified name without type parameters.
func (d *TypeDecl) FullName() string {
	var parts []string
	for o := d; o != nil; o = o.Outer {
		parts = append(parts, o.Name)
	}
	if d.outermost().Namespace != "" {
		parts = append(parts, d.outermost().Namespace)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Definition renders the generic definition, e.g. "Moq.Mock<T>".
func (d *TypeDecl) Definition() string {
	if len(d.TypeParams) == 0 {
		return d.FullName()
	}
	return d.FullName() + "<" + strings.Join(d.TypeParams, ", ") + ">"
}

func (d *TypeDecl) outermost() *TypeDecl {
	for d.Outer != nil {
		d = d.Outer
	}
	return d
}

// variadic reports whether the declaration accepts any number of type
// arguments. Action and Func are modelled this way.
func (d *TypeDecl) variadic() bool {
	return d.Kind == DeclDelegate && d.Builtin && d.TypeParams == nil
}

// MethodDecl is a method, constructor or delegate signature.
type MethodDecl struct {
	Name       string
	Owner      *TypeDecl
	TypeParams []string
	Params     []ParamDecl
	Returns    *typename.Ref // nil for constructors
	Static     bool
	Node       syntax.NodeID
}

// ParamDecl is a declared parameter.
type ParamDecl struct {
	Name     string
	Type     *typename.Ref
	Variadic bool // params array
	Optional bool
}

// required returns the number of parameters without defaults.
func (m *MethodDecl) required() int {
	n := 0
	for _, p := range m.Params {
		if !p.Optional && !p.Variadic {
			n++
		}
	}
	return n
}

// acceptsArity reports whether n arguments can bind to the parameters.
func (m *MethodDecl) acceptsArity(n int) bool {
	if n < m.required() {
		return false
	}
	if n <= len(m.Params) {
		return true
	}
	return len(m.Params) > 0 && m.Params[len(m.Params)-1].Variadic
}

// PropertyDecl is a property or field.
type PropertyDecl struct {
	Name   string
	Type   *typename.Ref
	Owner  *TypeDecl
	Static bool
	Field  bool
	Node   syntax.NodeID
}
