// Copyright © 2024 The moqls authors

// Package analysis provides a single-file semantic model for C# source.
//
// A Model binds the declarations of one syntax tree together with a table
// of built-in types: the predefined types, part of the base class library
// and the fluent API of Moq. It answers the queries the mock engine needs:
// what an invocation or type name resolves to, the converted type of an
// expression, and which variables are in scope at a node. Overload
// resolution follows C# closely enough to tell apart the delegate overloads
// that setup and callback chains are written against.
package analysis

import (
	"strings"

	"github.com/rjmurillo/moq.autocomplete/config"
	"github.com/rjmurillo/moq.autocomplete/csharp"
	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/rjmurillo/moq.autocomplete/typename"
)

// maxDepth bounds mutually recursive queries such as the type of a var
// initializer that refers to another var.
const maxDepth = 64

// Model is the semantic model of one tree. It is immutable after Build and
// safe for concurrent use.
type Model struct {
	tree *syntax.Tree

	imports       map[string]bool
	aliases       map[string]*typename.Ref
	statics       []string
	fileNamespace string

	types   map[string][]*TypeDecl // declared types by simple name
	byFull  map[string][]*TypeDecl
	byNode  map[syntax.NodeID]*TypeDecl
	methods map[syntax.NodeID]*MethodDecl
}

var _ moq.Resolver = (*Model)(nil)

// Build binds the declarations of tree. cfg supplies the implicit usings;
// a nil cfg means config.Default.
func Build(tree *syntax.Tree, cfg *config.Config) *Model {
	if cfg == nil {
		cfg = config.Default()
	}
	m := &Model{
		tree:    tree,
		imports: make(map[string]bool),
		aliases: make(map[string]*typename.Ref),
		types:   make(map[string][]*TypeDecl),
		byFull:  make(map[string][]*TypeDecl),
		byNode:  make(map[syntax.NodeID]*TypeDecl),
		methods: make(map[syntax.NodeID]*MethodDecl),
	}
	for _, ns := range cfg.ImplicitUsings {
		m.imports[ns] = true
	}
	m.declare()
	return m
}

// Reparser returns a moq.Reparser that parses C# and builds a Model with
// cfg.
func Reparser(cfg *config.Config) moq.Reparser {
	return func(filename string, src []byte) (*syntax.Tree, moq.Resolver, error) {
		tree, err := csharp.Parse(filename, src)
		if err != nil {
			return nil, nil, err
		}
		return tree, Build(tree, cfg), nil
	}
}

// Tree returns the tree the model was built from.
func (m *Model) Tree() *syntax.Tree { return m.tree }

// Declared returns the type declared by a type declaration node.
func (m *Model) Declared(id syntax.NodeID) (*TypeDecl, bool) {
	d, ok := m.byNode[id]
	return d, ok
}

// declare is the prescan: it records using directives and every type and
// member declaration before any expression is bound.
func (m *Model) declare() {
	t := m.tree
	t.Walk(t.Root(), func(id, _ syntax.NodeID, _ int) bool {
		switch k := t.Kind(id); {
		case k == syntax.KindUsingDirective:
			m.using(id)
			return false
		case k == syntax.KindNamespaceDecl:
			if t.Field(id, "body") == syntax.NoNode && t.FirstChild(id, syntax.KindDeclarationList) == syntax.NoNode {
				m.fileNamespace = m.refText(t.Field(id, "name"))
			}
		case k.IsTypeDecl(), k == syntax.KindDelegateDecl:
			m.declareType(id)
		case k.IsTrivia(), k == syntax.KindBlock:
			return false
		}
		return true
	})
}

func (m *Model) using(id syntax.NodeID) {
	text := strings.TrimSpace(m.tree.Text(id))
	text = strings.TrimSuffix(text, ";")
	text = strings.TrimSpace(strings.TrimPrefix(text, "global "))
	text = strings.TrimSpace(strings.TrimPrefix(text, "using "))
	switch {
	case strings.HasPrefix(text, "static "):
		m.statics = append(m.statics, strings.TrimSpace(strings.TrimPrefix(text, "static ")))
	case strings.Contains(text, "="):
		i := strings.IndexByte(text, '=')
		if ref, err := typename.Parse(text[i+1:]); err == nil {
			m.aliases[strings.TrimSpace(text[:i])] = ref
		}
	case text != "":
		m.imports[strings.Join(strings.Fields(text), "")] = true
	}
}

func (m *Model) declareType(id syntax.NodeID) {
	t := m.tree
	n := t.Node(id)
	d := &TypeDecl{
		Name:      t.Text(t.Field(id, "name")),
		Namespace: m.namespaceOf(id),
		Node:      id,
	}
	if d.Name == "" {
		if ids := t.ChildrenOf(id, syntax.KindIdentifier); len(ids) > 0 {
			d.Name = t.Text(ids[0])
		}
	}
	if d.Name == "" {
		return
	}
	if outer := t.Ancestor(id, syntax.KindClassDecl, syntax.KindInterfaceDecl, syntax.KindStructDecl, syntax.KindRecordDecl); outer != syntax.NoNode {
		d.Outer = m.byNode[outer]
	}
	switch n.Kind {
	case syntax.KindClassDecl:
		d.Kind = DeclClass
	case syntax.KindInterfaceDecl:
		d.Kind = DeclInterface
	case syntax.KindStructDecl:
		d.Kind, d.Value = DeclStruct, true
	case syntax.KindRecordDecl:
		d.Kind, d.Value = DeclRecord, n.Type == "record_struct_declaration" || strings.Contains(t.Text(id), "record struct")
	case syntax.KindEnumDecl:
		d.Kind, d.Value = DeclEnum, true
	case syntax.KindDelegateDecl:
		d.Kind = DeclDelegate
	}
	d.TypeParams = m.typeParams(id)
	if bl := t.FirstChild(id, syntax.KindBaseList); bl != syntax.NoNode {
		for _, b := range t.NamedChildren(bl) {
			if !t.Kind(b).IsTypeSyntax() {
				if named := t.NamedChildren(b); len(named) > 0 {
					b = named[0]
				}
			}
			if ref := m.refOf(b); ref != nil {
				d.Bases = append(d.Bases, ref)
			}
		}
	}
	m.types[d.Name] = append(m.types[d.Name], d)
	m.byFull[d.FullName()] = append(m.byFull[d.FullName()], d)
	m.byNode[id] = d

	if d.Kind == DeclDelegate {
		invoke := m.method(id, d)
		invoke.Name = "Invoke"
		d.Methods = append(d.Methods, invoke)
		return
	}
	if pl := t.FirstChild(id, syntax.KindParameterList); pl != syntax.NoNode {
		ctor := &MethodDecl{Name: d.Name, Owner: d, Params: m.params(pl), Node: id}
		d.Ctors = append(d.Ctors, ctor)
		if d.Kind == DeclRecord {
			for _, p := range ctor.Params {
				d.Props = append(d.Props, &PropertyDecl{Name: p.Name, Type: p.Type, Owner: d, Node: id})
			}
		}
	}
	body := t.Field(id, "body")
	if body == syntax.NoNode {
		body = t.FirstChild(id, syntax.KindDeclarationList)
	}
	if d.Kind == DeclEnum {
		m.enumMembers(d, body)
		return
	}
	for _, c := range t.NamedChildren(body) {
		m.member(d, c)
	}
}
