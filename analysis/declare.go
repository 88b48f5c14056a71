// Copyright © 2024 The moqls authors

package analysis

import (
	"strings"

	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/rjmurillo/moq.autocomplete/typename"
)

func (m *Model) member(d *TypeDecl, id syntax.NodeID) {
	t := m.tree
	switch t.Kind(id) {
	case syntax.KindMethodDecl:
		md := m.method(id, d)
		d.Methods = append(d.Methods, md)
		m.methods[id] = md
	case syntax.KindConstructorDecl:
		ctor := &MethodDecl{
			Name:   d.Name,
			Owner:  d,
			Params: m.params(m.paramList(id)),
			Static: m.hasModifier(id, "static"),
			Node:   id,
		}
		if !ctor.Static {
			d.Ctors = append(d.Ctors, ctor)
		}
		m.methods[id] = ctor
	case syntax.KindPropertyDecl:
		d.Props = append(d.Props, &PropertyDecl{
			Name:   t.Text(t.Field(id, "name")),
			Type:   m.refOf(m.declaredType(id)),
			Owner:  d,
			Static: m.hasModifier(id, "static"),
			Node:   id,
		})
	case syntax.KindFieldDecl:
		vd := t.FirstChild(id, syntax.KindVariableDecl)
		typ := m.refOf(m.declaredType(vd))
		for _, v := range t.ChildrenOf(vd, syntax.KindVariableDeclarator) {
			d.Props = append(d.Props, &PropertyDecl{
				Name:   m.declaratorName(v),
				Type:   typ,
				Owner:  d,
				Static: m.hasModifier(id, "static", "const"),
				Field:  true,
				Node:   v,
			})
		}
	}
}

// method reads a method or delegate declaration.
func (m *Model) method(id syntax.NodeID, owner *TypeDecl) *MethodDecl {
	t := m.tree
	md := &MethodDecl{
		Name:       t.Text(t.Field(id, "name")),
		Owner:      owner,
		TypeParams: m.typeParams(id),
		Params:     m.params(m.paramList(id)),
		Static:     m.hasModifier(id, "static"),
		Node:       id,
	}
	if ret := t.Field(id, "returns"); ret != syntax.NoNode {
		md.Returns = m.refOf(ret)
	} else {
		md.Returns = m.refOf(m.declaredType(id))
	}
	if md.Returns == nil {
		md.Returns = typename.MustParse("void")
	}
	return md
}

func (m *Model) paramList(id syntax.NodeID) syntax.NodeID {
	if pl := m.tree.Field(id, "parameters"); pl != syntax.NoNode {
		return pl
	}
	return m.tree.FirstChild(id, syntax.KindParameterList)
}

func (m *Model) params(pl syntax.NodeID) []ParamDecl {
	t := m.tree
	var out []ParamDecl
	for _, p := range t.ChildrenOf(pl, syntax.KindParameter) {
		pd := ParamDecl{
			Name: t.Text(astutil.ParameterName(t, p)),
			Type: m.refOf(astutil.ParameterType(t, p)),
		}
		for _, c := range t.Children(p) {
			switch {
			case t.Text(c) == "params":
				pd.Variadic = true
			case t.Kind(c) == syntax.KindEquals, t.Kind(c) == syntax.KindEqualsValue:
				pd.Optional = true
			}
		}
		out = append(out, pd)
	}
	return out
}

func (m *Model) typeParams(id syntax.NodeID) []string {
	t := m.tree
	tpl := t.Field(id, "type_parameters")
	if tpl == syntax.NoNode {
		tpl = t.FirstChild(id, syntax.KindTypeParameterList)
	}
	var out []string
	for _, tp := range t.ChildrenOf(tpl, syntax.KindTypeParameter) {
		name := t.Field(tp, "name")
		if name == syntax.NoNode {
			ids := t.ChildrenOf(tp, syntax.KindIdentifier)
			if len(ids) == 0 {
				continue
			}
			name = ids[len(ids)-1]
		}
		out = append(out, t.Text(name))
	}
	return out
}

func (m *Model) enumMembers(d *TypeDecl, body syntax.NodeID) {
	t := m.tree
	self := typename.MustParse(d.Name)
	for _, c := range t.NamedChildren(body) {
		name := t.Field(c, "name")
		if name == syntax.NoNode {
			name = t.FirstChild(c, syntax.KindIdentifier)
		}
		if name == syntax.NoNode {
			continue
		}
		d.Props = append(d.Props, &PropertyDecl{Name: t.Text(name), Type: self, Owner: d, Static: true, Field: true, Node: c})
	}
}

// declaredType returns the type syntax of a property, variable or method
// declaration: the "type" field, or the first type syntax preceding the
// name.
func (m *Model) declaredType(id syntax.NodeID) syntax.NodeID {
	t := m.tree
	if typ := t.Field(id, "type"); typ != syntax.NoNode {
		return typ
	}
	for _, c := range t.NamedChildren(id) {
		if t.FieldIs(c, "name") {
			break
		}
		if t.Kind(c).IsTypeSyntax() {
			return c
		}
	}
	return syntax.NoNode
}

func (m *Model) declaratorName(v syntax.NodeID) string {
	t := m.tree
	if n := t.Field(v, "name"); n != syntax.NoNode {
		return t.Text(n)
	}
	return t.Text(t.FirstChild(v, syntax.KindIdentifier))
}

// declaratorValue returns the initializer expression of a variable
// declarator, or NoNode.
func (m *Model) declaratorValue(v syntax.NodeID) syntax.NodeID {
	t := m.tree
	if ev := t.FirstChild(v, syntax.KindEqualsValue); ev != syntax.NoNode {
		named := t.NamedChildren(ev)
		if len(named) == 0 {
			return syntax.NoNode
		}
		return named[len(named)-1]
	}
	seenEq := false
	for _, c := range t.Children(v) {
		if t.Kind(c) == syntax.KindEquals {
			seenEq = true
			continue
		}
		if seenEq && t.Node(c).Named && !t.Kind(c).IsTrivia() {
			return c
		}
	}
	return syntax.NoNode
}

func (m *Model) hasModifier(id syntax.NodeID, words ...string) bool {
	t := m.tree
	for _, c := range t.ChildrenOf(id, syntax.KindModifier, syntax.KindKeyword) {
		text := t.Text(c)
		for _, w := range words {
			if text == w {
				return true
			}
		}
	}
	return false
}

// namespaceOf joins the names of the namespaces enclosing id.
func (m *Model) namespaceOf(id syntax.NodeID) string {
	t := m.tree
	var parts []string
	for p := t.Ancestor(id, syntax.KindNamespaceDecl); p != syntax.NoNode; p = t.Ancestor(p, syntax.KindNamespaceDecl) {
		parts = append([]string{m.refText(t.Field(p, "name"))}, parts...)
	}
	if len(parts) == 0 {
		return m.fileNamespace
	}
	return strings.Join(parts, ".")
}

// refText returns the source text of a name with whitespace and comments
// removed.
func (m *Model) refText(id syntax.NodeID) string {
	t := m.tree
	if !id.Valid() {
		return ""
	}
	if t.Node(id).Token {
		return t.Text(id)
	}
	var b strings.Builder
	t.Walk(id, func(c, _ syntax.NodeID, _ int) bool {
		n := t.Node(c)
		if n.Kind.IsTrivia() {
			return false
		}
		if text := t.Text(c); n.Token && !n.Missing && text != "" {
			if b.Len() > 0 && isWordByte(b.String()[b.Len()-1]) && isWordByte(text[0]) {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
		return true
	})
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || c == '@' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

// refOf parses a type syntax node. It returns nil for anything that is
// not well-formed type syntax, including the implicit type var.
func (m *Model) refOf(id syntax.NodeID) *typename.Ref {
	if !id.Valid() || m.tree.Kind(id) == syntax.KindImplicitType {
		return nil
	}
	text := m.refText(id)
	if text == "var" && m.tree.Kind(id) == syntax.KindIdentifier {
		return nil
	}
	ref, err := typename.Parse(text)
	if err != nil {
		return nil
	}
	return ref
}
