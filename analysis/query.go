// Copyright © 2024 The moqls authors

package analysis

import (
	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/rjmurillo/moq.autocomplete/syntax"
)

// Symbol resolves an invocation, object creation, member access or type
// name. A member name resolves as the access or call it belongs to.
func (m *Model) Symbol(id syntax.NodeID) moq.Resolution {
	t := m.tree
	switch t.Kind(id) {
	case syntax.KindInvocation, syntax.KindObjectCreation:
		return m.resolveCall(id, 0).resolution(m)
	case syntax.KindMemberAccess:
		if p := t.Parent(id); t.Kind(p) == syntax.KindInvocation && astutil.Callee(t, p) == id {
			return m.Symbol(p)
		}
		return m.propertySymbol(id)
	case syntax.KindIdentifier, syntax.KindGenericName:
		p := t.Parent(id)
		switch {
		case t.Kind(p) == syntax.KindMemberAccess && astutil.MemberNameNode(t, p) == id:
			return m.Symbol(p)
		case t.Kind(p) == syntax.KindInvocation && astutil.Callee(t, p) == id:
			return m.Symbol(p)
		}
		return m.typeSymbol(id)
	case syntax.KindQualifiedName, syntax.KindPredefinedType, syntax.KindNullableType,
		syntax.KindArrayType, syntax.KindTupleType:
		return m.typeSymbol(id)
	}
	return moq.Resolution{}
}

func (m *Model) typeSymbol(id syntax.NodeID) moq.Resolution {
	typ := m.resolveTypeNode(id)
	if !typ.known() || typ.Param {
		return moq.Resolution{}
	}
	s := &moq.Symbol{
		Kind:          moq.SymbolType,
		Name:          typ.Simple(),
		QualifiedName: typ.Display(),
	}
	if typ.Decl != nil && len(typ.Decl.TypeParams) > 0 {
		s.ConstructedFrom = typ.Decl.Definition()
		s.TypeArgs = moqTypes(typ.Args)
	}
	return moq.ResolvedTo(s)
}

func (m *Model) propertySymbol(ma syntax.NodeID) moq.Resolution {
	t := m.tree
	name := astutil.SimpleName(t, astutil.MemberNameNode(t, ma))
	recv := astutil.Receiver(t, ma)
	rt := m.typeOf(recv, 0)
	if rt == nil {
		rt = m.typeOfName(recv)
	}
	for _, ht := range m.hierarchy(rt) {
		if ht.Decl == nil {
			continue
		}
		for _, p := range ht.Decl.Props {
			if p.Name == name {
				return moq.ResolvedTo(&moq.Symbol{
					Kind:          moq.SymbolProperty,
					Name:          name,
					QualifiedName: ht.Display() + "." + name,
				})
			}
		}
	}
	return moq.Resolution{}
}

// TypeOf returns the converted type of an expression or the bound type of
// type syntax. Names that cannot be bound keep their written form.
func (m *Model) TypeOf(id syntax.NodeID) (moq.Type, bool) {
	typ := m.typeOf(id, 0)
	if typ == nil || typ.null {
		return moq.Type{}, false
	}
	return moqType(typ), true
}
