// Copyright © 2024 The moqls authors

package analysis

import (
	"strings"

	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/syntax"
)

func systemType(full string) *Type {
	d := builtins.lookup(full, 0)
	return &Type{Name: full, Decl: d}
}

var (
	boolType   = systemType("System.Boolean")
	stringType = systemType("System.String")
	typeType   = systemType("System.Type")
)

// typeOf returns the converted type of an expression or the bound type of
// type syntax. It returns nil when the type cannot be determined.
func (m *Model) typeOf(id syntax.NodeID, depth int) *Type {
	t := m.tree
	if !id.Valid() || depth > maxDepth {
		return nil
	}
	n := t.Node(id)
	switch n.Kind {
	case syntax.KindLiteral:
		return literalType(n.Type, t.Text(id))
	case syntax.KindIdentifier:
		if m.inTypePosition(id) {
			return m.resolveTypeNode(id)
		}
		if v, ok := m.lookupVariable(id, t.Text(id), depth+1); ok {
			return v
		}
		return nil
	case syntax.KindGenericName, syntax.KindQualifiedName, syntax.KindPredefinedType,
		syntax.KindNullableType, syntax.KindArrayType, syntax.KindTupleType:
		if t.Kind(t.Parent(id)) == syntax.KindMemberAccess && t.FieldIs(id, "name") {
			return nil
		}
		return m.resolveTypeNode(id)
	case syntax.KindParenthesized:
		return m.typeOf(astutil.Unparen(t, id), depth+1)
	case syntax.KindMemberAccess:
		return m.memberAccessType(id, depth+1)
	case syntax.KindInvocation:
		return m.invocationType(id, depth+1)
	case syntax.KindObjectCreation:
		typ := t.Field(id, "type")
		if typ == syntax.NoNode {
			typ = m.declaredType(id)
		}
		return m.resolveTypeNode(typ)
	case syntax.KindCast:
		return m.resolveTypeNode(m.declaredType(id))
	case syntax.KindDefault:
		if typ := m.declaredType(id); typ != syntax.NoNode {
			return m.resolveTypeNode(typ)
		}
		return nil
	case syntax.KindTypeOf:
		return typeType
	case syntax.KindThis:
		if d := m.ctxAt(id).decl; d != nil {
			return m.selfType(d)
		}
		return nil
	case syntax.KindOther:
		return m.operatorType(id, n.Type, depth+1)
	}
	return nil
}

// selfType is the type of this inside d: d constructed over its own type
// parameters.
func (m *Model) selfType(d *TypeDecl) *Type {
	st := &Type{Name: d.FullName(), Decl: d}
	for _, p := range d.TypeParams {
		st.Args = append(st.Args, &Type{Name: p, Param: true})
	}
	return st
}

func literalType(kind, text string) *Type {
	switch kind {
	case "integer_literal":
		s := strings.ToLower(text)
		switch {
		case strings.HasSuffix(s, "ul"), strings.HasSuffix(s, "lu"):
			return systemType("System.UInt64")
		case strings.HasSuffix(s, "u"):
			return systemType("System.UInt32")
		case strings.HasSuffix(s, "l"):
			return systemType("System.Int64")
		}
		return systemType("System.Int32")
	case "real_literal":
		switch strings.ToLower(text[len(text)-1:]) {
		case "f":
			return systemType("System.Single")
		case "m":
			return systemType("System.Decimal")
		}
		return systemType("System.Double")
	case "character_literal":
		return systemType("System.Char")
	case "boolean_literal":
		return boolType
	case "null_literal":
		return nullType
	}
	return stringType
}

// inTypePosition reports whether an identifier stands for a type rather
// than a value.
func (m *Model) inTypePosition(id syntax.NodeID) bool {
	t := m.tree
	parent := t.Parent(id)
	if t.FieldIs(id, "type") || t.FieldIs(id, "returns") {
		return true
	}
	switch t.Kind(parent) {
	case syntax.KindTypeArgumentList, syntax.KindBaseList, syntax.KindNullableType, syntax.KindArrayType, syntax.KindTupleType:
		return true
	}
	return false
}

func (m *Model) memberAccessType(ma syntax.NodeID, depth int) *Type {
	t := m.tree
	name := astutil.SimpleName(t, astutil.MemberNameNode(t, ma))
	recv := astutil.Receiver(t, ma)
	if rt := m.typeOf(recv, depth); rt != nil {
		return m.findProperty(rt, name)
	}
	if st := m.typeOfName(recv); st != nil {
		return m.findProperty(st, name)
	}
	return nil
}

// findProperty returns the type of a property or field named name on t or
// one of its bases.
func (m *Model) findProperty(t *Type, name string) *Type {
	for _, ht := range m.hierarchy(t) {
		if ht.Decl == nil {
			continue
		}
		for _, p := range ht.Decl.Props {
			if p.Name == name {
				return subst(m.resolveRef(p.Type, declCtx(ht.Decl, nil)), bind(ht.Decl, ht, nil))
			}
		}
	}
	return nil
}

func (m *Model) invocationType(inv syntax.NodeID, depth int) *Type {
	t := m.tree
	callee := astutil.Callee(t, inv)
	if t.Kind(callee) == syntax.KindIdentifier && t.Text(callee) == "nameof" {
		return stringType
	}
	res := m.resolveCall(inv, depth)
	var ret *Type
	for i, bm := range res.methods {
		rt := bm.returnType(m)
		if i == 0 {
			ret = rt
			continue
		}
		if ret.ID() != rt.ID() {
			return nil
		}
	}
	return ret
}

// operatorType types the expression forms the grammar names without a
// dedicated kind.
func (m *Model) operatorType(id syntax.NodeID, kind string, depth int) *Type {
	t := m.tree
	named := t.NamedChildren(id)
	switch kind {
	case "await_expression":
		if len(named) == 0 {
			return nil
		}
		at := m.typeOf(named[len(named)-1], depth)
		if at != nil && len(at.Args) == 1 && (at.Name == "System.Threading.Tasks.Task" || at.Name == "System.Threading.Tasks.ValueTask") {
			return at.Args[0]
		}
		return nil
	case "binary_expression":
		op := t.Field(id, "operator")
		switch t.Text(op) {
		case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
			return boolType
		}
		if l := t.Field(id, "left"); l != syntax.NoNode {
			return m.typeOf(l, depth)
		}
	case "is_expression", "is_pattern_expression":
		return boolType
	case "as_expression":
		if r := t.Field(id, "right"); r != syntax.NoNode {
			return m.resolveTypeNode(r)
		}
	case "conditional_expression":
		if c := t.Field(id, "consequence"); c != syntax.NoNode {
			return m.typeOf(c, depth)
		}
	case "assignment_expression":
		if l := t.Field(id, "left"); l != syntax.NoNode {
			return m.typeOf(l, depth)
		}
	case "prefix_unary_expression":
		if strings.HasPrefix(t.Text(id), "!") {
			return boolType
		}
		if len(named) > 0 {
			return m.typeOf(named[0], depth)
		}
	case "postfix_unary_expression", "checked_expression":
		if len(named) > 0 {
			return m.typeOf(named[0], depth)
		}
	case "array_creation_expression":
		return m.resolveTypeNode(m.declaredType(id))
	}
	return nil
}
