// Copyright © 2024 The moqls authors

package analysis

import (
	"sort"

	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/rjmurillo/moq.autocomplete/syntax"
)

// binding is a name declared in some scope. Its type is computed on
// demand so that a lookup only binds the declaration it finds.
type binding struct {
	name string
	node syntax.NodeID
	typ  func() *Type
}

// scopeWalk calls fn for every variable visible at id, innermost scope
// first. It stops when fn returns false.
func (m *Model) scopeWalk(id syntax.NodeID, depth int, fn func(binding) bool) {
	t := m.tree
	child := id
	for p := t.Parent(id); p != syntax.NoNode; child, p = p, t.Parent(p) {
		var scope []binding
		switch k := t.Kind(p); {
		case k == syntax.KindLambda:
			params, _, _ := astutil.LambdaParameters(t, p)
			for i, prm := range params {
				lambda := p
				scope = append(scope, binding{
					name: t.Text(astutil.ParameterName(t, prm)),
					node: prm,
					typ: func() *Type {
						if tn := astutil.ParameterType(t, prm); tn != syntax.NoNode {
							return m.resolveTypeNode(tn)
						}
						return m.inferLambdaParam(lambda, i, depth+1)
					},
				})
			}
		case k == syntax.KindMethodDecl, k == syntax.KindConstructorDecl, k == syntax.KindLocalFunction:
			for _, prm := range t.ChildrenOf(m.paramList(p), syntax.KindParameter) {
				scope = append(scope, binding{
					name: t.Text(astutil.ParameterName(t, prm)),
					node: prm,
					typ:  func() *Type { return m.resolveTypeNode(astutil.ParameterType(t, prm)) },
				})
			}
		case k == syntax.KindBlock, k == syntax.KindCompilationUnit, t.Node(p).Type == "switch_section":
			for _, c := range t.Children(p) {
				if c == child || t.Span(c).Start >= t.Span(id).Start {
					break
				}
				scope = append(scope, m.locals(c, depth)...)
			}
		case t.Node(p).Type == "foreach_statement":
			if left := t.Field(p, "left"); left != syntax.NoNode && child != t.Field(p, "right") {
				typ := m.declaredType(p)
				scope = append(scope, binding{
					name: t.Text(left),
					node: left,
					typ:  func() *Type { return m.foreachType(p, typ, depth+1) },
				})
			}
		case k.IsTypeDecl():
			if d, ok := m.byNode[p]; ok {
				scope = append(scope, m.members(d)...)
			}
		}
		for _, b := range scope {
			if !fn(b) {
				return
			}
		}
	}
}

// locals returns the variables a statement declares into its block.
func (m *Model) locals(stmt syntax.NodeID, depth int) []binding {
	t := m.tree
	if t.Kind(stmt) == syntax.KindGlobalStatement {
		named := t.NamedChildren(stmt)
		if len(named) == 0 {
			return nil
		}
		stmt = named[0]
	}
	if t.Kind(stmt) != syntax.KindLocalDecl {
		return nil
	}
	vd := t.FirstChild(stmt, syntax.KindVariableDecl)
	typeNode := m.declaredType(vd)
	var out []binding
	for _, v := range t.ChildrenOf(vd, syntax.KindVariableDeclarator) {
		out = append(out, binding{
			name: m.declaratorName(v),
			node: v,
			typ: func() *Type {
				if ref := m.refOf(typeNode); ref != nil {
					return m.resolveRef(ref, m.ctxAt(typeNode))
				}
				return m.typeOf(m.declaratorValue(v), depth+1)
			},
		})
	}
	return out
}

// members returns the fields, properties and primary constructor
// parameters of d and of its bases.
func (m *Model) members(d *TypeDecl) []binding {
	var out []binding
	for _, ht := range m.hierarchy(m.selfType(d)) {
		if ht.Decl == nil {
			continue
		}
		env := bind(ht.Decl, ht, nil)
		for _, p := range ht.Decl.Props {
			decl := ht.Decl
			out = append(out, binding{
				name: p.Name,
				node: p.Node,
				typ:  func() *Type { return subst(m.resolveRef(p.Type, declCtx(decl, nil)), env) },
			})
		}
	}
	if d.Kind != DeclRecord && len(d.Ctors) > 0 && d.Ctors[0].Node == d.Node {
		for _, p := range d.Ctors[0].Params {
			out = append(out, binding{
				name: p.Name,
				node: d.Node,
				typ:  func() *Type { return m.resolveRef(p.Type, declCtx(d, nil)) },
			})
		}
	}
	return out
}

func (m *Model) foreachType(stmt, typeNode syntax.NodeID, depth int) *Type {
	if ref := m.refOf(typeNode); ref != nil {
		return m.resolveRef(ref, m.ctxAt(typeNode))
	}
	coll := m.typeOf(m.tree.Field(stmt, "right"), depth)
	if coll == nil {
		return nil
	}
	if coll.Elem != nil {
		return coll.Elem
	}
	for _, ht := range m.hierarchy(coll) {
		if ht.Name == "System.Collections.Generic.IEnumerable" && len(ht.Args) == 1 {
			return ht.Args[0]
		}
	}
	return nil
}

// lookupVariable returns the type of the innermost variable named name
// visible at id.
func (m *Model) lookupVariable(id syntax.NodeID, name string, depth int) (*Type, bool) {
	if depth > maxDepth {
		return nil, false
	}
	var found *binding
	m.scopeWalk(id, depth, func(b binding) bool {
		if b.name == name {
			found = &b
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return found.typ(), true
}

// VisibleVariables lists the variables in scope at id in declaration
// order. Inner declarations hide outer ones of the same name.
func (m *Model) VisibleVariables(at syntax.NodeID) []moq.Variable {
	seen := make(map[string]bool)
	var bs []binding
	m.scopeWalk(at, 0, func(b binding) bool {
		if b.name != "" && !seen[b.name] {
			seen[b.name] = true
			bs = append(bs, b)
		}
		return true
	})
	sort.SliceStable(bs, func(i, j int) bool {
		return m.tree.Span(bs[i].node).Start < m.tree.Span(bs[j].node).Start
	})
	out := make([]moq.Variable, 0, len(bs))
	for _, b := range bs {
		typ := b.typ()
		v := moq.Variable{Name: b.name, Type: moqType(typ)}
		if typ != nil && typ.Decl != nil && len(typ.Decl.TypeParams) > 0 {
			v.ConstructedFrom = typ.Decl.Definition()
			v.TypeArgs = moqTypes(typ.Args)
		}
		out = append(out, v)
	}
	return out
}
