// Copyright © 2024 The moqls authors

package analysis

import (
	"strings"

	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/rjmurillo/moq.autocomplete/typename"
)

// lookupCtx is where a type reference is bound: the enclosing type and
// method supply type parameters and nested types, the namespace supplies
// relative names.
type lookupCtx struct {
	decl      *TypeDecl
	method    *MethodDecl
	namespace string
}

func declCtx(d *TypeDecl, md *MethodDecl) lookupCtx {
	ctx := lookupCtx{decl: d, method: md}
	if d != nil {
		ctx.namespace = d.outermost().Namespace
	}
	return ctx
}

// ctxAt returns the lookup context of a node in the tree.
func (m *Model) ctxAt(id syntax.NodeID) lookupCtx {
	t := m.tree
	ctx := lookupCtx{namespace: m.namespaceOf(id)}
	if md := t.Ancestor(id, syntax.KindMethodDecl); md != syntax.NoNode {
		ctx.method = m.methods[md]
	}
	if p := t.Ancestor(id, typeDeclKinds...); p != syntax.NoNode {
		ctx.decl = m.byNode[p]
	}
	return ctx
}

var typeDeclKinds = []syntax.Kind{
	syntax.KindClassDecl, syntax.KindInterfaceDecl, syntax.KindStructDecl,
	syntax.KindRecordDecl, syntax.KindEnumDecl, syntax.KindDelegateDecl,
}

func (ctx lookupCtx) isTypeParam(name string) bool {
	if ctx.method != nil && contains(ctx.method.TypeParams, name) {
		return true
	}
	for d := ctx.decl; d != nil; d = d.Outer {
		if contains(d.TypeParams, name) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// resolveRef binds a parsed type reference.
func (m *Model) resolveRef(ref *typename.Ref, ctx lookupCtx) *Type {
	switch {
	case ref == nil:
		return nil
	case ref.Elem != nil:
		return &Type{Elem: m.resolveRef(ref.Elem, ctx), Rank: ref.Rank, Pointer: ref.Pointer}
	case ref.Tuple != nil:
		tt := &Type{Tuple: make([]*Type, len(ref.Tuple))}
		for i, e := range ref.Tuple {
			tt.Tuple[i] = m.resolveRef(e, ctx)
		}
		return m.nullable(tt, ref.Nullable)
	}
	if len(ref.Args) == 0 && ref.Unbound == 0 && !ref.Qualified() {
		if ctx.isTypeParam(ref.Name) {
			return &Type{Name: ref.Name, Param: true}
		}
		if alias, ok := m.aliases[ref.Name]; ok {
			return m.nullable(m.resolveRef(alias, lookupCtx{}), ref.Nullable)
		}
	}
	var args []*Type
	for _, a := range ref.Args {
		args = append(args, m.resolveRef(a, ctx))
	}
	t := &Type{Name: ref.Name, Args: args}
	var d *TypeDecl
	if q, ok := typename.Keyword(ref.Name); ok {
		d = builtins.lookup(q, 0)
	} else {
		d = m.lookupType(ref.Name, ref.Arity(), ctx)
	}
	if d != nil {
		t.Name, t.Decl = d.FullName(), d
	}
	return m.nullable(t, ref.Nullable)
}

// nullable wraps value types written with a trailing '?'. Nullable
// reference annotations do not change the type.
func (m *Model) nullable(t *Type, annotated bool) *Type {
	if !annotated || !t.isValue() {
		return t
	}
	return &Type{Name: "System.Nullable", Args: []*Type{t}, Decl: builtins.lookup("System.Nullable", 1)}
}

// lookupType finds the declaration a type name refers to. Declarations in
// the file shadow built-ins, and built-ins are only visible through an
// imported or enclosing namespace.
func (m *Model) lookupType(name string, arity int, ctx lookupCtx) *TypeDecl {
	if strings.IndexByte(name, '.') >= 0 {
		if d := m.lookupFull(name, arity); d != nil {
			return d
		}
		for ns := ctx.namespace; ns != ""; ns = parentNamespace(ns) {
			if d := m.lookupFull(ns+"."+name, arity); d != nil {
				return d
			}
		}
		return nil
	}
	for o := ctx.decl; o != nil; o = o.Outer {
		for _, d := range m.types[name] {
			if d.Outer == o && arityMatches(d, arity) {
				return d
			}
		}
	}
	var fallback *TypeDecl
	for _, d := range m.types[name] {
		if !arityMatches(d, arity) {
			continue
		}
		if d.Outer == nil && inNamespace(ctx.namespace, d.Namespace) {
			return d
		}
		if fallback == nil && d.Outer == nil {
			fallback = d
		}
	}
	if fallback != nil {
		return fallback
	}
	for _, d := range builtins.byName[name] {
		if arityMatches(d, arity) && (m.imports[d.Namespace] || inNamespace(ctx.namespace, d.Namespace)) {
			return d
		}
	}
	return nil
}

func (m *Model) lookupFull(full string, arity int) *TypeDecl {
	for _, d := range m.byFull[full] {
		if arityMatches(d, arity) {
			return d
		}
	}
	return builtins.lookup(full, arity)
}

func arityMatches(d *TypeDecl, arity int) bool {
	return len(d.TypeParams) == arity || d.variadic()
}

// inNamespace reports whether code in namespace ns sees names declared in
// namespace target without a using directive.
func inNamespace(ns, target string) bool {
	return target == "" || ns == target || strings.HasPrefix(ns, target+".")
}

func parentNamespace(ns string) string {
	if i := strings.LastIndexByte(ns, '.'); i >= 0 {
		return ns[:i]
	}
	return ""
}

// typeOfName binds a simple or qualified name used as an expression that
// denotes a type, such as the receiver of It.IsAny.
func (m *Model) typeOfName(id syntax.NodeID) *Type {
	t := m.resolveRef(m.refOf(id), m.ctxAt(id))
	if t == nil || t.Decl == nil {
		return nil
	}
	return t
}

// resolveTypeNode binds a type syntax node.
func (m *Model) resolveTypeNode(id syntax.NodeID) *Type {
	return m.resolveRef(m.refOf(id), m.ctxAt(id))
}

// baseTypes returns the bound base types of t with t's type arguments
// substituted.
func (m *Model) baseTypes(t *Type) []*Type {
	if t == nil || t.Decl == nil {
		return nil
	}
	d := t.Decl
	env := bind(d, t, nil)
	ctx := declCtx(d, nil)
	var out []*Type
	for _, b := range d.Bases {
		if bt := m.resolveRef(b, ctx); bt != nil {
			out = append(out, subst(bt, env))
		}
	}
	if len(d.Bases) == 0 && d.Kind != DeclInterface && d.FullName() != "System.Object" {
		out = append(out, &Type{Name: "System.Object", Decl: builtins.lookup("System.Object", 0)})
	}
	return out
}

// hierarchy returns t followed by all of its base types, breadth first.
func (m *Model) hierarchy(t *Type) []*Type {
	var out []*Type
	seen := make(map[string]bool)
	queue := []*Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == nil || seen[cur.ID()] {
			continue
		}
		seen[cur.ID()] = true
		out = append(out, cur)
		queue = append(queue, m.baseTypes(cur)...)
	}
	return out
}
