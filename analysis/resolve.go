// Copyright © 2024 The moqls authors

package analysis

import (
	"strings"

	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/rjmurillo/moq.autocomplete/typename"
)

// boundMethod is a method or constructor seen through a constructed
// receiver. env binds the receiver's type parameters and, once inferred or
// given explicitly, the method's own.
type boundMethod struct {
	decl *MethodDecl
	recv *Type
	env  map[string]*Type
}

func (b *boundMethod) ctx() lookupCtx { return declCtx(b.decl.Owner, b.decl) }

func (b *boundMethod) paramType(m *Model, i int) *Type {
	if i >= len(b.decl.Params) {
		return nil
	}
	return subst(m.resolveRef(b.decl.Params[i].Type, b.ctx()), b.env)
}

// argType returns the parameter type argument i binds to in the expanded
// form of a params array.
func (b *boundMethod) argType(m *Model, i int) (pt *Type, variadic bool) {
	n := len(b.decl.Params)
	if n > 0 && i >= n-1 && b.decl.Params[n-1].Variadic {
		arr := b.paramType(m, n-1)
		return arr, true
	}
	return b.paramType(m, i), false
}

func (b *boundMethod) returnType(m *Model) *Type {
	if b.decl.Returns == nil {
		return b.recv
	}
	return subst(m.resolveRef(b.decl.Returns, b.ctx()), b.env)
}

func (b *boundMethod) typeArgs() []*Type {
	var out []*Type
	for _, tp := range b.decl.TypeParams {
		if a, ok := b.env[tp]; ok && a != nil {
			out = append(out, a)
		} else {
			out = append(out, &Type{Name: tp, Param: true})
		}
	}
	return out
}

// symbol renders the method the way the compiler displays it, e.g.
// "Moq.Mock<App.IFoo>.Setup<int>(System.Linq.Expressions.Expression<System.Func<App.IFoo, int>>)".
func (b *boundMethod) symbol(m *Model) *moq.Symbol {
	md := b.decl
	s := &moq.Symbol{Kind: moq.SymbolMethod, Name: md.Name}
	if md.Returns == nil {
		s.Kind = moq.SymbolConstructor
	}
	name := md.Name
	if len(md.TypeParams) > 0 {
		targs := b.typeArgs()
		parts := make([]string, len(targs))
		for i, a := range targs {
			parts[i] = a.Display()
		}
		name += "<" + strings.Join(parts, ", ") + ">"
		s.TypeArgs = moqTypes(targs)
	}
	params := make([]string, len(md.Params))
	for i, p := range md.Params {
		pt := b.paramType(m, i)
		params[i] = pt.Display()
		s.Params = append(s.Params, moq.Param{Name: p.Name, Type: moqType(pt)})
	}
	s.QualifiedName = b.recv.Display() + "." + name + "(" + strings.Join(params, ", ") + ")"
	return s
}

// callResult is the outcome of overload resolution.
type callResult struct {
	kind    moq.ResolutionKind
	methods []*boundMethod
}

func (r callResult) resolution(m *Model) moq.Resolution {
	syms := make([]*moq.Symbol, len(r.methods))
	for i, bm := range r.methods {
		syms[i] = bm.symbol(m)
	}
	switch r.kind {
	case moq.Unique:
		return moq.ResolvedTo(syms[0])
	case moq.Ambiguous:
		return moq.AmbiguousAmong(syms...)
	}
	return moq.Resolution{}
}

// methodsNamed collects the methods named name on t and its bases.
func (m *Model) methodsNamed(t *Type, name string) []*boundMethod {
	var out []*boundMethod
	for _, ht := range m.hierarchy(t) {
		if ht.Decl == nil {
			continue
		}
		for _, md := range ht.Decl.Methods {
			if md.Name == name {
				out = append(out, &boundMethod{decl: md, recv: ht, env: bind(ht.Decl, ht, nil)})
			}
		}
	}
	return out
}

// candidates returns the members a call could bind to, before any
// argument is considered.
func (m *Model) candidates(call syntax.NodeID, depth int) []*boundMethod {
	t := m.tree
	if depth > maxDepth {
		return nil
	}
	switch t.Kind(call) {
	case syntax.KindObjectCreation:
		typ := t.Field(call, "type")
		if typ == syntax.NoNode {
			typ = m.declaredType(call)
		}
		ct := m.resolveTypeNode(typ)
		if ct == nil || ct.Decl == nil {
			return nil
		}
		ctors := ct.Decl.Ctors
		if len(ctors) == 0 && ct.Decl.Kind != DeclInterface && ct.Decl.Kind != DeclEnum {
			ctors = []*MethodDecl{{Name: ct.Decl.Name, Owner: ct.Decl, Node: syntax.NoNode}}
		}
		out := make([]*boundMethod, len(ctors))
		for i, c := range ctors {
			out[i] = &boundMethod{decl: c, recv: ct, env: bind(ct.Decl, ct, nil)}
		}
		return out
	case syntax.KindInvocation:
	default:
		return nil
	}
	callee := astutil.Callee(t, call)
	switch t.Kind(callee) {
	case syntax.KindMemberAccess:
		name := astutil.SimpleName(t, astutil.MemberNameNode(t, callee))
		recv := astutil.Receiver(t, callee)
		rt := m.typeOf(recv, depth+1)
		if rt == nil {
			rt = m.typeOfName(recv)
		}
		if rt == nil {
			return nil
		}
		return m.methodsNamed(rt, name)
	case syntax.KindIdentifier, syntax.KindGenericName:
		name := astutil.SimpleName(t, callee)
		ctx := m.ctxAt(call)
		for d := ctx.decl; d != nil; d = d.Outer {
			if out := m.methodsNamed(m.selfType(d), name); len(out) > 0 {
				return out
			}
		}
		for _, s := range m.statics {
			ref, err := typename.Parse(s)
			if err != nil {
				continue
			}
			if out := m.methodsNamed(m.resolveRef(ref, ctx), name); len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// explicitTypeArgs returns the type arguments written on the called name.
func (m *Model) explicitTypeArgs(call syntax.NodeID) []*Type {
	t := m.tree
	name := astutil.Callee(t, call)
	if t.Kind(name) == syntax.KindMemberAccess {
		name = astutil.MemberNameNode(t, name)
	}
	if t.Kind(name) != syntax.KindGenericName {
		return nil
	}
	var out []*Type
	for _, a := range astutil.TypeArguments(t, name) {
		out = append(out, m.resolveTypeNode(a))
	}
	return out
}

// resolveCall performs overload resolution on an invocation or object
// creation. Without an applicable candidate the result is ambiguous among
// all candidates; among several applicable ones the better conversions
// win, and a tie stays ambiguous.
func (m *Model) resolveCall(call syntax.NodeID, depth int) callResult {
	cands := m.candidates(call, depth)
	if len(cands) == 0 {
		return callResult{kind: moq.NotResolved}
	}
	args := astutil.Arguments(m.tree, astutil.ArgumentList(m.tree, call))
	targs := m.explicitTypeArgs(call)
	var (
		best  []*boundMethod
		score = -1
	)
	for _, c := range cands {
		bm, s, ok := m.applicable(c, args, targs, depth)
		switch {
		case !ok:
		case s > score:
			best, score = []*boundMethod{bm}, s
		case s == score:
			best = append(best, bm)
		}
	}
	switch len(best) {
	case 0:
		return callResult{kind: moq.Ambiguous, methods: cands}
	case 1:
		return callResult{kind: moq.Unique, methods: best}
	}
	return callResult{kind: moq.Ambiguous, methods: best}
}

// applicable binds c against the arguments. It returns the candidate with
// its method type parameters inferred and a score that counts exact and
// more specific conversions.
func (m *Model) applicable(c *boundMethod, args []syntax.NodeID, targs []*Type, depth int) (*boundMethod, int, bool) {
	t := m.tree
	md := c.decl
	if len(targs) > 0 && len(targs) != len(md.TypeParams) {
		return nil, 0, false
	}
	if !md.acceptsArity(len(args)) {
		return nil, 0, false
	}
	env := make(map[string]*Type, len(c.env)+len(md.TypeParams))
	for k, v := range c.env {
		env[k] = v
	}
	for _, tp := range md.TypeParams {
		delete(env, tp)
	}
	for i, a := range targs {
		env[md.TypeParams[i]] = a
	}
	bm := &boundMethod{decl: md, recv: c.recv, env: env}

	if len(targs) == 0 && len(md.TypeParams) > 0 {
		inf := &inference{params: md.TypeParams, env: env, unknown: make(map[string]bool)}
		for i, a := range args {
			pt, variadic := bm.argType(m, i)
			if variadic && pt != nil && pt.Elem != nil {
				pt = pt.Elem
			}
			expr := astutil.ArgumentExpr(t, a)
			if t.Kind(expr) == syntax.KindLambda {
				m.inferFromLambda(inf, pt, expr, depth)
			} else {
				m.infer(inf, pt, m.typeOf(expr, depth+1))
			}
		}
		for _, tp := range md.TypeParams {
			if env[tp] == nil && !inf.unknown[tp] {
				return nil, 0, false
			}
		}
	}

	score := 0
	for i, a := range args {
		pt, variadic := bm.argType(m, i)
		expr := astutil.ArgumentExpr(t, a)
		if t.Kind(expr) == syntax.KindLambda {
			if variadic && pt != nil && pt.Elem != nil {
				pt = pt.Elem
			}
			s, ok := m.lambdaConverts(expr, pt, depth)
			if !ok {
				return nil, 0, false
			}
			score += s
			continue
		}
		at := m.typeOf(expr, depth+1)
		ok := m.assignable(at, pt)
		if !ok && variadic && pt != nil && pt.Elem != nil {
			pt = pt.Elem
			ok = m.assignable(at, pt)
		}
		if !ok {
			return nil, 0, false
		}
		if at != nil && pt != nil && at.ID() == pt.ID() {
			score++
		}
	}
	return bm, score, true
}

type inference struct {
	params  []string
	env     map[string]*Type
	unknown map[string]bool // fed by an argument of unknown type
}

func (inf *inference) isParam(t *Type) bool {
	return t != nil && t.Param && contains(inf.params, t.Name)
}

func (inf *inference) markUnknown(t *Type) {
	switch {
	case t == nil:
	case inf.isParam(t):
		inf.unknown[t.Name] = true
	default:
		inf.markUnknown(t.Elem)
		for _, a := range t.Args {
			inf.markUnknown(a)
		}
		for _, e := range t.Tuple {
			inf.markUnknown(e)
		}
	}
}

// infer binds method type parameters occurring in pt from the argument
// type at.
func (m *Model) infer(inf *inference, pt, at *Type) {
	switch {
	case pt == nil:
		return
	case at == nil || at.null:
		inf.markUnknown(pt)
		return
	case inf.isParam(pt):
		if inf.env[pt.Name] == nil {
			inf.env[pt.Name] = at
		}
		return
	case pt.Elem != nil:
		if at.Elem != nil {
			m.infer(inf, pt.Elem, at.Elem)
		}
		return
	case len(pt.Args) > 0:
		for _, ht := range m.hierarchy(at) {
			if ht.Name == pt.Name && len(ht.Args) == len(pt.Args) {
				for i := range pt.Args {
					m.infer(inf, pt.Args[i], ht.Args[i])
				}
				return
			}
		}
		if at.Elem != nil && pt.Name == "System.Collections.Generic.IEnumerable" && len(pt.Args) == 1 {
			m.infer(inf, pt.Args[0], at.Elem)
		}
	}
}

// inferFromLambda binds type parameters of a delegate parameter from the
// explicit parameter types of a lambda and from the type of its body.
func (m *Model) inferFromLambda(inf *inference, pt *Type, lambda syntax.NodeID, depth int) {
	t := m.tree
	dparams, ret, anyDelegate, ok := m.delegateOf(pt)
	if !ok || anyDelegate {
		return
	}
	params, _, _ := astutil.LambdaParameters(t, lambda)
	for i, p := range params {
		if i >= len(dparams) {
			break
		}
		if tn := astutil.ParameterType(t, p); tn != syntax.NoNode {
			m.infer(inf, dparams[i], m.resolveTypeNode(tn))
		}
	}
	if ret == nil || ret.isVoid() {
		return
	}
	bt := m.lambdaBodyType(lambda, depth+1)
	switch {
	case bt == nil:
		inf.markUnknown(ret)
	case !bt.isVoid():
		m.infer(inf, ret, bt)
	}
}

// delegateOf is Type.delegate extended to delegate types declared in the
// file.
func (m *Model) delegateOf(t *Type) (params []*Type, ret *Type, anyDelegate, ok bool) {
	if params, ret, anyDelegate, ok = t.delegate(); ok {
		return params, ret, anyDelegate, ok
	}
	if t == nil || t.Decl == nil || t.Decl.Kind != DeclDelegate || len(t.Decl.Methods) == 0 {
		return nil, nil, false, false
	}
	invoke := &boundMethod{decl: t.Decl.Methods[0], recv: t, env: bind(t.Decl, t, nil)}
	for i := range invoke.decl.Params {
		params = append(params, invoke.paramType(m, i))
	}
	return params, invoke.returnType(m), false, true
}

// lambdaConverts reports whether a lambda converts to the delegate type
// pt. The score prefers a specific delegate over System.Delegate and a
// Func whose result the body supplies over an Action.
func (m *Model) lambdaConverts(lambda syntax.NodeID, pt *Type, depth int) (int, bool) {
	t := m.tree
	switch {
	case pt == nil:
		return 0, true
	case pt.Param:
		return 0, false
	}
	dparams, ret, anyDelegate, ok := m.delegateOf(pt)
	if !ok {
		return 0, !pt.known()
	}
	if anyDelegate {
		return 0, true
	}
	params, _, _ := astutil.LambdaParameters(t, lambda)
	if len(params) != len(dparams) {
		return 0, false
	}
	for i, p := range params {
		tn := astutil.ParameterType(t, p)
		if tn == syntax.NoNode {
			continue
		}
		lt := m.resolveTypeNode(tn)
		if lt.known() && dparams[i].known() && !dparams[i].Param && lt.ID() != dparams[i].ID() {
			return 0, false
		}
	}
	body := astutil.LambdaBody(t, lambda)
	if ret.isVoid() {
		if t.Kind(body) == syntax.KindBlock {
			return 1, !m.returnsValue(body)
		}
		return 1, isStatementExpression(t, body)
	}
	if t.Kind(body) == syntax.KindBlock {
		return 2, m.returnsValue(body)
	}
	bt := m.typeOf(body, depth+1)
	switch {
	case bt.isVoid():
		return 0, false
	case bt == nil:
		return 1, true
	case !ret.Param && !m.assignable(bt, ret):
		return 0, false
	}
	return 2, true
}

// lambdaBodyType returns the type of an expression body, the type of the
// first value returned from a block body, or void.
func (m *Model) lambdaBodyType(lambda syntax.NodeID, depth int) *Type {
	t := m.tree
	body := astutil.LambdaBody(t, lambda)
	if t.Kind(body) != syntax.KindBlock {
		return m.typeOf(body, depth)
	}
	if ret := m.firstReturn(body); ret != syntax.NoNode {
		named := t.NamedChildren(ret)
		if len(named) > 0 {
			return m.typeOf(named[0], depth)
		}
	}
	return voidType
}

// firstReturn finds the first return statement with a value in a block,
// not counting nested lambdas and local functions.
func (m *Model) firstReturn(block syntax.NodeID) syntax.NodeID {
	t := m.tree
	found := syntax.NoNode
	t.Walk(block, func(id, _ syntax.NodeID, _ int) bool {
		if found != syntax.NoNode {
			return false
		}
		switch t.Kind(id) {
		case syntax.KindLambda, syntax.KindLocalFunction:
			return false
		case syntax.KindReturnStatement:
			if len(t.NamedChildren(id)) > 0 {
				found = id
			}
			return false
		}
		return true
	})
	return found
}

func (m *Model) returnsValue(block syntax.NodeID) bool {
	return m.firstReturn(block) != syntax.NoNode
}

func isStatementExpression(t *syntax.Tree, id syntax.NodeID) bool {
	switch t.Kind(id) {
	case syntax.KindInvocation, syntax.KindObjectCreation, syntax.KindError:
		return true
	case syntax.KindOther:
		switch t.Node(id).Type {
		case "assignment_expression", "await_expression", "postfix_unary_expression", "prefix_unary_expression", "throw_expression":
			return true
		}
	}
	return false
}

// inferLambdaParam types an implicitly typed lambda parameter from the
// delegate parameter types the enclosing call's candidates agree on.
func (m *Model) inferLambdaParam(lambda syntax.NodeID, index int, depth int) *Type {
	t := m.tree
	if depth > maxDepth {
		return nil
	}
	params, _, _ := astutil.LambdaParameters(t, lambda)
	arg := t.Parent(lambda)
	switch t.Kind(arg) {
	case syntax.KindArgument:
	case syntax.KindVariableDeclarator, syntax.KindEqualsValue:
		vd := t.Ancestor(lambda, syntax.KindVariableDecl)
		dparams, _, _, ok := m.delegateOf(m.resolveTypeNode(m.declaredType(vd)))
		if !ok || index >= len(dparams) {
			return nil
		}
		return dparams[index]
	default:
		return nil
	}
	list := t.Parent(arg)
	call := t.Parent(list)
	argIndex := -1
	for i, a := range astutil.Arguments(t, list) {
		if a == arg {
			argIndex = i
		}
	}
	if argIndex < 0 {
		return nil
	}
	targs := m.explicitTypeArgs(call)
	var agreed *Type
	for _, c := range m.candidates(call, depth+1) {
		if len(targs) > 0 && len(targs) == len(c.decl.TypeParams) {
			env := make(map[string]*Type, len(c.env)+len(targs))
			for k, v := range c.env {
				env[k] = v
			}
			for i, a := range targs {
				env[c.decl.TypeParams[i]] = a
			}
			c = &boundMethod{decl: c.decl, recv: c.recv, env: env}
		}
		pt, variadic := c.argType(m, argIndex)
		if variadic && pt != nil && pt.Elem != nil {
			pt = pt.Elem
		}
		dparams, _, anyDelegate, ok := m.delegateOf(pt)
		if !ok || anyDelegate || len(dparams) != len(params) || index >= len(dparams) {
			continue
		}
		dp := dparams[index]
		if dp == nil || dp.Param {
			continue
		}
		if agreed == nil {
			agreed = dp
		} else if agreed.ID() != dp.ID() {
			return nil
		}
	}
	return agreed
}

// widening lists the implicit numeric conversions.
var widening = map[string][]string{
	"System.SByte":  {"System.Int16", "System.Int32", "System.Int64", "System.Single", "System.Double", "System.Decimal"},
	"System.Byte":   {"System.Int16", "System.UInt16", "System.Int32", "System.UInt32", "System.Int64", "System.UInt64", "System.Single", "System.Double", "System.Decimal"},
	"System.Int16":  {"System.Int32", "System.Int64", "System.Single", "System.Double", "System.Decimal"},
	"System.UInt16": {"System.Int32", "System.UInt32", "System.Int64", "System.UInt64", "System.Single", "System.Double", "System.Decimal"},
	"System.Int32":  {"System.Int64", "System.Single", "System.Double", "System.Decimal"},
	"System.UInt32": {"System.Int64", "System.UInt64", "System.Single", "System.Double", "System.Decimal"},
	"System.Int64":  {"System.Single", "System.Double", "System.Decimal"},
	"System.UInt64": {"System.Single", "System.Double", "System.Decimal"},
	"System.Char":   {"System.UInt16", "System.Int32", "System.UInt32", "System.Int64", "System.UInt64", "System.Single", "System.Double", "System.Decimal"},
	"System.Single": {"System.Double"},
}

// assignable reports whether a value of type from converts implicitly to
// type to. Unknown types on either side are assumed to convert.
func (m *Model) assignable(from, to *Type) bool {
	switch {
	case from == nil || to == nil || to.Param:
		return true
	case from.null:
		return !to.isValue()
	case from.ID() == to.ID():
		return true
	case !from.known() || !to.known():
		return true
	case to.Name == "System.Object" && len(to.Args) == 0:
		return true
	case to.isNullable():
		return m.assignable(from, to.Args[0])
	}
	if len(from.Args) == 0 && len(to.Args) == 0 && contains(widening[from.Name], to.Name) {
		return true
	}
	for _, ht := range m.hierarchy(from) {
		if ht.ID() == to.ID() {
			return true
		}
	}
	return false
}
