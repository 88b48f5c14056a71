// Copyright © 2024 The moqls authors

package analysis

import (
	"fmt"
	"strings"

	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/rjmurillo/moq.autocomplete/typename"
)

// builtinSet indexes the declarations the analyzer knows without source:
// the predefined types, a slice of the base class library and the public
// surface of Moq that call chains are written against.
type builtinSet struct {
	byName map[string][]*TypeDecl
	byFull map[string][]*TypeDecl
}

var builtins = newBuiltins()

func (s *builtinSet) add(kind DeclKind, full string, typeParams ...string) *TypeDecl {
	ns, name := "", full
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		ns, name = full[:i], full[i+1:]
	}
	d := &TypeDecl{
		Name:       name,
		Namespace:  ns,
		Kind:       kind,
		TypeParams: typeParams,
		Value:      kind == DeclStruct || kind == DeclEnum,
		Builtin:    true,
		Node:       syntax.NoNode,
	}
	s.byName[name] = append(s.byName[name], d)
	s.byFull[full] = append(s.byFull[full], d)
	return d
}

// lookup returns the built-in with the given full name and arity. Variadic
// delegates match any arity.
func (s *builtinSet) lookup(full string, arity int) *TypeDecl {
	for _, d := range s.byFull[full] {
		if len(d.TypeParams) == arity || d.variadic() {
			return d
		}
	}
	return nil
}

// inherits records base types, written fully qualified.
func inherits(d *TypeDecl, bases ...string) *TypeDecl {
	for _, b := range bases {
		d.Bases = append(d.Bases, typename.MustParse(b))
	}
	return d
}

// def adds members to d. Each entry is a C# member header:
//
//	"static Times Exactly(int callCount)"  a method
//	"(MockBehavior behavior)"              a constructor
//	"prop T Object"                        a property
//	"const Strict"                         an enum member
func def(d *TypeDecl, members ...string) *TypeDecl {
	for _, m := range members {
		switch {
		case strings.HasPrefix(m, "prop "), strings.HasPrefix(m, "static prop "):
			static := strings.HasPrefix(m, "static ")
			fields := strings.Fields(strings.TrimPrefix(strings.TrimPrefix(m, "static "), "prop "))
			n := len(fields) - 1
			d.Props = append(d.Props, &PropertyDecl{
				Name:   fields[n],
				Type:   typename.MustParse(strings.Join(fields[:n], " ")),
				Owner:  d,
				Static: static,
				Node:   syntax.NoNode,
			})
		case strings.HasPrefix(m, "const "):
			d.Props = append(d.Props, &PropertyDecl{
				Name:   strings.TrimPrefix(m, "const "),
				Type:   typename.MustParse(d.FullName()),
				Owner:  d,
				Static: true,
				Field:  true,
				Node:   syntax.NoNode,
			})
		default:
			md := parseMember(m)
			md.Owner = d
			if md.Returns == nil {
				md.Name = d.Name
				d.Ctors = append(d.Ctors, md)
			} else {
				d.Methods = append(d.Methods, md)
			}
		}
	}
	return d
}

// parseMember parses a member header. It panics on malformed input since
// headers are fixed tables.
func parseMember(h string) *MethodDecl {
	open := strings.IndexByte(h, '(')
	if open < 0 || !strings.HasSuffix(h, ")") {
		panic(fmt.Sprintf("malformed member %q", h))
	}
	md := &MethodDecl{Node: syntax.NoNode}
	head := strings.TrimSpace(h[:open])
	if strings.HasPrefix(head, "static ") {
		md.Static = true
		head = strings.TrimPrefix(head, "static ")
	}
	if head != "" {
		sp := lastTopLevel(head, ' ')
		md.Returns = typename.MustParse(head[:sp])
		md.Name = head[sp+1:]
		if lt := strings.IndexByte(md.Name, '<'); lt >= 0 {
			for _, tp := range strings.Split(strings.TrimSuffix(md.Name[lt+1:], ">"), ",") {
				md.TypeParams = append(md.TypeParams, strings.TrimSpace(tp))
			}
			md.Name = md.Name[:lt]
		}
	}
	for _, p := range splitTopLevel(h[open+1:len(h)-1], ',') {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		var pd ParamDecl
		if strings.HasPrefix(p, "params ") {
			pd.Variadic = true
			p = strings.TrimPrefix(p, "params ")
		}
		if eq := strings.IndexByte(p, '='); eq >= 0 {
			pd.Optional = true
			p = strings.TrimSpace(p[:eq])
		}
		sp := lastTopLevel(p, ' ')
		pd.Type = typename.MustParse(p[:sp])
		pd.Name = p[sp+1:]
		md.Params = append(md.Params, pd)
	}
	return md
}

func lastTopLevel(s string, sep byte) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '>', ')':
			depth++
		case '<', '(':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	panic(fmt.Sprintf("no %q in %q", sep, s))
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func newBuiltins() *builtinSet {
	s := &builtinSet{
		byName: make(map[string][]*TypeDecl),
		byFull: make(map[string][]*TypeDecl),
	}
	addSystem(s)
	addCollections(s)
	addMoq(s)
	return s
}

func addSystem(s *builtinSet) {
	def(s.add(DeclClass, "System.Object"), "()", "string ToString()", "int GetHashCode()", "bool Equals(object obj)")
	def(s.add(DeclClass, "System.String"),
		"static prop string Empty",
		"prop int Length",
		"bool Contains(string value)",
		"bool StartsWith(string value)",
		"string Trim()",
		"string ToUpper()",
		"string ToLower()",
		"static bool IsNullOrEmpty(string value)",
		"static string Format(string format, params object[] args)",
	)
	for _, name := range []string{
		"Boolean", "Byte", "SByte", "Char", "Decimal", "Double", "Single",
		"Int16", "UInt16", "Int32", "UInt32", "Int64", "UInt64", "IntPtr", "UIntPtr",
		"Guid", "DateTime", "TimeSpan", "Void",
	} {
		s.add(DeclStruct, "System."+name)
	}
	def(s.byFull["System.Guid"][0], "static Guid NewGuid()", "static prop System.Guid Empty")
	def(s.byFull["System.DateTime"][0], "static prop System.DateTime Now", "static prop System.DateTime UtcNow")
	s.add(DeclStruct, "System.Nullable", "T")
	s.add(DeclClass, "System.Delegate")
	inherits(s.add(DeclClass, "System.MulticastDelegate"), "System.Delegate")
	s.add(DeclDelegate, "System.Action")
	s.add(DeclDelegate, "System.Func")
	s.add(DeclClass, "System.Type")
	s.add(DeclClass, "System.Uri")
	s.add(DeclClass, "System.Enum")
	def(s.add(DeclClass, "System.Exception"), "()", "(string message)", "prop string Message")
	for _, name := range []string{"ArgumentException", "ArgumentNullException", "InvalidOperationException", "NotImplementedException", "NotSupportedException"} {
		def(inherits(s.add(DeclClass, "System."+name), "System.Exception"), "()", "(string message)")
	}
	s.add(DeclStruct, "System.Threading.CancellationToken")
	def(s.add(DeclClass, "System.Threading.Tasks.Task"),
		"static prop System.Threading.Tasks.Task CompletedTask",
		"static System.Threading.Tasks.Task<TResult> FromResult<TResult>(TResult result)",
	)
	def(inherits(s.add(DeclClass, "System.Threading.Tasks.Task", "TResult"), "System.Threading.Tasks.Task"),
		"prop TResult Result",
	)
	s.add(DeclStruct, "System.Threading.Tasks.ValueTask")
	s.add(DeclStruct, "System.Threading.Tasks.ValueTask", "TResult")
	s.add(DeclClass, "System.Linq.Expressions.Expression", "TDelegate")
	s.add(DeclEnum, "System.Text.RegularExpressions.RegexOptions")
}

func addCollections(s *builtinSet) {
	const g = "System.Collections.Generic."
	s.add(DeclInterface, g+"IEnumerable", "T")
	inherits(s.add(DeclInterface, g+"IReadOnlyCollection", "T"), g+"IEnumerable<T>")
	inherits(s.add(DeclInterface, g+"IReadOnlyList", "T"), g+"IReadOnlyCollection<T>")
	def(inherits(s.add(DeclInterface, g+"ICollection", "T"), g+"IEnumerable<T>"),
		"prop int Count",
		"void Add(T item)",
		"bool Contains(T item)",
	)
	inherits(s.add(DeclInterface, g+"IList", "T"), g+"ICollection<T>")
	def(inherits(s.add(DeclClass, g+"List", "T"), g+"IList<T>", g+"IReadOnlyList<T>"),
		"()", "(int capacity)", "(System.Collections.Generic.IEnumerable<T> collection)",
	)
	inherits(s.add(DeclInterface, g+"ISet", "T"), g+"ICollection<T>")
	def(inherits(s.add(DeclClass, g+"HashSet", "T"), g+"ISet<T>"), "()")
	def(s.add(DeclInterface, g+"IDictionary", "TKey", "TValue"),
		"bool ContainsKey(TKey key)",
		"void Add(TKey key, TValue value)",
	)
	s.add(DeclInterface, g+"IReadOnlyDictionary", "TKey", "TValue")
	def(inherits(s.add(DeclClass, g+"Dictionary", "TKey", "TValue"), g+"IDictionary<TKey, TValue>", g+"IReadOnlyDictionary<TKey, TValue>"), "()")
}

// addMoq models the Moq surface that setups are chained through. Delegate
// overloads are kept at the shape the fluent interfaces expose them, so the
// display of a resolved member reads as Moq's own.
func addMoq(s *builtinSet) {
	const (
		lang = "Moq.Language."
		flow = "Moq.Language.Flow."
		expr = "System.Linq.Expressions.Expression"
	)
	def(s.add(DeclEnum, "Moq.MockBehavior"), "const Strict", "const Loose", "const Default")
	def(s.add(DeclEnum, "Moq.Range"), "const Inclusive", "const Exclusive")
	def(s.add(DeclEnum, "Moq.DefaultValue"), "const Empty", "const Mock")
	def(s.add(DeclStruct, "Moq.Times"),
		"static Moq.Times Never()",
		"static Moq.Times Once()",
		"static Moq.Times AtLeastOnce()",
		"static Moq.Times AtMostOnce()",
		"static Moq.Times Exactly(int callCount)",
		"static Moq.Times AtLeast(int callCount)",
		"static Moq.Times AtMost(int callCount)",
		"static Moq.Times Between(int callCountFrom, int callCountTo, Moq.Range rangeKind)",
	)
	def(s.add(DeclClass, "Moq.It"),
		"static TValue IsAny<TValue>()",
		"static TValue IsNotNull<TValue>()",
		"static TValue Is<TValue>("+expr+"<System.Func<TValue, bool>> match)",
		"static TValue IsIn<TValue>(System.Collections.Generic.IEnumerable<TValue> items)",
		"static TValue IsIn<TValue>(params TValue[] items)",
		"static TValue IsNotIn<TValue>(System.Collections.Generic.IEnumerable<TValue> items)",
		"static TValue IsNotIn<TValue>(params TValue[] items)",
		"static TValue IsInRange<TValue>(TValue from, TValue to, Moq.Range rangeKind)",
		"static string IsRegex(string regex)",
		"static string IsRegex(string regex, System.Text.RegularExpressions.RegexOptions options)",
	)
	def(s.add(DeclClass, "Moq.Mock"),
		"static T Of<T>()",
		"static Moq.Mock<T> Get<T>(T mocked)",
		"prop Moq.MockBehavior Behavior",
		"prop bool CallBase",
		"prop Moq.DefaultValue DefaultValue",
		"void Verify()",
		"void VerifyAll()",
		"void VerifyNoOtherCalls()",
		"void Reset()",
	)
	def(inherits(s.add(DeclClass, "Moq.Mock", "T"), "Moq.Mock"),
		"()",
		"(Moq.MockBehavior behavior)",
		"(params object[] args)",
		"(Moq.MockBehavior behavior, params object[] args)",
		"prop T Object",
		flow+"ISetup<T> Setup("+expr+"<System.Action<T>> expression)",
		flow+"ISetup<T, TResult> Setup<TResult>("+expr+"<System.Func<T, TResult>> expression)",
		flow+"ISetupGetter<T, TProperty> SetupGet<TProperty>("+expr+"<System.Func<T, TProperty>> expression)",
		flow+"ISetup<T> SetupSet(System.Action<T> setterExpression)",
		lang+"ISetupSequentialResult<TResult> SetupSequence<TResult>("+expr+"<System.Func<T, TResult>> expression)",
		lang+"ISetupSequentialAction SetupSequence("+expr+"<System.Action<T>> expression)",
		"Moq.Mock<T> SetupProperty<TProperty>("+expr+"<System.Func<T, TProperty>> property)",
		"Moq.Mock<T> SetupAllProperties()",
		"void Verify("+expr+"<System.Action<T>> expression)",
		"void Verify("+expr+"<System.Action<T>> expression, Moq.Times times)",
		"void Verify("+expr+"<System.Action<T>> expression, System.Func<Moq.Times> times)",
		"void Verify<TResult>("+expr+"<System.Func<T, TResult>> expression)",
		"void Verify<TResult>("+expr+"<System.Func<T, TResult>> expression, Moq.Times times)",
		"void VerifyGet<TProperty>("+expr+"<System.Func<T, TProperty>> expression)",
		"void VerifyGet<TProperty>("+expr+"<System.Func<T, TProperty>> expression, Moq.Times times)",
		"void VerifySet(System.Action<T> setterExpression)",
		"Moq.Mock<TInterface> As<TInterface>()",
	)

	callbacks := func(ret string) []string {
		return []string{
			ret + " Callback(System.Delegate callback)",
			ret + " Callback(System.Action action)",
			ret + " Callback<T1>(System.Action<T1> action)",
			ret + " Callback<T1, T2>(System.Action<T1, T2> action)",
			ret + " Callback<T1, T2, T3>(System.Action<T1, T2, T3> action)",
			ret + " Callback<T1, T2, T3, T4>(System.Action<T1, T2, T3, T4> action)",
		}
	}
	def(s.add(DeclInterface, lang+"ICallback"), callbacks(flow+"ICallbackResult")...)
	def(s.add(DeclInterface, lang+"ICallback", "TMock", "TResult"), callbacks(lang+"IReturnsThrows<TMock, TResult>")...)
	def(s.add(DeclInterface, lang+"IReturns", "TMock", "TResult"),
		flow+"IReturnsResult<TMock> Returns(TResult value)",
		flow+"IReturnsResult<TMock> Returns(System.Delegate valueFunction)",
		flow+"IReturnsResult<TMock> Returns(System.Func<TResult> valueFunction)",
		flow+"IReturnsResult<TMock> Returns<T1>(System.Func<T1, TResult> valueFunction)",
		flow+"IReturnsResult<TMock> Returns<T1, T2>(System.Func<T1, T2, TResult> valueFunction)",
		flow+"IReturnsResult<TMock> Returns<T1, T2, T3>(System.Func<T1, T2, T3, TResult> valueFunction)",
		flow+"IReturnsResult<TMock> Returns<T1, T2, T3, T4>(System.Func<T1, T2, T3, T4, TResult> valueFunction)",
		flow+"IReturnsResult<TMock> CallBase()",
	)
	def(s.add(DeclInterface, lang+"IThrows"),
		flow+"IThrowsResult Throws(System.Exception exception)",
		flow+"IThrowsResult Throws<TException>()",
	)
	def(s.add(DeclInterface, lang+"IVerifies"),
		"void Verifiable()",
		"void Verifiable(string failMessage)",
		"void Verifiable(System.Func<Moq.Times> times)",
	)
	inherits(s.add(DeclInterface, lang+"IReturnsThrows", "TMock", "TResult"), lang+"IReturns<TMock, TResult>", lang+"IThrows")
	def(s.add(DeclInterface, lang+"ISetupSequentialResult", "TResult"),
		lang+"ISetupSequentialResult<TResult> Returns(TResult value)",
		lang+"ISetupSequentialResult<TResult> Throws(System.Exception exception)",
		lang+"ISetupSequentialResult<TResult> CallBase()",
	)
	def(s.add(DeclInterface, lang+"ISetupSequentialAction"),
		lang+"ISetupSequentialAction Pass()",
		lang+"ISetupSequentialAction Throws(System.Exception exception)",
	)

	inherits(s.add(DeclInterface, flow+"ISetup", "TMock"), lang+"ICallback", flow+"ICallbackResult", lang+"IVerifies")
	inherits(s.add(DeclInterface, flow+"ISetup", "TMock", "TResult"), lang+"ICallback<TMock, TResult>", lang+"IReturnsThrows<TMock, TResult>", lang+"IVerifies")
	inherits(s.add(DeclInterface, flow+"ISetupGetter", "TMock", "TProperty"), lang+"ICallback<TMock, TProperty>", lang+"IReturnsThrows<TMock, TProperty>", lang+"IVerifies")
	inherits(s.add(DeclInterface, flow+"ICallbackResult"), lang+"IThrows", lang+"IVerifies")
	inherits(s.add(DeclInterface, flow+"IReturnsResult", "TMock"), lang+"ICallback", lang+"IVerifies")
	inherits(s.add(DeclInterface, flow+"IThrowsResult"), lang+"IVerifies")
}
