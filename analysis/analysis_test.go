// Copyright © 2024 The moqls authors

package analysis

import (
	"testing"

	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/config"
	"github.com/rjmurillo/moq.autocomplete/csharp"
	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `using System;
using Moq;

namespace App
{
    public interface IFoo
    {
        int Do(int a, string b);
        void Run(string name);
        void Run(int id);
        string Name { get; }
    }

    public class Sut
    {
        public Sut(IFoo foo, string label) { }
    }

    public class FooTests
    {
        private readonly Mock<IFoo> _field = new Mock<IFoo>();

        public void Test(int count)
        {
            var mock = new Mock<IFoo>();
            mock.Setup(x => x.Do(It.IsAny<int>(), It.IsAny<string>())).Callback((int a, string b) => { });
            mock.Setup(x => x.Run(It.IsAny<string>()));
            mock.Setup(x => x.Run(missing));
            mock.Setup(x => x.Run());
            mock.Setup(x => x.Do(1, "a")).Returns((int a, string b) => a);
            var name = mock.Object.Name;
            var sut = new Sut(mock.Object, "x");
        }
    }
}
`

func build(t *testing.T, src string) *Model {
	t.Helper()
	tree, err := csharp.ParseString("test.cs", src)
	require.NoError(t, err)
	return Build(tree, config.Default())
}

// calls returns the invocations of member name in source order.
func calls(m *Model, name string) []syntax.NodeID {
	var out []syntax.NodeID
	astutil.WalkInvocations(m.tree, func(inv syntax.NodeID) {
		if astutil.MemberName(m.tree, inv) == name {
			out = append(out, inv)
		}
	})
	return out
}

func first(m *Model, kind syntax.Kind, text string) syntax.NodeID {
	found := syntax.NoNode
	m.tree.Walk(m.tree.Root(), func(id, _ syntax.NodeID, _ int) bool {
		if found == syntax.NoNode && m.tree.Kind(id) == kind && m.tree.Text(id) == text {
			found = id
		}
		return found == syntax.NoNode
	})
	return found
}

func unique(t *testing.T, r moq.Resolution) *moq.Symbol {
	t.Helper()
	require.Equal(t, moq.Unique, r.Kind())
	s, ok := r.Symbol()
	require.True(t, ok)
	return s
}

func TestBuild_Declarations(t *testing.T) {
	m := build(t, source)
	require.Len(t, m.types["IFoo"], 1)
	foo := m.types["IFoo"][0]
	assert.Equal(t, "App.IFoo", foo.FullName())
	assert.Equal(t, DeclInterface, foo.Kind)
	assert.Len(t, foo.Methods, 3)
	require.Len(t, foo.Props, 1)
	assert.Equal(t, "Name", foo.Props[0].Name)

	sut := m.types["Sut"][0]
	require.Len(t, sut.Ctors, 1)
	assert.Len(t, sut.Ctors[0].Params, 2)
	assert.True(t, m.imports["Moq"])
	assert.True(t, m.imports["System.Linq"], "implicit usings are imported")
}

func TestSymbol_SetupOverloads(t *testing.T) {
	m := build(t, source)
	setups := calls(m, "Setup")
	require.Len(t, setups, 5)

	s := unique(t, m.Symbol(setups[0]))
	assert.Equal(t, "Moq.Mock<App.IFoo>.Setup<int>(System.Linq.Expressions.Expression<System.Func<App.IFoo, int>>)", s.QualifiedName)
	assert.Equal(t, moq.SymbolMethod, s.Kind)

	s = unique(t, m.Symbol(setups[1]))
	assert.Equal(t, "Moq.Mock<App.IFoo>.Setup(System.Linq.Expressions.Expression<System.Action<App.IFoo>>)", s.QualifiedName)
}

func TestSymbol_Callback(t *testing.T) {
	m := build(t, source)
	cb := calls(m, "Callback")
	require.Len(t, cb, 1)
	s := unique(t, m.Symbol(cb[0]))
	assert.Equal(t, "Moq.Language.ICallback<App.IFoo, int>.Callback<int, string>(System.Action<int, string>)", s.QualifiedName)

	ret := calls(m, "Returns")
	require.Len(t, ret, 1)
	s = unique(t, m.Symbol(ret[0]))
	assert.Equal(t, "Moq.Language.IReturns<App.IFoo, int>.Returns<int, string>(System.Func<int, string, int>)", s.QualifiedName)
}

func TestSymbol_MockedCall(t *testing.T) {
	m := build(t, source)
	do := calls(m, "Do")
	require.Len(t, do, 2)
	s := unique(t, m.Symbol(do[0]))
	assert.Equal(t, "App.IFoo.Do(int, string)", s.QualifiedName)
	require.Len(t, s.Params, 2)
	assert.Equal(t, "a", s.Params[0].Name)
	assert.Equal(t, moq.TypeID("System.Int32"), s.Params[0].Type.ID)
	assert.Equal(t, "string", s.Params[1].Type.Display)

	run := calls(m, "Run")
	require.Len(t, run, 3)
	s = unique(t, m.Symbol(run[0]))
	assert.Equal(t, "App.IFoo.Run(string)", s.QualifiedName)

	r := m.Symbol(run[1])
	assert.Equal(t, moq.Ambiguous, r.Kind(), "an argument of unknown type fits both overloads")
	assert.Len(t, r.Candidates(), 2)

	r = m.Symbol(run[2])
	assert.Equal(t, moq.Ambiguous, r.Kind(), "no overload takes zero arguments")
	assert.Len(t, r.Candidates(), 2)
}

func TestSymbol_Constructor(t *testing.T) {
	m := build(t, source)
	creation := first(m, syntax.KindObjectCreation, `new Sut(mock.Object, "x")`)
	require.True(t, creation.Valid())
	s := unique(t, m.Symbol(creation))
	assert.Equal(t, moq.SymbolConstructor, s.Kind)
	assert.Equal(t, "App.Sut.Sut(App.IFoo, string)", s.QualifiedName)
}

func TestSymbol_GenericType(t *testing.T) {
	m := build(t, source)
	g := first(m, syntax.KindGenericName, "Mock<IFoo>")
	require.True(t, g.Valid())
	s := unique(t, m.Symbol(g))
	assert.Equal(t, moq.SymbolType, s.Kind)
	assert.Equal(t, "Moq.Mock<T>", s.ConstructedFrom)
	require.Len(t, s.TypeArgs, 1)
	assert.Equal(t, "IFoo", s.TypeArgs[0].Name)
	assert.Equal(t, moq.TypeID("App.IFoo"), s.TypeArgs[0].ID)
}

func TestSymbol_UnknownType(t *testing.T) {
	m := build(t, `class C { Nope<int> x; }`)
	g := first(m, syntax.KindGenericName, "Nope<int>")
	require.True(t, g.Valid())
	assert.Equal(t, moq.NotResolved, m.Symbol(g).Kind())
}

func TestTypeOf(t *testing.T) {
	m := build(t, source)
	cb := calls(m, "Callback")[0]
	lambda := astutil.FirstArgumentExpr(m.tree, cb)
	params, parenthesized, ok := astutil.LambdaParameters(m.tree, lambda)
	require.True(t, ok)
	assert.True(t, parenthesized)
	require.Len(t, params, 2)
	typ, ok := m.TypeOf(astutil.ParameterType(m.tree, params[0]))
	require.True(t, ok)
	assert.Equal(t, moq.TypeID("System.Int32"), typ.ID)
	assert.Equal(t, "int", typ.Display)

	isAny := calls(m, "IsAny")
	require.NotEmpty(t, isAny)
	typ, ok = m.TypeOf(isAny[0])
	require.True(t, ok)
	assert.Equal(t, moq.TypeID("System.Int32"), typ.ID)

	obj := first(m, syntax.KindMemberAccess, "mock.Object.Name")
	require.True(t, obj.Valid())
	typ, ok = m.TypeOf(obj)
	require.True(t, ok)
	assert.Equal(t, moq.TypeID("System.String"), typ.ID)
}

func TestTypeOf_Var(t *testing.T) {
	m := build(t, source)
	mock := first(m, syntax.KindMemberAccess, "mock.Object")
	require.True(t, mock.Valid())
	recv := astutil.Receiver(m.tree, mock)
	typ, ok := m.TypeOf(recv)
	require.True(t, ok)
	assert.Equal(t, moq.TypeID("Moq.Mock<App.IFoo>"), typ.ID)
	assert.Equal(t, "Mock<IFoo>", typ.Display)
	assert.Equal(t, "Mock", typ.Name)

	typ, ok = m.TypeOf(mock)
	require.True(t, ok)
	assert.Equal(t, moq.TypeID("App.IFoo"), typ.ID)
}

func TestTypeOf_Literals(t *testing.T) {
	m := build(t, `class C { void M() { var a = 1L; var b = 2.5f; var c = "s"; var d = 'c'; var e = true; var f = 3u; object g = null; } }`)
	tests := map[string]moq.TypeID{
		"1L":   "System.Int64",
		"2.5f": "System.Single",
		`"s"`:  "System.String",
		"'c'":  "System.Char",
		"true": "System.Boolean",
		"3u":   "System.UInt32",
	}
	for text, want := range tests {
		lit := first(m, syntax.KindLiteral, text)
		require.True(t, lit.Valid(), text)
		typ, ok := m.TypeOf(lit)
		require.True(t, ok, text)
		assert.Equal(t, want, typ.ID, text)
	}
	_, ok := m.TypeOf(first(m, syntax.KindLiteral, "null"))
	assert.False(t, ok, "null has no type")
}

func TestVisibleVariables(t *testing.T) {
	m := build(t, source)
	creation := first(m, syntax.KindObjectCreation, `new Sut(mock.Object, "x")`)
	vars := m.VisibleVariables(creation)
	byName := make(map[string]moq.Variable)
	var names []string
	for _, v := range vars {
		byName[v.Name] = v
		names = append(names, v.Name)
	}
	assert.Subset(t, names, []string{"_field", "count", "mock", "name"})
	assert.NotContains(t, names, "sut", "a declaration is not visible in its own initializer")
	assert.NotContains(t, names, "x", "lambda parameters are scoped to the lambda")

	mock := byName["mock"]
	assert.Equal(t, "Moq.Mock<T>", mock.ConstructedFrom)
	require.Len(t, mock.TypeArgs, 1)
	assert.Equal(t, moq.TypeID("App.IFoo"), mock.TypeArgs[0].ID)
	assert.Equal(t, "Moq.Mock<T>", byName["_field"].ConstructedFrom)
	assert.Equal(t, moq.TypeID("System.Int32"), byName["count"].Type.ID)
	assert.Empty(t, byName["count"].ConstructedFrom)
}

func TestVisibleVariables_LambdaParams(t *testing.T) {
	m := build(t, source)
	do := calls(m, "Do")[0]
	vars := m.VisibleVariables(do)
	var x *moq.Variable
	for i := range vars {
		if vars[i].Name == "x" {
			x = &vars[i]
		}
	}
	require.NotNil(t, x)
	assert.Equal(t, moq.TypeID("App.IFoo"), x.Type.ID, "implicit parameter typed from the setup delegate")
}

func TestStaticUsing(t *testing.T) {
	m := build(t, `using Moq;
using static Moq.It;
interface IFoo { void Do(int a); }
class T { void M() { var mock = new Mock<IFoo>(); mock.Setup(x => x.Do(IsAny<int>())); } }`)
	isAny := calls(m, "IsAny")
	require.Len(t, isAny, 1)
	typ, ok := m.TypeOf(isAny[0])
	require.True(t, ok)
	assert.Equal(t, moq.TypeID("System.Int32"), typ.ID)
	s := unique(t, m.Symbol(calls(m, "Do")[0]))
	assert.Equal(t, "IFoo.Do(int)", s.QualifiedName)
}

func TestDeclaredTypeShadowsBuiltin(t *testing.T) {
	m := build(t, `using Moq;
namespace Fakes { public class Mock<T> { public T Object { get; } } }
namespace App { using Fakes; class C { Mock<int> m; } }`)
	g := first(m, syntax.KindGenericName, "Mock<int>")
	s := unique(t, m.Symbol(g))
	assert.Equal(t, "Fakes.Mock<T>", s.ConstructedFrom)
}
