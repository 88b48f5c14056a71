// Copyright © 2024 The moqls authors

package csharp

import (
	"sync"
	"testing"

	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `using Moq;

namespace App
{
    public interface IFoo
    {
        int Do(int a, string b);
    }

    public class FooTests
    {
        public void Test()
        {
            // arrange
            var mock = new Mock<IFoo>();
            mock.Setup(x => x.Do(1, "a")).Callback((int a, string b) => { });
        }
    }
}
`

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	tree, err := ParseString("test.cs", src)
	require.NoError(t, err)
	return tree
}

func collect(tree *syntax.Tree, kind syntax.Kind) []syntax.NodeID {
	var out []syntax.NodeID
	tree.Walk(tree.Root(), func(id, _ syntax.NodeID, _ int) bool {
		if tree.Kind(id) == kind {
			out = append(out, id)
		}
		return true
	})
	return out
}

func TestParse_Root(t *testing.T) {
	tree := parse(t, sample)
	assert.Equal(t, syntax.KindCompilationUnit, tree.Kind(tree.Root()))
	assert.Equal(t, "test.cs", tree.Filename)
	assert.Equal(t, syntax.Span{Start: 0, End: len(sample)}, tree.FullSpan(tree.Root()))
}

func TestParse_Declarations(t *testing.T) {
	tree := parse(t, sample)
	assert.Len(t, collect(tree, syntax.KindUsingDirective), 1)
	assert.Len(t, collect(tree, syntax.KindNamespaceDecl), 1)
	ifaces := collect(tree, syntax.KindInterfaceDecl)
	require.Len(t, ifaces, 1)
	assert.Equal(t, "IFoo", tree.Text(tree.Field(ifaces[0], "name")))
	classes := collect(tree, syntax.KindClassDecl)
	require.Len(t, classes, 1)
	assert.Equal(t, "FooTests", tree.Text(tree.Field(classes[0], "name")))
	assert.Len(t, collect(tree, syntax.KindMethodDecl), 2)
}

func TestParse_Invocations(t *testing.T) {
	tree := parse(t, sample)
	invs := collect(tree, syntax.KindInvocation)
	require.Len(t, invs, 3)
	for _, inv := range invs {
		assert.NotEqual(t, syntax.NoNode, tree.Field(inv, "function"))
		assert.Equal(t, syntax.KindArgumentList, tree.Kind(tree.Field(inv, "arguments")))
	}
	assert.Len(t, collect(tree, syntax.KindObjectCreation), 1)
	assert.Len(t, collect(tree, syntax.KindLambda), 2)
	assert.Len(t, collect(tree, syntax.KindGenericName), 1)
}

func TestParse_Tokens(t *testing.T) {
	tree := parse(t, sample)
	for _, id := range collect(tree, syntax.KindOpenParen) {
		n := tree.Node(id)
		assert.True(t, n.Token)
		assert.Equal(t, "(", tree.Text(id))
		assert.True(t, n.FullSpan.Start <= n.Span.Start && n.FullSpan.End >= n.Span.End)
	}
	gts := collect(tree, syntax.KindGreaterThan)
	require.NotEmpty(t, gts)
	assert.Equal(t, syntax.KindTypeArgumentList, tree.Kind(tree.Parent(gts[0])))
}

func TestParse_CommentsAreTrivia(t *testing.T) {
	tree := parse(t, sample)
	comments := collect(tree, syntax.KindComment)
	require.Len(t, comments, 1)
	assert.Equal(t, "// arrange", tree.Text(comments[0]))
	assert.False(t, tree.Node(comments[0]).Token)
}

func TestParse_Malformed(t *testing.T) {
	tree := parse(t, "class C { void M() { mock.Setup(x => x.Do(")
	assert.Equal(t, syntax.KindCompilationUnit, tree.Kind(tree.Root()))
	found := false
	tree.Walk(tree.Root(), func(id, _ syntax.NodeID, _ int) bool {
		if tree.Kind(id) == syntax.KindError || tree.Node(id).Missing {
			found = true
		}
		return true
	})
	assert.True(t, found, "malformed input keeps recovery nodes")
}

func TestParse_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := ParseString("c.cs", sample)
			if assert.NoError(t, err) {
				assert.Len(t, collect(tree, syntax.KindInvocation), 3)
			}
		}()
	}
	wg.Wait()
}
