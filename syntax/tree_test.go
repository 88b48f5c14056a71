// Copyright © 2024 The moqls authors

package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCall builds the tree for "f(a, b)\n" by hand.
func buildCall(t *testing.T) (*Tree, map[string]NodeID) {
	t.Helper()
	src := []byte("f(a, b)\n")
	b := NewBuilder("call.cs", src)
	ids := make(map[string]NodeID)
	root := b.Add(NoNode, Node{Kind: KindCompilationUnit, Span: Span{0, 8}, Named: true})
	inv := b.Add(root, Node{Kind: KindInvocation, Span: Span{0, 7}, Named: true})
	ids["f"] = b.Add(inv, Node{Kind: KindIdentifier, Span: Span{0, 1}, Field: "function", Named: true})
	args := b.Add(inv, Node{Kind: KindArgumentList, Span: Span{1, 7}, Field: "arguments", Named: true})
	ids["("] = b.Add(args, Node{Kind: KindOpenParen, Span: Span{1, 2}})
	argA := b.Add(args, Node{Kind: KindArgument, Span: Span{2, 3}, Named: true})
	ids["a"] = b.Add(argA, Node{Kind: KindIdentifier, Span: Span{2, 3}, Named: true})
	ids[","] = b.Add(args, Node{Kind: KindComma, Span: Span{3, 4}})
	argB := b.Add(args, Node{Kind: KindArgument, Span: Span{5, 6}, Named: true})
	ids["b"] = b.Add(argB, Node{Kind: KindIdentifier, Span: Span{5, 6}, Named: true})
	ids[")"] = b.Add(args, Node{Kind: KindCloseParen, Span: Span{6, 7}})
	ids["inv"] = inv
	ids["args"] = args
	tree := b.Build()
	require.Equal(t, root, tree.Root())
	return tree, ids
}

func TestSpan(t *testing.T) {
	s := Span{2, 5}
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(4))
	assert.False(t, s.Contains(5))
	assert.False(t, s.Contains(1))
	assert.Equal(t, 3, s.Len())
}

func TestBuild_TokenFlags(t *testing.T) {
	tree, ids := buildCall(t)
	assert.True(t, tree.Node(ids["("]).Token)
	assert.True(t, tree.Node(ids["a"]).Token)
	assert.False(t, tree.Node(ids["args"]).Token)
}

func TestBuild_TrailingTrivia(t *testing.T) {
	tree, ids := buildCall(t)
	assert.Equal(t, Span{3, 5}, tree.FullSpan(ids[","]), "comma owns the following space")
	assert.Equal(t, Span{6, 8}, tree.FullSpan(ids[")"]), "trailing trivia includes the newline")
	assert.Equal(t, Span{1, 2}, tree.FullSpan(ids["("]))
	assert.Equal(t, Span{1, 8}, tree.FullSpan(ids["args"]))
	assert.Equal(t, Span{0, 8}, tree.FullSpan(tree.Root()))
}

func TestBuild_LeadingTrivia(t *testing.T) {
	src := []byte("x\n   y")
	b := NewBuilder("", src)
	root := b.Add(NoNode, Node{Kind: KindCompilationUnit, Span: Span{0, 6}, Named: true})
	x := b.Add(root, Node{Kind: KindIdentifier, Span: Span{0, 1}, Named: true})
	y := b.Add(root, Node{Kind: KindIdentifier, Span: Span{5, 6}, Named: true})
	tree := b.Build()
	assert.Equal(t, Span{0, 2}, tree.FullSpan(x))
	assert.Equal(t, Span{2, 6}, tree.FullSpan(y))
}

func TestBuild_EmptyTree(t *testing.T) {
	tree := NewBuilder("", []byte("  ")).Build()
	assert.Equal(t, KindCompilationUnit, tree.Kind(tree.Root()))
	assert.Equal(t, Span{0, 2}, tree.FullSpan(tree.Root()))
}

func TestNavigation(t *testing.T) {
	tree, ids := buildCall(t)
	assert.Equal(t, ids["args"], tree.Field(ids["inv"], "arguments"))
	assert.Equal(t, ids["f"], tree.Field(ids["inv"], "function"))
	assert.Equal(t, NoNode, tree.Field(ids["inv"], "body"))
	assert.True(t, tree.FieldIs(ids["args"], "arguments"))
	assert.Equal(t, ids["inv"], tree.Ancestor(ids["a"], KindInvocation))
	assert.Equal(t, NoNode, tree.Ancestor(ids["a"], KindLambda))
	assert.Len(t, tree.ChildrenOf(ids["args"], KindArgument), 2)
	assert.Len(t, tree.NamedChildren(ids["args"]), 2)
	assert.Equal(t, ids[","], tree.FirstChild(ids["args"], KindComma))
	assert.Equal(t, "a", tree.Text(ids["a"]))
	assert.Equal(t, "", tree.Text(NoNode))
	assert.Equal(t, KindUnknown, tree.Kind(NoNode))
	assert.Equal(t, NoNode, tree.Parent(NoNode))
}

func TestWalk_SkipSubtree(t *testing.T) {
	tree, ids := buildCall(t)
	var visited []Kind
	tree.Walk(tree.Root(), func(id, _ NodeID, _ int) bool {
		visited = append(visited, tree.Kind(id))
		return id != ids["args"]
	})
	assert.Equal(t, []Kind{KindCompilationUnit, KindInvocation, KindIdentifier, KindArgumentList}, visited)
}

func TestWalk_Depth(t *testing.T) {
	tree, ids := buildCall(t)
	depths := make(map[NodeID]int)
	tree.Walk(tree.Root(), func(id, _ NodeID, depth int) bool {
		depths[id] = depth
		return true
	})
	assert.Equal(t, 0, depths[tree.Root()])
	assert.Equal(t, 4, depths[ids["b"]])
}

func TestPosition(t *testing.T) {
	tree := NewBuilder("", []byte("ab\ncd\r\nef")).Build()
	assert.Equal(t, Position{Line: 1, Col: 1}, tree.Position(0))
	assert.Equal(t, Position{Line: 2, Col: 2}, tree.Position(4))
	assert.Equal(t, Position{Line: 3, Col: 1}, tree.Position(7))
	assert.Equal(t, "2:2", tree.Position(4).String())
	assert.Equal(t, "cd", tree.LineText(2))
	assert.Equal(t, "ef", tree.LineText(3))
	assert.Equal(t, "", tree.LineText(9))

	for _, off := range []int{0, 4, 7, 9} {
		assert.Equal(t, off, tree.Offset(tree.Position(off)))
	}
	assert.Equal(t, 5, tree.Offset(Position{Line: 2, Col: 99}), "clamps before the CR")
	assert.Equal(t, 0, tree.Offset(Position{}))
	assert.Equal(t, 9, tree.Offset(Position{Line: 9, Col: 1}))

	// Byte columns, not UTF-16 units.
	tree = NewBuilder("", []byte("é😀x\ny")).Build()
	assert.Equal(t, 6, tree.Offset(Position{Line: 1, Col: 7}))
	assert.Equal(t, Position{Line: 1, Col: 7}, tree.Position(6))
}

func TestLSPPosition_UTF16(t *testing.T) {
	// "é" is two bytes and one UTF-16 unit; "😀" is four bytes and two units.
	src := []byte("é😀x\ny")
	tree := NewBuilder("", src).Build()
	line, char := tree.LSPPosition(6)
	assert.Equal(t, 0, line)
	assert.Equal(t, 3, char)
	assert.Equal(t, 6, tree.OffsetOf(0, 3))
	assert.Equal(t, 8, tree.OffsetOf(1, 0))
	assert.Equal(t, 7, tree.OffsetOf(0, 99), "clamps to end of line")
	assert.Equal(t, len(src), tree.OffsetOf(5, 0))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "(", KindOpenParen.String())
	assert.Equal(t, "invocation", KindInvocation.String())
	assert.Equal(t, "unknown", Kind(9999).String())
	assert.True(t, KindInterfaceDecl.IsTypeDecl())
	assert.True(t, KindGenericName.IsTypeSyntax())
	assert.False(t, KindInvocation.IsTypeSyntax())
}
