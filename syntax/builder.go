// Copyright © 2024 The moqls authors

package syntax

// Builder assembles a Tree. Nodes must be added in document order with each
// parent added before its children.
type Builder struct {
	tree *Tree
}

// NewBuilder returns a builder for a tree over src.
func NewBuilder(filename string, src []byte) *Builder {
	return &Builder{tree: &Tree{Filename: filename, Source: src, root: NoNode}}
}

// Add appends n as the last child of parent and returns its id. The first
// node added with parent NoNode becomes the root.
func (b *Builder) Add(parent NodeID, n Node) NodeID {
	t := b.tree
	id := NodeID(len(t.nodes))
	n.Parent = parent
	n.Children = nil
	t.nodes = append(t.nodes, n)
	if parent == NoNode {
		if t.root == NoNode {
			t.root = id
		}
		return id
	}
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// Build finalizes token flags, full spans and the line index. The builder
// must not be used afterwards.
func (b *Builder) Build() *Tree {
	t := b.tree
	b.tree = nil
	if t.root == NoNode {
		t.root = NodeID(len(t.nodes))
		t.nodes = append(t.nodes, Node{
			Kind:   KindCompilationUnit,
			Span:   Span{0, len(t.Source)},
			Parent: NoNode,
			Named:  true,
		})
	}
	for i := range t.nodes {
		n := &t.nodes[i]
		n.Token = len(n.Children) == 0 && !n.Kind.IsTrivia()
		n.FullSpan = n.Span
	}
	t.assignTokenTrivia()
	// Children always follow their parent in the arena, so a reverse sweep
	// sees every child before its parent.
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := &t.nodes[i]
		for _, c := range n.Children {
			cn := &t.nodes[c]
			if cn.Kind.IsTrivia() || (cn.Missing && cn.Span.Len() == 0) {
				continue
			}
			if cn.FullSpan.Start < n.FullSpan.Start {
				n.FullSpan.Start = cn.FullSpan.Start
			}
			if cn.FullSpan.End > n.FullSpan.End {
				n.FullSpan.End = cn.FullSpan.End
			}
		}
	}
	t.nodes[t.root].FullSpan = Span{0, len(t.Source)}
	t.lines = lineStarts(t.Source)
	return t
}

// assignTokenTrivia extends every token over its trivia. Leading trivia
// begins where the previous token's full span ended. Trailing trivia runs up
// to and including the first newline, but never into the next token.
func (t *Tree) assignTokenTrivia() {
	var tokens []NodeID
	t.Walk(t.root, func(id, _ NodeID, _ int) bool {
		n := &t.nodes[id]
		if n.Kind.IsTrivia() {
			return false
		}
		if n.Token && !(n.Missing && n.Span.Len() == 0) {
			tokens = append(tokens, id)
		}
		return true
	})
	prevEnd := 0
	for i, id := range tokens {
		n := &t.nodes[id]
		limit := len(t.Source)
		if i+1 < len(tokens) {
			limit = t.nodes[tokens[i+1]].Span.Start
		}
		end := n.Span.End
		for end < limit {
			c := t.Source[end]
			end++
			if c == '\n' {
				break
			}
		}
		if prevEnd > n.Span.Start {
			prevEnd = n.Span.Start
		}
		n.FullSpan = Span{prevEnd, end}
		prevEnd = end
	}
}

func lineStarts(src []byte) []int {
	lines := []int{0}
	for i, c := range src {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}
