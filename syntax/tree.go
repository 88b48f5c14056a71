// Copyright © 2024 The moqls authors

// Package syntax implements an immutable, arena-allocated syntax tree.
//
// Nodes live in a single slice owned by the Tree and refer to each other by
// NodeID. Parent links are indices, never ownership edges, so upward walks
// are plain loops. Every token carries a full span that includes its
// surrounding trivia, which is what position-based queries intersect with.
package syntax

// NodeID indexes a node in a Tree.
type NodeID int32

// NoNode marks the absence of a node.
const NoNode NodeID = -1

// Valid reports whether id refers to a node.
func (id NodeID) Valid() bool { return id >= 0 }

// Span is a half-open byte range [Start, End) into the source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether pos lies inside the span.
func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Node is a single arena entry.
type Node struct {
	Kind     Kind
	Type     string // grammar node name, e.g. "integer_literal"
	Span     Span
	FullSpan Span
	Parent   NodeID
	Children []NodeID
	Field    string // field name under the parent, if any
	Named    bool
	Token    bool
	Missing  bool
}

// Tree is an immutable syntax tree. It is safe for concurrent readers.
type Tree struct {
	Filename string
	Source   []byte

	nodes []Node
	root  NodeID
	lines []int
}

// Root returns the root node.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node for id. The returned pointer must not be modified.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Kind returns the kind of id, or KindUnknown when id is NoNode.
func (t *Tree) Kind(id NodeID) Kind {
	if !t.valid(id) {
		return KindUnknown
	}
	return t.nodes[id].Kind
}

// Is reports whether id is a node of one of the given kinds.
func (t *Tree) Is(id NodeID, kinds ...Kind) bool {
	k := t.Kind(id)
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// Parent returns the parent of id, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].Parent
}

// Children returns the ordered children of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id].Children
}

// Span returns the span of id.
func (t *Tree) Span(id NodeID) Span {
	if !t.valid(id) {
		return Span{}
	}
	return t.nodes[id].Span
}

// FullSpan returns the span of id including trivia.
func (t *Tree) FullSpan(id NodeID) Span {
	if !t.valid(id) {
		return Span{}
	}
	return t.nodes[id].FullSpan
}

// Text returns the source text covered by id.
func (t *Tree) Text(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	s := t.nodes[id].Span
	return string(t.Source[s.Start:s.End])
}

// Field returns the first child of id stored under the named field.
func (t *Tree) Field(id NodeID, name string) NodeID {
	for _, c := range t.Children(id) {
		if t.nodes[c].Field == name {
			return c
		}
	}
	return NoNode
}

// FieldIs reports whether id sits under the named field of its parent.
func (t *Tree) FieldIs(id NodeID, name string) bool {
	return t.valid(id) && t.nodes[id].Field == name
}

// FirstChild returns the first child of id having one of the given kinds.
func (t *Tree) FirstChild(id NodeID, kinds ...Kind) NodeID {
	for _, c := range t.Children(id) {
		if t.Is(c, kinds...) {
			return c
		}
	}
	return NoNode
}

// ChildrenOf returns the children of id having one of the given kinds.
func (t *Tree) ChildrenOf(id NodeID, kinds ...Kind) []NodeID {
	var out []NodeID
	for _, c := range t.Children(id) {
		if t.Is(c, kinds...) {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named, non-trivia children of id.
func (t *Tree) NamedChildren(id NodeID) []NodeID {
	var out []NodeID
	for _, c := range t.Children(id) {
		n := &t.nodes[c]
		if n.Named && !n.Kind.IsTrivia() {
			out = append(out, c)
		}
	}
	return out
}

// Ancestor returns the nearest proper ancestor of id having one of the
// given kinds, or NoNode.
func (t *Tree) Ancestor(id NodeID, kinds ...Kind) NodeID {
	for p := t.Parent(id); p != NoNode; p = t.Parent(p) {
		if t.Is(p, kinds...) {
			return p
		}
	}
	return NoNode
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(id, parent NodeID, depth int) bool) {
	if !t.valid(id) {
		return
	}
	type frame struct {
		id    NodeID
		depth int
	}
	stack := []frame{{id, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.id, t.nodes[f.id].Parent, f.depth) {
			continue
		}
		kids := t.nodes[f.id].Children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{kids[i], f.depth + 1})
		}
	}
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}
