// Copyright © 2024 The moqls authors

// Package astutil provides shared syntax walking utilities for C# trees.
//
// These helpers are used by the moq, analysis and lint packages for
// navigating invocation chains, argument lists and lambdas.
package astutil

import "github.com/rjmurillo/moq.autocomplete/syntax"

// Walk calls fn for every node in the tree, depth-first. parent is NoNode
// for the root.
func Walk(tree *syntax.Tree, fn func(node, parent syntax.NodeID, depth int)) {
	tree.Walk(tree.Root(), func(id, parent syntax.NodeID, depth int) bool {
		if tree.Kind(id).IsTrivia() {
			return false
		}
		fn(id, parent, depth)
		return true
	})
}

// WalkInvocations calls fn for every invocation expression in the tree.
func WalkInvocations(tree *syntax.Tree, fn func(inv syntax.NodeID)) {
	Walk(tree, func(node, _ syntax.NodeID, _ int) {
		if tree.Kind(node) == syntax.KindInvocation {
			fn(node)
		}
	})
}

// Unparen strips any parentheses wrapped around an expression.
func Unparen(tree *syntax.Tree, id syntax.NodeID) syntax.NodeID {
	for tree.Kind(id) == syntax.KindParenthesized {
		inner := tree.NamedChildren(id)
		if len(inner) != 1 {
			return id
		}
		id = inner[0]
	}
	return id
}

// Callee returns the function expression of an invocation.
func Callee(tree *syntax.Tree, inv syntax.NodeID) syntax.NodeID {
	if tree.Kind(inv) != syntax.KindInvocation {
		return syntax.NoNode
	}
	if f := tree.Field(inv, "function"); f != syntax.NoNode {
		return f
	}
	named := tree.NamedChildren(inv)
	if len(named) == 0 {
		return syntax.NoNode
	}
	return named[0]
}

// MemberAccess returns the member access that an invocation calls through,
// or NoNode when the callee is not of the form receiver.Name.
func MemberAccess(tree *syntax.Tree, inv syntax.NodeID) syntax.NodeID {
	callee := Callee(tree, inv)
	if tree.Kind(callee) != syntax.KindMemberAccess {
		return syntax.NoNode
	}
	return callee
}

// Receiver returns the receiver expression of a member access.
func Receiver(tree *syntax.Tree, ma syntax.NodeID) syntax.NodeID {
	if e := tree.Field(ma, "expression"); e != syntax.NoNode {
		return e
	}
	named := tree.NamedChildren(ma)
	if len(named) < 2 {
		return syntax.NoNode
	}
	return named[0]
}

// MemberNameNode returns the name of a member access, an identifier or a
// generic name.
func MemberNameNode(tree *syntax.Tree, ma syntax.NodeID) syntax.NodeID {
	if n := tree.Field(ma, "name"); n != syntax.NoNode {
		return n
	}
	named := tree.NamedChildren(ma)
	if len(named) == 0 {
		return syntax.NoNode
	}
	return named[len(named)-1]
}

// SimpleName returns the identifier text of an identifier or generic name.
func SimpleName(tree *syntax.Tree, id syntax.NodeID) string {
	switch tree.Kind(id) {
	case syntax.KindIdentifier, syntax.KindImplicitParameter, syntax.KindPredefinedType:
		return tree.Text(id)
	case syntax.KindGenericName:
		return tree.Text(tree.FirstChild(id, syntax.KindIdentifier))
	case syntax.KindQualifiedName:
		return SimpleName(tree, QualifiedRight(tree, id))
	}
	return ""
}

// QualifiedRight returns the rightmost simple name of a qualified name.
func QualifiedRight(tree *syntax.Tree, id syntax.NodeID) syntax.NodeID {
	if n := tree.Field(id, "name"); n != syntax.NoNode {
		return n
	}
	named := tree.NamedChildren(id)
	if len(named) == 0 {
		return syntax.NoNode
	}
	return named[len(named)-1]
}

// MemberName returns the surface name an invocation calls: the right-hand
// identifier of a member access callee, or the identifier of a simple call.
// It performs no resolution.
func MemberName(tree *syntax.Tree, inv syntax.NodeID) string {
	callee := Callee(tree, inv)
	switch tree.Kind(callee) {
	case syntax.KindMemberAccess:
		return SimpleName(tree, MemberNameNode(tree, callee))
	case syntax.KindIdentifier, syntax.KindGenericName:
		return SimpleName(tree, callee)
	}
	return ""
}

// TypeArguments returns the type argument nodes of a generic name.
func TypeArguments(tree *syntax.Tree, generic syntax.NodeID) []syntax.NodeID {
	return tree.NamedChildren(tree.FirstChild(generic, syntax.KindTypeArgumentList))
}
