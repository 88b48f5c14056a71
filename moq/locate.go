// Copyright © 2024 The moqls authors

package moq

import (
	"slices"
	"sort"
	"strings"

	"github.com/rjmurillo/moq.autocomplete/syntax"
)

// Anchor is a boundary token of an argument or type argument list that a
// position falls on.
type Anchor struct {
	Token syntax.NodeID
	List  syntax.NodeID
	// Slot is the index of the argument that follows the token: 0 after
	// the open paren, k+1 after the k-th comma.
	Slot int
}

// AtOpen reports whether the anchor is the opening token of its list.
func (a Anchor) AtOpen(tree *syntax.Tree) bool {
	return tokenKind(tree, a.Token) == syntax.KindOpenParen
}

// LocateArgumentToken finds the open paren or comma of the innermost
// argument list whose influence covers the character before offset.
func LocateArgumentToken(tree *syntax.Tree, offset int) (Anchor, bool) {
	return locate(tree, offset, syntax.KindArgumentList, syntax.KindOpenParen, syntax.KindComma)
}

// LocateTypeArgumentToken finds the closing angle bracket of the innermost
// type argument list whose influence covers the character before offset.
func LocateTypeArgumentToken(tree *syntax.Tree, offset int) (Anchor, bool) {
	return locate(tree, offset, syntax.KindTypeArgumentList, syntax.KindGreaterThan)
}

// locate collects the containers of kind container around offset-1,
// innermost first, and returns the first boundary token whose full span
// contains that position.
func locate(tree *syntax.Tree, offset int, container syntax.Kind, boundary ...syntax.Kind) (Anchor, bool) {
	if tree == nil || tree.Len() == 0 {
		return Anchor{}, false
	}
	pos := offset - 1
	if pos < 0 {
		return Anchor{}, false
	}
	var lists []syntax.NodeID
	tree.Walk(tree.Root(), func(id, _ syntax.NodeID, _ int) bool {
		if !tree.FullSpan(id).Contains(pos) {
			return false
		}
		if tree.Kind(id) == container {
			lists = append(lists, id)
		}
		return true
	})
	sort.SliceStable(lists, func(i, j int) bool {
		return tree.Span(lists[i]).Len() < tree.Span(lists[j]).Len()
	})
	for _, list := range lists {
		commas := 0
		for _, tok := range boundaryTokens(tree, list, boundary) {
			kind := tokenKind(tree, tok)
			if tree.FullSpan(tok).Contains(pos) {
				a := Anchor{Token: tok, List: list}
				if kind == syntax.KindComma {
					a.Slot = commas + 1
				}
				return a, true
			}
			if kind == syntax.KindComma {
				commas++
			}
		}
	}
	return Anchor{}, false
}

// boundaryTokens returns the boundary tokens of list in source order. A
// separator typed before the next argument, as in Do(a, |), is parsed into
// an error node under the list; its commas count as the list's own.
func boundaryTokens(tree *syntax.Tree, list syntax.NodeID, boundary []syntax.Kind) []syntax.NodeID {
	var out []syntax.NodeID
	for _, ch := range tree.Children(list) {
		switch {
		case tree.Is(ch, boundary...):
			out = append(out, ch)
		case tree.Kind(ch) == syntax.KindError && slices.Contains(boundary, syntax.KindComma):
			out = append(out, errorCommas(tree, ch)...)
		}
	}
	return out
}

func errorCommas(tree *syntax.Tree, id syntax.NodeID) []syntax.NodeID {
	var out []syntax.NodeID
	for _, ch := range tree.Children(id) {
		switch tokenKind(tree, ch) {
		case syntax.KindComma:
			out = append(out, ch)
		case syntax.KindError:
			out = append(out, errorCommas(tree, ch)...)
		}
	}
	return out
}

// tokenKind is the kind of id, with an error leaf that wraps a single
// punctuation character classified by its text.
func tokenKind(tree *syntax.Tree, id syntax.NodeID) syntax.Kind {
	k := tree.Kind(id)
	if k != syntax.KindError || len(tree.Children(id)) > 0 {
		return k
	}
	switch tree.Text(id) {
	case "(":
		return syntax.KindOpenParen
	case ")":
		return syntax.KindCloseParen
	case ",":
		return syntax.KindComma
	}
	return k
}

// CloseDanglingCall repairs a call left open at offset, such as
// Callback(| at the end of a statement. When the character before offset
// is an open paren or a comma and the file has unclosed parens, it
// returns the source with those parens and a semicolon inserted at offset.
// Text before offset is unchanged, so offset stays valid in the result.
func CloseDanglingCall(tree *syntax.Tree, offset int) ([]byte, bool) {
	if tree == nil || tree.Len() == 0 || offset <= 0 || offset > len(tree.Source) {
		return nil, false
	}
	switch tokenKind(tree, tokenAt(tree, offset-1)) {
	case syntax.KindOpenParen, syntax.KindComma:
	default:
		return nil, false
	}
	open := 0
	tree.Walk(tree.Root(), func(id, _ syntax.NodeID, _ int) bool {
		n := tree.Node(id)
		if !n.Token || n.Missing {
			return true
		}
		switch tokenKind(tree, id) {
		case syntax.KindOpenParen:
			open++
		case syntax.KindCloseParen:
			open--
		}
		return true
	})
	if open <= 0 {
		return nil, false
	}
	closing := strings.Repeat(")", open) + ";"
	src := make([]byte, 0, len(tree.Source)+len(closing))
	src = append(src, tree.Source[:offset]...)
	src = append(src, closing...)
	src = append(src, tree.Source[offset:]...)
	return src, true
}

// tokenAt returns the token whose full span contains pos, or NoNode.
func tokenAt(tree *syntax.Tree, pos int) syntax.NodeID {
	found := syntax.NoNode
	tree.Walk(tree.Root(), func(id, _ syntax.NodeID, _ int) bool {
		if !tree.FullSpan(id).Contains(pos) {
			return false
		}
		if tree.Node(id).Token {
			found = id
		}
		return true
	})
	return found
}
