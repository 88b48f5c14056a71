// Copyright © 2024 The moqls authors

package typename

import (
	"strings"

	parsec "github.com/prataprc/goparsec"
)

type argList struct {
	args    []*Ref
	unbound int
}

type segment struct {
	name string
	args *argList
}

type tupleElem struct {
	ref *Ref
}

type rank struct {
	n int
}

func newGrammar() parsec.Parser {
	var typ parsec.Parser // forward declaration for nested type arguments

	ident := parsec.Token(`@?[\pL_][\pL\pN_]*`, "IDENT")
	dot := parsec.Atom(".", "DOT")
	comma := parsec.Atom(",", "COMMA")
	lt := parsec.Atom("<", "LT")
	gt := parsec.Atom(">", "GT")
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	openB := parsec.Atom("[", "OPENB")
	closeB := parsec.Atom("]", "CLOSEB")
	question := parsec.Atom("?", "QUESTION")
	star := parsec.Atom("*", "STAR")

	typeArgs := parsec.And(nodifyArgs, lt, parsec.Kleene(nil, &typ, comma), gt)
	unbound := parsec.And(nodifyUnbound, lt, parsec.Kleene(nil, comma), gt)
	seg := parsec.And(nodifySegment, ident, parsec.Maybe(nil, parsec.OrdChoice(nil, typeArgs, unbound)))
	name := parsec.Many(nodifyName, seg, dot)
	elem := parsec.And(nodifyElem, &typ, parsec.Maybe(nil, ident))
	tuple := parsec.And(nodifyTuple, openP, parsec.Many(nil, elem, comma), closeP)
	arrayRank := parsec.And(nodifyRank, openB, parsec.Kleene(nil, comma), closeB)
	suffix := parsec.OrdChoice(nil, question, star, arrayRank)
	typ = parsec.And(nodifyType, parsec.OrdChoice(nil, tuple, name), parsec.Kleene(nil, suffix))
	return typ
}

// flatten unwraps nested node lists produced by combinators with a nil
// callback, keeping terminals and the values built by the nodify functions.
func flatten(nodes []parsec.ParsecNode) []parsec.ParsecNode {
	var out []parsec.ParsecNode
	for _, n := range nodes {
		switch v := n.(type) {
		case []parsec.ParsecNode:
			out = append(out, flatten(v)...)
		case nil:
		default:
			out = append(out, v)
		}
	}
	return out
}

func terminal(n parsec.ParsecNode, name string) (*parsec.Terminal, bool) {
	t, ok := n.(*parsec.Terminal)
	if !ok || t.Name != name {
		return nil, false
	}
	return t, true
}

func countTerminals(nodes []parsec.ParsecNode, name string) int {
	count := 0
	for _, n := range flatten(nodes) {
		if _, ok := terminal(n, name); ok {
			count++
		}
	}
	return count
}

func nodifyArgs(nodes []parsec.ParsecNode) parsec.ParsecNode {
	var list argList
	for _, n := range flatten(nodes) {
		if r, ok := n.(*Ref); ok {
			list.args = append(list.args, r)
		}
	}
	if len(list.args) == 0 {
		list.unbound = 1
	}
	return &list
}

func nodifyUnbound(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return &argList{unbound: countTerminals(nodes, "COMMA") + 1}
}

func nodifySegment(nodes []parsec.ParsecNode) parsec.ParsecNode {
	var seg segment
	for _, n := range flatten(nodes) {
		switch v := n.(type) {
		case *parsec.Terminal:
			if v.Name == "IDENT" && seg.name == "" {
				seg.name = strings.TrimPrefix(v.Value, "@")
			}
		case *argList:
			seg.args = v
		}
	}
	return &seg
}

func nodifyName(nodes []parsec.ParsecNode) parsec.ParsecNode {
	var parts []string
	var last *segment
	for _, n := range flatten(nodes) {
		if seg, ok := n.(*segment); ok {
			parts = append(parts, seg.name)
			last = seg
		}
	}
	ref := &Ref{Name: strings.Join(parts, ".")}
	if last != nil && last.args != nil {
		ref.Args = last.args.args
		ref.Unbound = last.args.unbound
	}
	return ref
}

func nodifyElem(nodes []parsec.ParsecNode) parsec.ParsecNode {
	for _, n := range flatten(nodes) {
		if r, ok := n.(*Ref); ok {
			return &tupleElem{ref: r}
		}
	}
	return nil
}

func nodifyTuple(nodes []parsec.ParsecNode) parsec.ParsecNode {
	ref := &Ref{Tuple: []*Ref{}}
	for _, n := range flatten(nodes) {
		if e, ok := n.(*tupleElem); ok {
			ref.Tuple = append(ref.Tuple, e.ref)
		}
	}
	return ref
}

func nodifyRank(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return &rank{n: countTerminals(nodes, "COMMA") + 1}
}

func nodifyType(nodes []parsec.ParsecNode) parsec.ParsecNode {
	var cur *Ref
	for _, n := range flatten(nodes) {
		switch v := n.(type) {
		case *Ref:
			if cur == nil {
				cur = v
			}
		case *rank:
			if cur != nil {
				cur = &Ref{Elem: cur, Rank: v.n}
			}
		case *parsec.Terminal:
			if cur == nil {
				continue
			}
			switch v.Name {
			case "QUESTION":
				cp := *cur
				cp.Nullable = true
				cur = &cp
			case "STAR":
				cur = &Ref{Elem: cur, Pointer: true}
			}
		}
	}
	if cur == nil {
		return nil
	}
	return cur
}
