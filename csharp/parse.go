// Copyright © 2024 The moqls authors

// Package csharp parses C# source into a syntax.Tree using tree-sitter.
//
// Parsing never fails on malformed input. Error recovery shapes produced by
// the grammar are kept as KindError nodes and zero-width MISSING tokens so
// that code which is still being typed can be inspected.
package csharp

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/rjmurillo/moq.autocomplete/syntax"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
)

var language = tree_sitter.NewLanguage(tree_sitter_csharp.Language())

// idle holds parsers between calls. A tree-sitter parser must not be used
// by two goroutines at once.
var idle = make(chan *tree_sitter.Parser, runtime.GOMAXPROCS(0))

func acquire() (*tree_sitter.Parser, error) {
	select {
	case p := <-idle:
		return p, nil
	default:
	}
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(language); err != nil {
		p.Close()
		return nil, fmt.Errorf("loading C# grammar: %w", err)
	}
	return p, nil
}

func release(p *tree_sitter.Parser) {
	p.Reset()
	select {
	case idle <- p:
	default:
		p.Close()
	}
}

// ErrNoTree is returned when the parser produces no tree at all.
var ErrNoTree = errors.New("parser returned no tree")

// Parse parses src and converts the result into an arena tree.
func Parse(filename string, src []byte) (*syntax.Tree, error) {
	p, err := acquire()
	if err != nil {
		return nil, err
	}
	defer release(p)
	ts := p.Parse(src, nil)
	if ts == nil {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoTree)
	}
	defer ts.Close()
	b := syntax.NewBuilder(filename, src)
	convert(b, ts.RootNode())
	return b.Build(), nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(filename, src string) (*syntax.Tree, error) {
	return Parse(filename, []byte(src))
}

// convert copies the tree-sitter tree into b in document order.
func convert(b *syntax.Builder, root *tree_sitter.Node) {
	c := root.Walk()
	defer c.Close()
	parents := []syntax.NodeID{syntax.NoNode}
	for {
		n := c.Node()
		id := b.Add(parents[len(parents)-1], syntax.Node{
			Kind:    kindOf(n),
			Type:    n.Kind(),
			Span:    syntax.Span{Start: int(n.StartByte()), End: int(n.EndByte())},
			Field:   c.FieldName(),
			Named:   n.IsNamed(),
			Missing: n.IsMissing(),
		})
		if c.GotoFirstChild() {
			parents = append(parents, id)
			continue
		}
		for !c.GotoNextSibling() {
			if !c.GotoParent() {
				return
			}
			parents = parents[:len(parents)-1]
		}
	}
}

func kindOf(n *tree_sitter.Node) syntax.Kind {
	if n.IsError() {
		return syntax.KindError
	}
	name := n.Kind()
	if !n.IsNamed() {
		if k, ok := tokenKinds[name]; ok {
			return k
		}
		if isWord(name) {
			return syntax.KindKeyword
		}
		return syntax.KindPunct
	}
	if k, ok := nodeKinds[name]; ok {
		return k
	}
	return syntax.KindOther
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_') {
			return false
		}
	}
	return true
}
