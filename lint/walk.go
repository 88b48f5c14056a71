// Copyright © 2024 The moqls authors

package lint

import (
	"strings"

	"github.com/rjmurillo/moq.autocomplete/syntax"
)

// WalkComments calls fn for every comment in the tree.
func WalkComments(tree *syntax.Tree, fn func(comment syntax.NodeID)) {
	tree.Walk(tree.Root(), func(id, _ syntax.NodeID, _ int) bool {
		if tree.Kind(id) == syntax.KindComment {
			fn(id)
			return false
		}
		return true
	})
}

// commentText strips the comment markers of a line or block comment.
func commentText(raw string) string {
	text := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(text, "//"):
		text = strings.TrimLeft(text, "/")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	}
	return strings.TrimSpace(text)
}

// nolintDirectives maps the line of every nolint comment to its rule list.
// A bare "nolint" maps to "", which suppresses every rule.
func nolintDirectives(tree *syntax.Tree) map[int]string {
	lines := make(map[int]string)
	WalkComments(tree, func(c syntax.NodeID) {
		text := commentText(tree.Text(c))
		if !strings.HasPrefix(text, "nolint") {
			return
		}
		line := tree.Position(tree.Span(c).Start).Line
		rest := strings.TrimPrefix(text, "nolint")
		if rest == "" || rest[0] == ' ' {
			lines[line] = ""
			return
		}
		if strings.HasPrefix(rest, ":") {
			rules := strings.TrimPrefix(rest, ":")
			if sp := strings.IndexByte(rules, ' '); sp >= 0 {
				rules = rules[:sp]
			}
			lines[line] = rules
		}
	})
	return lines
}
