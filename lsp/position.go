// Copyright © 2024 The moqls authors

package lsp

import (
	"strings"

	"github.com/rjmurillo/moq.autocomplete/syntax"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// toLSPPosition converts a byte offset to a 0-based line and UTF-16
// character position.
func toLSPPosition(tree *syntax.Tree, offset int) protocol.Position {
	line, char := tree.LSPPosition(offset)
	return protocol.Position{Line: safeUint(line), Character: safeUint(char)}
}

// toLSPRange converts a byte span to an LSP range.
func toLSPRange(tree *syntax.Tree, span syntax.Span) protocol.Range {
	return protocol.Range{
		Start: toLSPPosition(tree, span.Start),
		End:   toLSPPosition(tree, span.End),
	}
}

// offsetAt converts an LSP position to a byte offset in the tree's source.
func offsetAt(tree *syntax.Tree, pos protocol.Position) int {
	return tree.OffsetOf(int(pos.Line), int(pos.Character))
}

// rangesOverlap reports whether a and b share a position. Touching ranges
// overlap, so a zero-width request range at a diagnostic's edge still
// matches it.
func rangesOverlap(a, b protocol.Range) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}

func before(a, b protocol.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}
