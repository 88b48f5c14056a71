// Copyright © 2024 The moqls authors

package syntax

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Position is a 1-based line and byte column.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Position converts a byte offset into a line and column.
func (t *Tree) Position(offset int) Position {
	offset = t.clamp(offset)
	line := sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Col: offset - t.lines[line] + 1}
}

// Offset converts a 1-based line and byte column back into a byte offset.
// Columns past the end of the line clamp to the line end.
func (t *Tree) Offset(p Position) int {
	if p.Line < 1 {
		return 0
	}
	if p.Line > len(t.lines) {
		return len(t.Source)
	}
	start := t.lines[p.Line-1]
	return start + min(max(p.Col-1, 0), len(t.LineText(p.Line)))
}

// LineText returns the text of the 1-based line without its terminator.
func (t *Tree) LineText(line int) string {
	if line < 1 || line > len(t.lines) {
		return ""
	}
	start := t.lines[line-1]
	end := len(t.Source)
	if line < len(t.lines) {
		end = t.lines[line] - 1
	}
	if end > start && t.Source[end-1] == '\r' {
		end--
	}
	return string(t.Source[start:end])
}

// LSPPosition converts a byte offset into a 0-based line and a UTF-16 code
// unit column, as used by the language server protocol.
func (t *Tree) LSPPosition(offset int) (line, character int) {
	p := t.Position(offset)
	start := t.lines[p.Line-1]
	return p.Line - 1, utf16Len(t.Source[start:t.clamp(offset)])
}

// OffsetOf converts a 0-based line and UTF-16 column into a byte offset.
// Out-of-range values clamp to the nearest valid offset.
func (t *Tree) OffsetOf(line, character int) int {
	if line < 0 {
		return 0
	}
	if line >= len(t.lines) {
		return len(t.Source)
	}
	off := t.lines[line]
	units := 0
	for off < len(t.Source) && units < character {
		r, size := utf8.DecodeRune(t.Source[off:])
		if r == '\n' {
			break
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		off += size
	}
	return off
}

func (t *Tree) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(t.Source) {
		return len(t.Source)
	}
	return offset
}

func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
		b = b[size:]
	}
	return n
}
