// spans.go — byte-offset primitives shared by the DOM, checker, and
// IntelliSense layers.
//
// Span is the half-open byte interval used throughout the arena DOM
// (dom.go); this file adds the authoritative byte-offset ↔ line/column
// converter that every persisted Location must be derived from: every
// range recorded in an index is computed from the current text's
// converter, never carried forward across edits.
//
// Grounded on _examples/daios-ai-msg/spans.go's half-open-interval Span
// type; generalized from a sidecar NodePath→Span map (needed there
// because the source AST has no back-pointers) to a direct field on each
// arena Element, since our DOM already carries parent links.
package skinlang

// Span is a half-open byte interval [StartByte, EndByte) into a document's
// UTF-8 source text.
type Span struct {
	StartByte int
	EndByte   int
}

func (s Span) Len() int { return s.EndByte - s.StartByte }

// LineIndex is a precomputed table of line-start byte offsets for a source
// string, letting OffsetToPosition run in O(log n).
type LineIndex struct {
	src        string
	lineStarts []int // lineStarts[i] = byte offset where line i (0-based) begins
}

// NewLineIndex scans src once for line starts.
func NewLineIndex(src string) *LineIndex {
	li := &LineIndex{src: src, lineStarts: []int{0}}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			li.lineStarts = append(li.lineStarts, i+1)
		}
	}
	return li
}

// OffsetToPosition converts a byte offset to a 0-based line/UTF-16-column
// position, matching the LSP wire contract (columns are UTF-16 code units,
// not bytes or runes).
func (li *LineIndex) OffsetToPosition(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.src) {
		offset = len(li.src)
	}
	line := sortSearch(li.lineStarts, offset)
	lineStart := li.lineStarts[line]
	col := utf16Len(li.src[lineStart:offset])
	return Position{Line: line, Col: col}
}

// PositionToOffset is the inverse of OffsetToPosition.
func (li *LineIndex) PositionToOffset(p Position) int {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= len(li.lineStarts) {
		return len(li.src)
	}
	lineStart := li.lineStarts[p.Line]
	lineEnd := len(li.src)
	if p.Line+1 < len(li.lineStarts) {
		lineEnd = li.lineStarts[p.Line+1]
	}
	return advanceUTF16(li.src[lineStart:lineEnd], p.Col) + lineStart
}

// SpanToRange converts a byte Span into a line/col Range.
func (li *LineIndex) SpanToRange(s Span) Range {
	return Range{Start: li.OffsetToPosition(s.StartByte), End: li.OffsetToPosition(s.EndByte)}
}

// sortSearch returns the greatest index i such that lineStarts[i] <= offset.
func sortSearch(lineStarts []int, offset int) int {
	lo, hi := 0, len(lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// utf16Len returns the number of UTF-16 code units s would occupy.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// advanceUTF16 returns the byte offset within s after advancing units
// UTF-16 code units (clamped to len(s)).
func advanceUTF16(s string, units int) int {
	n := 0
	for i, r := range s {
		if n >= units {
			return i
		}
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return len(s)
}
