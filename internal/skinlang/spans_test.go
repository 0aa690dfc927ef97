package skinlang

import "testing"

func TestLineIndex_OffsetToPosition(t *testing.T) {
	src := "line0\nline1\nline2"
	li := NewLineIndex(src)
	cases := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{5, Position{0, 5}},
		{6, Position{1, 0}},
		{11, Position{1, 5}},
		{12, Position{2, 0}},
	}
	for _, c := range cases {
		got := li.OffsetToPosition(c.offset)
		if got != c.want {
			t.Errorf("OffsetToPosition(%d) = %+v, want %+v", c.offset, got, c.want)
		}
	}
}

func TestLineIndex_RoundTrip(t *testing.T) {
	src := "abc\ndef\nghi"
	li := NewLineIndex(src)
	for offset := 0; offset <= len(src); offset++ {
		pos := li.OffsetToPosition(offset)
		back := li.PositionToOffset(pos)
		if back != offset {
			t.Errorf("round trip failed at offset %d: pos=%+v back=%d", offset, pos, back)
		}
	}
}

func TestLineIndex_UTF16Columns(t *testing.T) {
	// U+1F600 is a surrogate pair in UTF-16 (2 code units) but 4 bytes in UTF-8.
	src := "a\U0001F600b"
	li := NewLineIndex(src)
	pos := li.OffsetToPosition(len(src))
	if pos.Col != 4 { // 'a' (1) + emoji (2) + 'b' (1)
		t.Fatalf("want UTF-16 column 4, got %d", pos.Col)
	}
}
