package editor

import "strings"

// CaretMarker marks the cursor inside a block written to a file.
const CaretMarker = "<caret>"

// SplitCaret removes the first caret marker from src and returns the
// remaining text with the marker's 1-based position relative to the start of
// src. ok is false when src holds no marker.
func SplitCaret(src string) (text string, cursor Cursor, ok bool) {
	idx := strings.Index(src, CaretMarker)
	if idx == -1 {
		return src, Cursor{}, false
	}
	before := src[:idx]
	after := src[idx+len(CaretMarker):]
	line := strings.Count(before, "\n") + 1
	lastLine := before
	if nl := strings.LastIndex(before, "\n"); nl != -1 {
		lastLine = before[nl+1:]
	}
	return before + after, Cursor{Line: line, Column: ColumnAfter(lastLine)}, true
}
