package editor

import (
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var lineBreakRe = regexp.MustCompile(`\r?\n`)

// Resolve extracts the body typed before cursor inside block. It reports
// false when there is nothing to complete: no block, a cursor above the
// block, on its request line, or past its last line.
func Resolve(block *CodeBlock, cursor Cursor) (ResolvedContext, bool) {
	if block == nil {
		return ResolvedContext{}, false
	}
	rel := cursor.Line - block.StartLine
	if rel <= 0 {
		return ResolvedContext{}, false
	}

	lines := lineBreakRe.Split(block.Text, -1)
	if rel >= len(lines) {
		return ResolvedContext{}, false
	}

	selected := make([]string, 0, rel+1)
	selected = append(selected, lines[:rel]...)
	selected = append(selected, columnPrefix(lines[rel], cursor.Column-1))

	return ResolvedContext{
		OperationKey: block.OperationKey,
		PartialBody:  strings.Join(selected, "\n"),
	}, true
}

// columnPrefix returns the part of s before the first n UTF-16 code units,
// the unit host editor columns count in. A character that would straddle the
// boundary is left out.
func columnPrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	units := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		units += utf16Len(r)
		if units > n {
			return s[:i]
		}
		i += size
		if units == n {
			return s[:i]
		}
	}
	return s
}

// ColumnAfter returns the 1-based column just past the end of line.
func ColumnAfter(line string) int {
	units := 0
	for _, r := range line {
		units += utf16Len(r)
	}
	return units + 1
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
