package autocomplete

import (
	"regexp"
	"strings"
	"unicode"
)

var requestLineRe = regexp.MustCompile(`^(?i)(get|put|post|patch|delete|head|options)\s+\S`)

type frameState int

const (
	expectKey frameState = iota
	expectColon
	expectValue
	afterValue
)

type frame struct {
	array bool
	state frameState
	key   string
	keys  map[string]struct{}
	path  []pathElem
}

// stripRequestLine drops a leading "METHOD path" line when the body still
// carries the block header.
func stripRequestLine(body string) string {
	line, rest, found := strings.Cut(body, "\n")
	if !requestLineRe.MatchString(strings.TrimSpace(line)) {
		return body
	}
	if !found {
		return ""
	}
	return rest
}

// scanBody walks a partial JSON document and reports the cursor context at
// its end. Malformed input degrades to positionNone rather than an error.
func scanBody(body string) bodyContext {
	runes := []rune(body)
	var stack []*frame
	rootDone := false

	top := func() *frame {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	// valueDone marks the current value slot as filled.
	valueDone := func() {
		if f := top(); f != nil {
			f.state = afterValue
			return
		}
		rootDone = true
	}

	childPath := func() []pathElem {
		f := top()
		if f == nil {
			return nil
		}
		path := make([]pathElem, len(f.path), len(f.path)+1)
		copy(path, f.path)
		if f.array {
			return append(path, pathElem{items: true})
		}
		return append(path, pathElem{property: f.key})
	}

	expectsValue := func() bool {
		if f := top(); f != nil {
			return f.state == expectValue
		}
		return !rootDone
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '{' || r == '[':
			if !expectsValue() {
				return bodyContext{}
			}
			f := &frame{array: r == '[', path: childPath()}
			if f.array {
				f.state = expectValue
			} else {
				f.state = expectKey
				f.keys = make(map[string]struct{})
			}
			stack = append(stack, f)
		case r == '}' || r == ']':
			f := top()
			if f == nil || f.array != (r == ']') {
				return bodyContext{}
			}
			stack = stack[:len(stack)-1]
			valueDone()
		case r == ',':
			f := top()
			if f == nil || f.state != afterValue {
				return bodyContext{}
			}
			if f.array {
				f.state = expectValue
			} else {
				f.state = expectKey
				f.key = ""
			}
		case r == ':':
			f := top()
			if f == nil || f.array || f.state != expectColon {
				return bodyContext{}
			}
			f.state = expectValue
		case r == '"':
			text, end, closed := readString(runes, i+1)
			if !closed {
				return cursorContext(top(), rootDone, text, true)
			}
			i = end
			f := top()
			if f != nil && !f.array && f.state == expectKey {
				f.key = text
				f.keys[text] = struct{}{}
				f.state = expectColon
				continue
			}
			if !expectsValue() {
				return bodyContext{}
			}
			valueDone()
		default:
			text, end := readBare(runes, i)
			if end >= len(runes) {
				return cursorContext(top(), rootDone, text, false)
			}
			if !expectsValue() {
				return bodyContext{}
			}
			i = end - 1
			valueDone()
		}
	}
	return cursorContext(top(), rootDone, "", false)
}

// cursorContext converts the innermost frame into the completion context for
// a token that ends at the cursor.
func cursorContext(f *frame, rootDone bool, prefix string, quoted bool) bodyContext {
	if f == nil {
		if rootDone {
			return bodyContext{}
		}
		return bodyContext{position: positionValue, prefix: prefix, quoted: quoted}
	}

	ctx := bodyContext{prefix: prefix, quoted: quoted}
	switch {
	case !f.array && f.state == expectKey:
		ctx.position = positionKey
		ctx.path = f.path
		ctx.present = f.keys
	case !f.array && f.state == expectValue:
		ctx.position = positionValue
		ctx.path = append(append([]pathElem(nil), f.path...), pathElem{property: f.key})
		ctx.field = f.key
	case f.array && f.state == expectValue:
		ctx.position = positionValue
		ctx.path = append(append([]pathElem(nil), f.path...), pathElem{items: true})
		if n := len(f.path); n > 0 {
			ctx.field = f.path[n-1].property
		}
	default:
		return bodyContext{}
	}
	return ctx
}

// readString reads a JSON string body starting after the opening quote. It
// returns the decoded-enough text, the index of the closing quote, and
// whether the string was terminated.
func readString(runes []rune, start int) (string, int, bool) {
	var b strings.Builder
	for i := start; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			if i+1 < len(runes) {
				i++
				b.WriteRune(runes[i])
			}
		case '"':
			return b.String(), i, true
		default:
			b.WriteRune(runes[i])
		}
	}
	return b.String(), len(runes), false
}

// readBare reads an unquoted token (number, literal, or a key typed without
// quotes) and returns it with the index just past its end.
func readBare(runes []rune, start int) (string, int) {
	end := start
	for end < len(runes) && isTokenRune(runes[end]) {
		end++
	}
	if end == start {
		// Unknown punctuation: consume it so the scanner keeps moving.
		end = start + 1
	}
	return string(runes[start:end]), end
}

func isTokenRune(r rune) bool {
	if r == '_' || r == '-' || r == '.' || r == '+' {
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
