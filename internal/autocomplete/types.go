package autocomplete

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOperation is returned when no operation matches the requested key.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrUnresolvedRef is returned by New when a schema reference has no target.
	ErrUnresolvedRef = errors.New("unresolved schema reference")
)

// RefError names the reference that failed to resolve and where it was found.
type RefError struct {
	Ref      string
	Location string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("%s %q at %s", ErrUnresolvedRef.Error(), e.Ref, e.Location)
}

func (e *RefError) Unwrap() error {
	return ErrUnresolvedRef
}

type position int

const (
	positionNone position = iota
	positionKey
	positionValue
)

// pathElem is one step from the body root to the container holding the cursor.
// An empty property with items set means "element of an array".
type pathElem struct {
	property string
	items    bool
}

// bodyContext describes where the cursor sits in the partial request body.
type bodyContext struct {
	position position
	path     []pathElem
	// prefix is the fragment typed so far for the current token, without the
	// opening quote.
	prefix string
	// quoted reports that the cursor is inside an unterminated string.
	quoted bool
	// present holds keys already written in the enclosing object.
	present map[string]struct{}
	// field is the property whose value is being typed, if any.
	field string
}
