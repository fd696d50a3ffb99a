package engine

import (
	"errors"
	"fmt"
)

// UnknownAnchorError reports a constraint endpoint that does not
// resolve against the live shape collection: either the shape is gone
// or the key is not in that shape's anchor catalog.
//
// Only structural misuse surfaces this way — it is returned when a
// caller adds a constraint with a bad reference. During re-enforcement
// a dangling reference degrades to a skipped constraint instead.
type UnknownAnchorError struct {
	Shape string
	Key   string
}

func (e *UnknownAnchorError) Error() string {
	return fmt.Sprintf("unknown anchor %s.%s", e.Shape, e.Key)
}

// IsUnknownAnchor returns true if err is an UnknownAnchorError.
// Uses errors.As to handle wrapped errors.
func IsUnknownAnchor(err error) bool {
	var ua *UnknownAnchorError
	return errors.As(err, &ua)
}

// ErrConstraintNotFound is returned by RemoveConstraint for an id that
// is not in the stored list.
var ErrConstraintNotFound = errors.New("constraint not found")
