package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when no viewer identity is available.
	// Fatal to the request; surfaced immediately.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrEmptyResult is returned when a feed query succeeded but produced
	// zero items. Callers should render an empty state, not an error.
	ErrEmptyResult = errors.New("feed query returned no items")
)

// InvalidQueryError reports a malformed feed query. Conflicting mode flags
// are resolved by precedence rather than rejected, so in practice this is
// rare and defensive.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid feed query: %s: %s", e.Field, e.Reason)
}

// NewInvalidQueryError creates an InvalidQueryError for the given field.
func NewInvalidQueryError(field, reason string) error {
	return &InvalidQueryError{Field: field, Reason: reason}
}

// IsInvalidQuery checks whether err is an InvalidQueryError.
func IsInvalidQuery(err error) bool {
	var iq *InvalidQueryError
	return errors.As(err, &iq)
}
