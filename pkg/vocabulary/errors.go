package vocabulary

import (
	"errors"
	"fmt"
)

var (
	// ErrFrozen indicates a registration attempt after Freeze.
	ErrFrozen = errors.New("vocabulary registry is frozen")

	// ErrDuplicateCategory indicates a category key registered twice.
	ErrDuplicateCategory = errors.New("duplicate category")

	// ErrUnknownCategory indicates a reference to an unregistered category.
	ErrUnknownCategory = errors.New("unknown category")
)

// ContributorError wraps a failure reported by a contributor.
type ContributorError struct {
	Contributor string
	Cause       error
}

// Error returns the error message.
func (e *ContributorError) Error() string {
	return fmt.Sprintf("vocabulary contributor %q: %v", e.Contributor, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ContributorError) Unwrap() error {
	return e.Cause
}
