package targeting

import "fmt"

// DecodeError records why a stored condition set is corrupt.
type DecodeError struct {
	Cause error
}

// Error returns the error message.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("corrupt condition set: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}
