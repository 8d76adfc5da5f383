package retry

import "errors"

// ErrPermission matches every *PermissionError via errors.Is.
var ErrPermission = errors.New("retry: permission denied or entity not found")

// PermissionError wraps a failure that retrying cannot fix. Callers should
// prompt for a different credential rather than show a generic error.
type PermissionError struct {
	Err error
}

// Error implements the error interface.
func (e *PermissionError) Error() string {
	return "permission: " + e.Err.Error()
}

// Unwrap exposes ErrPermission and the original error.
func (e *PermissionError) Unwrap() []error {
	return []error{ErrPermission, e.Err}
}

// IsPermission reports whether err is a permission failure.
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermission)
}
