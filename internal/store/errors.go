package store

import "fmt"

// Error is a typed store error with a stable code.
type Error struct {
	Code    string // Machine-readable code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes sentinel comparison work through errors.Is by matching codes.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors.
//
// ErrNotFound covers every absence condition (unknown book, unknown chapter,
// no neighbor at a boundary); callers treat it as a neutral empty result.
// The snapshot errors are different in kind: they indicate a broken
// installation with no recovery path and must be surfaced as fatal.
var (
	ErrNotFound = &Error{
		Code:    "NOT_FOUND",
		Message: "record not found",
	}

	ErrAlreadyExists = &Error{
		Code:    "ALREADY_EXISTS",
		Message: "record already exists",
	}

	ErrInvalidInput = &Error{
		Code:    "INVALID_INPUT",
		Message: "invalid input",
	}

	ErrSnapshotMissing = &Error{
		Code:    "SNAPSHOT_MISSING",
		Message: "bundled database snapshot is missing",
	}

	ErrSnapshotCorrupt = &Error{
		Code:    "SNAPSHOT_CORRUPT",
		Message: "bundled database snapshot is not a valid SQLite database",
	}
)
