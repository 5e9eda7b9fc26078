// Package editor implements the collaborative editing engine: document
// versioning, operation application over a hierarchical JSON-path data
// model, operational transformation of concurrent operations, exclusive
// path locks, and per-client edit sessions.
//
// All state is in-memory. Durable retention of documents and operation
// logs is the responsibility of the hosting application.
package editor

import (
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound ErrorCode = iota + 1

	// ErrLocked indicates the operation path is currently held by another user.
	ErrLocked

	// ErrPath indicates the operation path attempts to descend through a
	// scalar value that cannot be traversed.
	ErrPath

	// ErrMutate indicates content mutation failed for a reason other than
	// path resolution (e.g. malformed value). The document is untouched.
	ErrMutate
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrLocked:
		return "Locked"
	case ErrPath:
		return "PathError"
	case ErrMutate:
		return "MutateError"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// EditError represents an editing engine error with an error code.
//
// Exceptions cross no component boundary: every fallible operation in this
// package returns an *EditError (or nil), and callers branch on Code.
type EditError struct {
	Code    ErrorCode
	Message string

	// Path is the operation path involved, when applicable.
	Path string

	// HeldBy is the owning user for Locked errors.
	HeldBy string
}

// Error implements the error interface.
func (e *EditError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from an error, or 0 if the error is not an
// *EditError.
func CodeOf(err error) ErrorCode {
	if ee, ok := err.(*EditError); ok {
		return ee.Code
	}
	return 0
}

// NewNotFoundError creates a NotFound error for a missing document.
func NewNotFoundError(documentID string) *EditError {
	return &EditError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("document %q not found", documentID),
	}
}

// NewLockedError creates a Locked error naming the current holder.
func NewLockedError(path, heldBy string) *EditError {
	return &EditError{
		Code:    ErrLocked,
		Message: fmt.Sprintf("path locked by %q", heldBy),
		Path:    path,
		HeldBy:  heldBy,
	}
}

// NewPathError creates a PathError for an untraversable path segment.
func NewPathError(path, segment string) *EditError {
	return &EditError{
		Code:    ErrPath,
		Message: fmt.Sprintf("cannot traverse segment %q", segment),
		Path:    path,
	}
}

// NewMutateError creates a MutateError.
func NewMutateError(path, message string) *EditError {
	return &EditError{
		Code:    ErrMutate,
		Message: message,
		Path:    path,
	}
}

// IsNotFound reports whether err is an EditError with code NotFound.
func IsNotFound(err error) bool { return CodeOf(err) == ErrNotFound }

// IsLocked reports whether err is an EditError with code Locked.
func IsLocked(err error) bool { return CodeOf(err) == ErrLocked }

// IsPathError reports whether err is an EditError with code PathError.
func IsPathError(err error) bool { return CodeOf(err) == ErrPath }

// IsMutateError reports whether err is an EditError with code MutateError.
func IsMutateError(err error) bool { return CodeOf(err) == ErrMutate }
