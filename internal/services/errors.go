package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a workflow failure for callers and the HTTP layer
type ErrorKind string

const (
	KindInvalidState     ErrorKind = "invalid_state"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindValidation       ErrorKind = "validation"
	KindConflict         ErrorKind = "conflict"
	KindNotFound         ErrorKind = "not_found"
)

// WorkflowError is the typed error returned by every service operation for
// an expected domain outcome. Infrastructure failures are returned as plain
// wrapped errors.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
}

func (e *WorkflowError) Error() string {
	return e.Message
}

// Is matches any WorkflowError of the same kind, so errors.Is(err,
// ErrConflict) works regardless of the message.
func (e *WorkflowError) Is(target error) bool {
	t, ok := target.(*WorkflowError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidState     = &WorkflowError{Kind: KindInvalidState, Message: "invalid state"}
	ErrPermissionDenied = &WorkflowError{Kind: KindPermissionDenied, Message: "permission denied"}
	ErrValidation       = &WorkflowError{Kind: KindValidation, Message: "validation failed"}
	ErrConflict         = &WorkflowError{Kind: KindConflict, Message: "this record changed, please reload"}
	ErrNotFound         = &WorkflowError{Kind: KindNotFound, Message: "not found"}
)

func newError(kind ErrorKind, format string, args ...any) error {
	return &WorkflowError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidState(format string, args ...any) error {
	return newError(KindInvalidState, format, args...)
}

func permissionDenied(format string, args ...any) error {
	return newError(KindPermissionDenied, format, args...)
}

func validationError(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

func notFoundError(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func conflictError() error {
	return &WorkflowError{Kind: KindConflict, Message: ErrConflict.Message}
}

// KindOf returns the kind of a WorkflowError anywhere in err's chain, or ""
func KindOf(err error) ErrorKind {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}
