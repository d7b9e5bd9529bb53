package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a structurally invalid draft or registration.
// Nothing is mutated and the caller may correct the input and retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports an operation attempted without a session, or
// on behalf of a team the session is not authenticated as.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

func Authorizationf(format string, args ...any) error {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

// ConfirmationError reports a failed counter-confirmation from the away
// team. The draft stays open and the confirmation may be retried.
type ConfirmationError struct {
	Reason string
}

func (e *ConfirmationError) Error() string {
	return e.Reason
}

func Confirmationf(format string, args ...any) error {
	return &ConfirmationError{Reason: fmt.Sprintf(format, args...)}
}
