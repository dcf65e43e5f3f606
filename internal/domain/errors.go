package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across layers. Handlers map these to HTTP status
// codes; everything else surfaces as an internal error.
var (
	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput means the request was malformed or failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRateLimited means the client exhausted its request window.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrVerificationRejected means the human-verification check failed.
	ErrVerificationRejected = errors.New("verification rejected")
	// ErrGenerationFailed means the generation backend failed or produced
	// output that could not be used.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrInternal is an unexpected failure.
	ErrInternal = errors.New("internal error")
)

// DomainError carries a stable code, a user-safe message, and the wrapped
// cause. The cause is for logs only and never reaches a client.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the client-facing message without internal detail.
func (e *DomainError) UserMessage() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewInvalidInputError creates a validation error with a client-facing message.
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewNotFoundError creates a not-found error for a named resource.
func NewNotFoundError(resourceType, id string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, id),
		Err:     ErrNotFound,
	}
}

// NewVerificationError creates a verification-rejected error.
func NewVerificationError(message string) error {
	return &DomainError{
		Code:    "VERIFICATION_REJECTED",
		Message: message,
		Err:     ErrVerificationRejected,
	}
}

// NewGenerationError wraps a backend failure. The cause stays internal; the
// client only ever sees a generic message.
func NewGenerationError(err error) error {
	return &DomainError{
		Code:    "GENERATION_FAILED",
		Message: "graph generation failed",
		Err:     fmt.Errorf("%w: %v", ErrGenerationFailed, err),
	}
}

// NewInternalError wraps an unexpected failure without exposing detail.
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is a validation error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsVerificationRejected reports whether err is a verification failure.
func IsVerificationRejected(err error) bool {
	return errors.Is(err, ErrVerificationRejected)
}

// IsGenerationFailed reports whether err is a generation backend failure.
func IsGenerationFailed(err error) bool {
	return errors.Is(err, ErrGenerationFailed)
}
