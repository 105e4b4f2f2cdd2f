// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client/service/repo layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates a missing or unknown caller credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates the identity service could not be reached.
	ErrUnavailable = errors.New("service unavailable")

	// ErrInvalidPhone indicates the phone number is not 11 digits after normalization.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrInvalidNickname indicates an empty or whitespace-only nickname.
	ErrInvalidNickname = errors.New("invalid nickname")

	// ErrInvalidUsername indicates the username is outside [a-z0-9_]{3,20}.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrCodeRejected indicates the verification code was refused by the service.
	ErrCodeRejected = errors.New("invalid or expired code")

	// ErrTooManyAttempts indicates the code was invalidated after repeated failures.
	ErrTooManyAttempts = errors.New("too many failed attempts")

	// ErrBadTransition indicates an operation not allowed in the current auth step.
	ErrBadTransition = errors.New("operation not allowed in current step")

	// ErrSelfFriend indicates a friendship request targeting the caller itself
	// or a missing target id.
	ErrSelfFriend = errors.New("invalid friend id")
)

// ServiceError carries a non-success message returned by the identity
// service. The message is surfaced to the user verbatim.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string { return e.Message }
