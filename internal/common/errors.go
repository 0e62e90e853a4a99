package common

import "errors"

var (

	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service specific errors
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// session token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ServiceError is a failure with a fixed, user-facing message. Kind is one of
// the sentinels above, so callers match it with errors.Is.
type ServiceError struct {
	Kind    error
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

// NewServiceError builds a ServiceError of the given kind.
func NewServiceError(kind error, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message}
}
