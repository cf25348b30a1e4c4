package accounts

import "errors"

var (
	// ErrValidation is returned when a required field is blank.
	ErrValidation = errors.New("validation error")

	// ErrInvalidEmail is returned when an email has no "@".
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrDuplicateEmail is returned when an account with the email already exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// secret so that callers cannot tell which check failed.
	ErrInvalidCredentials = errors.New("invalid email or secret")
)
