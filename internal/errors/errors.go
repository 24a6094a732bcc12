package errors

import (
	"errors"
)

// UserError represents an error with both technical and user-friendly messages
type UserError struct {
	Err       error
	UserMsg   string
	Retryable bool
}

func (e *UserError) Error() string {
	return e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Predefined errors
var (
	ErrNotAuthorized = &UserError{
		Err:       errors.New("user not on allowlist"),
		UserMsg:   "You are not authorized to approve or deny requests.",
		Retryable: false,
	}

	ErrAdminOnly = &UserError{
		Err:       errors.New("admin privileges required"),
		UserMsg:   "Only admins can use this command.",
		Retryable: false,
	}

	ErrPrivateOnly = &UserError{
		Err:       errors.New("command restricted to private chat"),
		UserMsg:   "For security, please send this command as a private message to the bot.",
		Retryable: false,
	}

	ErrBadPassword = &UserError{
		Err:       errors.New("password verification failed"),
		UserMsg:   "Incorrect password.",
		Retryable: true,
	}

	ErrNoCredential = &UserError{
		Err:       errors.New("no admin password hash configured"),
		UserMsg:   "Admin password has not been set by the administrator.",
		Retryable: false,
	}

	ErrRequestNotPending = &UserError{
		Err:       errors.New("request not pending"),
		UserMsg:   "This request is no longer pending.",
		Retryable: false,
	}

	ErrOverseerrUnavailable = &UserError{
		Err:       errors.New("overseerr unavailable"),
		UserMsg:   "Could not reach Overseerr. Please try again later.",
		Retryable: true,
	}
)

// Wrap wraps a technical error with a user message
func Wrap(err error, userMsg string, retryable bool) *UserError {
	return &UserError{
		Err:       err,
		UserMsg:   userMsg,
		Retryable: retryable,
	}
}

// GetUserMessage extracts user-friendly message from error
func GetUserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMsg
	}
	// Default message for unexpected errors
	return "An unexpected error occurred. Please try again later."
}

// IsRetryable checks if an error can be retried
func IsRetryable(err error) bool {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Retryable
	}
	return false
}
