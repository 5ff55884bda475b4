package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrInvalidCredentials is returned by login when the password does not match.
var ErrInvalidCredentials = NewCredentialsError("Invalid credentials")

// ValidationError represents a missing or malformed input field.
// Its message is safe to show to the client as-is.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is invalid", e.Field)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// AlreadyExistsError is returned when a uniqueness constraint rejects a write.
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// CredentialsError is returned when a password does not match the stored hash.
type CredentialsError struct {
	Message string
}

// NewCredentialsError creates a new credentials error
func NewCredentialsError(message string) *CredentialsError {
	return &CredentialsError{Message: message}
}

// Error implements the error interface
func (e *CredentialsError) Error() string {
	return e.Message
}

// InternalError wraps a store or driver failure. Its text may carry
// connection details and is never shown to clients.
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// NotificationError records an email that could not be delivered.
// It is only ever logged; request handlers never see it.
type NotificationError struct {
	Event    string
	To       string
	Attempts int
	Err      error
}

// NewNotificationError creates a new notification error
func NewNotificationError(event, to string, attempts int, err error) *NotificationError {
	return &NotificationError{
		Event:    event,
		To:       to,
		Attempts: attempts,
		Err:      err,
	}
}

// Error implements the error interface
func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification %s to %s failed after %d attempt(s): %v", e.Event, e.To, e.Attempts, e.Err)
}

// Unwrap returns the wrapped error
func (e *NotificationError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsAlreadyExists reports whether err is or wraps an AlreadyExistsError.
func IsAlreadyExists(err error) bool {
	var target *AlreadyExistsError
	return stderrors.As(err, &target)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsCredentials reports whether err is or wraps a CredentialsError.
func IsCredentials(err error) bool {
	var target *CredentialsError
	return stderrors.As(err, &target)
}

// IsInternal reports whether err is or wraps an InternalError.
func IsInternal(err error) bool {
	var target *InternalError
	return stderrors.As(err, &target)
}

// IsClientError reports whether err carries a message meant for the client.
// InternalError and untyped errors do not.
func IsClientError(err error) bool {
	if IsInternal(err) {
		return false
	}
	return IsValidation(err) || IsNotFound(err) || IsAlreadyExists(err) || IsCredentials(err)
}

// ClientMessage returns the text that may be shown to an HTTP client for err.
// Typed errors carry their own message; anything else is replaced by fallback.
func ClientMessage(err error, fallback string) string {
	if !IsClientError(err) {
		return fallback
	}
	var (
		validation *ValidationError
		notFound   *NotFoundError
		exists     *AlreadyExistsError
		creds      *CredentialsError
	)
	switch {
	case stderrors.As(err, &validation):
		return validation.Error()
	case stderrors.As(err, &notFound):
		return notFound.Error()
	case stderrors.As(err, &exists):
		return exists.Error()
	case stderrors.As(err, &creds):
		return creds.Error()
	default:
		return fallback
	}
}
