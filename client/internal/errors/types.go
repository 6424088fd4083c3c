// Package errors provides the typed error taxonomy for the client SDK.
// Every error type matches ErrMeshcapade so callers can catch all SDK
// failures with a single errors.Is check.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrMeshcapade is the base category shared by all SDK errors.
var ErrMeshcapade = errors.New("meshcapade")

// ValidationError reports malformed local input. It is always returned
// before any network call is made.
type ValidationError struct {
	Field string // offending field, empty when the whole request is at fault
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrMeshcapade }

// NewValidationError wraps err as a ValidationError for field.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// Invalidf builds a ValidationError from a format string.
func Invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// AuthenticationError reports a credential rejected by the server (401/403)
// or a client constructed without one.
type AuthenticationError struct {
	StatusCode int // 0 when raised locally
	Message    string
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("authentication failed: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return "authentication failed: " + e.Message
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrMeshcapade }

// ResourceNotFoundError reports that the referenced resource does not exist.
type ResourceNotFoundError struct {
	Resource string // request URL or avatar id
	Message  string
}

func (e *ResourceNotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("resource not found: %s: %s", e.Resource, e.Message)
	}
	return "resource not found: " + e.Resource
}

func (e *ResourceNotFoundError) Is(target error) bool { return target == ErrMeshcapade }

// APIError is any other non-success outcome: a non-2xx response, a network
// failure (StatusCode 0), an undecodable body, or an avatar whose processing
// ended in a failed state.
type APIError struct {
	StatusCode int
	Message    string
	Body       string // truncated response body
	State      string // avatar processing state, set for failed processing
	Cause      error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.StatusCode > 0 {
		msg = http.StatusText(e.StatusCode)
	}
	switch {
	case e.StatusCode > 0 && e.Cause != nil:
		return fmt.Sprintf("api error: HTTP %d: %s: %v", e.StatusCode, msg, e.Cause)
	case e.StatusCode > 0:
		return fmt.Sprintf("api error: HTTP %d: %s", e.StatusCode, msg)
	case e.Cause != nil:
		return fmt.Sprintf("api error: %s: %v", msg, e.Cause)
	default:
		return "api error: " + msg
	}
}

func (e *APIError) Unwrap() error { return e.Cause }

func (e *APIError) Is(target error) bool { return target == ErrMeshcapade }

// TimeoutError reports that the poll loop ran out of attempts before the
// avatar reached a terminal state.
type TimeoutError struct {
	AvatarID string
	Attempts int
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("avatar %s not ready after %d attempts (%s)", e.AvatarID, e.Attempts, e.Elapsed.Round(time.Millisecond))
}

func (e *TimeoutError) Is(target error) bool { return target == ErrMeshcapade }

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAuthentication reports whether err is or wraps an *AuthenticationError.
func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a *ResourceNotFoundError.
func IsNotFound(err error) bool {
	var target *ResourceNotFoundError
	return errors.As(err, &target)
}

// IsAPI reports whether err is or wraps an *APIError.
func IsAPI(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}

// IsTimeout reports whether err is or wraps a *TimeoutError.
func IsTimeout(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}
