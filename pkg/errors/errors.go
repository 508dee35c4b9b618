package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies the failures the search pipeline can produce
type ErrorType string

const (
	// ErrorTypeAuthTimeout means the user never completed the interactive login
	ErrorTypeAuthTimeout ErrorType = "auth_timeout"
	// ErrorTypeSessionInvalid means the stored session was missing, corrupt, or rejected
	ErrorTypeSessionInvalid ErrorType = "session_invalid"
	// ErrorTypePageLoadTimeout means the search results never became visible in time
	ErrorTypePageLoadTimeout ErrorType = "page_load_timeout"
	// ErrorTypeNoResults means no result tiles were collected, so there is nothing to crop
	ErrorTypeNoResults ErrorType = "no_results"
	// ErrorTypeNavigation covers driver-level navigation failures
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeUnknown covers everything else
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents a pipeline error with type and platform information
type Error struct {
	Type     ErrorType
	Platform string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Platform != "" {
		return fmt.Sprintf("%s error (%s): %s", e.Type, e.Platform, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without a wrapped cause
func New(t ErrorType, platform, message string) *Error {
	return &Error{Type: t, Platform: platform, Message: message}
}

// Wrap creates a typed error around an underlying cause
func Wrap(t ErrorType, platform, message string, err error) *Error {
	return &Error{Type: t, Platform: platform, Message: message, Err: err}
}

// TypeOf returns the error type of err, or ErrorTypeUnknown when err carries none
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsAuthTimeout reports whether err is an authentication timeout
func IsAuthTimeout(err error) bool {
	return TypeOf(err) == ErrorTypeAuthTimeout
}

// IsSessionInvalid reports whether err indicates an unusable stored session
func IsSessionInvalid(err error) bool {
	return TypeOf(err) == ErrorTypeSessionInvalid
}

// IsPageLoadTimeout reports whether err is a result-page load timeout
func IsPageLoadTimeout(err error) bool {
	return TypeOf(err) == ErrorTypePageLoadTimeout
}

// IsNoResults reports whether err means zero result tiles were collected
func IsNoResults(err error) bool {
	return TypeOf(err) == ErrorTypeNoResults
}

// IsRecoverable reports whether an error type is handled inside the pipeline
// rather than surfaced to the caller. A session_invalid falls through to the
// interactive login; a page_load_timeout still attempts the screenshot.
func IsRecoverable(t ErrorType) bool {
	switch t {
	case ErrorTypeSessionInvalid, ErrorTypePageLoadTimeout:
		return true
	case ErrorTypeAuthTimeout, ErrorTypeNoResults, ErrorTypeNavigation:
		return false
	default:
		return false
	}
}
