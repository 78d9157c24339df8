package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeTransport  ErrorType = "transport"
	ErrorTypeRejected   ErrorType = "rejected"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// User-facing messages shown by every view.
const (
	MsgUnsupportedFormat = "Only PNG (.png) images can be uploaded"
	MsgAnalysisError     = "An error occurred during analysis"
	MsgAnalysisFailed    = "Analysis failed"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewUnsupportedFormatError is the validation error for anything that is not a PNG.
func NewUnsupportedFormatError(details string) *AppError {
	err := NewValidationError(MsgUnsupportedFormat, nil)
	err.Details = details
	return err
}

// NewTransportError creates a new transport error. The message shown to the
// user is always the generic one; the cause carries the detail.
func NewTransportError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransport,
		Message:    MsgAnalysisError,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    MsgAnalysisError,
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// NewRejectedError creates an error for an analysis the remote service
// explicitly reported as failed. An empty message falls back to the generic one.
func NewRejectedError(message string) *AppError {
	if message == "" {
		message = MsgAnalysisFailed
	}
	return &AppError{
		Type:       ErrorTypeRejected,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
		Cause:      cause,
	}
}

// IsType checks if the error (or anything it wraps) is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsTransport reports whether err is a transport failure, timeouts included
func IsTransport(err error) bool {
	return IsType(err, ErrorTypeTransport) || IsType(err, ErrorTypeTimeout)
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// UserMessage returns the text a view should display for err.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return MsgAnalysisError
}
