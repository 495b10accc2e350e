package errors

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	// Sampling errors
	ErrInvalidInput   = errors.New("invalid input")
	ErrModelSelection = errors.New("model selection failed")
	ErrConfiguration  = errors.New("invalid configuration")

	// Registry errors
	ErrSamplerNotFound = errors.New("sampler not found")

	// Internal errors
	ErrInternal = errors.New("internal error")
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeInvalidInput   ErrorType = "invalid_input"
	ErrorTypeModelSelection ErrorType = "model_selection"
	ErrorTypeConfiguration  ErrorType = "configuration"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeInternal       ErrorType = "internal"
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches target. Two AppErrors match on type
// and code; the package sentinels match any AppError of their category.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	if sentinel, ok := sentinelFor[e.Type]; ok {
		return target == sentinel
	}
	return false
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

var sentinelFor = map[ErrorType]error{
	ErrorTypeInvalidInput:   ErrInvalidInput,
	ErrorTypeModelSelection: ErrModelSelection,
	ErrorTypeConfiguration:  ErrConfiguration,
	ErrorTypeNotFound:       ErrSamplerNotFound,
	ErrorTypeInternal:       ErrInternal,
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		HTTPStatus: getDefaultHTTPStatus(errType),
	}
}

// WrapError wraps an existing error with application context
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		Cause:      err,
		HTTPStatus: getDefaultHTTPStatus(errType),
	}
}

// NewInvalidInputError creates an error for empty, malformed or out of
// contract observed values.
func NewInvalidInputError(code, message string) *AppError {
	return NewAppError(ErrorTypeInvalidInput, code, message)
}

// NewModelSelectionError creates a model selection error
func NewModelSelectionError(code, message string) *AppError {
	return NewAppError(ErrorTypeModelSelection, code, message)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, message string) *AppError {
	return NewAppError(ErrorTypeConfiguration, code, message)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(code, message string) *AppError {
	return NewAppError(ErrorTypeNotFound, code, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, CodeInternalError, message)
}

// HTTPStatus returns the HTTP status carried by err, or 500 when err is not
// an AppError.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return 500
}

// getDefaultHTTPStatus returns the default HTTP status for an error type
func getDefaultHTTPStatus(errType ErrorType) int {
	switch errType {
	case ErrorTypeInvalidInput, ErrorTypeConfiguration:
		return 400
	case ErrorTypeNotFound:
		return 404
	case ErrorTypeModelSelection:
		return 422
	default:
		return 500
	}
}

// ErrorResponse represents an error response for APIs
type ErrorResponse struct {
	Error     *AppError `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp string    `json:"timestamp"`
	Path      string    `json:"path,omitempty"`
}

// Error codes for different error scenarios
const (
	// Input error codes
	CodeEmptyInput       = "EMPTY_INPUT"
	CodeNegativeValue    = "NEGATIVE_VALUE"
	CodeNotInteger       = "NOT_INTEGER"
	CodeInvalidTimestamp = "INVALID_TIMESTAMP"
	CodeSizeTooLarge     = "SIZE_TOO_LARGE"
	CodeInvalidSize      = "INVALID_SIZE"
	CodeEmptyBranch      = "EMPTY_BRANCH"
	CodeRedrawsExceeded  = "REDRAWS_EXCEEDED"
	CodeInvalidPath      = "INVALID_PATH"
	CodeSupportTooLarge  = "SUPPORT_TOO_LARGE"

	// Selection error codes
	CodeNoValues = "NO_VALUES"

	// Configuration error codes
	CodeUnsupportedMode = "UNSUPPORTED_MODE"
	CodeInvalidConfig   = "INVALID_CONFIG"

	// Registry error codes
	CodeSamplerNotFound = "SAMPLER_NOT_FOUND"

	// Internal error codes
	CodeInternalError = "INTERNAL_ERROR"
)
