// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid configuration, periods, misaligned series, missing data
//   - Data/Resource errors (200-299): Data not found, query failures, unknown columns
//   - Indicator errors (300-399): Technical indicator calculation errors
//   - Strategy errors (400-499): Strategy configuration and runtime errors
//   - Trading errors (500-599): Order construction, sizing and submission errors
//   - Market data errors (600-699): Market data fetching and parsing errors
//   - Persistence errors (700-799): Diagnostic table export failures
//
// Usage:
//
//	err := errors.New(errors.ErrCodeInvalidConfiguration, "ema periods must differ")
//	err := errors.Newf(errors.ErrCodeInvalidPeriod, "period must be positive, got %d", period)
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to read candles", originalErr)
//
//	if errors.HasCode(err, errors.ErrCodeInsufficientData) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode of the outermost *Error in the chain.
// Returns ErrCodeUnknown if the chain holds no *Error. An InsufficientDataError
// reports ErrCodeInsufficientData.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	if IsInsufficientDataError(err) {
		return ErrCodeInsufficientData
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError is returned when a candle window is too short to
// seed an indicator.
type InsufficientDataError struct {
	Required int    // Minimum candles required
	Actual   int    // Candles available
	Symbol   string // Optional: symbol context
	Message  string
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, symbol, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  message,
	}
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, symbol, format string, args ...any) *InsufficientDataError {
	return NewInsufficientDataError(required, actual, symbol, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("[%d] %s (required %d, got %d)", ErrCodeInsufficientData, e.Message, e.Required, e.Actual)
	}

	return fmt.Sprintf("[%d] %s: %s (required %d, got %d)", ErrCodeInsufficientData, e.Symbol, e.Message, e.Required, e.Actual)
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
