// Package errors provides coded errors for the trend engine.
//
// Three kinds matter to callers of the engine:
//   - DataUnavailable: a price or indicator series could not be read, or was
//     shorter than needed. The tick is skipped.
//   - OrderRejected: the order gateway refused an open, close or modify.
//   - ConfigurationInvalid: parameters failed validation at start-up.
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodeDataUnavailable, "series %s too short", key)
//	if errors.HasCode(err, errors.ErrCodeDataUnavailable) { ... }
package errors

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeConfigurationInvalid ErrorCode = 100
	ErrCodeInvalidOrder         ErrorCode = 101
	ErrCodeInvalidStopLoss      ErrorCode = 102
	ErrCodeInvalidTakeProfit    ErrorCode = 103

	// Data errors (200-299)
	ErrCodeDataUnavailable ErrorCode = 200
	ErrCodeFeedFailed      ErrorCode = 201

	// Trading errors (500-599)
	ErrCodeOrderRejected    ErrorCode = 500
	ErrCodePositionNotFound ErrorCode = 501
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:              "unknown",
	ErrCodeConfigurationInvalid: "configuration_invalid",
	ErrCodeInvalidOrder:         "invalid_order",
	ErrCodeInvalidStopLoss:      "invalid_stop_loss",
	ErrCodeInvalidTakeProfit:    "invalid_take_profit",
	ErrCodeDataUnavailable:      "data_unavailable",
	ErrCodeFeedFailed:           "feed_failed",
	ErrCodeOrderRejected:        "order_rejected",
	ErrCodePositionNotFound:     "position_not_found",
}

func (c ErrorCode) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("code_%d", int(c))
}

// Error is a structured error with a code, a message and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the outermost *Error in err's chain, or
// ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}
