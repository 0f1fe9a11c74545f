package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
	"github.com/hrygo/nlcal/plugin/ai/consensus"
	"github.com/hrygo/nlcal/plugin/ai/schedule"
)

// ErrorCode represents a specific error type for calendar operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidCalendarDate indicates a symbolic date that names no real day.
	ErrCodeInvalidCalendarDate ErrorCode = "INVALID_CALENDAR_DATE"
	// ErrCodeOracleExhausted indicates every model call failed.
	ErrCodeOracleExhausted ErrorCode = "ORACLE_EXHAUSTED"
	// ErrCodeLLMUnavailable indicates no model call got an answer at all.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeStoreFailure indicates the calendar store failed.
	ErrCodeStoreFailure ErrorCode = "STORE_FAILURE"
	// ErrCodeNotFound indicates the requested entry does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an unclassified failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// AIError represents a structured error for calendar operations.
type AIError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AIError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *AIError) WithContext(key string, value any) *AIError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// HTTPStatus maps the error code to an HTTP status.
func (e *AIError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case ErrCodeInvalidCalendarDate:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeOracleExhausted:
		return http.StatusBadGateway
	case ErrCodeLLMUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeContextCanceled:
		// nginx's "client closed request".
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *AIError {
	return &AIError{Code: ErrCodeInvalidArgument, Message: msg}
}

// InvalidCalendarDate creates an invalid calendar date error.
func InvalidCalendarDate(cause error) *AIError {
	return &AIError{Code: ErrCodeInvalidCalendarDate, Message: "date does not exist", Cause: cause}
}

// OracleExhausted creates an oracle exhausted error.
func OracleExhausted(cause error) *AIError {
	return &AIError{Code: ErrCodeOracleExhausted, Message: "extraction failed", Cause: cause}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(cause error) *AIError {
	return &AIError{Code: ErrCodeLLMUnavailable, Message: "language model unavailable", Cause: cause}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *AIError {
	return &AIError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *AIError {
	return &AIError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(cause error) *AIError {
	return &AIError{Code: ErrCodeTimeout, Message: "operation timed out", Cause: cause}
}

// StoreFailure creates a store failure error.
func StoreFailure(msg string, cause error) *AIError {
	return &AIError{Code: ErrCodeStoreFailure, Message: msg, Cause: cause}
}

// NotFound creates a not found error.
func NotFound(msg string) *AIError {
	return &AIError{Code: ErrCodeNotFound, Message: msg}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *AIError {
	return &AIError{Code: code, Message: msg, Cause: cause}
}

// FromError classifies err. An AIError anywhere in the chain is returned
// as is; known domain errors get their code; anything else is INTERNAL.
func FromError(err error) *AIError {
	if err == nil {
		return nil
	}

	var aiErr *AIError
	if stderrors.As(err, &aiErr) {
		return aiErr
	}

	switch {
	case stderrors.Is(err, schedule.ErrEmptyInput),
		stderrors.Is(err, schedule.ErrInputTooLong),
		stderrors.Is(err, aitime.ErrUnknownKind),
		stderrors.Is(err, aitime.ErrInvalidWeekday):
		return &AIError{Code: ErrCodeInvalidArgument, Message: "invalid request", Cause: err}
	case stderrors.Is(err, aitime.ErrInvalidCalendarDate):
		return InvalidCalendarDate(err)
	case stderrors.Is(err, consensus.ErrOracleUnavailable):
		return LLMUnavailable(err)
	case stderrors.Is(err, consensus.ErrOracleExhausted):
		return OracleExhausted(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return Timeout(err)
	case stderrors.Is(err, context.Canceled):
		return ContextCanceled(err)
	default:
		return &AIError{Code: ErrCodeInternal, Message: "internal error", Cause: err}
	}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var aiErr *AIError
	if stderrors.As(err, &aiErr) {
		return aiErr.Code == code
	}
	return false
}
