package errors

import (
	"fmt"
)

// ErrorCode represents a specific failure class of a chat turn.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeStorageFailed indicates the conversation store could not be read or written.
	ErrCodeStorageFailed ErrorCode = "STORAGE_FAILED"
	// ErrCodeLLMUnavailable indicates the model invocation failed.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// ChatError represents a structured error for chat operations.
type ChatError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ChatError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *ChatError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ChatError {
	return &ChatError{Code: ErrCodeInvalidArgument, Message: msg}
}

// StorageFailed creates a storage failure error.
func StorageFailed(msg string, cause error) *ChatError {
	return &ChatError{Code: ErrCodeStorageFailed, Message: msg, Cause: cause}
}

// LLMUnavailable creates a model invocation error.
func LLMUnavailable(msg string, cause error) *ChatError {
	return &ChatError{Code: ErrCodeLLMUnavailable, Message: msg, Cause: cause}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *ChatError {
	return &ChatError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string) *ChatError {
	return &ChatError{Code: ErrCodeTimeout, Message: msg}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *ChatError {
	return &ChatError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if chatErr, ok := err.(*ChatError); ok {
		return chatErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ChatError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if chatErr, ok := err.(*ChatError); ok {
		return chatErr.Code
	}
	return defaultCode
}
