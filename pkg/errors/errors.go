package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeHostUnreachable indicates a remote channel could not be opened.
	// Recovered at the cluster collector; the node is marked failed and the
	// run continues.
	ErrCodeHostUnreachable ErrorCode = "HOST_UNREACHABLE"
	// ErrCodeRemoteCall indicates a remote operation failed after the channel
	// was established. Surfaced as a node build failure.
	ErrCodeRemoteCall ErrorCode = "REMOTE_CALL"
	// ErrCodeTimeout indicates a remote operation exceeded its time limit.
	// Treated identically to a channel failure for the affected node.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeContentCapture indicates a file content read failed. Recorded as
	// data on the stat record, never propagated as a failure.
	ErrCodeContentCapture ErrorCode = "CONTENT_CAPTURE"
	// ErrCodeAllNodesUnreachable indicates every node in the inventory failed
	// to connect. Fatal; no checks can run without collected metadata.
	ErrCodeAllNodesUnreachable ErrorCode = "ALL_NODES_UNREACHABLE"
	// ErrCodeRunCancelled indicates the collection run was cancelled before
	// completion, by operator interrupt or run timeout. Distinct from node
	// reachability so an interrupted run is never misread as a dead cluster.
	ErrCodeRunCancelled ErrorCode = "RUN_CANCELLED"
	// ErrCodeInvalidInventory indicates the node inventory is malformed.
	ErrCodeInvalidInventory ErrorCode = "INVALID_INVENTORY"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// HasCode reports whether err, or any error in its chain, is a StructuredError
// carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code == code
	}
	return false
}
