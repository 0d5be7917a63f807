// Package errors provides standardized error handling for the tender
// matching workflow. Every failure crossing a component boundary is
// normalized into a StandardError and converted into a view state at
// the session layer; nothing propagates as an unhandled fault.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeTransportFailure  ErrorCode = "TRANSPORT_FAILURE"
	ErrCodeServerFailure     ErrorCode = "SERVER_FAILURE"
	ErrCodeEmptyResult       ErrorCode = "EMPTY_RESULT"
	ErrCodeDispatchFailed    ErrorCode = "DISPATCH_FAILED"
	ErrCodeDispatchInFlight  ErrorCode = "DISPATCH_IN_FLIGHT"
	ErrCodeAlreadyDispatched ErrorCode = "ALREADY_DISPATCHED"

	ErrCodeUploadRejected     ErrorCode = "UPLOAD_REJECTED"
	ErrCodeBatchLimitExceeded ErrorCode = "BATCH_LIMIT_EXCEEDED"

	ErrCodeInvalidPayload   ErrorCode = "INVALID_PAYLOAD"
	ErrCodeUnknownCandidate ErrorCode = "UNKNOWN_CANDIDATE"
	ErrCodeNoSelection      ErrorCode = "NO_SELECTION"
	ErrCodeStepNotReady     ErrorCode = "STEP_NOT_READY"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the error code from any error, normalizing
// non-standard errors to an internal code.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return "INTERNAL_ERROR"
}

// IsRetryable reports whether the caller may usefully re-invoke the
// failed operation. Dispatch failures are retry-eligible;
// classification outcomes are terminal for the fetch.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTransportFailureError wraps a network-level failure reaching the
// intelligence backend. The message is the fixed user-facing string,
// the raw cause goes into Details.
func NewTransportFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailure,
		Message:   "Cannot connect to SmartTender backend. Is it running?",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewServerFailureError carries the backend's own error message for a
// reachable-but-failing collaborator.
func NewServerFailureError(message string, status int) *StandardError {
	return &StandardError{
		Code:      ErrCodeServerFailure,
		Message:   message,
		Retryable: false,
		Metadata:  map[string]interface{}{"httpStatus": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyResultError marks a successful analysis that produced no
// candidates. Not a fault, but a distinct terminal display state.
func NewEmptyResultError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyResult,
		Message:   "No candidates were found or analyzed",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDispatchFailedError creates a retry-eligible notification error.
// The message is fixed and human-readable, never the transport error.
func NewDispatchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDispatchFailed,
		Message:   "Failed to send mail.",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDispatchInFlightError rejects an overlapping send for a candidate.
func NewDispatchInFlightError(candidateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDispatchInFlight,
		Message:   "A notification for this candidate is already being sent",
		Details:   fmt.Sprintf("candidateId: %s", candidateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadyDispatchedError enforces at-most-once delivery per
// candidate per session.
func NewAlreadyDispatchedError(candidateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadyDispatched,
		Message:   "A notification was already sent to this candidate",
		Details:   fmt.Sprintf("candidateId: %s", candidateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadRejectedError wraps a transport failure during document
// submission. The step must not advance on this.
func NewUploadRejectedError(kind string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadRejected,
		Message:   fmt.Sprintf("Failed to upload %s", kind),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBatchLimitExceededError rejects CV batches above the bound.
func NewBatchLimitExceededError(count, max int) *StandardError {
	return &StandardError{
		Code:      ErrCodeBatchLimitExceeded,
		Message:   "Too many CV documents in one batch",
		Details:   fmt.Sprintf("got %d, max %d", count, max),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPayloadError marks an analyze response that failed the
// schema gate. Treated like a server failure by the session machine.
func NewInvalidPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Backend returned a malformed analysis payload",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownCandidateError guards selection against ids outside the
// roster. This is a programming error, not a user-facing state.
func NewUnknownCandidateError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownCandidate,
		Message:   "Selected candidate is not part of the roster",
		Details:   fmt.Sprintf("candidateId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoSelectionError guards dispatch preconditions.
func NewNoSelectionError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoSelection,
		Message:   "Dispatch requires a selected candidate",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStepNotReadyError rejects an advance signal whose preconditions
// (acceptance tokens) are missing.
func NewStepNotReadyError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepNotReady,
		Message:   "The workflow step is not ready to advance",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
