// internal/common/errors/handler.go
package errors

import "time"

// ViewCategory is the presentation-layer bucket an error collapses
// into. The session machine turns these into terminal view states.
type ViewCategory string

const (
	CategoryTransport ViewCategory = "transport" // recoverable error view, "start over"
	CategoryServer    ViewCategory = "server"    // recoverable error view, "start over"
	CategoryEmpty     ViewCategory = "empty"     // guidance view, "return to upload"
	CategoryDispatch  ViewCategory = "dispatch"  // inline retry-eligible status
	CategoryInternal  ViewCategory = "internal"
)

// Handler converts component errors into presentation categories and
// logs them once at the boundary.
type Handler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle normalizes err, logs it and returns its category together
// with the user-facing message.
func (h *Handler) Handle(err error) (ViewCategory, string) {
	stdErr := h.normalizeError(err)
	category := Categorize(stdErr)

	h.logger.Error("operation failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"category":  string(category),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})

	return category, stdErr.Message
}

// normalizeError ensures we always have a StandardError.
func (h *Handler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Categorize maps an error code to its presentation bucket.
func Categorize(err error) ViewCategory {
	switch CodeOf(err) {
	case ErrCodeTransportFailure, ErrCodeUploadRejected:
		return CategoryTransport
	case ErrCodeServerFailure, ErrCodeInvalidPayload:
		return CategoryServer
	case ErrCodeEmptyResult:
		return CategoryEmpty
	case ErrCodeDispatchFailed, ErrCodeDispatchInFlight, ErrCodeAlreadyDispatched:
		return CategoryDispatch
	default:
		return CategoryInternal
	}
}
