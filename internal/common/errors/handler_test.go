// internal/common/errors/handler_test.go
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type captureLogger struct {
	fields map[string]interface{}
}

func (l *captureLogger) Error(_ string, fields map[string]interface{}) {
	l.fields = fields
}

// ==========================
// Categorization Tests
// ==========================

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ViewCategory
	}{
		{"transport failure", NewTransportFailureError(fmt.Errorf("dial refused")), CategoryTransport},
		{"upload rejected", NewUploadRejectedError("tender", fmt.Errorf("dial refused")), CategoryTransport},
		{"server failure", NewServerFailureError("Server error: 500", 500), CategoryServer},
		{"invalid payload", NewInvalidPayloadError("missing id"), CategoryServer},
		{"empty result", NewEmptyResultError(), CategoryEmpty},
		{"dispatch failed", NewDispatchFailedError(fmt.Errorf("timeout")), CategoryDispatch},
		{"dispatch in flight", NewDispatchInFlightError("c1"), CategoryDispatch},
		{"already dispatched", NewAlreadyDispatchedError("c1"), CategoryDispatch},
		{"plain error", fmt.Errorf("boom"), CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.err))
		})
	}
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Handle(t *testing.T) {
	log := &captureLogger{}
	handler := NewHandler(log)

	category, message := handler.Handle(NewTransportFailureError(fmt.Errorf("dial refused")))

	assert.Equal(t, CategoryTransport, category)
	assert.Equal(t, "Cannot connect to SmartTender backend. Is it running?", message)
	assert.Equal(t, string(ErrCodeTransportFailure), log.fields["errorCode"])
	assert.Equal(t, "dial refused", log.fields["details"])
}

func TestHandler_NormalizesPlainErrors(t *testing.T) {
	handler := NewHandler(&captureLogger{})

	category, message := handler.Handle(fmt.Errorf("boom"))

	assert.Equal(t, CategoryInternal, category)
	assert.Equal(t, "Unexpected error", message)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewDispatchFailedError(fmt.Errorf("timeout"))))
	assert.False(t, IsRetryable(NewServerFailureError("Server error: 500", 500)))
	assert.False(t, IsRetryable(fmt.Errorf("boom")))
}
