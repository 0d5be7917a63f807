// internal/dispatch/dispatcher_test.go
package dispatch

import (
	"context"
	"fmt"
	"testing"

	"smarttender-engine/internal/common/errors"
	"smarttender-engine/internal/common/logger"
	"smarttender-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSender records the plans it receives and fails on demand.
type stubSender struct {
	plans []Plan
	err   error
}

func (s *stubSender) Send(_ context.Context, plan Plan) error {
	s.plans = append(s.plans, plan)
	return s.err
}

func newTestDispatcher(sender Sender) *Dispatcher {
	cfg := &Config{
		GateScore: 40,
		Templates: testTemplates,
	}
	return NewDispatcher(cfg, sender, NewMemoryLedger(), logger.NewNoOpLogger())
}

func dispatchCandidate() *models.CandidateResult {
	return &models.CandidateResult{
		ID:    "c1",
		Score: 72,
		Profile: models.CandidateProfile{
			Name:  "Jordan Doe",
			Email: "jordan@example.com",
		},
	}
}

// ==========================
// Dispatch Outcome Tests
// ==========================

func TestDispatch_Success(t *testing.T) {
	sender := &stubSender{}
	dispatcher := newTestDispatcher(sender)

	record, err := dispatcher.Dispatch(context.Background(), "session-a", dispatchCandidate())

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.DispatchSent, record.Status)
	assert.Equal(t, "Mail sent successfully!", record.Message)
	assert.NotEmpty(t, record.NotificationID)
	assert.NotEmpty(t, record.SentAt)
	assert.Equal(t, "c1", record.CandidateID)

	require.Len(t, sender.plans, 1)
	assert.Equal(t, VariantValidation, sender.plans[0].Variant)
	assert.Equal(t, "jordan@example.com", sender.plans[0].Recipient)
}

func TestDispatch_SendFailure(t *testing.T) {
	sender := &stubSender{err: fmt.Errorf("connection refused")}
	dispatcher := newTestDispatcher(sender)

	record, err := dispatcher.Dispatch(context.Background(), "session-a", dispatchCandidate())

	require.NoError(t, err, "send failures surface as a failed record, not an error")
	require.NotNil(t, record)
	assert.Equal(t, models.DispatchFailed, record.Status)
	assert.Equal(t, "Failed to send mail.", record.Message)
	assert.Empty(t, record.NotificationID)
}

func TestDispatch_NilCandidate(t *testing.T) {
	sender := &stubSender{}
	dispatcher := newTestDispatcher(sender)

	record, err := dispatcher.Dispatch(context.Background(), "session-a", nil)

	assert.Nil(t, record)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNoSelection, errors.CodeOf(err))
	assert.Empty(t, sender.plans, "the provider must never be contacted without a selection")
}

// ==========================
// At-Most-Once Tests
// ==========================

func TestDispatch_AlreadySent(t *testing.T) {
	sender := &stubSender{}
	dispatcher := newTestDispatcher(sender)
	ctx := context.Background()

	_, err := dispatcher.Dispatch(ctx, "session-a", dispatchCandidate())
	require.NoError(t, err)

	record, err := dispatcher.Dispatch(ctx, "session-a", dispatchCandidate())

	assert.Nil(t, record)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlreadyDispatched, errors.CodeOf(err))
	assert.Len(t, sender.plans, 1, "a sent candidate must not be dispatched again")
}

func TestDispatch_FailedRecordAllowsRetry(t *testing.T) {
	sender := &stubSender{err: fmt.Errorf("connection refused")}
	dispatcher := newTestDispatcher(sender)
	ctx := context.Background()

	record, err := dispatcher.Dispatch(ctx, "session-a", dispatchCandidate())
	require.NoError(t, err)
	require.Equal(t, models.DispatchFailed, record.Status)

	sender.err = nil
	record, err = dispatcher.Dispatch(ctx, "session-a", dispatchCandidate())

	require.NoError(t, err)
	assert.Equal(t, models.DispatchSent, record.Status)
	assert.Len(t, sender.plans, 2)
}

func TestDispatch_InFlightRecordBlocks(t *testing.T) {
	sender := &stubSender{}
	ledger := NewMemoryLedger()
	dispatcher := NewDispatcher(&Config{GateScore: 40, Templates: testTemplates}, sender, ledger, logger.NewNoOpLogger())
	ctx := context.Background()

	require.NoError(t, ledger.Put(ctx, "session-a", models.DispatchRecord{
		CandidateID: "c1",
		Status:      models.DispatchSending,
	}))

	record, err := dispatcher.Dispatch(ctx, "session-a", dispatchCandidate())

	assert.Nil(t, record)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDispatchInFlight, errors.CodeOf(err))
	assert.Empty(t, sender.plans)
}

func TestDispatch_NewSessionStartsFresh(t *testing.T) {
	sender := &stubSender{}
	dispatcher := newTestDispatcher(sender)
	ctx := context.Background()

	_, err := dispatcher.Dispatch(ctx, "session-a", dispatchCandidate())
	require.NoError(t, err)

	record, err := dispatcher.Dispatch(ctx, "session-b", dispatchCandidate())

	require.NoError(t, err)
	assert.Equal(t, models.DispatchSent, record.Status)
	assert.Len(t, sender.plans, 2, "a rotated session carries no prior dedup state")
}

// ==========================
// Candidate Binding Tests
// ==========================

func TestDispatch_RecordBoundToIssuingCandidate(t *testing.T) {
	sender := &stubSender{}
	dispatcher := newTestDispatcher(sender)
	ctx := context.Background()

	other := dispatchCandidate()
	other.ID = "c2"
	other.Profile.Email = "sam@example.com"

	_, err := dispatcher.Dispatch(ctx, "session-a", dispatchCandidate())
	require.NoError(t, err)
	_, err = dispatcher.Dispatch(ctx, "session-a", other)
	require.NoError(t, err)

	first, err := dispatcher.Record(ctx, "session-a", "c1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "c1", first.CandidateID)

	second, err := dispatcher.Record(ctx, "session-a", "c2")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "c2", second.CandidateID)
	assert.NotEqual(t, first.NotificationID, second.NotificationID)
}

func TestDispatch_RejectionTemplateBelowGate(t *testing.T) {
	sender := &stubSender{}
	dispatcher := newTestDispatcher(sender)

	candidate := dispatchCandidate()
	candidate.Score = 12
	candidate.MatchingInfo.MatchingExplanation = models.MatchingExplanation{
		ExperienceMatch: models.ExperienceDoesNotMeet,
		MissingSkills:   []string{"AWS"},
	}

	record, err := dispatcher.Dispatch(context.Background(), "session-a", candidate)

	require.NoError(t, err)
	assert.Equal(t, testTemplates.RejectionID, record.TemplateID)
	require.Len(t, sender.plans, 1)
	assert.Equal(t, VariantRejection, sender.plans[0].Variant)
	assert.Equal(t, "Reasons: Experience does not meet requirements. Missing required skills. ", sender.plans[0].Reason)
}
