// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"time"

	"smarttender-engine/internal/common/errors"
	"smarttender-engine/internal/common/logger"
	"smarttender-engine/internal/common/metrics"
	"smarttender-engine/internal/models"

	"github.com/google/uuid"
)

// Dispatcher drives one-shot notification sends. Each dispatch is
// bound to the candidate id it was issued for: the ledger record for
// that id is written regardless of what the session selects meanwhile.
type Dispatcher struct {
	config *Config
	sender Sender
	ledger Ledger
	logger logger.Logger
}

func NewDispatcher(config *Config, sender Sender, ledger Ledger, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		config: config,
		sender: sender,
		ledger: ledger,
		logger: log.WithFields(map[string]interface{}{"component": "dispatch"}),
	}
}

// Dispatch sends one notification for the candidate. Precondition
// violations (nil candidate, in-flight or already-sent record) return
// an error without touching the provider; transport-level send
// failures come back as a "failed" record with the fixed message, so
// the caller can render an inline retry-eligible status.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID string, candidate *models.CandidateResult) (*models.DispatchRecord, error) {
	if candidate == nil {
		return nil, errors.NewNoSelectionError()
	}

	existing, err := d.ledger.Get(ctx, sessionID, candidate.ID)
	if err != nil {
		d.logger.Warn("ledger lookup failed, proceeding without dedup", map[string]interface{}{
			"candidateId": candidate.ID,
			"error":       err,
		})
	}
	if existing != nil {
		switch existing.Status {
		case models.DispatchSending:
			return nil, errors.NewDispatchInFlightError(candidate.ID)
		case models.DispatchSent:
			return nil, errors.NewAlreadyDispatchedError(candidate.ID)
		}
	}

	plan := BuildPlan(candidate, d.config.GateScore, d.config.Templates)

	record := models.DispatchRecord{
		CandidateID: candidate.ID,
		TemplateID:  plan.TemplateID,
		Status:      models.DispatchSending,
	}
	if err := d.ledger.Put(ctx, sessionID, record); err != nil {
		d.logger.Warn("ledger write failed", map[string]interface{}{
			"candidateId": candidate.ID,
			"error":       err,
		})
	}

	d.logger.Info("dispatching notification", map[string]interface{}{
		"candidateId": candidate.ID,
		"template":    plan.Variant,
		"score":       candidate.Score,
	})

	started := time.Now()
	sendErr := d.sender.Send(ctx, plan)
	metrics.DispatchDuration.WithLabelValues(plan.Variant).Observe(time.Since(started).Seconds())

	if sendErr != nil {
		stdErr := errors.NewDispatchFailedError(sendErr)
		record.Status = models.DispatchFailed
		record.Message = stdErr.Message
		d.finalize(ctx, sessionID, &record, plan.Variant)
		d.logger.Error("notification send failed", map[string]interface{}{
			"candidateId": candidate.ID,
			"error":       sendErr,
		})
		return &record, nil
	}

	record.Status = models.DispatchSent
	record.NotificationID = uuid.New().String()
	record.Message = "Mail sent successfully!"
	record.SentAt = time.Now().UTC().Format(time.RFC3339)
	d.finalize(ctx, sessionID, &record, plan.Variant)

	return &record, nil
}

func (d *Dispatcher) finalize(ctx context.Context, sessionID string, record *models.DispatchRecord, variant string) {
	metrics.DispatchesTotal.WithLabelValues(variant, record.Status).Inc()
	if err := d.ledger.Put(ctx, sessionID, *record); err != nil {
		d.logger.Warn("ledger finalize failed", map[string]interface{}{
			"candidateId": record.CandidateID,
			"error":       err,
		})
	}
}

// Record returns the ledger entry for a candidate, nil if none exists.
func (d *Dispatcher) Record(ctx context.Context, sessionID, candidateID string) (*models.DispatchRecord, error) {
	return d.ledger.Get(ctx, sessionID, candidateID)
}
