// internal/session/machine.go
package session

import (
	"context"
	"sync"

	"smarttender-engine/internal/analysis"
	"smarttender-engine/internal/common/errors"
	"smarttender-engine/internal/common/logger"
	"smarttender-engine/internal/models"
	"smarttender-engine/internal/uploader"

	"github.com/google/uuid"
)

// Step is the coarse wizard position.
type Step int

const (
	Step1Overview Step = iota + 1
	Step2Tender
	Step3CVs
	Step4Results
)

// Phase is the results-step sub-state. Once a fetch classifies, the
// phase is terminal until reset.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseEmpty   Phase = "empty"
	PhaseReady   Phase = "ready"
)

// Machine owns the wizard's step position, the fetched requirement and
// candidate set, the current selection and the dispatch view state.
// It is the single source of truth; no other component mutates these.
type Machine struct {
	mu sync.Mutex

	sessionID string
	step      Step
	phase     Phase

	errCategory errors.ViewCategory
	errMessage  string

	requirements models.TenderRequirements
	roster       models.Roster
	selectedID   string

	tenderAcceptance *uploader.Acceptance
	cvAcceptance     *uploader.Acceptance

	dispatchView string // view-scoped, reset on every selection change
	fetched      bool   // guards the one-fetch-per-activation rule

	handler *errors.Handler
	logger  logger.Logger
}

func NewMachine(log logger.Logger) *Machine {
	return &Machine{
		sessionID:    uuid.New().String(),
		step:         Step1Overview,
		phase:        PhaseIdle,
		dispatchView: models.DispatchIdle,
		handler:      errors.NewHandler(log),
		logger:       log.WithFields(map[string]interface{}{"component": "session"}),
	}
}

// SessionID scopes the dispatch ledger. Rotated on reset so
// at-most-once delivery applies per analysis session.
func (m *Machine) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// ErrorView returns the terminal error category and message shown on
// the results step, valid only in PhaseError.
func (m *Machine) ErrorView() (errors.ViewCategory, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errCategory, m.errMessage
}

// Advance moves Step1 to Step2. The overview step has no precondition.
func (m *Machine) Advance() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step != Step1Overview {
		return errors.NewStepNotReadyError("advance signal outside step 1")
	}
	m.step = Step2Tender
	return nil
}

// AdvanceWithTender records the tender acceptance token and moves the
// wizard from the tender step to the CV step. Without a token, the
// upload never happened and the step does not advance.
func (m *Machine) AdvanceWithTender(acceptance *uploader.Acceptance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step != Step2Tender {
		return errors.NewStepNotReadyError("tender advance signal outside step 2")
	}
	if acceptance == nil || acceptance.Token == "" {
		return errors.NewStepNotReadyError("missing tender acceptance token")
	}
	m.tenderAcceptance = acceptance
	m.step = Step3CVs
	return nil
}

// AdvanceWithCVs records the CV batch acceptance token and activates
// the results step in its loading phase.
func (m *Machine) AdvanceWithCVs(acceptance *uploader.Acceptance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step != Step3CVs {
		return errors.NewStepNotReadyError("CV advance signal outside step 3")
	}
	if acceptance == nil || acceptance.Token == "" {
		return errors.NewStepNotReadyError("missing CV acceptance token")
	}
	m.cvAcceptance = acceptance
	m.step = Step4Results
	m.phase = PhaseLoading
	m.fetched = false
	return nil
}

// ActivateResults runs the one-shot analysis fetch and settles the
// results phase. Requires both acceptance tokens; a second call within
// the same activation is refused rather than fetching twice.
func (m *Machine) ActivateResults(ctx context.Context, fetcher *analysis.Fetcher) error {
	m.mu.Lock()
	if m.step != Step4Results {
		m.mu.Unlock()
		return errors.NewStepNotReadyError("results activation outside step 4")
	}
	if m.tenderAcceptance == nil || m.cvAcceptance == nil {
		m.mu.Unlock()
		return errors.NewStepNotReadyError("results activation without acceptance tokens")
	}
	if m.fetched {
		m.mu.Unlock()
		return errors.NewStepNotReadyError("analysis already fetched for this activation")
	}
	m.fetched = true
	m.phase = PhaseLoading
	m.mu.Unlock()

	result := fetcher.Fetch(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(result)
	return nil
}

// apply settles the fetch classification into the phase. Caller holds
// the lock.
func (m *Machine) apply(result *analysis.Result) {
	switch result.Classification {
	case analysis.ClassReady:
		m.requirements = result.Requirements
		m.roster = result.Roster
		m.selectedID = result.Roster[0].ID
		m.dispatchView = models.DispatchIdle
		m.phase = PhaseReady
	case analysis.ClassEmpty:
		m.phase = PhaseEmpty
		m.errCategory = errors.CategoryEmpty
		m.errMessage = errors.NewEmptyResultError().Message
	default:
		m.phase = PhaseError
		m.errCategory, m.errMessage = m.handler.Handle(result.Err)
	}
}

// Select changes the current candidate. Ids outside the roster are a
// programming error and are refused. Any selection change resets the
// dispatch view state, regardless of the previous dispatch outcome.
func (m *Machine) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseReady {
		return errors.NewStepNotReadyError("selection outside the ready phase")
	}
	if !m.roster.Contains(id) {
		return errors.NewUnknownCandidateError(id)
	}
	if id != m.selectedID {
		m.selectedID = id
		m.dispatchView = models.DispatchIdle
	}
	return nil
}

// Selected returns a copy of the currently selected candidate, nil
// when the roster is empty.
func (m *Machine) Selected() *models.CandidateResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate := m.roster.Find(m.selectedID)
	if candidate == nil {
		return nil
	}
	copied := *candidate
	return &copied
}

func (m *Machine) Requirements() models.TenderRequirements {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requirements
}

func (m *Machine) Roster() models.Roster {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(models.Roster, len(m.roster))
	copy(out, m.roster)
	return out
}

// DispatchView is the dispatch status rendered for the current
// selection.
func (m *Machine) DispatchView() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dispatchView
}

// SetDispatchView records the dispatch outcome for the candidate it
// was issued for. Outcomes for a candidate that is no longer selected
// are dropped so they cannot corrupt the new selection's view.
func (m *Machine) SetDispatchView(candidateID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if candidateID != m.selectedID {
		m.logger.Debug("dispatch outcome for unselected candidate ignored", map[string]interface{}{
			"candidateId": candidateID,
			"status":      status,
		})
		return
	}
	m.dispatchView = status
}

// Reset jumps back to Step1 from anywhere, discarding all session
// data. Nothing is cached across sessions; the session id rotates so
// the next analysis gets a fresh dispatch ledger scope.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessionID = uuid.New().String()
	m.step = Step1Overview
	m.phase = PhaseIdle
	m.errCategory = ""
	m.errMessage = ""
	m.requirements = models.TenderRequirements{}
	m.roster = nil
	m.selectedID = ""
	m.tenderAcceptance = nil
	m.cvAcceptance = nil
	m.dispatchView = models.DispatchIdle
	m.fetched = false
}
