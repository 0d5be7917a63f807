// internal/analysis/models.go
package analysis

import (
	"smarttender-engine/internal/common/errors"
	"smarttender-engine/internal/models"
)

// Classification is the four-way outcome of one analyze call.
type Classification string

const (
	ClassReady          Classification = "ready"
	ClassEmpty          Classification = "empty"
	ClassServerError    Classification = "server_error"
	ClassTransportError Classification = "transport_error"
)

// payload is the wire shape of GET /api/intelligence/analyze.
type payload struct {
	TenderRequirements models.TenderRequirements `json:"tender_requirements"`
	Candidates         models.Roster             `json:"candidates"`
	TotalCandidates    int                       `json:"total_candidates,omitempty"`
	Error              string                    `json:"error,omitempty"`
}

// Result carries exactly one classification. Requirements and Roster
// are populated only for ClassReady; Err only for the two error
// classes (Empty carries neither, it is a display state of its own).
type Result struct {
	Classification Classification
	Requirements   models.TenderRequirements
	Roster         models.Roster
	Err            *errors.StandardError
}
