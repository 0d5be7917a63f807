// internal/dispatch/template.go
package dispatch

import (
	"strings"

	"smarttender-engine/internal/models"
)

// Template variants
const (
	VariantValidation = "validation"
	VariantRejection  = "rejection"
)

// Status labels applied when the backend supplies no overall_status.
const (
	StatusSuitable    = "Suitable"
	StatusNotSuitable = "Not suitable"
)

// Fixed phrases of the assembled reason text.
const (
	genericAcceptance    = "You meet the requirements."
	reasonPrefix         = "Reasons: "
	clauseExperience     = "Experience does not meet requirements."
	clauseMissingSkills  = "Missing required skills."
	clauseCertifications = "Required certifications not satisfied."
)

// Templates holds the two configured provider template identifiers.
type Templates struct {
	ValidationID string
	RejectionID  string
}

// Plan is the fully resolved content of one notification: which
// template, to whom, with which status label and reason text.
type Plan struct {
	Variant       string
	TemplateID    string
	Recipient     string
	Status        string
	Reason        string
	CandidateName string
}

// BuildPlan applies the score-threshold policy to one candidate.
// At or above the gate the validation template carries the bid draft
// (or the generic acceptance phrase); below it the rejection template
// carries the composed reason clauses.
func BuildPlan(candidate *models.CandidateResult, gateScore int, templates Templates) Plan {
	explanation := candidate.Explanation()

	status := explanation.OverallStatus
	if status == "" {
		if candidate.Score >= gateScore {
			status = StatusSuitable
		} else {
			status = StatusNotSuitable
		}
	}

	plan := Plan{
		Recipient:     candidate.Profile.Email,
		Status:        status,
		CandidateName: candidate.Profile.Name,
	}

	if candidate.Score >= gateScore {
		plan.Variant = VariantValidation
		plan.TemplateID = templates.ValidationID
		plan.Reason = candidate.BidDraft
		if plan.Reason == "" {
			plan.Reason = genericAcceptance
		}
		return plan
	}

	plan.Variant = VariantRejection
	plan.TemplateID = templates.RejectionID
	plan.Reason = buildRejectionReason(explanation)
	return plan
}

// buildRejectionReason concatenates the triggered clauses in fixed
// order. Every clause carries a trailing space, so a non-empty reason
// ends with one.
func buildRejectionReason(explanation models.MatchingExplanation) string {
	var b strings.Builder
	b.WriteString(reasonPrefix)

	if explanation.ExperienceMatch != models.ExperienceMeets {
		b.WriteString(clauseExperience + " ")
	}
	if len(explanation.MissingSkills) > 0 {
		b.WriteString(clauseMissingSkills + " ")
	}
	// "Present and empty" only: a nil slice means the backend never
	// evaluated certifications, an empty one means none were satisfied.
	if explanation.CertificationMatch != nil && len(explanation.CertificationMatch) == 0 {
		b.WriteString(clauseCertifications + " ")
	}

	return b.String()
}
