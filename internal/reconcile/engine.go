// internal/reconcile/engine.go
package reconcile

import (
	"strings"

	"smarttender-engine/internal/models"
)

// SkillMatch tags one required skill with the locally recomputed
// matched/missing verdict, in the requirement's original order.
type SkillMatch struct {
	Skill   string `json:"skill"`
	Matched bool   `json:"matched"`
}

// Matches reports whether a required skill is satisfied by the matched
// set. A requirement matches when, case-folded, it equals a matched
// skill or contains one as a substring. Containment is checked in one
// direction only: required-contains-matched. Required "AWS" does NOT
// match "AWS Certified", because "aws" does not contain
// "aws certified".
func Matches(requiredSkill string, matchedSkills []string) bool {
	req := strings.ToLower(requiredSkill)
	for _, matched := range matchedSkills {
		m := strings.ToLower(matched)
		if req == m || strings.Contains(req, m) {
			return true
		}
	}
	return false
}

// Reconcile recomputes the matched/missing tag for every requirement
// against the candidate's matched-skill list. This local view is the
// one rendered; the server's own missing_skills field is ignored.
func Reconcile(requirements models.TenderRequirements, candidate *models.CandidateResult) []SkillMatch {
	matched := candidate.Explanation().MatchedSkills

	out := make([]SkillMatch, 0, len(requirements.Skills))
	for _, skill := range requirements.Skills {
		out = append(out, SkillMatch{
			Skill:   skill,
			Matched: Matches(skill, matched),
		})
	}
	return out
}

// MissingCount returns how many requirements the reconciled view left
// unsatisfied.
func MissingCount(view []SkillMatch) int {
	n := 0
	for _, sm := range view {
		if !sm.Matched {
			n++
		}
	}
	return n
}
