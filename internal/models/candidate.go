// internal/models/candidate.go
package models

// Experience / sector match labels produced by the backend. Anything
// outside these values is rendered as-is, so they are hints, not an
// exhaustive enum.
const (
	ExperienceMeets       = "Meets"
	ExperienceDoesNotMeet = "Does not meet"
	SectorMatchYes        = "Yes"
	SectorMatchNo         = "No"
)

// CandidateProfile is the parsed CV view of one candidate.
type CandidateProfile struct {
	Name             string   `json:"name"`
	Email            string   `json:"email,omitempty"`
	ExperienceYears  int      `json:"experience_years,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	Certifications   []string `json:"certifications,omitempty"`
	SectorExperience []string `json:"sector_experience,omitempty"`
}

// MatchingExplanation is the backend's per-candidate explanation payload.
// CertificationMatch stays a slice (not omitted into oblivion) because the
// rejection policy distinguishes "present and empty" from absent.
type MatchingExplanation struct {
	ExperienceMatch    string   `json:"experience_match"`
	SectorMatch        string   `json:"sector_match"`
	MatchedSkills      []string `json:"matched_skills"`
	MissingSkills      []string `json:"missing_skills"`
	CertificationMatch []string `json:"certification_match"`
	OverallStatus      string   `json:"overall_status,omitempty"`
}

type MatchingInfo struct {
	MatchingExplanation MatchingExplanation `json:"matching_explanation"`
}

// CandidateResult is one scored candidate in the roster. LLMUsed is
// tri-state: true = AI-derived, false = regex fallback, nil = unknown.
type CandidateResult struct {
	ID           string           `json:"id"`
	Profile      CandidateProfile `json:"profile"`
	Score        int              `json:"score"`
	LLMUsed      *bool            `json:"llm_used,omitempty"`
	MatchingInfo MatchingInfo     `json:"matchingInfo"`
	BidDraft     string           `json:"bidDraft,omitempty"`
}

// Explanation is a shorthand accessor for the nested explanation.
func (c *CandidateResult) Explanation() MatchingExplanation {
	return c.MatchingInfo.MatchingExplanation
}

// Roster is the candidate set returned by one analysis call, in
// server-provided order (score descending).
type Roster []CandidateResult

// Find returns the candidate with the given id, or nil.
func (r Roster) Find(id string) *CandidateResult {
	for i := range r {
		if r[i].ID == id {
			return &r[i]
		}
	}
	return nil
}

// Contains reports whether id belongs to the roster.
func (r Roster) Contains(id string) bool {
	return r.Find(id) != nil
}
