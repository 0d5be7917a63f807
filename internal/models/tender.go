// internal/models/tender.go
package models

// TenderRequirements holds the criteria extracted from the uploaded tender
// document. Produced once per analysis by the intelligence backend and
// immutable for the lifetime of the results view.
type TenderRequirements struct {
	Role            string   `json:"role,omitempty"`
	ExperienceYears int      `json:"experience_years"`
	Skills          []string `json:"skills"`
	Certifications  []string `json:"certifications,omitempty"`
	Sector          string   `json:"sector,omitempty"`
}
