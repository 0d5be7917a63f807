// internal/uploader/models.go
package uploader

import "io"

// Document is one local file handed to a submitter. The engine imposes
// no format validation; that is the backend's job.
type Document struct {
	Name    string
	Content io.Reader
}

// Document kinds
const (
	KindTender = "tender"
	KindCVs    = "cvs"
)

// Acceptance is the token the session machine requires before the
// results step may activate. It proves the submit happened, not that
// the backend validated the document.
type Acceptance struct {
	Token       string `json:"token"`
	Kind        string `json:"kind"`
	Documents   int    `json:"documents"`
	SubmittedAt string `json:"submittedAt"` // ISO 8601
}
