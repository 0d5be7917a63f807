// internal/models/notification.go
package models

// Dispatch statuses for a candidate notification.
const (
	DispatchIdle    = "idle"
	DispatchSending = "sending"
	DispatchSent    = "sent"
	DispatchFailed  = "failed"
)

// DispatchRecord is one entry of the per-session dispatch ledger,
// keyed by candidate id. It is what makes repeated sends to the same
// candidate detectable.
type DispatchRecord struct {
	CandidateID    string `json:"candidateId"`
	NotificationID string `json:"notificationId,omitempty"`
	TemplateID     string `json:"templateId,omitempty"`
	Status         string `json:"status"` // "sending", "sent", "failed"
	Message        string `json:"message,omitempty"`
	SentAt         string `json:"sentAt,omitempty"` // ISO 8601
}
