package access

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Request struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	StaffID     string     `json:"staffId,omitempty"`
	Role        string     `json:"role"`
	Division    string     `json:"division"`
	Notes       string     `json:"notes,omitempty"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submittedAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy  string     `json:"reviewedBy,omitempty"`
}
