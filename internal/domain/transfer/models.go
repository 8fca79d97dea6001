package transfer

import (
	"time"

	"appraisal/internal/domain/access"
	"appraisal/internal/domain/appraisal"
)

// Snapshot is the portable wire format for a full system export. It
// carries password hashes so that a restore keeps credentials working.
type Snapshot struct {
	ExportedAt     time.Time           `json:"exportedAt"`
	Users          []UserRecord        `json:"users"`
	Appraisals     []AppraisalRecord   `json:"appraisals"`
	OrgHierarchy   map[string][]string `json:"orgHierarchy"`
	AccessRequests []access.Request    `json:"accessRequests"`
}

type UserRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	StaffID      string    `json:"staffId"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role"`
	ManagerID    string    `json:"managerId,omitempty"`
	Division     string    `json:"division,omitempty"`
	Region       string    `json:"region,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type AppraisalRecord struct {
	ID          string             `json:"id"`
	EmployeeID  string             `json:"employeeId"`
	AppraiserID string             `json:"appraiserId"`
	PeriodStart time.Time          `json:"periodStart"`
	PeriodEnd   time.Time          `json:"periodEnd"`
	Status      string             `json:"status"`
	CreatedBy   string             `json:"createdBy"`
	Version     int                `json:"version"`
	Document    appraisal.Document `json:"document"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
