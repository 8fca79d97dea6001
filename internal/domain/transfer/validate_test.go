package transfer

import (
	"errors"
	"testing"
	"time"

	"appraisal/internal/domain/access"
	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/auth"
)

func validSnapshot() *Snapshot {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return &Snapshot{
		ExportedAt: now,
		Users: []UserRecord{
			{ID: "u-dg", Name: "Abena Mensah", StaffID: "STAFF001", Email: "dg@example.gov", Role: auth.RoleDirectorGeneral, CreatedAt: now, UpdatedAt: now},
			{ID: "u-mgr", Name: "Kofi Owusu", StaffID: "STAFF002", Email: "kofi@example.gov", Role: auth.RoleFinanceDivisionHead, ManagerID: "u-dg", CreatedAt: now, UpdatedAt: now},
			{ID: "u-staff", Name: "Ama Boateng", StaffID: "STAFF003", Email: "ama@example.gov", Role: auth.RoleStaffMember, ManagerID: "u-mgr", CreatedAt: now, UpdatedAt: now},
		},
		Appraisals: []AppraisalRecord{
			{
				ID: "a1", EmployeeID: "u-staff", AppraiserID: "u-mgr",
				PeriodStart: now, PeriodEnd: now.AddDate(1, 0, 0),
				Status: appraisal.StatusDraft, CreatedBy: appraisal.CreatedByAppraisee,
				Version: 1, Document: appraisal.NewDocument(),
				CreatedAt: now, UpdatedAt: now,
			},
		},
		OrgHierarchy: map[string][]string{
			"u-dg":  {"u-mgr"},
			"u-mgr": {"u-staff"},
		},
		AccessRequests: []access.Request{
			{ID: "r1", Name: "Yaw Darko", Email: "yaw@example.gov", Role: auth.RoleStaffMember, Division: "Finance", Status: access.StatusPending, SubmittedAt: now},
		},
	}
}

func TestValidateSnapshotAccepts(t *testing.T) {
	if err := ValidateSnapshot(validSnapshot()); err != nil {
		t.Fatalf("valid snapshot rejected: %v", err)
	}
}

func TestValidateSnapshotRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"duplicate user id", func(s *Snapshot) { s.Users[1].ID = s.Users[0].ID }},
		{"duplicate staff id", func(s *Snapshot) { s.Users[1].StaffID = s.Users[0].StaffID }},
		{"duplicate email", func(s *Snapshot) { s.Users[1].Email = s.Users[0].Email }},
		{"unknown role", func(s *Snapshot) { s.Users[2].Role = "Wizard" }},
		{"missing staff id", func(s *Snapshot) { s.Users[2].StaffID = "" }},
		{"dangling manager", func(s *Snapshot) { s.Users[2].ManagerID = "nobody" }},
		{"self managed", func(s *Snapshot) { s.Users[2].ManagerID = s.Users[2].ID }},
		{"manager cycle", func(s *Snapshot) {
			s.Users[0].ManagerID = "u-staff"
		}},
		{"hierarchy contradicts user records", func(s *Snapshot) {
			s.OrgHierarchy["u-dg"] = []string{"u-staff"}
		}},
		{"unknown appraisal status", func(s *Snapshot) { s.Appraisals[0].Status = "archived" }},
		{"unknown creator kind", func(s *Snapshot) { s.Appraisals[0].CreatedBy = "hr" }},
		{"dangling employee", func(s *Snapshot) { s.Appraisals[0].EmployeeID = "ghost" }},
		{"dangling appraiser", func(s *Snapshot) { s.Appraisals[0].AppraiserID = "ghost" }},
		{"inverted period", func(s *Snapshot) {
			s.Appraisals[0].PeriodEnd = s.Appraisals[0].PeriodStart.AddDate(0, 0, -1)
		}},
		{"zero version", func(s *Snapshot) { s.Appraisals[0].Version = 0 }},
		{"duplicate appraisal id", func(s *Snapshot) {
			s.Appraisals = append(s.Appraisals, s.Appraisals[0])
		}},
		{"unknown request status", func(s *Snapshot) { s.AccessRequests[0].Status = "escalated" }},
		{"unknown request role", func(s *Snapshot) { s.AccessRequests[0].Role = "Wizard" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := validSnapshot()
			tc.mutate(snap)
			err := ValidateSnapshot(snap)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidSnapshot) {
				t.Fatalf("error %v does not wrap ErrInvalidSnapshot", err)
			}
		})
	}
}
