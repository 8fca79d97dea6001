package reports

import (
	"bytes"
	"testing"
	"time"

	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/directory"
)

func TestLabelFor(t *testing.T) {
	cases := map[string]string{
		"organizationManagement": "Organization Management",
		"teamWork":               "Team Work",
		"communication":          "Communication",
	}
	for in, want := range cases {
		if got := labelFor(in); got != want {
			t.Errorf("labelFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteAppraisalPDF(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &appraisal.Appraisal{
		ID:          "a1",
		EmployeeID:  "u1",
		AppraiserID: "u2",
		PeriodStart: now,
		PeriodEnd:   now.AddDate(1, 0, 0),
		Status:      appraisal.StatusClosed,
		Version:     3,
		Document:    appraisal.NewDocument(),
	}
	employee := &directory.User{ID: "u1", Name: "Ama Boateng", StaffID: "STAFF003", Role: "Staff Member", Division: "Finance"}
	appraiser := &directory.User{ID: "u2", Name: "Kofi Owusu", StaffID: "STAFF002", Role: "Finance Division Head"}

	var buf bytes.Buffer
	if err := WriteAppraisalPDF(&buf, a, employee, appraiser); err != nil {
		t.Fatalf("WriteAppraisalPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header")
	}

	// A render without the non-core groups must come out smaller,
	// proving that section is drawn from the document and not skipped.
	trimmed := *a
	trimmed.Document = appraisal.NewDocument()
	trimmed.Document.NonCore.Groups = nil
	var slim bytes.Buffer
	if err := WriteAppraisalPDF(&slim, &trimmed, employee, appraiser); err != nil {
		t.Fatalf("WriteAppraisalPDF without non-core groups: %v", err)
	}
	if slim.Len() >= buf.Len() {
		t.Fatalf("non-core competencies are not rendered: %d >= %d", slim.Len(), buf.Len())
	}
}
