package appraisal

import (
	"errors"
	"testing"
)

func selfInitiated() *Appraisal {
	return &Appraisal{
		ID:          "a1",
		EmployeeID:  "emp",
		AppraiserID: "mgr",
		Status:      StatusDraft,
		CreatedBy:   CreatedByAppraisee,
	}
}

func appraiserInitiated() *Appraisal {
	return &Appraisal{
		ID:          "a2",
		EmployeeID:  "emp",
		AppraiserID: "mgr",
		Status:      StatusDraft,
		CreatedBy:   CreatedByAppraiser,
	}
}

var (
	employee  = Actor{UserID: "emp", Role: "Staff Member"}
	appraiser = Actor{UserID: "mgr", Role: "Unit Head"}
	stranger  = Actor{UserID: "other", Role: "Unit Head"}
	admin     = Actor{UserID: "dg", Role: "Director-General", Admin: true}
)

func TestSelfInitiatedPath(t *testing.T) {
	a := selfInitiated()

	if err := a.CanTransition(employee, StatusPendingReview); err != nil {
		t.Fatalf("employee submit should be allowed: %v", err)
	}
	if err := a.CanTransition(employee, StatusSubmitted); err == nil {
		t.Fatal("employee must not skip pending-review")
	}
	if err := a.CanTransition(appraiser, StatusSubmitted); err == nil {
		t.Fatal("appraiser must not advance a draft self-assessment")
	}

	a.Status = StatusPendingReview
	if err := a.CanTransition(employee, StatusSubmitted); !errors.Is(err, ErrWrongActor) {
		t.Fatalf("employee must not act on their own review, got %v", err)
	}
	if err := a.CanTransition(appraiser, StatusSubmitted); err != nil {
		t.Fatalf("appraiser should move pending-review to submitted: %v", err)
	}
	if err := a.CanTransition(appraiser, StatusClosed); err != nil {
		t.Fatalf("appraiser may close directly after review: %v", err)
	}
}

func TestAppraiserInitiatedPath(t *testing.T) {
	a := appraiserInitiated()

	if err := a.CanTransition(appraiser, StatusSubmitted); err != nil {
		t.Fatalf("appraiser should submit own draft: %v", err)
	}
	if err := a.CanTransition(employee, StatusSubmitted); !errors.Is(err, ErrWrongActor) {
		t.Fatalf("employee must not submit an appraiser-initiated draft, got %v", err)
	}
	if err := a.CanTransition(appraiser, StatusPendingReview); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("manager-initiated appraisal has no pending-review, got %v", err)
	}

	a.Status = StatusSubmitted
	if err := a.CanTransition(appraiser, StatusReviewed); err != nil {
		t.Fatalf("submitted to reviewed should be allowed: %v", err)
	}
	a.Status = StatusReviewed
	if err := a.CanTransition(appraiser, StatusClosed); err != nil {
		t.Fatalf("reviewed to closed should be allowed: %v", err)
	}
}

func TestClosedIsImmutable(t *testing.T) {
	a := appraiserInitiated()
	a.Status = StatusClosed

	for _, actor := range []Actor{employee, appraiser} {
		if err := a.CanEdit(actor); !errors.Is(err, ErrClosed) {
			t.Fatalf("closed appraisal must reject edits by %s, got %v", actor.UserID, err)
		}
		for _, target := range Statuses {
			if target == StatusClosed {
				continue
			}
			if err := a.CanTransition(actor, target); err == nil {
				t.Fatalf("closed appraisal accepted transition to %s by %s", target, actor.UserID)
			}
		}
	}

	if err := a.CanEdit(admin); err != nil {
		t.Fatalf("administrator should retain access to closed records: %v", err)
	}
}

func TestStrangerDenied(t *testing.T) {
	a := selfInitiated()
	if a.CanView(stranger) {
		t.Fatal("non-participant should not view the appraisal")
	}
	if err := a.CanEdit(stranger); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if err := a.CanTransition(stranger, StatusPendingReview); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestEditGates(t *testing.T) {
	a := selfInitiated()
	if err := a.CanEdit(employee); err != nil {
		t.Fatalf("employee should edit own draft: %v", err)
	}

	a.Status = StatusPendingReview
	if err := a.CanEdit(employee); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("employee edits must freeze after submission, got %v", err)
	}
	if err := a.CanEdit(appraiser); err != nil {
		t.Fatalf("appraiser should edit during review: %v", err)
	}

	a.Status = StatusSubmitted
	if err := a.CanEdit(appraiser); err != nil {
		t.Fatalf("appraiser should edit a submitted form: %v", err)
	}

	a.Status = StatusReviewed
	if err := a.CanEdit(appraiser); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("reviewed form should be frozen, got %v", err)
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	a := selfInitiated()
	if err := a.CanTransition(employee, "archived"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestNextStatuses(t *testing.T) {
	a := selfInitiated()
	next := a.NextStatuses(employee)
	if len(next) != 1 || next[0] != StatusPendingReview {
		t.Fatalf("expected [pending-review], got %v", next)
	}
	if got := a.NextStatuses(appraiser); len(got) != 0 {
		t.Fatalf("appraiser should have no moves on a draft self-assessment, got %v", got)
	}
}
