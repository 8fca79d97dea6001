package appraisal

import "errors"

var (
	ErrNotParticipant     = errors.New("actor is not a participant in this appraisal")
	ErrClosed             = errors.New("appraisal is closed")
	ErrNotEditable        = errors.New("appraisal is not editable in its current status")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrWrongActor         = errors.New("actor may not perform this transition")
	ErrVersionConflict    = errors.New("appraisal was modified concurrently")
	ErrUnknownStatus      = errors.New("unknown status")
	ErrSelfReviewRequired = errors.New("self-initiated appraisal must pass through pending-review")
)

// Actor identifies the requesting user relative to an appraisal.
type Actor struct {
	UserID string
	Role   string
	Admin  bool
}

func (a *Appraisal) IsEmployee(actor Actor) bool {
	return actor.UserID == a.EmployeeID
}

func (a *Appraisal) IsAppraiser(actor Actor) bool {
	return actor.UserID == a.AppraiserID
}

func (a *Appraisal) SelfInitiated() bool {
	return a.CreatedBy == CreatedByAppraisee
}

// CanView allows the employee, the designated appraiser and administrators.
func (a *Appraisal) CanView(actor Actor) bool {
	return actor.Admin || a.IsEmployee(actor) || a.IsAppraiser(actor)
}

// CanEdit enforces status-gated edit permission. The creator and the
// appraiser may edit a draft; from pending-review onward only the appraiser
// works the form; closed is immutable to everyone but an administrator.
func (a *Appraisal) CanEdit(actor Actor) error {
	if !a.CanView(actor) {
		return ErrNotParticipant
	}
	if actor.Admin {
		return nil
	}
	switch a.Status {
	case StatusDraft:
		if a.SelfInitiated() && !a.IsEmployee(actor) && !a.IsAppraiser(actor) {
			return ErrNotParticipant
		}
		return nil
	case StatusPendingReview, StatusSubmitted:
		if a.IsAppraiser(actor) {
			return nil
		}
		return ErrNotEditable
	case StatusClosed:
		return ErrClosed
	default:
		return ErrNotEditable
	}
}

// transition describes one legal edge of the status machine.
type transition struct {
	from, to      string
	appraiserOnly bool
	employeeOnly  bool
	selfOnly      bool // only on self-initiated appraisals
	managerOnly   bool // only on appraiser-initiated appraisals
}

var transitions = []transition{
	// Self-initiated: the employee submits the self-assessment, then the
	// appraiser carries it through review.
	{from: StatusDraft, to: StatusPendingReview, employeeOnly: true, selfOnly: true},
	{from: StatusPendingReview, to: StatusSubmitted, appraiserOnly: true},
	// Appraiser-initiated appraisals skip pending-review entirely.
	{from: StatusDraft, to: StatusSubmitted, appraiserOnly: true, managerOnly: true},
	{from: StatusSubmitted, to: StatusReviewed, appraiserOnly: true},
	{from: StatusReviewed, to: StatusClosed, appraiserOnly: true},
	// The appraiser may also close a self-assessment directly from review.
	{from: StatusPendingReview, to: StatusClosed, appraiserOnly: true, selfOnly: true},
	{from: StatusSubmitted, to: StatusClosed, appraiserOnly: true},
}

// CanTransition validates a requested status change for the given actor.
func (a *Appraisal) CanTransition(actor Actor, target string) error {
	if !ValidStatus(target) {
		return ErrUnknownStatus
	}
	if a.Status == StatusClosed && !actor.Admin {
		return ErrClosed
	}
	if !a.CanView(actor) {
		return ErrNotParticipant
	}
	if actor.Admin {
		return nil
	}
	for _, t := range transitions {
		if t.from != a.Status || t.to != target {
			continue
		}
		if t.selfOnly && !a.SelfInitiated() {
			continue
		}
		if t.managerOnly && a.SelfInitiated() {
			continue
		}
		if t.employeeOnly && !a.IsEmployee(actor) {
			return ErrWrongActor
		}
		if t.appraiserOnly && !a.IsAppraiser(actor) {
			return ErrWrongActor
		}
		return nil
	}
	return ErrIllegalTransition
}

// NextStatuses lists the transitions the actor could legally request now.
func (a *Appraisal) NextStatuses(actor Actor) []string {
	var out []string
	for _, t := range transitions {
		if t.from != a.Status {
			continue
		}
		if err := a.CanTransition(actor, t.to); err == nil && !contains(out, t.to) {
			out = append(out, t.to)
		}
	}
	return out
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
