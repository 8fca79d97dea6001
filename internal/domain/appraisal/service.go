package appraisal

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmployeeNotFound  = errors.New("employee does not exist")
	ErrAppraiserNotFound = errors.New("appraiser does not exist")
	ErrBadPeriod         = errors.New("period start must be on or before period end")
	ErrNotOwnAppraisal   = errors.New("a self-assessment must be created for the requesting employee")
	ErrNotOwnReview      = errors.New("an appraiser-initiated appraisal must name the requester as appraiser")
)

// Directory is the slice of the user store the appraisal domain needs.
type Directory interface {
	UserExists(ctx context.Context, id string) (bool, error)
	ManagerOf(ctx context.Context, id string) (string, error)
}

type Service struct {
	Store *Store
	Users Directory
}

func NewService(store *Store, users Directory) *Service {
	return &Service{Store: store, Users: users}
}

type CreateInput struct {
	EmployeeID  string
	AppraiserID string
	PeriodStart time.Time
	PeriodEnd   time.Time
	CreatedBy   string
	Document    *Document
}

func (s *Service) Create(ctx context.Context, actor Actor, input CreateInput) (*Appraisal, error) {
	if input.PeriodEnd.Before(input.PeriodStart) {
		return nil, ErrBadPeriod
	}

	createdBy := input.CreatedBy
	if createdBy == "" {
		createdBy = CreatedByAppraiser
	}

	switch createdBy {
	case CreatedByAppraisee:
		if input.EmployeeID == "" {
			input.EmployeeID = actor.UserID
		}
		if input.EmployeeID != actor.UserID && !actor.Admin {
			return nil, ErrNotOwnAppraisal
		}
		if input.AppraiserID == "" {
			managerID, err := s.Users.ManagerOf(ctx, input.EmployeeID)
			if err != nil || managerID == "" {
				return nil, ErrAppraiserNotFound
			}
			input.AppraiserID = managerID
		}
	case CreatedByAppraiser:
		if input.AppraiserID == "" {
			input.AppraiserID = actor.UserID
		}
		if input.AppraiserID != actor.UserID && !actor.Admin {
			return nil, ErrNotOwnReview
		}
	default:
		return nil, errors.New("createdBy must be appraisee or appraiser")
	}

	if ok, err := s.Users.UserExists(ctx, input.EmployeeID); err != nil || !ok {
		return nil, ErrEmployeeNotFound
	}
	if ok, err := s.Users.UserExists(ctx, input.AppraiserID); err != nil || !ok {
		return nil, ErrAppraiserNotFound
	}

	doc := NewDocument()
	if input.Document != nil {
		mode := ModeAppraiser
		if createdBy == CreatedByAppraisee {
			mode = ModeAppraisee
		}
		doc = MergeEditable(doc, *input.Document, mode, StatusDraft)
	}
	Recompute(&doc)

	a := &Appraisal{
		EmployeeID:  input.EmployeeID,
		AppraiserID: input.AppraiserID,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Status:      StatusDraft,
		CreatedBy:   createdBy,
		Document:    doc,
	}
	if err := s.Store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id string) (*Appraisal, error) {
	a, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.CanView(actor) {
		return nil, ErrNotParticipant
	}
	return a, nil
}

type UpdateInput struct {
	Version     int
	PeriodStart time.Time
	PeriodEnd   time.Time
	Document    Document
}

// Update merges the editable sections for the actor's mode, recomputes every
// derived field and persists under optimistic concurrency.
func (s *Service) Update(ctx context.Context, actor Actor, id string, input UpdateInput) (*Appraisal, error) {
	a, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.CanEdit(actor); err != nil {
		return nil, err
	}
	if input.Version != a.Version {
		return nil, ErrVersionConflict
	}

	mode := a.ModeFor(actor)
	if actor.Admin && mode == ModeView {
		mode = ModeAppraiser
	}
	a.Document = MergeEditable(a.Document, input.Document, mode, a.Status)
	Recompute(&a.Document)

	if a.Status == StatusDraft {
		if !input.PeriodStart.IsZero() {
			a.PeriodStart = input.PeriodStart
		}
		if !input.PeriodEnd.IsZero() {
			a.PeriodEnd = input.PeriodEnd
		}
		if a.PeriodEnd.Before(a.PeriodStart) {
			return nil, ErrBadPeriod
		}
	}

	if err := s.Store.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Transition moves the appraisal along the status machine.
func (s *Service) Transition(ctx context.Context, actor Actor, id, target string, version int) (*Appraisal, error) {
	a, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.CanTransition(actor, target); err != nil {
		return nil, err
	}
	if version != a.Version {
		return nil, ErrVersionConflict
	}
	if err := s.Store.UpdateStatus(ctx, id, version, target); err != nil {
		return nil, err
	}
	a.Status = target
	a.Version = version + 1
	return a, nil
}

const (
	ScopeMy   = "my"
	ScopeTeam = "team"
	ScopeAll  = "all"
)

var ErrScopeForbidden = errors.New("listing all appraisals requires the administrative role")

// List applies the role-scoped view then the conjunctive filters.
func (s *Service) List(ctx context.Context, actor Actor, scope string, filter Filter) ([]Appraisal, error) {
	switch scope {
	case ScopeTeam:
		filter.AppraiserID = actor.UserID
	case ScopeAll:
		if !actor.Admin {
			return nil, ErrScopeForbidden
		}
	default:
		filter.EmployeeID = actor.UserID
	}
	return s.Store.List(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.Admin {
		return ErrNotParticipant
	}
	return s.Store.Delete(ctx, id)
}
