package access

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/directory"
)

var (
	ErrNotPending     = errors.New("access request is not pending")
	ErrUnknownRole    = errors.New("unknown role")
	ErrEmailTaken     = errors.New("email already registered")
	ErrNoApprover     = errors.New("no manager available for division")
	ErrUnknownManager = errors.New("manager not found")
)

// Provisioner creates directory users for approved requests.
type Provisioner interface {
	CreateUser(ctx context.Context, in directory.CreateUserInput) (*directory.User, error)
	GetUser(ctx context.Context, id string) (*directory.User, error)
	EmailInUse(ctx context.Context, email string) (bool, error)
	DirectorGeneral(ctx context.Context) (*directory.User, error)
}

type Service struct {
	Store *Store
	Users Provisioner
}

func NewService(store *Store, users Provisioner) *Service {
	return &Service{Store: store, Users: users}
}

type SubmitInput struct {
	Name     string
	Email    string
	StaffID  string
	Role     string
	Division string
	Notes    string
	Password string
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Request, error) {
	if !auth.ValidRole(in.Role) {
		return nil, ErrUnknownRole
	}
	taken, err := s.Users.EmailInUse(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	r := &Request{
		Name:     in.Name,
		Email:    in.Email,
		StaffID:  in.StaffID,
		Role:     in.Role,
		Division: in.Division,
		Notes:    in.Notes,
	}
	if err := s.Store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

type UpdateInput struct {
	Name     string
	Email    string
	StaffID  string
	Role     string
	Division string
	Notes    string
}

// Update edits a request while it is still pending. Reviewed requests
// are immutable.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Request, error) {
	r, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, ErrNotPending
	}
	if !auth.ValidRole(in.Role) {
		return nil, ErrUnknownRole
	}

	r.Name = in.Name
	r.Email = in.Email
	r.StaffID = in.StaffID
	r.Role = in.Role
	r.Division = in.Division
	r.Notes = in.Notes

	if err := s.Store.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

type ApproveInput struct {
	// ManagerID overrides the division mapping when set.
	ManagerID string
	Password  string
}

// Approve reviews a pending request and provisions the directory user.
// The manager is resolved from the override, then the division mapping,
// then the Director-General.
func (s *Service) Approve(ctx context.Context, id, reviewerID string, in ApproveInput) (*Request, *directory.User, error) {
	r, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if r.Status != StatusPending {
		return nil, nil, ErrNotPending
	}

	managerID := in.ManagerID
	if managerID != "" {
		if _, err := s.Users.GetUser(ctx, managerID); err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				return nil, nil, ErrUnknownManager
			}
			return nil, nil, err
		}
	} else {
		managerID, err = s.Store.ManagerForDivision(ctx, r.Division)
		if err != nil {
			return nil, nil, err
		}
	}
	if managerID == "" {
		dg, err := s.Users.DirectorGeneral(ctx)
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				return nil, nil, ErrNoApprover
			}
			return nil, nil, err
		}
		managerID = dg.ID
	}

	staffID := r.StaffID
	if staffID == "" {
		staffID = GenerateStaffID()
	}

	user, err := s.Users.CreateUser(ctx, directory.CreateUserInput{
		Name:      r.Name,
		StaffID:   staffID,
		Email:     r.Email,
		Role:      r.Role,
		ManagerID: managerID,
		Division:  r.Division,
		Password:  in.Password,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.Store.Review(ctx, id, StatusApproved, reviewerID); err != nil {
		return nil, nil, err
	}
	r.Status = StatusApproved
	r.ReviewedBy = reviewerID
	now := time.Now().UTC()
	r.ReviewedAt = &now
	return r, user, nil
}

func (s *Service) Reject(ctx context.Context, id, reviewerID string) (*Request, error) {
	r, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, ErrNotPending
	}
	if err := s.Store.Review(ctx, id, StatusRejected, reviewerID); err != nil {
		return nil, err
	}
	r.Status = StatusRejected
	r.ReviewedBy = reviewerID
	now := time.Now().UTC()
	r.ReviewedAt = &now
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status string) ([]*Request, error) {
	return s.Store.List(ctx, status)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

// SetDivisionManager points a division at the manager who approves its
// access requests and becomes the default manager for provisioned users.
func (s *Service) SetDivisionManager(ctx context.Context, division, managerID string) error {
	if _, err := s.Users.GetUser(ctx, managerID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return ErrUnknownManager
		}
		return err
	}
	return s.Store.SetDivisionManager(ctx, division, managerID)
}

func (s *Service) DivisionManager(ctx context.Context, division string) (string, error) {
	return s.Store.ManagerForDivision(ctx, division)
}

var lastStaffID atomic.Int64

// GenerateStaffID mints a placeholder staff number for approvals that
// arrive without one. HR replaces it once the real number is issued.
func GenerateStaffID() string {
	for {
		now := time.Now().UnixNano()
		last := lastStaffID.Load()
		if now <= last {
			now = last + 1
		}
		if lastStaffID.CompareAndSwap(last, now) {
			return fmt.Sprintf("STAFF%d", now)
		}
	}
}
