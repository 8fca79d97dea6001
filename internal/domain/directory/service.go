package directory

import (
	"context"
	"errors"
	"strings"

	"appraisal/internal/domain/auth"
)

var (
	ErrManagerCycle    = errors.New("manager assignment would create a cycle")
	ErrUnknownRole     = errors.New("unknown role")
	ErrSelfManaged     = errors.New("a user cannot be their own manager")
	ErrManagerNotFound = errors.New("manager does not exist")
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type CreateUserInput struct {
	Name      string
	StaffID   string
	Email     string
	Role      string
	ManagerID string
	Division  string
	Region    string
	Password  string
	// PasswordHash carries an existing bcrypt digest, as found in
	// restored rosters. When set it is stored verbatim instead of
	// hashing Password.
	PasswordHash string
}

func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	if !auth.ValidRole(input.Role) {
		return nil, ErrUnknownRole
	}
	if input.ManagerID != "" {
		if ok, err := s.Store.UserExists(ctx, input.ManagerID); err != nil || !ok {
			return nil, ErrManagerNotFound
		}
	}
	hash := input.PasswordHash
	if hash == "" {
		var err error
		hash, err = auth.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
	}
	u := &User{
		Name:      strings.TrimSpace(input.Name),
		StaffID:   strings.TrimSpace(input.StaffID),
		Email:     strings.TrimSpace(input.Email),
		Role:      input.Role,
		ManagerID: input.ManagerID,
		Division:  input.Division,
		Region:    input.Region,
	}
	if err := s.Store.Create(ctx, u, hash); err != nil {
		return nil, err
	}
	return u, nil
}

type UpdateUserInput struct {
	Name      string
	StaffID   string
	Email     string
	Role      string
	ManagerID string
	Division  string
	Region    string
}

func (s *Service) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*User, error) {
	u, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.ValidRole(input.Role) {
		return nil, ErrUnknownRole
	}
	if input.ManagerID != "" && input.ManagerID != u.ManagerID {
		if err := s.checkManagerAssignment(ctx, id, input.ManagerID); err != nil {
			return nil, err
		}
	}

	u.Name = strings.TrimSpace(input.Name)
	u.StaffID = strings.TrimSpace(input.StaffID)
	u.Email = strings.TrimSpace(input.Email)
	u.Role = input.Role
	u.ManagerID = input.ManagerID
	u.Division = input.Division
	u.Region = input.Region

	if err := s.Store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// checkManagerAssignment walks up from the proposed manager; finding the user
// on the chain means the edge closes a cycle.
func (s *Service) checkManagerAssignment(ctx context.Context, userID, managerID string) error {
	if userID == managerID {
		return ErrSelfManaged
	}
	if ok, err := s.Store.UserExists(ctx, managerID); err != nil || !ok {
		return ErrManagerNotFound
	}

	current := managerID
	seen := map[string]bool{}
	for current != "" && !seen[current] {
		if current == userID {
			return ErrManagerCycle
		}
		seen[current] = true
		next, err := s.Store.ManagerOf(ctx, current)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) EmailInUse(ctx context.Context, email string) (bool, error) {
	return s.Store.EmailInUse(ctx, email)
}

// DirectorGeneral returns the head of the organisation, the default
// approver when a division has no mapped manager.
func (s *Service) DirectorGeneral(ctx context.Context) (*User, error) {
	return s.Store.FirstWithRole(ctx, auth.RoleDirectorGeneral)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

// Tree assembles the organizational chart from the adjacency map.
func (s *Service) Tree(ctx context.Context) ([]TreeNode, error) {
	users, err := s.Store.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]User, len(users))
	children := make(map[string][]string)
	var roots []string
	for _, u := range users {
		byID[u.ID] = u
		if u.ManagerID == "" {
			roots = append(roots, u.ID)
		} else {
			children[u.ManagerID] = append(children[u.ManagerID], u.ID)
		}
	}

	var build func(id string) TreeNode
	build = func(id string) TreeNode {
		node := TreeNode{User: byID[id]}
		for _, childID := range children[id] {
			node.Reports = append(node.Reports, build(childID))
		}
		return node
	}

	out := make([]TreeNode, 0, len(roots))
	for _, rootID := range roots {
		out = append(out, build(rootID))
	}
	return out, nil
}
