package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"appraisal/internal/domain/access"
	"appraisal/internal/domain/directory"
)

type Service struct {
	Store     *Store
	Directory *directory.Store
	Access    *access.Store
}

func NewService(store *Store, dir *directory.Store, acc *access.Store) *Service {
	return &Service{Store: store, Directory: dir, Access: acc}
}

func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	users, err := s.Store.ExportUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	appraisals, err := s.Store.ExportAppraisals(ctx)
	if err != nil {
		return nil, fmt.Errorf("export appraisals: %w", err)
	}
	hierarchy, err := s.Directory.Hierarchy(ctx)
	if err != nil {
		return nil, fmt.Errorf("export hierarchy: %w", err)
	}
	requests, err := s.Access.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("export access requests: %w", err)
	}

	snap := &Snapshot{
		ExportedAt:     time.Now().UTC(),
		Users:          users,
		Appraisals:     appraisals,
		OrgHierarchy:   hierarchy,
		AccessRequests: make([]access.Request, 0, len(requests)),
	}
	for _, r := range requests {
		snap.AccessRequests = append(snap.AccessRequests, *r)
	}
	return snap, nil
}

// WriteJSON streams the snapshot as indented JSON, the format the
// import side accepts back.
func (s *Service) WriteJSON(ctx context.Context, w io.Writer) error {
	snap, err := s.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Import replaces the entire dataset with the snapshot read from r.
// A malformed or inconsistent snapshot leaves the database untouched.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := ValidateSnapshot(&snap); err != nil {
		return nil, err
	}
	if err := s.Store.Replace(ctx, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
