package access

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("access request not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const requestColumns = `id, name, email, COALESCE(staff_id, ''), role, division, COALESCE(notes, ''), status, submitted_at, reviewed_at, COALESCE(reviewed_by, '')`

func (s *Store) Create(ctx context.Context, r *Request) error {
	r.ID = uuid.NewString()
	r.Status = StatusPending
	r.SubmittedAt = time.Now().UTC()

	_, err := s.DB.Exec(ctx, `
		INSERT INTO access_requests (id, name, email, staff_id, role, division, notes, status, submitted_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, $9)`,
		r.ID, r.Name, r.Email, r.StaffID, r.Role, r.Division, r.Notes, r.Status, r.SubmittedAt)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (*Request, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+requestColumns+` FROM access_requests WHERE id = $1`, id)
	return scanRequest(row)
}

// Update persists edits to a pending request. Status changes go through Review.
func (s *Store) Update(ctx context.Context, r *Request) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE access_requests
		SET name = $2, email = $3, staff_id = NULLIF($4, ''), role = $5, division = $6, notes = NULLIF($7, '')
		WHERE id = $1 AND status = $8`,
		r.ID, r.Name, r.Email, r.StaffID, r.Role, r.Division, r.Notes, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, status string) ([]*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM access_requests`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at DESC`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Review(ctx context.Context, id, status, reviewerID string) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE access_requests
		SET status = $2, reviewed_at = $3, reviewed_by = $4
		WHERE id = $1 AND status = $5`,
		id, status, time.Now().UTC(), reviewerID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM access_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ManagerForDivision resolves the configured reviewer for a division.
// Returns the empty string when no mapping exists.
func (s *Store) ManagerForDivision(ctx context.Context, division string) (string, error) {
	var managerID string
	err := s.DB.QueryRow(ctx,
		`SELECT manager_id FROM division_managers WHERE division = $1`, division).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return managerID, nil
}

func (s *Store) SetDivisionManager(ctx context.Context, division, managerID string) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO division_managers (division, manager_id)
		VALUES ($1, $2)
		ON CONFLICT (division) DO UPDATE SET manager_id = EXCLUDED.manager_id`,
		division, managerID)
	return err
}

func scanRequest(row pgx.Row) (*Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.Name, &r.Email, &r.StaffID, &r.Role, &r.Division, &r.Notes,
		&r.Status, &r.SubmittedAt, &r.ReviewedAt, &r.ReviewedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
