package transfer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// ExportUsers reads the full directory including password hashes, so a
// restored system keeps its credentials.
func (s *Store) ExportUsers(ctx context.Context) ([]UserRecord, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT u.id, u.name, u.staff_id, COALESCE(u.email, ''), r.name,
		       COALESCE(u.manager_id::text, ''), COALESCE(u.division, ''), COALESCE(u.region, ''),
		       u.password_hash, u.created_at, u.updated_at
		FROM users u JOIN roles r ON u.role_id = r.id
		ORDER BY u.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserRecord
	for rows.Next() {
		var u UserRecord
		if err := rows.Scan(&u.ID, &u.Name, &u.StaffID, &u.Email, &u.Role,
			&u.ManagerID, &u.Division, &u.Region, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) ExportAppraisals(ctx context.Context) ([]AppraisalRecord, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, employee_id, appraiser_id, period_start, period_end,
		       status, created_by, version, document, created_at, updated_at
		FROM appraisals ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AppraisalRecord
	for rows.Next() {
		var a AppraisalRecord
		var doc []byte
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.AppraiserID, &a.PeriodStart, &a.PeriodEnd,
			&a.Status, &a.CreatedBy, &a.Version, &doc, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(doc, &a.Document); err != nil {
			return nil, fmt.Errorf("decode appraisal %s document: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Replace swaps the entire dataset for the snapshot contents inside one
// transaction. Dependent rows (sessions, notifications, idempotency
// keys) are cleared with the users they belong to.
func (s *Store) Replace(ctx context.Context, snap *Snapshot) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{
		"notifications", "sessions", "password_resets", "idempotency_keys",
		"appraisals", "access_requests", "division_managers", "users",
	} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	// Managers are linked in a second pass so insert order does not matter.
	for _, u := range snap.Users {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, name, staff_id, email, role_id, division, region, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), (SELECT id FROM roles WHERE name = $5), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)`,
			u.ID, u.Name, u.StaffID, u.Email, u.Role, u.Division, u.Region, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
	}
	for _, u := range snap.Users {
		if u.ManagerID == "" {
			continue
		}
		if _, err := tx.Exec(ctx, `UPDATE users SET manager_id = $2 WHERE id = $1`, u.ID, u.ManagerID); err != nil {
			return fmt.Errorf("link manager of %s: %w", u.ID, err)
		}
	}

	for _, a := range snap.Appraisals {
		doc, err := json.Marshal(a.Document)
		if err != nil {
			return fmt.Errorf("encode appraisal %s document: %w", a.ID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO appraisals (id, employee_id, appraiser_id, period_start, period_end, status, created_by, version, document, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			a.ID, a.EmployeeID, a.AppraiserID, a.PeriodStart, a.PeriodEnd,
			a.Status, a.CreatedBy, a.Version, doc, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert appraisal %s: %w", a.ID, err)
		}
	}

	for _, r := range snap.AccessRequests {
		var reviewedBy any
		if r.ReviewedBy != "" {
			reviewedBy = r.ReviewedBy
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO access_requests (id, name, email, staff_id, role, division, notes, status, submitted_at, reviewed_at, reviewed_by)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, $9, $10, $11)`,
			r.ID, r.Name, r.Email, r.StaffID, r.Role, r.Division, r.Notes,
			r.Status, r.SubmittedAt, r.ReviewedAt, reviewedBy)
		if err != nil {
			return fmt.Errorf("insert access request %s: %w", r.ID, err)
		}
	}

	return tx.Commit(ctx)
}
