package appraisal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("appraisal not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Filter expresses the conjunctive query layer: every set field narrows the
// result. Scope is resolved by the service before reaching the store.
type Filter struct {
	EmployeeID  string
	AppraiserID string
	Status      string
	Division    string
	Role        string
	Query       string
	PeriodFrom  time.Time
	PeriodTo    time.Time
	Sort        string
	Limit       int
	Offset      int
}

const (
	SortUpdated = "updated"
	SortPeriod  = "period"
	SortStatus  = "status"
)

const appraisalColumns = "id, employee_id, appraiser_id, period_start, period_end, status, created_by, version, document, created_at, updated_at"

func (s *Store) Create(ctx context.Context, a *Appraisal) error {
	docJSON, err := json.Marshal(a.Document)
	if err != nil {
		return err
	}
	return s.DB.QueryRow(ctx, `
    INSERT INTO appraisals (employee_id, appraiser_id, period_start, period_end, status, created_by, version, document)
    VALUES ($1,$2,$3,$4,$5,$6,1,$7)
    RETURNING id, version, created_at, updated_at
  `, a.EmployeeID, a.AppraiserID, a.PeriodStart, a.PeriodEnd, a.Status, a.CreatedBy, docJSON).
		Scan(&a.ID, &a.Version, &a.CreatedAt, &a.UpdatedAt)
}

func (s *Store) Get(ctx context.Context, id string) (*Appraisal, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+appraisalColumns+" FROM appraisals WHERE id = $1", id)
	return scanAppraisal(row)
}

// Update persists the document and bumps the version; it fails with
// ErrVersionConflict when another writer got there first.
func (s *Store) Update(ctx context.Context, a *Appraisal) error {
	docJSON, err := json.Marshal(a.Document)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisals
    SET period_start = $1, period_end = $2, document = $3, version = version + 1, updated_at = now()
    WHERE id = $4 AND version = $5
  `, a.PeriodStart, a.PeriodEnd, docJSON, a.ID, a.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	a.Version++
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, version int, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisals
    SET status = $1, version = version + 1, updated_at = now()
    WHERE id = $2 AND version = $3
  `, status, id, version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM appraisals WHERE id = $1", id)
	return err
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Appraisal, error) {
	query := `
    SELECT ` + appraisalColumns + `
    FROM appraisals a
    WHERE 1=1
  `
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(" AND "+clause, len(args))
	}

	if filter.EmployeeID != "" {
		add("a.employee_id = $%d", filter.EmployeeID)
	}
	if filter.AppraiserID != "" {
		add("a.appraiser_id = $%d", filter.AppraiserID)
	}
	if filter.Status != "" {
		add("a.status = $%d", filter.Status)
	}
	if !filter.PeriodFrom.IsZero() {
		add("a.period_start >= $%d", filter.PeriodFrom)
	}
	if !filter.PeriodTo.IsZero() {
		add("a.period_start <= $%d", filter.PeriodTo)
	}
	if filter.Division != "" {
		add("EXISTS (SELECT 1 FROM users e WHERE e.id = a.employee_id AND e.division = $%d)", filter.Division)
	}
	if filter.Role != "" {
		add("EXISTS (SELECT 1 FROM users e JOIN roles r ON e.role_id = r.id WHERE e.id = a.employee_id AND r.name = $%d)", filter.Role)
	}
	if filter.Query != "" {
		add(`EXISTS (
      SELECT 1 FROM users e
      WHERE e.id IN (a.employee_id, a.appraiser_id)
        AND (e.name ILIKE '%%' || $%d || '%%' OR e.staff_id ILIKE '%%' || $%[1]d || '%%')
    )`, filter.Query)
	}

	switch filter.Sort {
	case SortPeriod:
		query += " ORDER BY a.period_start DESC"
	case SortStatus:
		query += " ORDER BY a.status ASC, a.updated_at DESC"
	default:
		query += " ORDER BY a.updated_at DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Appraisal
	for rows.Next() {
		a, err := scanAppraisal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppraisal(row rowScanner) (*Appraisal, error) {
	var a Appraisal
	var docJSON []byte
	if err := row.Scan(&a.ID, &a.EmployeeID, &a.AppraiserID, &a.PeriodStart, &a.PeriodEnd,
		&a.Status, &a.CreatedBy, &a.Version, &docJSON, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(docJSON, &a.Document); err != nil {
		return nil, err
	}
	return &a, nil
}
