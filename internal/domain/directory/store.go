package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = `
  u.id, u.name, u.staff_id, COALESCE(u.email, ''), r.name,
  COALESCE(u.manager_id::text, ''), COALESCE(u.division, ''), COALESCE(u.region, ''),
  u.created_at, u.updated_at`

const userJoin = " FROM users u JOIN roles r ON u.role_id = r.id "

func (s *Store) Get(ctx context.Context, id string) (*User, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+userColumns+userJoin+"WHERE u.id = $1", id)
	return scanUser(row)
}

func (s *Store) GetByStaffID(ctx context.Context, staffID string) (*User, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+userColumns+userJoin+"WHERE u.staff_id = $1", staffID)
	return scanUser(row)
}

func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE id = $1", id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) EmailInUse(ctx context.Context, email string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// FirstWithRole returns the longest-serving holder of a role.
func (s *Store) FirstWithRole(ctx context.Context, role string) (*User, error) {
	row := s.DB.QueryRow(ctx,
		"SELECT"+userColumns+userJoin+"WHERE r.name = $1 ORDER BY u.created_at ASC LIMIT 1", role)
	return scanUser(row)
}

func (s *Store) ManagerOf(ctx context.Context, id string) (string, error) {
	var managerID *string
	if err := s.DB.QueryRow(ctx, "SELECT manager_id FROM users WHERE id = $1", id).Scan(&managerID); err != nil {
		return "", err
	}
	if managerID == nil {
		return "", nil
	}
	return *managerID, nil
}

type ListFilter struct {
	Query    string
	Role     string
	Division string
	Region   string
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]User, error) {
	query := "SELECT" + userColumns + userJoin + "WHERE 1=1"
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(" AND "+clause, len(args))
	}

	if filter.Role != "" {
		add("r.name = $%d", filter.Role)
	}
	if filter.Division != "" {
		add("u.division = $%d", filter.Division)
	}
	if filter.Region != "" {
		add("u.region = $%d", filter.Region)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		add(`(u.name ILIKE '%%' || $%d || '%%'
      OR u.staff_id ILIKE '%%' || $%[1]d || '%%'
      OR r.name ILIKE '%%' || $%[1]d || '%%'
      OR COALESCE(u.division, '') ILIKE '%%' || $%[1]d || '%%'
      OR COALESCE(u.email, '') ILIKE '%%' || $%[1]d || '%%')`, q)
	}
	query += " ORDER BY u.name ASC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (s *Store) Reports(ctx context.Context, managerID string) ([]User, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+userColumns+userJoin+"WHERE u.manager_id = $1 ORDER BY u.name ASC", managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (s *Store) Create(ctx context.Context, u *User, passwordHash string) error {
	return s.DB.QueryRow(ctx, `
    INSERT INTO users (name, staff_id, email, role_id, manager_id, division, region, password_hash)
    VALUES ($1,$2,NULLIF($3,''),(SELECT id FROM roles WHERE name = $4),NULLIF($5,'')::uuid,NULLIF($6,''),NULLIF($7,''),$8)
    RETURNING id, created_at, updated_at
  `, u.Name, u.StaffID, u.Email, u.Role, u.ManagerID, u.Division, u.Region, passwordHash).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (s *Store) Update(ctx context.Context, u *User) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET name = $1, staff_id = $2, email = NULLIF($3,''),
        role_id = (SELECT id FROM roles WHERE name = $4),
        manager_id = NULLIF($5,'')::uuid, division = NULLIF($6,''), region = NULLIF($7,''),
        updated_at = now()
    WHERE id = $8
  `, u.Name, u.StaffID, u.Email, u.Role, u.ManagerID, u.Division, u.Region, u.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user and clears the manager reference on their direct
// reports so no dangling edge survives.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "UPDATE users SET manager_id = NULL, updated_at = now() WHERE manager_id = $1", id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// Hierarchy materializes the manager adjacency map from users.manager_id,
// which is the single source of truth for reporting lines.
func (s *Store) Hierarchy(ctx context.Context) (map[string][]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT manager_id, id FROM users WHERE manager_id IS NOT NULL ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var managerID, id string
		if err := rows.Scan(&managerID, &id); err != nil {
			return nil, err
		}
		out[managerID] = append(out[managerID], id)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.StaffID, &u.Email, &u.Role, &u.ManagerID, &u.Division, &u.Region, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.StaffID, &u.Email, &u.Role, &u.ManagerID, &u.Division, &u.Region, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
