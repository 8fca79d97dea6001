package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	KindAppraisalSubmitted = "appraisal-submitted"
	KindAppraisalReviewed  = "appraisal-reviewed"
	KindAppraisalClosed    = "appraisal-closed"
	KindAccessApproved     = "access-approved"
	KindAccessRejected     = "access-rejected"
	KindReminder           = "reminder"
)

var ErrNotFound = errors.New("notification not found")

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	RefID     string    `json:"refId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Mailer delivers a copy of a notification out of band. Implementations
// must not block on remote failures longer than the context allows.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Service struct {
	DB     *pgxpool.Pool
	Mailer Mailer
	Logger *slog.Logger
}

func NewService(db *pgxpool.Pool, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{DB: db, Mailer: mailer, Logger: logger}
}

// Notify records an in-app notification and best-effort emails the
// recipient. Email failures are logged, never surfaced to the caller.
func (s *Service) Notify(ctx context.Context, userID, kind, message, refID string) (*Notification, error) {
	n := &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		RefID:     refID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.DB.Exec(ctx, `
		INSERT INTO notifications (id, user_id, kind, message, ref_id, read, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), false, $6)`,
		n.ID, n.UserID, n.Kind, n.Message, n.RefID, n.CreatedAt)
	if err != nil {
		return nil, err
	}

	if s.Mailer != nil {
		var email string
		err := s.DB.QueryRow(ctx, `SELECT COALESCE(email, '') FROM users WHERE id = $1`, userID).Scan(&email)
		if err == nil && email != "" {
			if err := s.Mailer.Send(ctx, email, "Staff Appraisal: "+kind, message); err != nil {
				s.Logger.Warn("notification email failed", "user", userID, "kind", kind, "error", err)
			}
		}
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error) {
	query := `
		SELECT id, user_id, kind, message, COALESCE(ref_id, ''), read, created_at
		FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := s.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.RefID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead flips a single notification. Scoped to the owner so one user
// cannot clear another's feed.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := s.DB.Exec(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx,
		`SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return count, err
}
