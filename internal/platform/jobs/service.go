package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/notifications"
	"appraisal/internal/platform/config"
)

const (
	JobStaleReminders = "stale_appraisal_reminders"
	JobSessionPurge   = "session_purge"
)

// staleAfter is how long an appraisal may sit untouched in an open
// status before the responsible actor is reminded.
const staleAfter = 14 * 24 * time.Hour

type Service struct {
	DB       *pgxpool.Pool
	Cfg      config.Config
	Notifier *notifications.Service
	queue    chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, notifier *notifications.Service) *Service {
	return &Service{
		DB:       db,
		Cfg:      cfg,
		Notifier: notifier,
		queue:    make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ReminderInterval > 0 {
		go s.schedule(ctx, s.Cfg.ReminderInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobStaleReminders, s.remindStale)
			s.Enqueue(JobSessionPurge, s.purgeSessions)
		}
	}
}

type staleAppraisal struct {
	ID          string
	EmployeeID  string
	AppraiserID string
	Status      string
}

// remindStale nudges whoever owes the next action on an appraisal that
// has not moved for staleAfter. Draft waits on the employee, the review
// stages wait on the appraiser.
func (s *Service) remindStale(ctx context.Context) (any, error) {
	cutoff := time.Now().UTC().Add(-staleAfter)
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, appraiser_id, status
    FROM appraisals
    WHERE status IN ($1, $2, $3) AND updated_at < $4
  `, appraisal.StatusDraft, appraisal.StatusPendingReview, appraisal.StatusSubmitted, cutoff)
	if err != nil {
		return nil, err
	}
	var stale []staleAppraisal
	for rows.Next() {
		var a staleAppraisal
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.AppraiserID, &a.Status); err != nil {
			rows.Close()
			return nil, err
		}
		stale = append(stale, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reminded := 0
	for _, a := range stale {
		target := a.AppraiserID
		if a.Status == appraisal.StatusDraft {
			target = a.EmployeeID
		}
		msg := fmt.Sprintf("Appraisal %s has been waiting in %s for over %d days", a.ID, a.Status, int(staleAfter.Hours()/24))
		if _, err := s.Notifier.Notify(ctx, target, notifications.KindReminder, msg, a.ID); err != nil {
			slog.Warn("stale reminder failed", "appraisal", a.ID, "err", err)
			continue
		}
		reminded++
	}
	return map[string]any{"stale": len(stale), "reminded": reminded}, nil
}

func (s *Service) purgeSessions(ctx context.Context) (any, error) {
	tag, err := s.DB.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return nil, err
	}
	return map[string]any{"purged": tag.RowsAffected()}, nil
}
