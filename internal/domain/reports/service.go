package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/appraisal"
)

type Summary struct {
	TotalAppraisals   int             `json:"totalAppraisals"`
	StatusCounts      map[string]int  `json:"statusCounts"`
	CompletionRate    float64         `json:"completionRate"`
	AverageRating     float64         `json:"averageRating"`
	AveragePercentage float64         `json:"averagePercentage"`
	Divisions         []DivisionStats `json:"divisions"`
}

type DivisionStats struct {
	Division      string  `json:"division"`
	Total         int     `json:"total"`
	Closed        int     `json:"closed"`
	AverageRating float64 `json:"averageRating"`
}

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Summary aggregates appraisal progress across the organisation.
// Ratings are averaged over reviewed and closed appraisals only, since
// earlier stages carry provisional scores.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	out := &Summary{StatusCounts: map[string]int{}}

	rows, err := s.DB.Query(ctx, `SELECT status, COUNT(1) FROM appraisals GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		out.StatusCounts[status] = count
		out.TotalAppraisals += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if out.TotalAppraisals > 0 {
		out.CompletionRate = float64(out.StatusCounts[appraisal.StatusClosed]) / float64(out.TotalAppraisals)
	}

	err = s.DB.QueryRow(ctx, `
		SELECT COALESCE(AVG((document->'overallAssessment'->>'overallRating')::numeric), 0),
		       COALESCE(AVG((document->'overallAssessment'->>'overallPercentage')::numeric), 0)
		FROM appraisals
		WHERE status IN ($1, $2)`,
		appraisal.StatusReviewed, appraisal.StatusClosed).Scan(&out.AverageRating, &out.AveragePercentage)
	if err != nil {
		return nil, err
	}

	divRows, err := s.DB.Query(ctx, `
		SELECT COALESCE(u.division, ''),
		       COUNT(1),
		       COUNT(1) FILTER (WHERE a.status = $1),
		       COALESCE(AVG((a.document->'overallAssessment'->>'overallRating')::numeric)
		                FILTER (WHERE a.status IN ($2, $1)), 0)
		FROM appraisals a
		JOIN users u ON u.id = a.employee_id
		GROUP BY COALESCE(u.division, '')
		ORDER BY COALESCE(u.division, '')`,
		appraisal.StatusClosed, appraisal.StatusReviewed)
	if err != nil {
		return nil, err
	}
	defer divRows.Close()

	for divRows.Next() {
		var d DivisionStats
		if err := divRows.Scan(&d.Division, &d.Total, &d.Closed, &d.AverageRating); err != nil {
			return nil, err
		}
		out.Divisions = append(out.Divisions, d)
	}
	return out, divRows.Err()
}
