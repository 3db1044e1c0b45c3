package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a gorm-backed repository.ReportRepository.
func NewReportRepository(db *gorm.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

// Each log row is repeated once per plan linking the pair, which leaves the
// averages and extremes unchanged; counts use DISTINCT.
const coachClientSummariesSQL = `
SELECT u.id, u.first_name, u.last_name, u.email, u.status, u.created_at,
       COUNT(DISTINCT p.id) AS plan_count,
       COUNT(DISTINCT pl.id) AS log_count,
       COALESCE(AVG(pl.meal_adherence), 0) AS avg_meal_adherence,
       COALESCE(AVG(pl.workout_completion), 0) AS avg_workout_completion,
       MAX(pl.weight) AS max_weight,
       MIN(pl.weight) AS min_weight
FROM users u
INNER JOIN plans p ON p.client_id = u.id AND p.coach_id = ?
LEFT JOIN progress_logs pl ON pl.client_id = u.id
GROUP BY u.id, u.first_name, u.last_name, u.email, u.status, u.created_at
ORDER BY u.created_at DESC, u.id DESC`

type clientSummaryRow struct {
	ID                   uint
	FirstName            string
	LastName             string
	Email                string
	Status               string
	CreatedAt            time.Time
	PlanCount            int64
	LogCount             int64
	AvgMealAdherence     float64
	AvgWorkoutCompletion float64
	MaxWeight            *float64
	MinWeight            *float64
}

func (r *reportRepository) CoachClientSummaries(ctx context.Context, coachID uint) ([]domain.ClientSummary, error) {
	var rows []clientSummaryRow
	if err := r.db.WithContext(ctx).Raw(coachClientSummariesSQL, coachID).Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}
	summaries := make([]domain.ClientSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.ClientSummary{
			ID:                   row.ID,
			FirstName:            row.FirstName,
			LastName:             row.LastName,
			Email:                row.Email,
			Status:               domain.UserStatus(row.Status),
			CreatedAt:            row.CreatedAt,
			PlanCount:            row.PlanCount,
			LogCount:             row.LogCount,
			AvgMealAdherence:     row.AvgMealAdherence,
			AvgWorkoutCompletion: row.AvgWorkoutCompletion,
			MaxWeight:            row.MaxWeight,
			MinWeight:            row.MinWeight,
		})
	}
	return summaries, nil
}
