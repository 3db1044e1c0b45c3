package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
)

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a gorm-backed repository.ProgressRepository.
func NewProgressRepository(db *gorm.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Create(ctx context.Context, log *domain.ProgressLog) error {
	log.WeekStartDate = domain.NormalizeWeek(log.WeekStartDate)
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(log).Error)
}

func (r *progressRepository) Update(ctx context.Context, log *domain.ProgressLog) error {
	log.WeekStartDate = domain.NormalizeWeek(log.WeekStartDate)
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(log).Error)
}

func (r *progressRepository) GetByID(ctx context.Context, id uint) (*domain.ProgressLog, error) {
	var log domain.ProgressLog
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Feedback.Coach").
		First(&log, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &log, nil
}

func (r *progressRepository) GetByClientAndWeek(ctx context.Context, clientID uint, week time.Time) (*domain.ProgressLog, error) {
	var log domain.ProgressLog
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND week_start_date = ?", clientID, domain.NormalizeWeek(week)).
		First(&log).Error
	if err != nil {
		return nil, translate(err)
	}
	return &log, nil
}

func (r *progressRepository) ListByClient(ctx context.Context, clientID uint) ([]domain.ProgressLog, error) {
	var logs []domain.ProgressLog
	err := r.db.WithContext(ctx).
		Preload("Feedback.Coach").
		Where("client_id = ?", clientID).
		Order("week_start_date DESC, id DESC").
		Find(&logs).Error
	return logs, translate(err)
}

// coachClients is the subquery selecting every client a coach authored a plan for.
func (r *progressRepository) coachClients(ctx context.Context, coachID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&domain.Plan{}).
		Select("client_id").
		Where("coach_id = ?", coachID)
}

func (r *progressRepository) ListForCoach(ctx context.Context, coachID uint) ([]domain.ProgressLog, error) {
	var logs []domain.ProgressLog
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Feedback").
		Where("client_id IN (?)", r.coachClients(ctx, coachID)).
		Order("week_start_date DESC, id DESC").
		Find(&logs).Error
	return logs, translate(err)
}

func (r *progressRepository) Recent(ctx context.Context, clientID uint, limit int) ([]domain.ProgressLog, error) {
	var logs []domain.ProgressLog
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("week_start_date DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, translate(err)
}

func (r *progressRepository) CountSubmittedForCoach(ctx context.Context, coachID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.ProgressLog{}).
		Where("status = ? AND client_id IN (?)", domain.LogSubmitted, r.coachClients(ctx, coachID)).
		Count(&n).Error
	return n, translate(err)
}
