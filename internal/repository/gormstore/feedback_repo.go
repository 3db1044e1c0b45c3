package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
)

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a gorm-backed repository.FeedbackRepository.
func NewFeedbackRepository(db *gorm.DB) repository.FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Upsert relies on the unique index on progress_log_id and reloads the stored row.
func (r *feedbackRepository) Upsert(ctx context.Context, fb *domain.Feedback) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "progress_log_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"feedback", "coach_id", "updated_at"}),
		}).
		Create(fb).Error
	if err != nil {
		return translate(err)
	}
	stored, err := r.GetByLogID(ctx, fb.ProgressLogID)
	if err != nil {
		return err
	}
	*fb = *stored
	return nil
}

func (r *feedbackRepository) GetByLogID(ctx context.Context, logID uint) (*domain.Feedback, error) {
	var fb domain.Feedback
	err := r.db.WithContext(ctx).
		Preload("Coach").
		Where("progress_log_id = ?", logID).
		First(&fb).Error
	if err != nil {
		return nil, translate(err)
	}
	return &fb, nil
}

func (r *feedbackRepository) DeleteByLogID(ctx context.Context, logID uint) error {
	return translate(r.db.WithContext(ctx).
		Where("progress_log_id = ?", logID).
		Delete(&domain.Feedback{}).Error)
}
