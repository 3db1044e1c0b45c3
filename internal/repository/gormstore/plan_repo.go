package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
)

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a gorm-backed repository.PlanRepository.
func NewPlanRepository(db *gorm.DB) repository.PlanRepository {
	return &planRepository{db: db}
}

// CreateActive deactivates the client's current plans and inserts the new one
// in a single transaction.
func (r *planRepository) CreateActive(ctx context.Context, plan *domain.Plan) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Plan{}).
			Where("client_id = ? AND is_active = ?", plan.ClientID, true).
			Update("is_active", false).Error
		if err != nil {
			return err
		}
		plan.IsActive = true
		return tx.Omit(clause.Associations).Create(plan).Error
	}))
}

func (r *planRepository) GetByID(ctx context.Context, id uint) (*domain.Plan, error) {
	var plan domain.Plan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}

func (r *planRepository) Update(ctx context.Context, plan *domain.Plan) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(plan).Error)
}

func (r *planRepository) ListByCoach(ctx context.Context, coachID uint) ([]domain.Plan, error) {
	var plans []domain.Plan
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("coach_id = ?", coachID).
		Order("created_at DESC, id DESC").
		Find(&plans).Error
	return plans, translate(err)
}

func (r *planRepository) ListByClient(ctx context.Context, clientID uint) ([]domain.Plan, error) {
	var plans []domain.Plan
	err := r.db.WithContext(ctx).
		Preload("Coach").
		Where("client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		Find(&plans).Error
	return plans, translate(err)
}

func (r *planRepository) GetActiveForClient(ctx context.Context, clientID uint) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.db.WithContext(ctx).
		Preload("Coach").
		Where("client_id = ? AND is_active = ?", clientID, true).
		Order("created_at DESC, id DESC").
		First(&plan).Error
	if err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}

func (r *planRepository) ExistsForClient(ctx context.Context, clientID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Plan{}).Where("client_id = ?", clientID).Count(&n).Error
	return n > 0, translate(err)
}

func (r *planRepository) LinksCoachAndClient(ctx context.Context, coachID, clientID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Plan{}).
		Where("coach_id = ? AND client_id = ?", coachID, clientID).
		Count(&n).Error
	return n > 0, translate(err)
}
