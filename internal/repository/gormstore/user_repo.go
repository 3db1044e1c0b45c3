package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a gorm-backed repository.UserRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. The email is normalized and must be unique.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("email = ?", domain.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Update writes every column of user back.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error)
}

func (r *userRepository) ListByRoleAndStatus(ctx context.Context, role domain.Role, status domain.UserStatus) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", role, status).
		Order("created_at DESC, id DESC").
		Find(&users).Error
	return users, translate(err)
}

func (r *userRepository) ListActiveCoachIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("role = ? AND status = ?", domain.RoleCoach, domain.StatusActive).
		Order("id").
		Pluck("id", &ids).Error
	return ids, translate(err)
}
