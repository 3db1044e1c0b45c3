package repository

import (
	"context"
	"time"

	"mjnutrafit/coaching-api/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// ListByRoleAndStatus returns matching users, newest first.
	ListByRoleAndStatus(ctx context.Context, role domain.Role, status domain.UserStatus) ([]domain.User, error)
	ListActiveCoachIDs(ctx context.Context) ([]uint, error)
}

// PlanRepository defines the interface for interacting with plan data.
type PlanRepository interface {
	// CreateActive deactivates every active plan of plan.ClientID and inserts plan as active.
	CreateActive(ctx context.Context, plan *domain.Plan) error
	GetByID(ctx context.Context, id uint) (*domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	ListByCoach(ctx context.Context, coachID uint) ([]domain.Plan, error)   // Client preloaded
	ListByClient(ctx context.Context, clientID uint) ([]domain.Plan, error) // Coach preloaded
	GetActiveForClient(ctx context.Context, clientID uint) (*domain.Plan, error)
	ExistsForClient(ctx context.Context, clientID uint) (bool, error)
	// LinksCoachAndClient reports whether any plan row ties coachID to clientID.
	LinksCoachAndClient(ctx context.Context, coachID, clientID uint) (bool, error)
}

// ProgressRepository defines the interface for interacting with progress logs.
type ProgressRepository interface {
	Create(ctx context.Context, log *domain.ProgressLog) error
	Update(ctx context.Context, log *domain.ProgressLog) error
	GetByID(ctx context.Context, id uint) (*domain.ProgressLog, error) // Client and Feedback.Coach preloaded
	GetByClientAndWeek(ctx context.Context, clientID uint, week time.Time) (*domain.ProgressLog, error)
	ListByClient(ctx context.Context, clientID uint) ([]domain.ProgressLog, error) // newest week first
	ListForCoach(ctx context.Context, coachID uint) ([]domain.ProgressLog, error)  // logs of clients linked by a plan
	Recent(ctx context.Context, clientID uint, limit int) ([]domain.ProgressLog, error)
	CountSubmittedForCoach(ctx context.Context, coachID uint) (int64, error)
}

// FeedbackRepository defines the interface for interacting with review feedback.
type FeedbackRepository interface {
	// Upsert creates the feedback for fb.ProgressLogID or overwrites its text and coach.
	Upsert(ctx context.Context, fb *domain.Feedback) error
	GetByLogID(ctx context.Context, logID uint) (*domain.Feedback, error)
	DeleteByLogID(ctx context.Context, logID uint) error
}

// ReportRepository computes read-only aggregates for dashboards.
type ReportRepository interface {
	// CoachClientSummaries returns every client linked to coachID by a plan, newest client first.
	// LastLogDate is left nil; callers derive it from trend data.
	CoachClientSummaries(ctx context.Context, coachID uint) ([]domain.ClientSummary, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users    UserRepository
	Plans    PlanRepository
	Progress ProgressRepository
	Feedback FeedbackRepository
	Reports  ReportRepository

	// Migrate creates or updates the schema/indexes. Close releases the connection.
	Migrate func(ctx context.Context) error
	Close   func() error
}
