package service

import (
	"context"
	"errors"
	"strings"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
)

// PlanInput is the body of a plan creation.
type PlanInput struct {
	ClientID    uint
	DietText    string
	WorkoutText string
}

// PlanUpdate carries the fields to overwrite; nil or blank fields are kept.
type PlanUpdate struct {
	DietText    *string
	WorkoutText *string
}

type PlanService interface {
	// Create supersedes the client's active plan with a new one authored by coach.
	Create(ctx context.Context, coach *domain.User, in PlanInput) (*domain.Plan, error)
	// List returns the plans a coach authored, or the plans assigned to a client.
	List(ctx context.Context, user *domain.User) ([]domain.Plan, error)
	Current(ctx context.Context, client *domain.User) (*domain.Plan, error)
	Update(ctx context.Context, coach *domain.User, planID uint, in PlanUpdate) (*domain.Plan, error)
}

type planService struct {
	userRepo repository.UserRepository
	planRepo repository.PlanRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(userRepo repository.UserRepository, planRepo repository.PlanRepository) PlanService {
	return &planService{userRepo: userRepo, planRepo: planRepo}
}

func (s *planService) Create(ctx context.Context, coach *domain.User, in PlanInput) (*domain.Plan, error) {
	if !coach.IsCoach() {
		return nil, ErrForbidden
	}

	in.DietText = strings.TrimSpace(in.DietText)
	in.WorkoutText = strings.TrimSpace(in.WorkoutText)
	var msgs []string
	if in.ClientID == 0 {
		msgs = append(msgs, "Client is required")
	}
	if in.DietText == "" {
		msgs = append(msgs, "Diet text cannot be empty")
	}
	if in.WorkoutText == "" {
		msgs = append(msgs, "Workout text cannot be empty")
	}
	if err := validationErr(msgs); err != nil {
		return nil, err
	}

	client, err := s.userRepo.GetByID(ctx, in.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotFound
	}

	plan := &domain.Plan{
		CoachID:     coach.ID,
		ClientID:    client.ID,
		DietText:    in.DietText,
		WorkoutText: in.WorkoutText,
	}
	if err := s.planRepo.CreateActive(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) List(ctx context.Context, user *domain.User) ([]domain.Plan, error) {
	if user.IsCoach() {
		return s.planRepo.ListByCoach(ctx, user.ID)
	}
	return s.planRepo.ListByClient(ctx, user.ID)
}

func (s *planService) Current(ctx context.Context, client *domain.User) (*domain.Plan, error) {
	if !client.IsClient() {
		return nil, ErrForbidden
	}
	plan, err := s.planRepo.GetActiveForClient(ctx, client.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoActivePlan
	}
	return plan, err
}

// Update only touches plans coach authored; anything else reads as not found.
func (s *planService) Update(ctx context.Context, coach *domain.User, planID uint, in PlanUpdate) (*domain.Plan, error) {
	if !coach.IsCoach() {
		return nil, ErrForbidden
	}
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.CoachID != coach.ID {
		return nil, ErrPlanNotFound
	}

	if v, ok := nonBlank(in.DietText); ok {
		plan.DietText = v
	}
	if v, ok := nonBlank(in.WorkoutText); ok {
		plan.WorkoutText = v
	}
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}
