package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/events"
	"mjnutrafit/coaching-api/internal/metrics"
	"mjnutrafit/coaching-api/internal/repository"
)

// ProgressInput is a client's weekly report.
type ProgressInput struct {
	WeekStartDate     time.Time
	Weight            float64
	MealAdherence     int
	WorkoutCompletion int
	Notes             *string
}

type ProgressService interface {
	// Submit records the report for a week. Any existing log for the same
	// week is a conflict, including a rejected one.
	Submit(ctx context.Context, client *domain.User, in ProgressInput) (*domain.ProgressLog, error)
	// List returns a client's own logs or the logs of a coach's clients.
	List(ctx context.Context, user *domain.User) ([]domain.ProgressLog, error)
	Get(ctx context.Context, user *domain.User, id uint) (*domain.ProgressLog, error)
}

type progressService struct {
	planRepo     repository.PlanRepository
	progressRepo repository.ProgressRepository
	events       events.Publisher
	log          *logrus.Logger
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	planRepo repository.PlanRepository,
	progressRepo repository.ProgressRepository,
	publisher events.Publisher,
	log *logrus.Logger,
) ProgressService {
	return &progressService{
		planRepo:     planRepo,
		progressRepo: progressRepo,
		events:       publisher,
		log:          log,
	}
}

func (s *progressService) Submit(ctx context.Context, client *domain.User, in ProgressInput) (*domain.ProgressLog, error) {
	// 1. Only approved clients report progress
	if !client.IsClient() {
		return nil, ErrForbidden
	}
	if !client.IsActive() {
		return nil, ErrAccountInactive
	}

	// 2. Field rules
	if in.Notes != nil {
		if trimmed := strings.TrimSpace(*in.Notes); trimmed == "" {
			in.Notes = nil
		} else {
			in.Notes = &trimmed
		}
	}
	entry := &domain.ProgressLog{
		ClientID:          client.ID,
		WeekStartDate:     in.WeekStartDate,
		Weight:            math.Round(in.Weight*100) / 100,
		MealAdherence:     in.MealAdherence,
		WorkoutCompletion: in.WorkoutCompletion,
		Notes:             in.Notes,
		Status:            domain.LogSubmitted,
	}
	if err := validationErr(entry.Validate()); err != nil {
		return nil, err
	}
	entry.WeekStartDate = domain.NormalizeWeek(entry.WeekStartDate)

	// 3. One log per week, whatever its review status
	_, err := s.progressRepo.GetByClientAndWeek(ctx, client.ID, entry.WeekStartDate)
	switch {
	case err == nil:
		return nil, ErrDuplicateWeek
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	if err := s.progressRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	metrics.RecordProgressSubmission()
	publish(ctx, s.events, s.log, events.ProgressSubmitted, map[string]any{
		"logId":         entry.ID,
		"clientId":      client.ID,
		"weekStartDate": entry.WeekStartDate.Format(domain.WeekLayout),
	})
	return entry, nil
}

func (s *progressService) List(ctx context.Context, user *domain.User) ([]domain.ProgressLog, error) {
	if user.IsCoach() {
		return s.progressRepo.ListForCoach(ctx, user.ID)
	}
	return s.progressRepo.ListByClient(ctx, user.ID)
}

// Get hides logs the user may not see behind ErrLogNotFound.
func (s *progressService) Get(ctx context.Context, user *domain.User, id uint) (*domain.ProgressLog, error) {
	entry, err := s.progressRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	if user.IsCoach() {
		linked, err := s.planRepo.LinksCoachAndClient(ctx, user.ID, entry.ClientID)
		if err != nil {
			return nil, err
		}
		if !linked {
			return nil, ErrLogNotFound
		}
		return entry, nil
	}
	if entry.ClientID != user.ID {
		return nil, ErrLogNotFound
	}
	return entry, nil
}
