package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/events"
	"mjnutrafit/coaching-api/internal/metrics"
	"mjnutrafit/coaching-api/internal/repository"
)

// ReviewAction is the decision a coach takes on a submitted log.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

type CoachService interface {
	PendingClients(ctx context.Context) ([]domain.User, error)
	// ApproveClient activates a pending client. A client without any plan is
	// given a placeholder plan from a randomly chosen active coach.
	ApproveClient(ctx context.Context, coach *domain.User, clientID uint) (*domain.User, error)
	RejectClient(ctx context.Context, coach *domain.User, clientID uint) (*domain.User, error)
	MyClients(ctx context.Context, coach *domain.User) ([]domain.ClientSummary, error)
	// ReviewLog approves or rejects a submitted log of a client linked to coach by a plan.
	ReviewLog(ctx context.Context, coach *domain.User, logID uint, action ReviewAction, feedback string) (*domain.ProgressLog, error)
}

type coachService struct {
	userRepo     repository.UserRepository
	planRepo     repository.PlanRepository
	progressRepo repository.ProgressRepository
	feedbackRepo repository.FeedbackRepository
	reportRepo   repository.ReportRepository
	events       events.Publisher
	log          *logrus.Logger
	pick         func(n int) int
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	progressRepo repository.ProgressRepository,
	feedbackRepo repository.FeedbackRepository,
	reportRepo repository.ReportRepository,
	publisher events.Publisher,
	log *logrus.Logger,
) CoachService {
	return &coachService{
		userRepo:     userRepo,
		planRepo:     planRepo,
		progressRepo: progressRepo,
		feedbackRepo: feedbackRepo,
		reportRepo:   reportRepo,
		events:       publisher,
		log:          log,
		pick:         rand.Intn,
	}
}

// === Client approval ===

func (s *coachService) PendingClients(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.ListByRoleAndStatus(ctx, domain.RoleClient, domain.StatusPending)
}

// pendingClient loads clientID and checks it is a client awaiting review.
func (s *coachService) pendingClient(ctx context.Context, coach *domain.User, clientID uint) (*domain.User, error) {
	if !coach.IsCoach() {
		return nil, ErrForbidden
	}
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotFound
	}
	if client.Status != domain.StatusPending {
		return nil, ErrClientNotPending
	}
	return client, nil
}

func (s *coachService) ApproveClient(ctx context.Context, coach *domain.User, clientID uint) (*domain.User, error) {
	client, err := s.pendingClient(ctx, coach, clientID)
	if err != nil {
		return nil, err
	}

	hasPlan, err := s.planRepo.ExistsForClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	if !hasPlan {
		if err := s.assignPlaceholderPlan(ctx, client); err != nil {
			return nil, err
		}
	}

	client.Status = domain.StatusActive
	if err := s.userRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	metrics.RecordClientDecision("approved")
	publish(ctx, s.events, s.log, events.ClientApproved, map[string]any{
		"clientId": client.ID,
		"coachId":  coach.ID,
	})
	return client, nil
}

func (s *coachService) assignPlaceholderPlan(ctx context.Context, client *domain.User) error {
	coachIDs, err := s.userRepo.ListActiveCoachIDs(ctx)
	if err != nil {
		return err
	}
	if len(coachIDs) == 0 {
		s.log.WithField("clientId", client.ID).Warn("no active coach available for placeholder plan")
		return nil
	}
	plan := &domain.Plan{
		CoachID:     coachIDs[s.pick(len(coachIDs))],
		ClientID:    client.ID,
		DietText:    domain.PlaceholderDietText,
		WorkoutText: domain.PlaceholderWorkoutText,
	}
	return s.planRepo.CreateActive(ctx, plan)
}

func (s *coachService) RejectClient(ctx context.Context, coach *domain.User, clientID uint) (*domain.User, error) {
	client, err := s.pendingClient(ctx, coach, clientID)
	if err != nil {
		return nil, err
	}

	client.Status = domain.StatusRejected
	if err := s.userRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	metrics.RecordClientDecision("rejected")
	publish(ctx, s.events, s.log, events.ClientRejected, map[string]any{
		"clientId": client.ID,
		"coachId":  coach.ID,
	})
	return client, nil
}

func (s *coachService) MyClients(ctx context.Context, coach *domain.User) ([]domain.ClientSummary, error) {
	if !coach.IsCoach() {
		return nil, ErrForbidden
	}
	return s.reportRepo.CoachClientSummaries(ctx, coach.ID)
}

// === Progress review ===

func (s *coachService) ReviewLog(ctx context.Context, coach *domain.User, logID uint, action ReviewAction, feedback string) (*domain.ProgressLog, error) {
	if !coach.IsCoach() {
		return nil, ErrForbidden
	}

	// 1. The log must exist and belong to one of the coach's clients
	entry, err := s.progressRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	linked, err := s.planRepo.LinksCoachAndClient(ctx, coach.ID, entry.ClientID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, ErrForbidden
	}

	// 2. Validate the transition
	if action != ReviewApprove && action != ReviewReject {
		return nil, ErrInvalidAction
	}
	if entry.Status != domain.LogSubmitted {
		return nil, ErrLogNotReviewable
	}
	feedback = strings.TrimSpace(feedback)
	if action == ReviewReject && feedback == "" {
		return nil, ErrFeedbackRequired
	}

	// 3. Apply it
	switch action {
	case ReviewApprove:
		entry.Status = domain.LogApproved
		if err := s.progressRepo.Update(ctx, entry); err != nil {
			return nil, err
		}
		if err := s.feedbackRepo.DeleteByLogID(ctx, entry.ID); err != nil {
			return nil, err
		}
		entry.Feedback = nil
	case ReviewReject:
		entry.Status = domain.LogRejected
		if err := s.progressRepo.Update(ctx, entry); err != nil {
			return nil, err
		}
		fb := &domain.Feedback{ProgressLogID: entry.ID, CoachID: coach.ID, Text: feedback}
		if err := s.feedbackRepo.Upsert(ctx, fb); err != nil {
			return nil, err
		}
		entry.Feedback = fb
	}

	metrics.RecordReview(string(action))
	publish(ctx, s.events, s.log, events.ProgressReviewed, map[string]any{
		"logId":    entry.ID,
		"clientId": entry.ClientID,
		"coachId":  coach.ID,
		"action":   string(action),
	})
	return entry, nil
}
