package service

import (
	"context"
	"errors"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
)

const (
	clientTrendSize = 10
	coachTrendSize  = 5
)

// Submission summarises a client's most recent log.
type Submission struct {
	Status        domain.LogStatus `json:"status"`
	WeekStartDate domain.Date      `json:"weekStartDate"`
	Weight        float64          `json:"weight"`
}

type ClientDashboard struct {
	LatestWeight   *float64            `json:"latestWeight"`
	LastSubmission *Submission         `json:"lastSubmission"`
	WeightTrend    []domain.TrendPoint `json:"weightTrend"`
	CurrentPlan    *domain.Plan        `json:"currentPlan"`
}

type CoachDashboard struct {
	Clients          []domain.ClientSummary       `json:"clients"`
	WeightTrends     map[uint][]domain.TrendPoint `json:"weightTrends"`
	PendingLogsCount int64                        `json:"pendingLogsCount"`
}

type DashboardService interface {
	Client(ctx context.Context, client *domain.User) (*ClientDashboard, error)
	Coach(ctx context.Context, coach *domain.User) (*CoachDashboard, error)
}

type dashboardService struct {
	planRepo     repository.PlanRepository
	progressRepo repository.ProgressRepository
	reportRepo   repository.ReportRepository
}

// NewDashboardService creates a new instance of dashboardService.
func NewDashboardService(
	planRepo repository.PlanRepository,
	progressRepo repository.ProgressRepository,
	reportRepo repository.ReportRepository,
) DashboardService {
	return &dashboardService{planRepo: planRepo, progressRepo: progressRepo, reportRepo: reportRepo}
}

func (s *dashboardService) Client(ctx context.Context, client *domain.User) (*ClientDashboard, error) {
	if !client.IsClient() {
		return nil, ErrForbidden
	}

	recent, err := s.progressRepo.Recent(ctx, client.ID, clientTrendSize)
	if err != nil {
		return nil, err
	}
	dash := &ClientDashboard{WeightTrend: domain.TrendFromLogs(recent)}
	if len(recent) > 0 {
		latest := recent[0]
		dash.LatestWeight = &latest.Weight
		dash.LastSubmission = &Submission{
			Status:        latest.Status,
			WeekStartDate: domain.Date(latest.WeekStartDate),
			Weight:        latest.Weight,
		}
	}

	plan, err := s.planRepo.GetActiveForClient(ctx, client.ID)
	switch {
	case err == nil:
		dash.CurrentPlan = plan
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return dash, nil
}

func (s *dashboardService) Coach(ctx context.Context, coach *domain.User) (*CoachDashboard, error) {
	if !coach.IsCoach() {
		return nil, ErrForbidden
	}

	clients, err := s.reportRepo.CoachClientSummaries(ctx, coach.ID)
	if err != nil {
		return nil, err
	}

	trends := make(map[uint][]domain.TrendPoint, len(clients))
	for i := range clients {
		recent, err := s.progressRepo.Recent(ctx, clients[i].ID, coachTrendSize)
		if err != nil {
			return nil, err
		}
		trends[clients[i].ID] = domain.TrendFromLogs(recent)
		if len(recent) > 0 {
			last := domain.Date(recent[0].WeekStartDate)
			clients[i].LastLogDate = &last
		}
	}

	pending, err := s.progressRepo.CountSubmittedForCoach(ctx, coach.ID)
	if err != nil {
		return nil, err
	}
	return &CoachDashboard{Clients: clients, WeightTrends: trends, PendingLogsCount: pending}, nil
}
