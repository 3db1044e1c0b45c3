package mongo

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"mjnutrafit/coaching-api/internal/domain"
)

// reportRepository computes the roster aggregates in memory from the plan and
// progress collections.
type reportRepository struct {
	users    *userRepository
	plans    *planRepository
	progress *progressRepository
}

func (r *reportRepository) CoachClientSummaries(ctx context.Context, coachID uint) ([]domain.ClientSummary, error) {
	var plans []domain.Plan
	if err := findAll(ctx, r.plans.collection, bson.M{"coachId": coachID}, &plans); err != nil {
		return nil, err
	}
	planCount := map[uint]int64{}
	clientIDs := []uint{}
	for _, p := range plans {
		if planCount[p.ClientID] == 0 {
			clientIDs = append(clientIDs, p.ClientID)
		}
		planCount[p.ClientID]++
	}
	if len(clientIDs) == 0 {
		return []domain.ClientSummary{}, nil
	}

	users, err := r.users.byIDs(ctx, clientIDs)
	if err != nil {
		return nil, err
	}
	var logs []domain.ProgressLog
	if err := findAll(ctx, r.progress.collection, bson.M{"clientId": bson.M{"$in": clientIDs}}, &logs); err != nil {
		return nil, err
	}
	logsByClient := map[uint][]domain.ProgressLog{}
	for _, l := range logs {
		logsByClient[l.ClientID] = append(logsByClient[l.ClientID], l)
	}

	summaries := make([]domain.ClientSummary, 0, len(clientIDs))
	for _, id := range clientIDs {
		u, ok := users[id]
		if !ok {
			continue
		}
		s := domain.ClientSummary{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Status:    u.Status,
			CreatedAt: u.CreatedAt,
			PlanCount: planCount[id],
		}
		summarize(&s, logsByClient[id])
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID > summaries[j].ID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func summarize(s *domain.ClientSummary, logs []domain.ProgressLog) {
	s.LogCount = int64(len(logs))
	if len(logs) == 0 {
		return
	}
	var meal, workout float64
	maxW, minW := logs[0].Weight, logs[0].Weight
	for _, l := range logs {
		meal += float64(l.MealAdherence)
		workout += float64(l.WorkoutCompletion)
		if l.Weight > maxW {
			maxW = l.Weight
		}
		if l.Weight < minW {
			minW = l.Weight
		}
	}
	n := float64(len(logs))
	s.AvgMealAdherence = meal / n
	s.AvgWorkoutCompletion = workout / n
	s.MaxWeight = &maxW
	s.MinWeight = &minW
}
