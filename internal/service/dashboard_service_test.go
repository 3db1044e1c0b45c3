package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjnutrafit/coaching-api/internal/domain"
)

func TestClientDashboard(t *testing.T) {
	f := newFixture(t)
	coach := f.user(t, "coach@example.com", domain.RoleCoach, domain.StatusActive)
	client := f.user(t, "client@example.com", domain.RoleClient, domain.StatusActive)

	empty, err := f.dashboard.Client(f.ctx, client)
	require.NoError(t, err)
	assert.Nil(t, empty.LatestWeight)
	assert.Nil(t, empty.LastSubmission)
	assert.Nil(t, empty.CurrentPlan)
	assert.Empty(t, empty.WeightTrend)

	plan, err := f.plans.Create(f.ctx, coach, PlanInput{ClientID: client.ID, DietText: "d", WorkoutText: "w"})
	require.NoError(t, err)
	start := week("2024-01-01")
	for i := 0; i < 12; i++ {
		f.submit(t, client, start.AddDate(0, 0, 7*i).Format(domain.WeekLayout), 90-float64(i))
	}

	dash, err := f.dashboard.Client(f.ctx, client)
	require.NoError(t, err)
	require.NotNil(t, dash.LatestWeight)
	assert.Equal(t, 79.0, *dash.LatestWeight)
	require.NotNil(t, dash.LastSubmission)
	assert.Equal(t, start.AddDate(0, 0, 77), dash.LastSubmission.WeekStartDate.Time().UTC())
	require.Len(t, dash.WeightTrend, 10)
	assert.Equal(t, 88.0, dash.WeightTrend[0].Weight)
	assert.Equal(t, 79.0, dash.WeightTrend[9].Weight)
	require.NotNil(t, dash.CurrentPlan)
	assert.Equal(t, plan.ID, dash.CurrentPlan.ID)

	_, err = f.dashboard.Client(f.ctx, coach)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCoachDashboard(t *testing.T) {
	f := newFixture(t)
	coach := f.user(t, "coach@example.com", domain.RoleCoach, domain.StatusActive)
	a := f.user(t, "a@example.com", domain.RoleClient, domain.StatusActive)
	b := f.user(t, "b@example.com", domain.RoleClient, domain.StatusActive)
	for _, c := range []*domain.User{a, b} {
		_, err := f.plans.Create(f.ctx, coach, PlanInput{ClientID: c.ID, DietText: "d", WorkoutText: "w"})
		require.NoError(t, err)
	}

	start := week("2024-01-01")
	var logs []*domain.ProgressLog
	for i := 0; i < 7; i++ {
		logs = append(logs, f.submit(t, a, start.AddDate(0, 0, 7*i).Format(domain.WeekLayout), 100-float64(i)))
	}
	_, err := f.coach.ReviewLog(f.ctx, coach, logs[0].ID, ReviewApprove, "")
	require.NoError(t, err)

	dash, err := f.dashboard.Coach(f.ctx, coach)
	require.NoError(t, err)
	assert.EqualValues(t, 6, dash.PendingLogsCount)
	require.Len(t, dash.Clients, 2)

	byID := map[uint]domain.ClientSummary{}
	for _, c := range dash.Clients {
		byID[c.ID] = c
	}
	sa := byID[a.ID]
	require.NotNil(t, sa.LastLogDate)
	assert.Equal(t, start.AddDate(0, 0, 42), sa.LastLogDate.Time().UTC())
	require.NotNil(t, sa.MaxWeight)
	assert.InDelta(t, 100, *sa.MaxWeight, 0.001)
	assert.InDelta(t, 94, *sa.MinWeight, 0.001)
	assert.Nil(t, byID[b.ID].LastLogDate)

	trend := dash.WeightTrends[a.ID]
	require.Len(t, trend, 5)
	assert.Equal(t, 98.0, trend[0].Weight)
	assert.Equal(t, 94.0, trend[4].Weight)
	assert.Empty(t, dash.WeightTrends[b.ID])
	assert.Equal(t, start.AddDate(0, 0, 42), trend[4].WeekStartDate.Time().UTC())
}
