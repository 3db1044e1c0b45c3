package gormstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
	"mjnutrafit/coaching-api/internal/testutil"
)

func week(s string) time.Time {
	t, err := time.Parse(domain.WeekLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	coach := testutil.CreateUser(t, store, "Coach@Example.com", domain.RoleCoach, domain.StatusActive)
	assert.Equal(t, "coach@example.com", coach.Email)

	t.Run("duplicate email", func(t *testing.T) {
		dup := &domain.User{FirstName: "A", LastName: "B", Email: "coach@example.com", PasswordHash: "x", Role: domain.RoleClient, Status: domain.StatusPending}
		err := store.Users.Create(ctx, dup)
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := store.Users.GetByEmail(ctx, " COACH@example.com ")
		require.NoError(t, err)
		assert.Equal(t, coach.ID, got.ID)

		_, err = store.Users.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("pending clients and active coaches", func(t *testing.T) {
		testutil.CreateUser(t, store, "p1@example.com", domain.RoleClient, domain.StatusPending)
		testutil.CreateUser(t, store, "a1@example.com", domain.RoleClient, domain.StatusActive)
		testutil.CreateUser(t, store, "c2@example.com", domain.RoleCoach, domain.StatusRejected)

		pending, err := store.Users.ListByRoleAndStatus(ctx, domain.RoleClient, domain.StatusPending)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "p1@example.com", pending[0].Email)

		ids, err := store.Users.ListActiveCoachIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []uint{coach.ID}, ids)
	})
}

func TestPlanRepositoryCreateActiveDeactivatesPrevious(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	coach := testutil.CreateUser(t, store, "coach@example.com", domain.RoleCoach, domain.StatusActive)
	client := testutil.CreateUser(t, store, "client@example.com", domain.RoleClient, domain.StatusActive)

	a := testutil.CreatePlan(t, store, coach.ID, client.ID)
	b := testutil.CreatePlan(t, store, coach.ID, client.ID)

	current, err := store.Plans.GetActiveForClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, current.ID)
	require.NotNil(t, current.Coach)
	assert.Equal(t, coach.ID, current.Coach.ID)

	old, err := store.Plans.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)

	linked, err := store.Plans.LinksCoachAndClient(ctx, coach.ID, client.ID)
	require.NoError(t, err)
	assert.True(t, linked)

	plans, err := store.Plans.ListByCoach(ctx, coach.ID)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	require.NotNil(t, plans[0].Client)
	assert.Equal(t, client.Email, plans[0].Client.Email)
}

func TestProgressAndFeedbackRepositories(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	coach := testutil.CreateUser(t, store, "coach@example.com", domain.RoleCoach, domain.StatusActive)
	client := testutil.CreateUser(t, store, "client@example.com", domain.RoleClient, domain.StatusActive)
	other := testutil.CreateUser(t, store, "other@example.com", domain.RoleClient, domain.StatusActive)
	testutil.CreatePlan(t, store, coach.ID, client.ID)

	for i, w := range []string{"2024-01-01", "2024-01-08", "2024-01-15"} {
		l := &domain.ProgressLog{ClientID: client.ID, WeekStartDate: week(w), Weight: 80 - float64(i), MealAdherence: 80, WorkoutCompletion: 60 + 10*i, Status: domain.LogSubmitted}
		require.NoError(t, store.Progress.Create(ctx, l))
	}
	require.NoError(t, store.Progress.Create(ctx, &domain.ProgressLog{ClientID: other.ID, WeekStartDate: week("2024-01-01"), Weight: 70, Status: domain.LogSubmitted}))

	found, err := store.Progress.GetByClientAndWeek(ctx, client.ID, week("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, 79.0, found.Weight)

	_, err = store.Progress.GetByClientAndWeek(ctx, client.ID, week("2024-02-01"))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	recent, err := store.Progress.Recent(ctx, client.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, week("2024-01-15"), recent[0].WeekStartDate.UTC())

	forCoach, err := store.Progress.ListForCoach(ctx, coach.ID)
	require.NoError(t, err)
	assert.Len(t, forCoach, 3)

	n, err := store.Progress.CountSubmittedForCoach(ctx, coach.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	fb := &domain.Feedback{ProgressLogID: found.ID, CoachID: coach.ID, Text: "first"}
	require.NoError(t, store.Feedback.Upsert(ctx, fb))
	fb2 := &domain.Feedback{ProgressLogID: found.ID, CoachID: coach.ID, Text: "second"}
	require.NoError(t, store.Feedback.Upsert(ctx, fb2))
	assert.Equal(t, fb.ID, fb2.ID)
	assert.Equal(t, "second", fb2.Text)

	withFeedback, err := store.Progress.GetByID(ctx, found.ID)
	require.NoError(t, err)
	require.NotNil(t, withFeedback.Feedback)
	assert.Equal(t, "second", withFeedback.Feedback.Text)
	require.NotNil(t, withFeedback.Feedback.Coach)

	require.NoError(t, store.Feedback.DeleteByLogID(ctx, found.ID))
	_, err = store.Feedback.GetByLogID(ctx, found.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReportRepositoryCoachClientSummaries(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	coach := testutil.CreateUser(t, store, "coach@example.com", domain.RoleCoach, domain.StatusActive)
	withLogs := testutil.CreateUser(t, store, "logs@example.com", domain.RoleClient, domain.StatusActive)
	noLogs := testutil.CreateUser(t, store, "nologs@example.com", domain.RoleClient, domain.StatusActive)
	testutil.CreateUser(t, store, "stranger@example.com", domain.RoleClient, domain.StatusActive)

	testutil.CreatePlan(t, store, coach.ID, withLogs.ID)
	testutil.CreatePlan(t, store, coach.ID, withLogs.ID)
	testutil.CreatePlan(t, store, coach.ID, noLogs.ID)

	require.NoError(t, store.Progress.Create(ctx, &domain.ProgressLog{ClientID: withLogs.ID, WeekStartDate: week("2024-01-01"), Weight: 82, MealAdherence: 60, WorkoutCompletion: 50, Status: domain.LogSubmitted}))
	require.NoError(t, store.Progress.Create(ctx, &domain.ProgressLog{ClientID: withLogs.ID, WeekStartDate: week("2024-01-08"), Weight: 80, MealAdherence: 80, WorkoutCompletion: 70, Status: domain.LogApproved}))

	rows, err := store.Reports.CoachClientSummaries(ctx, coach.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[uint]domain.ClientSummary{}
	for _, r := range rows {
		byID[r.ID] = r
	}

	s := byID[withLogs.ID]
	assert.EqualValues(t, 2, s.PlanCount)
	assert.EqualValues(t, 2, s.LogCount)
	assert.InDelta(t, 70, s.AvgMealAdherence, 0.001)
	assert.InDelta(t, 60, s.AvgWorkoutCompletion, 0.001)
	require.NotNil(t, s.MaxWeight)
	require.NotNil(t, s.MinWeight)
	assert.InDelta(t, 82, *s.MaxWeight, 0.001)
	assert.InDelta(t, 80, *s.MinWeight, 0.001)

	empty := byID[noLogs.ID]
	assert.EqualValues(t, 1, empty.PlanCount)
	assert.EqualValues(t, 0, empty.LogCount)
	assert.Nil(t, empty.MaxWeight)
	assert.Zero(t, empty.AvgMealAdherence)
}
