package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mjnutrafit/coaching-api/internal/config"
	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/events"
	"mjnutrafit/coaching-api/internal/logger"
	"mjnutrafit/coaching-api/internal/repository"
	"mjnutrafit/coaching-api/internal/storage"
	"mjnutrafit/coaching-api/internal/testutil"
)

type fixture struct {
	ctx       context.Context
	store     *repository.Store
	events    *events.Recorder
	images    *storage.Memory
	tokens    *TokenIssuer
	auth      AuthService
	users     UserService
	coach     *coachService
	plans     PlanService
	progress  ProgressService
	dashboard DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	log := logger.Discard()
	rec := &events.Recorder{}
	images := storage.NewMemory("http://images.test")
	tokens := NewTokenIssuer(config.JWTConfig{Secret: "access-secret", RefreshSecret: "refresh-secret"})

	return &fixture{
		ctx:       context.Background(),
		store:     store,
		events:    rec,
		images:    images,
		tokens:    tokens,
		auth:      NewAuthService(store.Users, tokens, log),
		users:     NewUserService(store.Users, images, "profile-pictures", log),
		coach:     NewCoachService(store.Users, store.Plans, store.Progress, store.Feedback, store.Reports, rec, log).(*coachService),
		plans:     NewPlanService(store.Users, store.Plans),
		progress:  NewProgressService(store.Plans, store.Progress, rec, log),
		dashboard: NewDashboardService(store.Plans, store.Progress, store.Reports),
	}
}

func (f *fixture) user(t *testing.T, email string, role domain.Role, status domain.UserStatus) *domain.User {
	return testutil.CreateUser(t, f.store, email, role, status)
}

func week(s string) time.Time {
	t, err := time.Parse(domain.WeekLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) submit(t *testing.T, client *domain.User, w string, weight float64) *domain.ProgressLog {
	t.Helper()
	entry, err := f.progress.Submit(f.ctx, client, ProgressInput{
		WeekStartDate:     week(w),
		Weight:            weight,
		MealAdherence:     80,
		WorkoutCompletion: 70,
	})
	require.NoError(t, err)
	return entry
}

func requireValidation(t *testing.T, err error, contains string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Errors, contains)
}
