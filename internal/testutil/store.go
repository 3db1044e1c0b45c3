// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
	"mjnutrafit/coaching-api/internal/repository/gormstore"
)

// NewStore returns a migrated in-memory sqlite store closed at test cleanup.
func NewStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := gormstore.Open(gormstore.Options{Driver: gormstore.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	store := gormstore.New(db)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// Password is the plaintext of every user created by CreateUser.
const Password = "secret123"

// CreateUser inserts a user with the given role and status.
func CreateUser(t *testing.T, store *repository.Store, email string, role domain.Role, status domain.UserStatus) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		FirstName:    "Test",
		LastName:     string(role),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
	}
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

// CreatePlan inserts an active plan linking coach and client.
func CreatePlan(t *testing.T, store *repository.Store, coachID, clientID uint) *domain.Plan {
	t.Helper()
	p := &domain.Plan{CoachID: coachID, ClientID: clientID, DietText: "diet", WorkoutText: "workout"}
	require.NoError(t, store.Plans.CreateActive(context.Background(), p))
	return p
}
