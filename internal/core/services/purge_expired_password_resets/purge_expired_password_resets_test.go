package purgeexpiredpasswordresets

import (
	"context"
	"fmt"
	c "notesauth/internal/core/domain/common"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var ISSUED_AT = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func createUsersWithResets(t *testing.T, repository *user.FakeUserRepository, issuedAt ...time.Time) {
	t.Helper()
	for ix, at := range issuedAt {
		u, err := repository.Create(context.Background(), user.CreateUserInput{
			Username:     user.Username(fmt.Sprintf("user-%d", ix)),
			Email:        c.Email(fmt.Sprintf("user-%d@example.com", ix)),
			PasswordHash: "hash",
			CreatedAt:    at,
		})
		require.NoError(t, err)
		err = repository.SetPasswordReset(context.Background(), u.ID, user.NewPasswordReset("123456", at, 15))
		require.NoError(t, err)
	}
}

func TestOnlyExpiredResetsAreCleared(t *testing.T) {
	// Setup ---
	repository := user.NewFakeUserRepository()
	now := ISSUED_AT.Add(time.Hour)
	// Expired long ago, expiring exactly now, still valid, just issued.
	createUsersWithResets(
		t,
		repository,
		ISSUED_AT,
		now.Add(-15*time.Minute),
		now.Add(-14*time.Minute),
		now,
	)
	service := New(logging.NewFakeLogger(), repository, func() time.Time { return now })

	// Exercise ---
	result, err := service.Run(context.Background(), Input{})

	// Verify ---
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Cleared)
	pending := 0
	for _, u := range repository.Users {
		if u.HasPendingPasswordReset() {
			pending++
		}
	}
	require.Equal(t, 2, pending)
}

func TestNothingToClear(t *testing.T) {
	// Setup ---
	log := logging.NewFakeLogger()
	service := New(log, user.NewFakeUserRepository(), time.Now)

	// Exercise ---
	result, err := service.Run(context.Background(), Input{})

	// Verify ---
	require.NoError(t, err)
	require.Equal(t, int64(0), result.Cleared)
	require.Empty(t, log.Logged)
}

func TestRepositoryError(t *testing.T) {
	// Setup ---
	repository := user.NewFakeUserRepository()
	repository.ReturnError = true
	log := logging.NewFakeLogger()
	service := New(log, repository, time.Now)

	// Exercise ---
	_, err := service.Run(context.Background(), Input{})

	// Verify ---
	require.Error(t, err)
	require.Equal(t, logging.ERROR, log.Logged[0].Level)
}
