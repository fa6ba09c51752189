package user

import (
	c "notesauth/internal/core/domain/common"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var IssuedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewPasswordResetExpiresAfterValidMinutes(t *testing.T) {
	reset := NewPasswordReset(PasswordResetToken("482913"), IssuedAt, DefaultPasswordResetValidMinutes)

	require.Equal(t, PasswordResetToken("482913"), reset.Token)
	require.True(t, reset.ExpiresAt.Equal(time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC)))
	require.Equal(t, time.UTC, reset.ExpiresAt.Location())
}

func TestPasswordResetIsValid(t *testing.T) {
	reset := NewPasswordReset(PasswordResetToken("482913"), IssuedAt, 15)

	cases := []struct {
		id       string
		token    string
		at       time.Duration
		expected bool
	}{
		{id: "just issued", token: "482913", at: 0, expected: true},
		{id: "ten minutes later", token: "482913", at: 10 * time.Minute, expected: true},
		{id: "14:59", token: "482913", at: 14*time.Minute + 59*time.Second, expected: true},
		{id: "one nanosecond before expiry", token: "482913", at: 15*time.Minute - time.Nanosecond, expected: true},
		{id: "exactly at expiry", token: "482913", at: 15 * time.Minute, expected: false},
		{id: "15:01", token: "482913", at: 15*time.Minute + time.Second, expected: false},
		{id: "16:00", token: "482913", at: 16 * time.Minute, expected: false},
		{id: "other code", token: "482914", at: time.Minute, expected: false},
		{id: "leading space", token: " 482913", at: time.Minute, expected: false},
		{id: "empty code", token: "", at: time.Minute, expected: false},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			isValid := reset.IsValid(PasswordResetToken(testcase.token), IssuedAt.Add(testcase.at))
			require.Equal(t, testcase.expected, isValid)
		})
	}
}

func TestUserWithoutPendingResetRejectsEveryToken(t *testing.T) {
	u := User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}

	require.False(t, u.HasPendingPasswordReset())
	require.False(t, u.IsPasswordResetTokenValid(PasswordResetToken(""), IssuedAt))
	require.False(t, u.IsPasswordResetTokenValid(PasswordResetToken("482913"), IssuedAt))
}

func TestUserValidate(t *testing.T) {
	valid := User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, valid.Validate())

	withReset := valid
	withReset.PasswordReset = c.NewOptional(NewPasswordReset("482913", IssuedAt, 15), true)
	require.NoError(t, withReset.Validate())

	cases := map[string]func(u *User){
		"no username":      func(u *User) { u.Username = "" },
		"no email":         func(u *User) { u.Email = "" },
		"no password hash": func(u *User) { u.PasswordHash = "" },
		"reset w/o token":  func(u *User) { u.PasswordReset = c.NewOptional(PasswordReset{ExpiresAt: IssuedAt}, true) },
		"reset w/o expiry": func(u *User) { u.PasswordReset = c.NewOptional(PasswordReset{Token: "482913"}, true) },
	}
	for id, modify := range cases {
		t.Run(id, func(t *testing.T) {
			u := valid
			modify(&u)
			require.Error(t, u.Validate())
		})
	}
}

func TestSecretsAreMaskedWhenFormatted(t *testing.T) {
	require.Equal(t, "***", RawPassword("secret").String())
	require.Equal(t, "***", PasswordHash("hash").String())
	require.Equal(t, "***", PasswordResetToken("482913").String())
}

func TestIdentifierResolvesToUsernameAndEmail(t *testing.T) {
	identifier := Identifier(" alice@example.com ")
	require.Equal(t, Username(" alice@example.com "), identifier.AsUsername())
	require.Equal(t, c.Email("alice@example.com"), identifier.AsEmail())
}

func userWithPendingReset() User {
	return User{
		ID:            1,
		Username:      "alice",
		Email:         "alice@example.com",
		PasswordHash:  "hash",
		PasswordReset: c.NewOptional(NewPasswordReset("482913", IssuedAt, 15), true),
	}
}

func TestPendingResetIsReadableFromReturnedUser(t *testing.T) {
	require.True(t, userWithPendingReset().HasPendingPasswordReset())
	require.True(t, userWithPendingReset().IsPasswordResetTokenValid("482913", IssuedAt.Add(time.Minute)))
	require.False(t, userWithPendingReset().IsPasswordResetTokenValid("482913", IssuedAt.Add(15*time.Minute)))
}
