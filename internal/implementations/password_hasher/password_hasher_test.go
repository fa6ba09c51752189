package passwordhasher

import (
	"fmt"
	"notesauth/internal/core/domain/user"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordValid(t *testing.T) {
	cases := []struct {
		secret   string
		cost     int
		password string
	}{
		{secret: "test", cost: 5, password: "test"},
		{secret: "", cost: 5, password: ""},
		{secret: "a", cost: 7, password: "password password"},
		{secret: "   b   ", cost: 10, password: "   test   "},
		{secret: "pepper", cost: 4, password: "пароль"},
	}
	for ix, testcase := range cases {
		t.Run(fmt.Sprint(ix), func(t *testing.T) {
			h := NewBcrypt(testcase.secret, testcase.cost)

			hash, err := h.HashPassword(user.RawPassword(testcase.password))

			require.NoError(t, err)
			require.NotEmpty(t, hash)
			require.NotEqual(t, testcase.password, string(hash))
			require.True(t, h.ValidatePassword(user.RawPassword(testcase.password), hash))
		})
	}
}

func TestPasswordInvalid(t *testing.T) {
	cases := []struct {
		secretToHash    string
		secretToCheck   string
		passwordToHash  string
		passwordToCheck string
	}{
		{secretToHash: "test", secretToCheck: "test", passwordToHash: "test", passwordToCheck: "test "},
		{secretToHash: "test", secretToCheck: "test ", passwordToHash: "test", passwordToCheck: "test"},
		{secretToHash: "", secretToCheck: "", passwordToHash: "", passwordToCheck: " "},
		{secretToHash: "", secretToCheck: " ", passwordToHash: "", passwordToCheck: ""},
		{secretToHash: "a", secretToCheck: "a", passwordToHash: "Password", passwordToCheck: "password"},
		{secretToHash: "   b   ", secretToCheck: "   b   ", passwordToHash: "   test   ", passwordToCheck: "   tost   "},
	}
	for ix, testcase := range cases {
		t.Run(fmt.Sprint(ix), func(t *testing.T) {
			hash, err := NewBcrypt(testcase.secretToHash, 5).HashPassword(user.RawPassword(testcase.passwordToHash))
			require.NoError(t, err)

			isValid := NewBcrypt(testcase.secretToCheck, 5).ValidatePassword(user.RawPassword(testcase.passwordToCheck), hash)

			require.False(t, isValid)
		})
	}
}

func TestSamePasswordHashesDiffer(t *testing.T) {
	h := NewBcrypt("secret", 4)

	first, err := h.HashPassword("password")
	require.NoError(t, err)
	second, err := h.HashPassword("password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestMalformedHashIsRejected(t *testing.T) {
	require.False(t, NewBcrypt("secret", 4).ValidatePassword("password", "not-a-bcrypt-hash"))
}

func TestInvalidCostPanics(t *testing.T) {
	require.Panics(t, func() { NewBcrypt("secret", 1) })
	require.Panics(t, func() { NewBcrypt("secret", 40) })
}

func TestLongPasswordsDifferingAfterBcryptLimit(t *testing.T) {
	h := NewBcrypt("secret", 4)
	prefix := strings.Repeat("a", 72)

	hash, err := h.HashPassword(user.RawPassword(prefix + "NEW-new-new"))
	require.NoError(t, err)

	require.True(t, h.ValidatePassword(user.RawPassword(prefix+"NEW-new-new"), hash))
	require.False(t, h.ValidatePassword(user.RawPassword(prefix+"OLD-old-old"), hash))
	require.False(t, h.ValidatePassword(user.RawPassword(prefix), hash))
}

func TestLongPasswordStillDependsOnSecret(t *testing.T) {
	password := user.RawPassword(strings.Repeat("b", 256))

	hash, err := NewBcrypt("secret", 4).HashPassword(password)
	require.NoError(t, err)

	require.False(t, NewBcrypt("other", 4).ValidatePassword(password, hash))
}
