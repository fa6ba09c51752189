package user

import (
	"context"
	c "notesauth/internal/core/domain/common"
	"time"

	"github.com/golang-module/carbon/v2"
)

const DefaultPasswordResetValidMinutes = 15

type PasswordResetToken string

func (t PasswordResetToken) String() string {
	return "***"
}

type PasswordReset struct {
	Token     PasswordResetToken
	ExpiresAt time.Time
}

func NewPasswordReset(token PasswordResetToken, issuedAt time.Time, validMinutes int) PasswordReset {
	expiresAt := carbon.Time2Carbon(issuedAt).AddMinutes(validMinutes).Carbon2Time()
	return PasswordReset{
		Token:     token,
		ExpiresAt: expiresAt.In(issuedAt.Location()),
	}
}

// IsValid reports whether token matches exactly and now is strictly before the expiry.
func (r PasswordReset) IsValid(token PasswordResetToken, now time.Time) bool {
	if token != r.Token {
		return false
	}
	return !r.IsExpired(now)
}

func (r PasswordReset) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

type PasswordResetTokenGenerator interface {
	GenerateToken() (PasswordResetToken, error)
}

type PasswordResetTokenSender interface {
	SendPasswordResetToken(ctx context.Context, to c.Email, reset PasswordReset) error
}
