package user

import (
	"context"
	c "notesauth/internal/core/domain/common"
	"time"
)

type CreateUserInput struct {
	Username     Username
	Email        c.Email
	PasswordHash PasswordHash
	CreatedAt    time.Time
}

type ConsumePasswordResetInput struct {
	ID           ID
	Token        PasswordResetToken
	PasswordHash PasswordHash
}

type UserRepository interface {
	Create(ctx context.Context, input CreateUserInput) (User, error)
	GetByID(ctx context.Context, id ID) (User, error)
	GetByEmail(ctx context.Context, email c.Email) (User, error)
	// GetByEmailForUpdate locks the row until the surrounding transaction ends.
	GetByEmailForUpdate(ctx context.Context, email c.Email) (User, error)
	GetByIdentifier(ctx context.Context, identifier Identifier) (User, error)
	// SetPasswordReset replaces any pending password reset of the user.
	SetPasswordReset(ctx context.Context, id ID, reset PasswordReset) error
	// ConsumePasswordReset sets the new password hash and clears the pending reset, but only
	// if input.Token is still the pending one. Otherwise ErrInvalidPasswordResetToken is returned
	// and nothing is changed.
	ConsumePasswordReset(ctx context.Context, input ConsumePasswordResetInput) error
	// SetPassword sets the new password hash and drops any pending reset.
	SetPassword(ctx context.Context, id ID, password PasswordHash) error
	ClearExpiredPasswordResets(ctx context.Context, now time.Time) (cleared int64, err error)
}
