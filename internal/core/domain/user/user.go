package user

import (
	"fmt"
	c "notesauth/internal/core/domain/common"
	e "notesauth/internal/core/domain/errors"
	"time"
)

type ID int64

type Username string

// Identifier is the login handle of a user. It is resolved as a username first and as an
// email second.
type Identifier string

func (i Identifier) AsUsername() Username {
	return Username(i)
}

func (i Identifier) AsEmail() c.Email {
	return c.NewEmail(string(i))
}

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

type User struct {
	ID            ID
	Username      Username
	Email         c.Email
	PasswordHash  PasswordHash
	PasswordReset c.Optional[PasswordReset]
	CreatedAt     time.Time
}

func (u *User) Validate() error {
	if u.Username == "" {
		return e.NewInvalidStateError(fmt.Sprintf("username is not set for user %d", u.ID))
	}
	if u.Email == "" {
		return e.NewInvalidStateError(fmt.Sprintf("email is not set for user %d", u.ID))
	}
	if u.PasswordHash == "" {
		return e.NewInvalidStateError(fmt.Sprintf("password hash is not set for user %d", u.ID))
	}
	if u.PasswordReset.IsPresent {
		if u.PasswordReset.Value.Token == "" || u.PasswordReset.Value.ExpiresAt.IsZero() {
			return e.NewInvalidStateError(
				fmt.Sprintf("password reset token and expiry must be set together for user %d", u.ID),
			)
		}
	}
	return nil
}

func (u User) HasPendingPasswordReset() bool {
	return u.PasswordReset.IsPresent
}

// IsPasswordResetTokenValid never mutates the user, so it can be checked any number of times.
func (u User) IsPasswordResetTokenValid(token PasswordResetToken, now time.Time) bool {
	if !u.PasswordReset.IsPresent {
		return false
	}
	return u.PasswordReset.Value.IsValid(token, now)
}
