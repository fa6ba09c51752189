package response

import (
	"notesauth/internal/core/domain/user"
	"time"
)

// User never carries the password hash or the pending reset.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) FromDomainUser(du user.User) {
	u.ID = int64(du.ID)
	u.Username = string(du.Username)
	u.Email = string(du.Email)
	u.CreatedAt = du.CreatedAt
}

type UserWithAccessToken struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

func NewUserWithAccessToken(du user.User, accessToken user.AccessToken) UserWithAccessToken {
	u := User{}
	u.FromDomainUser(du)
	return UserWithAccessToken{User: u, AccessToken: string(accessToken)}
}
