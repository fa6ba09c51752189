package accesstoken

import (
	"fmt"
	"notesauth/internal/core/domain/user"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWT issues HS256 signed access tokens carrying the user ID as subject.
type JWT struct {
	secret        []byte
	validDuration time.Duration
	now           func() time.Time
}

func NewJWT(secret string, validDuration time.Duration, now func() time.Time) *JWT {
	if secret == "" {
		panic("JWT secret must not be empty")
	}
	if validDuration <= 0 {
		panic("JWT valid duration must be positive")
	}
	if now == nil {
		panic("now must not be nil")
	}
	return &JWT{secret: []byte(secret), validDuration: validDuration, now: now}
}

func (j *JWT) IssueAccessToken(u user.User) (user.AccessToken, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Username: string(u.Username),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(int64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.validDuration)),
		},
	})
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return user.AccessToken(""), fmt.Errorf("could not sign access token: %w", err)
	}
	return user.AccessToken(signed), nil
}

func (j *JWT) ParseAccessToken(accessToken user.AccessToken) (user.ID, error) {
	token, err := jwt.ParseWithClaims(
		string(accessToken),
		&claims{},
		func(t *jwt.Token) (interface{}, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return user.ID(0), fmt.Errorf("%w: %w", user.ErrInvalidAccessToken, err)
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return user.ID(0), user.ErrInvalidAccessToken
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return user.ID(0), user.ErrInvalidAccessToken
	}
	return user.ID(id), nil
}
