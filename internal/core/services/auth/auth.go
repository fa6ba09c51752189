package auth

import (
	"context"
	"errors"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
)

type contextAccessToken string

const CONTEXT_ACCESS_TOKEN_KEY = contextAccessToken("accessToken")

type Input interface {
	WithAuthenticatedUser(u user.User) Input
}

type service[T Input, S any] struct {
	accessTokenIssuer user.AccessTokenIssuer
	userRepository    user.UserRepository
	inner             services.Service[T, S]
}

func WithAuthentication[T Input, S any](
	accessTokenIssuer user.AccessTokenIssuer,
	userRepository user.UserRepository,
	inner services.Service[T, S],
) services.Service[T, S] {
	if accessTokenIssuer == nil {
		panic(e.NewNilArgumentError("accessTokenIssuer"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &service[T, S]{
		accessTokenIssuer: accessTokenIssuer,
		userRepository:    userRepository,
		inner:             inner,
	}
}

func (s *service[T, S]) Run(ctx context.Context, input T) (result S, err error) {
	accessToken, ok := ctx.Value(CONTEXT_ACCESS_TOKEN_KEY).(user.AccessToken)
	if !ok {
		return result, user.ErrInvalidAccessToken
	}
	userID, err := s.accessTokenIssuer.ParseAccessToken(accessToken)
	if err != nil {
		return result, user.ErrInvalidAccessToken
	}
	u, err := s.userRepository.GetByID(ctx, userID)
	if errors.Is(err, user.ErrUserDoesNotExist) {
		// The token outlived its account.
		return result, user.ErrInvalidAccessToken
	}
	if err != nil {
		return result, err
	}
	return s.inner.Run(ctx, input.WithAuthenticatedUser(u).(T))
}
