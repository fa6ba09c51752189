package signupwithemail

import (
	"context"
	"errors"
	"fmt"
	c "notesauth/internal/core/domain/common"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	uow "notesauth/internal/core/domain/unit_of_work"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	"time"
)

type Input struct {
	Username user.Username
	Email    c.Email
	Password user.RawPassword
}

type Result struct {
	User        user.User
	AccessToken user.AccessToken
}

type service struct {
	log               logging.Logger
	unitOfWork        uow.UnitOfWork
	passwordHasher    user.PasswordHasher
	accessTokenIssuer user.AccessTokenIssuer
	now               func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	passwordHasher user.PasswordHasher,
	accessTokenIssuer user.AccessTokenIssuer,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if accessTokenIssuer == nil {
		panic(e.NewNilArgumentError("accessTokenIssuer"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:               log,
		unitOfWork:        unitOfWork,
		passwordHasher:    passwordHasher,
		accessTokenIssuer: accessTokenIssuer,
		now:               now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	passwordHash, err := s.passwordHasher.HashPassword(input.Password)
	if err != nil {
		s.log.Error(ctx, "Could not hash password.", logging.Entry("err", err))
		return result, fmt.Errorf("%w: %w", user.ErrPasswordHashing, err)
	}
	uow, err := s.unitOfWork.Begin(ctx)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(ctx, "Could not begin unit of work.", logging.Entry("err", err))
		return result, err
	}
	defer uow.Rollback(ctx)

	createdUser, err := uow.Users().Create(ctx, user.CreateUserInput{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUsernameAlreadyExists) {
		s.log.Info(ctx, "User with the username already exists.", logging.Entry("username", input.Username))
		return result, err
	}
	if errors.Is(err, user.ErrEmailAlreadyExists) {
		s.log.Info(ctx, "User with the email already exists.", logging.Entry("email", input.Email))
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not create new user.",
			logging.Entry("username", input.Username),
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, err
	}

	err = uow.Commit(ctx)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(ctx, "Could not commit unit of work.", logging.Entry("err", err))
		return result, err
	}

	accessToken, err := s.accessTokenIssuer.IssueAccessToken(createdUser)
	if err != nil {
		s.log.Error(
			ctx,
			"Could not issue access token.",
			logging.Entry("userID", createdUser.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(ctx, "New user has been created.", logging.Entry("userID", createdUser.ID))
	return Result{User: createdUser, AccessToken: accessToken}, nil
}
