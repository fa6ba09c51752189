package changepassword

import (
	"context"
	"errors"
	"fmt"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	"notesauth/internal/core/services/auth"
)

type Input struct {
	CurrentPassword user.RawPassword
	NewPassword     user.RawPassword
	User            user.User
}

func (i Input) WithAuthenticatedUser(u user.User) auth.Input {
	i.User = u
	return i
}

type Result struct{}

type service struct {
	log            logging.Logger
	userRepository user.UserRepository
	passwordHasher user.PasswordHasher
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	passwordHasher user.PasswordHasher,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	return &service{
		log:            log,
		passwordHasher: passwordHasher,
		userRepository: userRepository,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	isCurrentPasswordValid := s.passwordHasher.ValidatePassword(
		input.CurrentPassword,
		input.User.PasswordHash,
	)
	if !isCurrentPasswordValid {
		return result, user.ErrInvalidCredentials
	}

	newPasswordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		s.log.Error(ctx, "Could not hash password.", logging.Entry("err", err))
		return result, fmt.Errorf("%w: %w", user.ErrPasswordHashing, err)
	}
	err = s.userRepository.SetPassword(ctx, input.User.ID, newPasswordHash)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not set new password.",
			logging.Entry("userID", input.User.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(ctx, "Password has been changed.", logging.Entry("userID", input.User.ID))
	return Result{}, nil
}
