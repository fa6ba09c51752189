package resetpassword

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
	verifypasswordresettoken "notesauth/internal/core/services/verify_password_reset_token"
	"time"
)

type Input struct {
	Email       c.Email
	Token       user.PasswordResetToken
	NewPassword user.RawPassword
}

func (i Input) GetRateLimitKey() string {
	return "reset-password::" + string(i.Email)
}

type Result struct{}

type service struct {
	log            logging.Logger
	userRepository user.UserRepository
	unitOfWork     uow.UnitOfWork
	passwordHasher user.PasswordHasher
	now            func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	unitOfWork uow.UnitOfWork,
	passwordHasher user.PasswordHasher,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		userRepository: userRepository,
		unitOfWork:     unitOfWork,
		passwordHasher: passwordHasher,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	// Invalid codes are rejected before any row lock is taken.
	if _, err := s.verify(ctx, s.userRepository.GetByEmail, input); err != nil {
		return result, err
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

	// The token is verified again under the row lock, whatever the first check said.
	u, err := s.verify(ctx, uow.Users().GetByEmailForUpdate, input)
	if err != nil {
		return result, err
	}

	newPasswordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		s.log.Error(ctx, "Could not hash password.", logging.Entry("err", err))
		return result, fmt.Errorf("%w: %w", user.ErrPasswordHashing, err)
	}

	err = uow.Users().ConsumePasswordReset(ctx, user.ConsumePasswordResetInput{
		ID:           u.ID,
		Token:        input.Token,
		PasswordHash: newPasswordHash,
	})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrInvalidPasswordResetToken) {
		s.log.Info(ctx, "Password reset token has already been used.", logging.Entry("userID", u.ID))
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not update user password.",
			logging.Entry("userID", u.ID),
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

	s.log.Info(ctx, "New password has been successfully set.", logging.Entry("userID", u.ID))
	return result, nil
}

func (s *service) verify(
	ctx context.Context,
	getUser verifypasswordresettoken.GetUserByEmail,
	input Input,
) (u user.User, err error) {
	u, isValid, err := verifypasswordresettoken.Verify(ctx, getUser, input.Email, input.Token, s.now())
	if errors.Is(err, context.Canceled) {
		return u, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get user for password reset.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return u, err
	}
	if !isValid {
		s.log.Info(
			ctx,
			"Invalid or expired password reset token.",
			logging.Entry("email", input.Email),
			logging.Entry("userID", u.ID),
		)
		return u, user.ErrInvalidPasswordResetToken
	}
	return u, nil
}
