package sendpasswordresettoken

import (
	"context"
	"errors"
	c "notesauth/internal/core/domain/common"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	"time"
)

type Input struct {
	Email c.Email
}

func (i Input) GetRateLimitKey() string {
	return "send-password-reset-token::" + string(i.Email)
}

// Result carries the issued reset to the token sending decorator. It must never reach the
// caller of the HTTP API.
type Result struct {
	User          user.User
	PasswordReset user.PasswordReset
}

type service struct {
	log            logging.Logger
	userRepository user.UserRepository
	tokenGenerator user.PasswordResetTokenGenerator
	validMinutes   int
	now            func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	tokenGenerator user.PasswordResetTokenGenerator,
	validMinutes int,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if tokenGenerator == nil {
		panic(e.NewNilArgumentError("tokenGenerator"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	if validMinutes <= 0 {
		validMinutes = user.DefaultPasswordResetValidMinutes
	}
	return &service{
		log:            log,
		userRepository: userRepository,
		tokenGenerator: tokenGenerator,
		validMinutes:   validMinutes,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	u, err := s.userRepository.GetByEmail(ctx, input.Email)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Info(ctx, "Password reset requested for unknown email.", logging.Entry("email", input.Email))
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get user by email.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, err
	}

	token, err := s.tokenGenerator.GenerateToken()
	if err != nil {
		s.log.Error(ctx, "Could not generate password reset token.", logging.Entry("err", err))
		return result, err
	}
	reset := user.NewPasswordReset(token, s.now(), s.validMinutes)

	err = s.userRepository.SetPasswordReset(ctx, u.ID, reset)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not save password reset token.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}
	u.PasswordReset = c.NewOptional(reset, true)

	s.log.Info(
		ctx,
		"Password reset token has been issued.",
		logging.Entry("userID", u.ID),
		logging.Entry("expiresAt", reset.ExpiresAt),
	)
	return Result{User: u, PasswordReset: reset}, nil
}
