package verifypasswordresettoken

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
	Token user.PasswordResetToken
}

func (i Input) GetRateLimitKey() string {
	return "verify-password-reset-token::" + string(i.Email)
}

type Result struct {
	Valid bool
}

type GetUserByEmail func(ctx context.Context, email c.Email) (user.User, error)

// Verify reports whether token is the pending, unexpired reset token of the user with the
// given email. An unknown email is not an error, the token is just invalid. Nothing is
// modified, so Verify may be run any number of times.
func Verify(
	ctx context.Context,
	getUser GetUserByEmail,
	email c.Email,
	token user.PasswordResetToken,
	now time.Time,
) (u user.User, isValid bool, err error) {
	u, err = getUser(ctx, email)
	if errors.Is(err, user.ErrUserDoesNotExist) {
		return u, false, nil
	}
	if err != nil {
		return u, false, err
	}
	return u, u.IsPasswordResetTokenValid(token, now), nil
}

type service struct {
	log            logging.Logger
	userRepository user.UserRepository
	now            func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		userRepository: userRepository,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	u, isValid, err := Verify(ctx, s.userRepository.GetByEmail, input.Email, input.Token, s.now())
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get user for password reset token verification.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, err
	}
	if !isValid {
		s.log.Info(
			ctx,
			"Invalid or expired password reset token.",
			logging.Entry("email", input.Email),
			logging.Entry("userID", u.ID),
		)
		return Result{Valid: false}, user.ErrInvalidPasswordResetToken
	}
	return Result{Valid: true}, nil
}
