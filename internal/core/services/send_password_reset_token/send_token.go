package sendpasswordresettoken

import (
	"context"
	"errors"
	"fmt"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
)

type serviceWithTokenSending struct {
	log    logging.Logger
	sender user.PasswordResetTokenSender
	inner  services.Service[Input, Result]
}

// NewWithTokenSending dispatches the token once inner has persisted it. A dispatch failure
// is reported as ErrPasswordResetTokenNotDelivered, the persisted token stays valid.
func NewWithTokenSending(
	log logging.Logger,
	sender user.PasswordResetTokenSender,
	inner services.Service[Input, Result],
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &serviceWithTokenSending{
		log:    log,
		sender: sender,
		inner:  inner,
	}
}

func (s *serviceWithTokenSending) Run(ctx context.Context, input Input) (result Result, err error) {
	result, err = s.inner.Run(ctx, input)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Info(ctx, "Skip sending password reset token.", logging.Entry("err", err))
		return result, err
	}

	err = s.sender.SendPasswordResetToken(ctx, result.User.Email, result.PasswordReset)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not send password reset token.",
			logging.Entry("userID", result.User.ID),
			logging.Entry("err", err),
		)
		return result, fmt.Errorf("%w: %w", user.ErrPasswordResetTokenNotDelivered, err)
	}

	s.log.Info(ctx, "Password reset token has been sent.", logging.Entry("userID", result.User.ID))
	return result, nil
}
