package email

import (
	"context"
	c "notesauth/internal/core/domain/common"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	"notesauth/internal/core/domain/user"
)

// LogSender writes the reset code to the log instead of sending it. It is meant for local
// development and test mode only, the code ends up in plain text in the log.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &LogSender{log: log}
}

func (s *LogSender) SendPasswordResetToken(ctx context.Context, to c.Email, reset user.PasswordReset) error {
	s.log.Info(
		ctx,
		"Password reset code (not sent).",
		logging.Entry("to", to),
		logging.Entry("code", string(reset.Token)),
		logging.Entry("expiresAt", reset.ExpiresAt),
	)
	return nil
}
