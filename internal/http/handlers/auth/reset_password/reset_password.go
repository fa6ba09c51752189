package resetpassword

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	c "notesauth/internal/core/domain/common"
	e "notesauth/internal/core/domain/errors"
	ratelimiter "notesauth/internal/core/domain/rate_limiter"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	resetpassword "notesauth/internal/core/services/reset_password"
	"notesauth/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	MessagePasswordReset    = "Password has been reset successfully. You can now login with your new password."
	MessageInvalidResetCode = "Invalid or expired reset code."
)

type Handler struct {
	service services.Service[resetpassword.Input, resetpassword.Result]
}

func New(
	service services.Service[resetpassword.Input, resetpassword.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 512)),
		validation.Field(&i.Code, validation.Required, validation.Length(0, 64)),
		validation.Field(&i.NewPassword, validation.Required, validation.Length(6, 256)),
	)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderInvalidRequestData(rw)
		return
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	_, err := h.service.Run(
		r.Context(),
		resetpassword.Input{
			Email:       c.NewEmail(input.Email),
			Token:       user.PasswordResetToken(input.Code),
			NewPassword: user.RawPassword(input.NewPassword),
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidPasswordResetToken):
			response.RenderError(rw, MessageInvalidResetCode, http.StatusBadRequest)
		case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
			response.RenderRateLimitExceeded(rw)
		default:
			response.RenderInternalError(rw)
		}
		return
	}

	response.RenderMessage(rw, MessagePasswordReset, http.StatusOK)
}
