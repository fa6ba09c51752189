package verifypasswordresettoken

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
	service "notesauth/internal/core/services/verify_password_reset_token"
	"notesauth/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	MessageResetCodeVerified = "Reset code verified successfully."
	MessageInvalidResetCode  = "Invalid or expired reset code."
)

type Handler struct {
	service services.Service[service.Input, service.Result]
}

func New(
	service services.Service[service.Input, service.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type Result struct {
	Message string `json:"message"`
	Valid   bool   `json:"valid"`
}

type invalidResult struct {
	Error string `json:"error"`
	Valid bool   `json:"valid"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 512)),
		validation.Field(&i.Code, validation.Required, validation.Length(0, 64)),
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

	result, err := h.service.Run(
		r.Context(),
		service.Input{Email: c.NewEmail(input.Email), Token: user.PasswordResetToken(input.Code)},
	)
	if errors.Is(err, ratelimiter.ErrRateLimitExceeded) {
		response.RenderRateLimitExceeded(rw)
		return
	}
	if errors.Is(err, user.ErrInvalidPasswordResetToken) || (err == nil && !result.Valid) {
		response.Render(rw, invalidResult{Error: MessageInvalidResetCode, Valid: false}, http.StatusBadRequest)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.Render(rw, Result{Message: MessageResetCodeVerified, Valid: true}, http.StatusOK)
}
