package sendpasswordresettoken

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
	service "notesauth/internal/core/services/send_password_reset_token"
	"notesauth/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// The same message is returned whether or not the account exists.
const MessageResetCodeSent = "If this email exists, a reset code has been sent. Please check your email."

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
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 512)),
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
		service.Input{Email: c.NewEmail(input.Email)},
	)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserDoesNotExist):
			response.RenderMessage(rw, MessageResetCodeSent, http.StatusOK)
		case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
			response.RenderRateLimitExceeded(rw)
		default:
			response.RenderInternalError(rw)
		}
		return
	}

	response.RenderMessage(rw, MessageResetCodeSent, http.StatusOK)
}
