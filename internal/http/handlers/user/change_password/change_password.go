package changepassword

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	changepassword "notesauth/internal/core/services/change_password"
	"notesauth/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Handler struct {
	service services.Service[changepassword.Input, changepassword.Result]
}

func New(
	service services.Service[changepassword.Input, changepassword.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.CurrentPassword, validation.Required, validation.Length(0, 256)),
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
		changepassword.Input{
			CurrentPassword: user.RawPassword(input.CurrentPassword),
			NewPassword:     user.RawPassword(input.NewPassword),
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidAccessToken):
			response.RenderUnauthorized(rw)
		case errors.Is(err, user.ErrInvalidCredentials):
			response.RenderError(rw, "invalid current password", http.StatusUnprocessableEntity)
		default:
			response.RenderInternalError(rw)
		}
		return
	}

	response.Render(rw, struct{}{}, http.StatusOK)
}
