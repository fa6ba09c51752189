package signupwithemail

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	c "notesauth/internal/core/domain/common"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	signupwithemail "notesauth/internal/core/services/sign_up_with_email"
	"notesauth/internal/http/handlers/response"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var usernameRegexp = regexp.MustCompile("^[a-zA-Z0-9_]+$")

type Handler struct {
	service services.Service[signupwithemail.Input, signupwithemail.Result]
}

func New(
	service services.Service[signupwithemail.Input, signupwithemail.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(
			&i.Username,
			validation.Required,
			validation.Length(3, 20),
			validation.Match(usernameRegexp).Error("can only contain letters, numbers, and underscores"),
		),
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 512)),
		validation.Field(&i.Password, validation.Required, validation.Length(6, 256)),
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
		signupwithemail.Input{
			Username: user.Username(input.Username),
			Email:    c.NewEmail(input.Email),
			Password: user.RawPassword(input.Password),
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUsernameAlreadyExists):
			response.RenderError(rw, "username already exists", http.StatusConflict)
		case errors.Is(err, user.ErrEmailAlreadyExists):
			response.RenderError(rw, "email already exists", http.StatusConflict)
		default:
			response.RenderInternalError(rw)
		}
		return
	}

	response.Render(rw, response.NewUserWithAccessToken(result.User, result.AccessToken), http.StatusCreated)
}
