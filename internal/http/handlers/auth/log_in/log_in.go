package login

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	e "notesauth/internal/core/domain/errors"
	ratelimiter "notesauth/internal/core/domain/rate_limiter"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	login "notesauth/internal/core/services/log_in"
	"notesauth/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Handler struct {
	service services.Service[login.Input, login.Result]
}

func New(
	service services.Service[login.Input, login.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

// Input accepts the identifier under either "username" or "email", username wins.
type Input struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Identifier() string {
	if i.Username != "" {
		return i.Username
	}
	return i.Email
}

func (i Input) Validate() error {
	identifier := i.Identifier()
	return validation.ValidateStruct(&i,
		validation.Field(&i.Username, validation.By(func(interface{}) error {
			if identifier == "" {
				return errors.New("username or email is required")
			}
			if len(identifier) > 512 {
				return errors.New("the length must be no more than 512")
			}
			return nil
		})),
		validation.Field(&i.Password, validation.Required, validation.Length(0, 256)),
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
		login.Input{Identifier: user.Identifier(input.Identifier()), Password: user.RawPassword(input.Password)},
	)
	if errors.Is(err, ratelimiter.ErrRateLimitExceeded) {
		response.RenderRateLimitExceeded(rw)
		return
	}
	if errors.Is(err, user.ErrInvalidCredentials) {
		response.RenderError(rw, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.Render(rw, response.NewUserWithAccessToken(result.User, result.AccessToken), http.StatusOK)
}
