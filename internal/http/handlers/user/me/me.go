package me

import (
	"errors"
	"net/http"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services"
	service "notesauth/internal/core/services/get_user"
	"notesauth/internal/http/handlers/response"
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

type Result struct {
	User response.User `json:"user"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	result, err := h.service.Run(
		r.Context(),
		service.Input{},
	)
	if errors.Is(err, user.ErrInvalidAccessToken) {
		response.RenderUnauthorized(rw)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	user := response.User{}
	user.FromDomainUser(result.User)
	response.Render(rw, Result{User: user}, http.StatusOK)
}
