package signupwithemail

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"notesauth/internal/core/domain/common"
	"notesauth/internal/core/domain/user"
	signupwithemail "notesauth/internal/core/services/sign_up_with_email"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubService struct {
	err   error
	input *signupwithemail.Input
}

func (s *stubService) Run(
	ctx context.Context,
	input signupwithemail.Input,
) (result signupwithemail.Result, err error) {
	s.input = &input
	if s.err != nil {
		return result, s.err
	}
	result.User = user.User{
		ID:           1,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	result.AccessToken = "access-token-1"
	return result, nil
}

func TestSignUpWithEmailHandler(t *testing.T) {
	validBody := `{"username": "john_doe", "email": "john@example.com", "password": "secret1"}`
	validInput := &signupwithemail.Input{
		Username: "john_doe",
		Email:    common.Email("john@example.com"),
		Password: "secret1",
	}

	cases := []struct {
		id             string
		body           string
		serviceErr     error
		expectedStatus int
		expectedBody   string
		expectedInput  *signupwithemail.Input
	}{
		{
			id:             "success",
			body:           validBody,
			expectedStatus: http.StatusCreated,
			expectedBody: `{
				"user": {"id": 1, "username": "john_doe", "email": "john@example.com", "created_at": "2024-01-01T00:00:00Z"},
				"access_token": "access-token-1"
			}`,
			expectedInput: validInput,
		},
		{
			id:             "username taken",
			body:           validBody,
			serviceErr:     user.ErrUsernameAlreadyExists,
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error": "username already exists"}`,
			expectedInput:  validInput,
		},
		{
			id:             "email taken",
			body:           validBody,
			serviceErr:     user.ErrEmailAlreadyExists,
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error": "email already exists"}`,
			expectedInput:  validInput,
		},
		{
			id:             "store failure",
			body:           validBody,
			serviceErr:     fmt.Errorf("connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error": "internal error"}`,
			expectedInput:  validInput,
		},
		{
			id:             "short username",
			body:           `{"username": "jo", "email": "john@example.com", "password": "secret1"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			id:             "username with a dash",
			body:           `{"username": "john-doe", "email": "john@example.com", "password": "secret1"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			id:             "invalid email",
			body:           `{"username": "john_doe", "email": "john", "password": "secret1"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			id:             "short password",
			body:           `{"username": "john_doe", "email": "john@example.com", "password": "12345"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			assert := assert.New(t)
			stub := &stubService{err: testcase.serviceErr}
			handler := New(stub)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(testcase.body))
			rw := httptest.NewRecorder()
			handler.ServeHTTP(rw, req)

			assert.Equal(testcase.expectedStatus, rw.Code)
			if testcase.expectedBody != "" {
				assert.JSONEq(testcase.expectedBody, rw.Body.String())
			}
			assert.Equal(testcase.expectedInput, stub.input)
		})
	}
}
