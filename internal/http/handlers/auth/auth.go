package auth

import (
	"context"
	"net/http"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/core/services/auth"
	"strings"
)

const (
	AUTH_TOKEN_PREFIX  = "Bearer "
	AUTH_TOKEN_MAX_LEN = 2048
)

func ParseToken(r *http.Request) (token user.AccessToken, ok bool) {
	header := r.Header.Get("authorization")
	if header == "" {
		return token, false
	}
	parts := strings.SplitN(header, AUTH_TOKEN_PREFIX, 2)
	if len(parts) != 2 || parts[0] != "" {
		return token, false
	}
	if parts[1] == "" || len(parts[1]) > AUTH_TOKEN_MAX_LEN {
		return token, false
	}
	return user.AccessToken(parts[1]), true
}

func SetAccessTokenToContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := ParseToken(r)
		if ok {
			ctx := context.WithValue(r.Context(), auth.CONTEXT_ACCESS_TOKEN_KEY, token)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
