package auth

import (
	"net/http"
	"net/http/httptest"
	"notesauth/internal/core/domain/user"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	cases := []struct {
		id       string
		header   string
		expected user.AccessToken
		ok       bool
	}{
		{id: "valid", header: "Bearer abc.def.ghi", expected: "abc.def.ghi", ok: true},
		{id: "no header", header: "", ok: false},
		{id: "wrong scheme", header: "Basic abc", ok: false},
		{id: "prefix not leading", header: "xBearer abc", ok: false},
		{id: "empty token", header: "Bearer ", ok: false},
		{id: "too long", header: "Bearer " + strings.Repeat("a", AUTH_TOKEN_MAX_LEN+1), ok: false},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/profile/me", nil)
			if testcase.header != "" {
				r.Header.Set("Authorization", testcase.header)
			}
			token, ok := ParseToken(r)
			require.Equal(t, testcase.ok, ok)
			require.Equal(t, testcase.expected, token)
		})
	}
}
