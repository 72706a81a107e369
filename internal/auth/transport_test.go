package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "raw-token"})

	got, err := TokenFromRequest(r, DefaultCookieName)
	require.NoError(t, err)
	assert.Equal(t, "raw-token", got)
}

func TestTokenFromCookieBearerPrefix(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "Bearer raw-token"})

	got, err := TokenFromRequest(r, DefaultCookieName)
	require.NoError(t, err)
	assert.Equal(t, "raw-token", got)
}

func TestTokenFromHeaderFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")

	got, err := TokenFromRequest(r, DefaultCookieName)
	require.NoError(t, err)
	assert.Equal(t, "header-token", got)
}

func TestCookieWinsOverHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")

	got, err := TokenFromRequest(r, DefaultCookieName)
	require.NoError(t, err)
	assert.Equal(t, "cookie-token", got)
}

func TestTokenMissing(t *testing.T) {
	cases := map[string]func(*http.Request){
		"no credential":     func(r *http.Request) {},
		"empty cookie":      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: ""}) },
		"non-bearer header": func(r *http.Request) { r.Header.Set("Authorization", "Basic dXNlcjpwdw==") },
		"bare bearer":       func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") },
	}
	for name, arrange := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		arrange(r)

		_, err := TokenFromRequest(r, "")
		var aerr *AuthError
		require.True(t, errors.As(err, &aerr), name)
		assert.Equal(t, MissingCredential, aerr.Kind, name)
	}
}
