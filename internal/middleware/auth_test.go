package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheSmitCode/funwhine/internal/auth"
	"github.com/TheSmitCode/funwhine/internal/model"
	"github.com/TheSmitCode/funwhine/internal/repository"
)

// stubUserStore serves one account and can be switched to fail every
// lookup with a storage error.
type stubUserStore struct {
	user *model.User
	fail bool
}

func (s *stubUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if s.fail {
		return nil, &repository.StorageError{Op: "get users", Err: errors.New("connection refused")}
	}
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, nil
}

func (s *stubUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if s.fail {
		return nil, &repository.StorageError{Op: "get users", Err: errors.New("connection refused")}
	}
	if s.user != nil && s.user.Username != nil && *s.user.Username == username {
		return s.user, nil
	}
	return nil, nil
}

func (s *stubUserStore) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, nil
}

func authFixture(store *stubUserStore) (*auth.Authenticator, *auth.TokenService) {
	tokens := auth.NewTokenService("test-secret", "HS256")
	return auth.NewAuthenticator(store, tokens, auth.DefaultCookieName, 60), tokens
}

func runProtected(t *testing.T, a *auth.Authenticator, token string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"id": u.ID})
	}, Authenticate(a))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticatePassesActiveUser(t *testing.T) {
	name := "alice"
	store := &stubUserStore{user: &model.User{ID: 7, Username: &name, IsActive: true}}
	a, tokens := authFixture(store)
	token, _, err := tokens.Issue("7", time.Hour)
	require.NoError(t, err)

	rec := runProtected(t, a, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":7`)
}

func TestAuthenticateStorageFailureIsServerError(t *testing.T) {
	// A database outage behind a valid token is an internal failure,
	// not a credential problem.
	store := &stubUserStore{fail: true}
	a, tokens := authFixture(store)
	token, _, err := tokens.Issue("7", time.Hour)
	require.NoError(t, err)

	rec := runProtected(t, a, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestAuthenticateMissingToken(t *testing.T) {
	a, _ := authFixture(&stubUserStore{})

	rec := runProtected(t, a, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "not authenticated")
}

func TestAuthenticateExpiredToken(t *testing.T) {
	name := "alice"
	store := &stubUserStore{user: &model.User{ID: 7, Username: &name, IsActive: true}}
	a, tokens := authFixture(store)
	token, _, err := tokens.Issue("7", 0)
	require.NoError(t, err)

	rec := runProtected(t, a, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	name := "alice"
	store := &stubUserStore{user: &model.User{ID: 7, Username: &name, IsActive: false}}
	a, tokens := authFixture(store)
	token, _, err := tokens.Issue("7", time.Hour)
	require.NoError(t, err)

	rec := runProtected(t, a, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "inactive account")
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	a, tokens := authFixture(&stubUserStore{})
	token, _, err := tokens.Issue("404", time.Hour)
	require.NoError(t, err)

	rec := runProtected(t, a, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "not authenticated")
}
