package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheSmitCode/funwhine/internal/model"
	"github.com/TheSmitCode/funwhine/internal/utils"
)

// fakeUserStore serves a fixed set of accounts and records which lookup
// paths were taken.
type fakeUserStore struct {
	users      []*model.User
	byIDCalls  int
	byNameCall int
	byMailCall int
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.byIDCalls++
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.byNameCall++
	for _, u := range f.users {
		if u.Username != nil && *u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.byMailCall++
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func strp(s string) *string { return &s }

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, 4)
	require.NoError(t, err)
	return h
}

func newTestAuthenticator(t *testing.T, users ...*model.User) (*Authenticator, *fakeUserStore) {
	t.Helper()
	store := &fakeUserStore{users: users}
	svc := NewTokenService("test-secret", "HS256")
	return NewAuthenticator(store, svc, DefaultCookieName, 60), store
}

func requestWithToken(a *Authenticator, token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: a.CookieName(), Value: token})
	return r
}

func TestAuthenticateNumericSubject(t *testing.T) {
	alice := &model.User{ID: 7, Username: strp("alice"), IsActive: true}
	a, store := newTestAuthenticator(t, alice)

	token, _, err := NewTokenService("test-secret", "HS256").Issue("7", time.Hour)
	require.NoError(t, err)

	u, err := a.Authenticate(context.Background(), requestWithToken(a, token))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, 1, store.byIDCalls)
	assert.Equal(t, 0, store.byNameCall)
}

func TestAuthenticateUsernameSubject(t *testing.T) {
	alice := &model.User{ID: 7, Username: strp("alice"), IsActive: true}
	a, store := newTestAuthenticator(t, alice)

	token, _, err := NewTokenService("test-secret", "HS256").Issue("alice", time.Hour)
	require.NoError(t, err)

	u, err := a.Authenticate(context.Background(), requestWithToken(a, token))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, 0, store.byIDCalls)
	assert.Equal(t, 1, store.byNameCall)
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	for _, subject := range []string{"404", "nobody"} {
		token, _, err := NewTokenService("test-secret", "HS256").Issue(subject, time.Hour)
		require.NoError(t, err)

		_, err = a.Authenticate(context.Background(), requestWithToken(a, token))
		var aerr *AuthError
		require.True(t, errors.As(err, &aerr), "subject %q", subject)
		assert.Equal(t, UnknownSubject, aerr.Kind, "subject %q", subject)
	}
}

func TestAuthenticateMissingCredential(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	_, err := a.Authenticate(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	var aerr *AuthError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, MissingCredential, aerr.Kind)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	alice := &model.User{ID: 7, Username: strp("alice"), IsActive: true}
	a, _ := newTestAuthenticator(t, alice)

	token, _, err := NewTokenService("test-secret", "HS256").Issue("7", 0)
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), requestWithToken(a, token))
	var terr *TokenError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, TokenExpired, terr.Kind)
}

func TestRequireActive(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	require.NoError(t, a.RequireActive(&model.User{ID: 1, IsActive: true}))

	err := a.RequireActive(&model.User{ID: 2, IsActive: false})
	var aerr *AuthError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, Inactive, aerr.Kind)
}

func TestLoginEmailPrecedence(t *testing.T) {
	hash := mustHash(t, "pw-one")
	// One account's email collides with another account's username.
	byEmail := &model.User{ID: 1, Email: strp("shared"), PasswordHash: hash, IsActive: true}
	byName := &model.User{ID: 2, Username: strp("shared"), PasswordHash: mustHash(t, "pw-two"), IsActive: true}
	a, store := newTestAuthenticator(t, byEmail, byName)

	u, token, exp, err := a.Login(context.Background(), "shared", "pw-one")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))
	assert.Equal(t, 1, store.byMailCall)
	assert.Equal(t, 0, store.byNameCall)
}

func TestLoginUsernameFallback(t *testing.T) {
	alice := &model.User{ID: 7, Username: strp("alice"), PasswordHash: mustHash(t, "correct"), IsActive: true}
	a, store := newTestAuthenticator(t, alice)

	u, token, _, err := a.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, 1, store.byMailCall)
	assert.Equal(t, 1, store.byNameCall)

	// The issued subject must be the numeric id so later requests
	// resolve it without a username lookup.
	claims, err := NewTokenService("test-secret", "HS256").Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	alice := &model.User{ID: 7, Username: strp("alice"), PasswordHash: mustHash(t, "correct"), IsActive: true}
	a, _ := newTestAuthenticator(t, alice)

	for name, creds := range map[string][2]string{
		"unknown identifier": {"nobody", "correct"},
		"wrong password":     {"alice", "wrong"},
	} {
		_, _, _, err := a.Login(context.Background(), creds[0], creds[1])
		var aerr *AuthError
		require.True(t, errors.As(err, &aerr), name)
		assert.Equal(t, InvalidCredentials, aerr.Kind, name)
	}
}

func TestLoginThenAuthenticate(t *testing.T) {
	alice := &model.User{ID: 7, Username: strp("alice"), PasswordHash: mustHash(t, "correct"), IsActive: true}
	a, _ := newTestAuthenticator(t, alice)

	_, token, _, err := a.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	u, err := a.Authenticate(context.Background(), requestWithToken(a, token))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	require.NoError(t, a.RequireActive(u))
}
