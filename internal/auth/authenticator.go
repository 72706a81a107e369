package auth

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/TheSmitCode/funwhine/internal/model"
	"github.com/TheSmitCode/funwhine/internal/utils"
)

// UserStore is the slice of the user repository the authentication
// facade needs. All lookups return (nil, nil) when no account matches.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Authenticator composes transport resolution, token validation and
// subject resolution into the "current user" contract consumed by
// protected operations.
type Authenticator struct {
	users      UserStore
	tokens     *TokenService
	cookieName string
	ttl        time.Duration
}

// NewAuthenticator wires the facade. ttlMinutes is the configured token
// lifetime used for every issued token.
func NewAuthenticator(users UserStore, tokens *TokenService, cookieName string, ttlMinutes int) *Authenticator {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Authenticator{
		users:      users,
		tokens:     tokens,
		cookieName: cookieName,
		ttl:        time.Duration(ttlMinutes) * time.Minute,
	}
}

// CookieName returns the cookie the token travels in.
func (a *Authenticator) CookieName() string { return a.cookieName }

// TTL returns the configured token lifetime.
func (a *Authenticator) TTL() time.Duration { return a.ttl }

// Authenticate resolves the request to a persisted account. The
// subject claim is interpreted as a numeric id first; a subject that
// does not parse as an id is treated as a username. Login always
// issues ids, the username path guards alternate issuance. Errors are
// AuthError or TokenError, both of which callers treat as unauthorized.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (*model.User, error) {
	raw, err := TokenFromRequest(r, a.cookieName)
	if err != nil {
		return nil, err
	}
	claims, err := a.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}
	var u *model.User
	if id, perr := strconv.ParseUint(claims.Subject, 10, 64); perr == nil {
		u, err = a.users.GetByID(ctx, id)
	} else {
		u, err = a.users.GetByUsername(ctx, claims.Subject)
	}
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &AuthError{Kind: UnknownSubject}
	}
	return u, nil
}

// RequireActive rejects soft-disabled accounts. It is a separate guard
// so callers that merely attribute a request can still see who it was.
func (a *Authenticator) RequireActive(u *model.User) error {
	if !u.IsActive {
		return &AuthError{Kind: Inactive}
	}
	return nil
}

// Login verifies credentials and issues a token bound to the account
// id. The identifier is ambiguous between email and username; email
// lookup takes precedence. An unknown identifier and a wrong password
// fail identically with InvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, identifier, password string) (*model.User, string, time.Time, error) {
	u, err := a.users.GetByEmail(ctx, identifier)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if u == nil {
		u, err = a.users.GetByUsername(ctx, identifier)
		if err != nil {
			return nil, "", time.Time{}, err
		}
	}
	if u == nil || !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, "", time.Time{}, &AuthError{Kind: InvalidCredentials}
	}
	token, exp, err := a.tokens.Issue(strconv.FormatUint(u.ID, 10), a.ttl)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}
