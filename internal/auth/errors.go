// Package auth implements the authentication subsystem: signed token
// issuance and validation, token extraction from request metadata, and
// resolution of a token's subject to a persisted account.
package auth

import "fmt"

// TokenErrorKind classifies token validation failures.
type TokenErrorKind string

const (
	// TokenExpired: signature verified but the token is past its expiry.
	TokenExpired TokenErrorKind = "expired"
	// TokenMalformed: structure or signature could not be verified. No
	// claim of a malformed token is ever trusted.
	TokenMalformed TokenErrorKind = "malformed"
)

// TokenError reports why a token failed validation.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token %s", e.Kind)
}

func (e *TokenError) Unwrap() error { return e.Err }

// AuthErrorKind classifies authentication failures.
type AuthErrorKind string

const (
	// MissingCredential: no token in cookie or Authorization header.
	MissingCredential AuthErrorKind = "missing_credential"
	// InvalidCredentials: login identifier unknown or password mismatch.
	// Deliberately the same kind for both so callers cannot enumerate
	// accounts.
	InvalidCredentials AuthErrorKind = "invalid_credentials"
	// UnknownSubject: the token's subject claim resolves to no account.
	UnknownSubject AuthErrorKind = "unknown_subject"
	// Inactive: the account exists but has been soft-disabled.
	Inactive AuthErrorKind = "inactive"
)

// AuthError reports an authentication failure.
type AuthError struct {
	Kind AuthErrorKind
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s", e.Kind)
}
