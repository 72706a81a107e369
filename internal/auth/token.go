package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the verified contents of a token. They are populated only
// after signature and expiry checks succeed; an unverifiable token
// yields no claims at all.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and validates signed, time-bounded identity
// assertions. It holds no persisted state; secret and algorithm come
// from configuration.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
}

// NewTokenService builds a TokenService for the given secret and
// signing algorithm name (e.g. "HS256"). Unknown algorithm names fall
// back to HS256.
func NewTokenService(secret, algorithm string) *TokenService {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	return &TokenService{secret: []byte(secret), method: method}
}

// Issue signs a token whose subject claim is subject, issued now and
// expiring after ttl. It returns the serialized token and its expiry.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Validate verifies signature and expiry and returns the claims. An
// expired token fails with TokenError{Expired}; anything else that
// cannot be verified fails with TokenError{Malformed}.
func (s *TokenService) Validate(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, &TokenError{Kind: TokenExpired, Err: err}
		}
		return Claims{}, &TokenError{Kind: TokenMalformed, Err: err}
	}
	if !tok.Valid {
		return Claims{}, &TokenError{Kind: TokenMalformed}
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, &TokenError{Kind: TokenMalformed}
	}
	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, &TokenError{Kind: TokenMalformed, Err: err}
	}
	out := Claims{Subject: sub}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
