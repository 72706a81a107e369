package auth

import (
	"net/http"
	"strings"
)

// DefaultCookieName is the cookie the token is issued into when the
// configuration does not name one.
const DefaultCookieName = "access_token_cookie"

const bearerPrefix = "Bearer "

// TokenFromRequest locates the opaque token string in request metadata.
// The named cookie is preferred; its value may be the raw token or
// carry a "Bearer " prefix, which is stripped. When the cookie is
// absent, the Authorization header is tried as a fallback. The token's
// content is never inspected here.
func TokenFromRequest(r *http.Request, cookieName string) (string, error) {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if ck, err := r.Cookie(cookieName); err == nil && ck.Value != "" {
		return strings.TrimPrefix(ck.Value, bearerPrefix), nil
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		if raw := strings.TrimPrefix(h, bearerPrefix); raw != "" {
			return raw, nil
		}
	}
	return "", &AuthError{Kind: MissingCredential}
}
