package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/TheSmitCode/funwhine/internal/auth"
	"github.com/TheSmitCode/funwhine/internal/config"
	"github.com/TheSmitCode/funwhine/internal/middleware"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth *auth.Authenticator
}

// NewAuthHandler wires the handler.
func NewAuthHandler(cfg config.Config, a *auth.Authenticator) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: a}
}

type loginReq struct {
	// Username doubles as the login identifier: it may hold either a
	// username or an email address.
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresAt   string  `json:"expires_at"`
	UserID      uint64  `json:"user_id"`
	Username    *string `json:"username"`
}

// Login verifies credentials, sets the HttpOnly token cookie and also
// returns the token in the body for clients that prefer bearer auth.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	u, token, exp, err := h.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Auth.RequireActive(u); err != nil {
		return writeError(c, err)
	}

	c.SetCookie(h.tokenCookie(token, int(h.Auth.TTL()/time.Second)))
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   exp.UTC().Format(time.RFC3339),
		UserID:      u.ID,
		Username:    u.Username,
	})
}

// Logout clears the token cookie. The attributes must match the ones
// used at issuance or browsers keep the stale cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	ck := h.tokenCookie("", -1)
	c.SetCookie(ck)
	return c.JSON(http.StatusOK, echo.Map{"detail": "logged out"})
}

// Me returns the authenticated account, UI preferences included.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) tokenCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.Auth.CookieName(),
		Value:    value,
		Path:     "/",
		Domain:   h.Cfg.TokenCookieDomain(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure(),
		SameSite: h.Cfg.CookieSameSite(),
	}
}
