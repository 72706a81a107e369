// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"net/http"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Secrets and identifiers are strings,
// durations and costs are ints; cookie policy is derived from Env.
type Config struct {
	Env          string // application environment ("dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign tokens
	JWTAlgorithm string // signing algorithm name (HS256)
	AccessTTLMin int    // access token time-to-live in minutes
	CookieName   string // cookie carrying the access token
	BcryptCost   int    // bcrypt cost for password hashing
	CORSOrigin   string // allowed frontend origin (optional)
	CookieDomain string // cookie domain for production (optional)
}

// Load reads configuration from environment variables. Required
// variables are enforced by must(); missing values exit with a fatal
// log message. Everything else has a development-friendly default.
func Load() Config {
	return Config{
		Env:          getenv("APP_ENV", "dev"),
		Port:         getenv("APP_PORT", "8000"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"),
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		JWTAlgorithm: getenv("JWT_ALGORITHM", "HS256"),
		AccessTTLMin: getint("ACCESS_TOKEN_TTL_MIN", 60*24*7),
		CookieName:   getenv("ACCESS_TOKEN_COOKIE_NAME", "access_token_cookie"),
		BcryptCost:   getint("BCRYPT_COST", 10),
		CORSOrigin:   os.Getenv("FRONTEND_ORIGIN"),
		CookieDomain: getenv("COOKIE_DOMAIN", ".funwine.app"),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// CookieSecure is true in production so cookies are HTTPS-only.
func (c Config) CookieSecure() bool { return c.IsProduction() }

// CookieSameSite returns the same-site policy for the token cookie.
func (c Config) CookieSameSite() http.SameSite {
	if c.IsProduction() {
		return http.SameSiteLaxMode
	}
	return http.SameSiteDefaultMode
}

// TokenCookieDomain returns the cookie domain: unset for local use, a
// shared parent domain in production so subdomains see the session.
func (c Config) TokenCookieDomain() string {
	if c.IsProduction() {
		return c.CookieDomain
	}
	return ""
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns an environment variable or a default.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getint returns an integer environment variable or a default; a value
// that does not parse exits fatally rather than silently misconfiguring.
func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
