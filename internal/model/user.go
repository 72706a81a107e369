package model

import "time"

// Role is the closed set of account roles. ADMIN accounts manage other
// users, MANAGER accounts manage blocks and intakes, WORKER accounts
// record intakes.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleWorker  Role = "WORKER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleWorker:
		return true
	}
	return false
}

// User mirrors the `users` table. Username and email are each unique
// when present; at least one of the two must be set. PasswordHash is
// never empty for a persisted user. Accounts are soft-disabled via
// IsActive rather than deleted in normal operation.
type User struct {
	ID           uint64          `json:"id"`
	Username     *string         `json:"username"`
	Email        *string         `json:"email"`
	PasswordHash string          `json:"-"`
	DisplayName  *string         `json:"display_name,omitempty"`
	Role         Role            `json:"role"`
	IsActive     bool            `json:"is_active"`
	IsAdmin      bool            `json:"is_admin"`
	UITheme      string          `json:"ui_theme"`
	UISidebar    bool            `json:"ui_sidebar"`
	UINavbar     bool            `json:"ui_navbar"`
	UIFontScale  string          `json:"ui_font_scale"`
	UISimpleMode bool            `json:"ui_simple_mode"`
	UIFeatures   map[string]bool `json:"ui_features"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// UserCreate carries the fields needed to register a user. Password is
// the plaintext supplied by the caller; the repository hashes it before
// the row is written and never stores the plaintext.
type UserCreate struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"display_name"`
	Role        Role    `json:"role"`

	// PasswordHash is filled in by the repository from Password.
	PasswordHash string `json:"-"`
}

// UserUpdate is a partial update: only non-nil fields are applied.
type UserUpdate struct {
	Username     *string         `json:"username"`
	Email        *string         `json:"email"`
	DisplayName  *string         `json:"display_name"`
	Role         *Role           `json:"role"`
	IsActive     *bool           `json:"is_active"`
	IsAdmin      *bool           `json:"is_admin"`
	UITheme      *string         `json:"ui_theme"`
	UISidebar    *bool           `json:"ui_sidebar"`
	UINavbar     *bool           `json:"ui_navbar"`
	UIFontScale  *string         `json:"ui_font_scale"`
	UISimpleMode *bool           `json:"ui_simple_mode"`
	UIFeatures   map[string]bool `json:"ui_features"`
}
