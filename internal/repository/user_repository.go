package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/TheSmitCode/funwhine/internal/model"
	"github.com/TheSmitCode/funwhine/internal/utils"
)

var userColumns = []string{
	"id", "username", "email", "password_hash", "display_name", "role",
	"is_active", "is_admin", "ui_theme", "ui_sidebar", "ui_navbar",
	"ui_font_scale", "ui_simple_mode", "ui_features", "created_at", "updated_at",
}

func scanUser(s Scanner) (model.User, error) {
	var (
		u        model.User
		username sql.NullString
		email    sql.NullString
		display  sql.NullString
		role     string
		features []byte
	)
	err := s.Scan(&u.ID, &username, &email, &u.PasswordHash, &display, &role,
		&u.IsActive, &u.IsAdmin, &u.UITheme, &u.UISidebar, &u.UINavbar,
		&u.UIFontScale, &u.UISimpleMode, &features, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if username.Valid {
		v := username.String
		u.Username = &v
	}
	if email.Valid {
		v := email.String
		u.Email = &v
	}
	if display.Valid {
		v := display.String
		u.DisplayName = &v
	}
	u.Role = model.Role(role)
	u.UIFeatures = map[string]bool{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &u.UIFeatures); err != nil {
			return model.User{}, err
		}
	}
	return u, nil
}

func insertUser(in model.UserCreate) ([]string, []any, error) {
	if in.Username == nil && in.Email == nil {
		return nil, nil, &ValidationError{Field: "username", Reason: "username or email required"}
	}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, nil, &ValidationError{Field: "username", Reason: "must not be blank"}
		}
		// Token subjects are resolved id-first, so a purely numeric
		// username would shadow another account's id.
		if _, err := strconv.ParseUint(name, 10, 64); err == nil {
			return nil, nil, &ValidationError{Field: "username", Reason: "must not be purely numeric"}
		}
	}
	if in.PasswordHash == "" {
		return nil, nil, &ValidationError{Field: "password", Reason: "required"}
	}
	role := in.Role
	if role == "" {
		role = model.RoleWorker
	}
	if !role.Valid() {
		return nil, nil, &ValidationError{Field: "role", Reason: "unknown role"}
	}
	cols := []string{"username", "email", "password_hash", "display_name", "role",
		"is_active", "is_admin", "ui_theme", "ui_sidebar", "ui_navbar",
		"ui_font_scale", "ui_simple_mode", "ui_features"}
	args := []any{
		trimOrNil(in.Username), normalizedOrNil(in.Email), in.PasswordHash,
		strOrNil(in.DisplayName), string(role),
		true, role == model.RoleAdmin,
		"theme-light", true, true, "normal", false, "{}",
	}
	return cols, args, nil
}

func applyUserUpdate(in model.UserUpdate) ([]string, []any, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if _, err := strconv.ParseUint(name, 10, 64); err == nil {
			return nil, nil, &ValidationError{Field: "username", Reason: "must not be purely numeric"}
		}
		set("username", name)
	}
	if in.Email != nil {
		set("email", strings.ToLower(strings.TrimSpace(*in.Email)))
	}
	if in.DisplayName != nil {
		set("display_name", *in.DisplayName)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, nil, &ValidationError{Field: "role", Reason: "unknown role"}
		}
		set("role", string(*in.Role))
	}
	if in.IsActive != nil {
		set("is_active", *in.IsActive)
	}
	if in.IsAdmin != nil {
		set("is_admin", *in.IsAdmin)
	}
	if in.UITheme != nil {
		set("ui_theme", *in.UITheme)
	}
	if in.UISidebar != nil {
		set("ui_sidebar", *in.UISidebar)
	}
	if in.UINavbar != nil {
		set("ui_navbar", *in.UINavbar)
	}
	if in.UIFontScale != nil {
		set("ui_font_scale", *in.UIFontScale)
	}
	if in.UISimpleMode != nil {
		set("ui_simple_mode", *in.UISimpleMode)
	}
	if in.UIFeatures != nil {
		raw, err := json.Marshal(in.UIFeatures)
		if err != nil {
			return nil, nil, &ValidationError{Field: "ui_features", Reason: "not encodable"}
		}
		set("ui_features", string(raw))
	}
	return sets, args, nil
}

// UserRepo extends the generic repository with the lookups the auth
// facade needs: by username and by normalized email.
type UserRepo struct {
	*Repo[model.User, model.UserCreate, model.UserUpdate]
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{Repo: NewRepo(db, Mapper[model.User, model.UserCreate, model.UserUpdate]{
		Table:   "users",
		Columns: userColumns,
		Scan:    scanUser,
		Insert:  insertUser,
		Apply:   applyUserUpdate,
		ID:      func(u *model.User) uint64 { return u.ID },
	})}
}

// Create hashes the plaintext password with the given bcrypt cost and
// persists the user. The plaintext never reaches the database layer.
func (r *UserRepo) Create(ctx context.Context, in model.UserCreate, cost int) (*model.User, error) {
	if in.Password == "" {
		return nil, &ValidationError{Field: "password", Reason: "required"}
	}
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return nil, &StorageError{Op: "hash password", Err: err}
	}
	in.PasswordHash = hash
	return r.Repo.Create(ctx, in)
}

// GetByID fetches a user by id; (nil, nil) when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.Repo.Get(ctx, id)
}

// GetByUsername fetches a user by exact username; (nil, nil) when absent.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByEmail fetches a user by normalized email; (nil, nil) when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepo) getBy(ctx context.Context, col, val string) (*model.User, error) {
	query := "SELECT " + strings.Join(userColumns, ", ") + " FROM users WHERE " + col + " = ? LIMIT 1"
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, val))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "get users by " + col, Err: err}
	}
	return &u, nil
}

func normalizedOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return strings.ToLower(strings.TrimSpace(*s))
}

func trimOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return strings.TrimSpace(*s)
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
