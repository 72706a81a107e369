package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Page size bounds applied to every list query. The ceiling prevents
// unbounded scans regardless of what the caller asks for.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Scanner is satisfied by both *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx so the same read
// helpers can run inside or outside a transaction.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Mapper binds an entity kind E, its create input C and its update
// input U to a table. All field mapping is explicit: Insert and Apply
// return column/argument pairs built per field, so a bad input fails
// with a precise ValidationError instead of a reflection surprise.
type Mapper[E, C, U any] struct {
	// Table is the table name. Columns lists every selected column;
	// the first must be the primary key.
	Table   string
	Columns []string

	// Scan reads one row in Columns order.
	Scan func(s Scanner) (E, error)

	// Insert maps a create input to the columns and values of a new
	// row, or returns a *ValidationError.
	Insert func(in C) ([]string, []any, error)

	// Apply maps an update input to SET assignments for its non-nil
	// fields only. An input with nothing set yields an empty slice,
	// which Update treats as a no-op.
	Apply func(in U) ([]string, []any, error)

	// ID extracts the primary key of an existing entity.
	ID func(e *E) uint64
}

// Repo is the generic persistence repository: one get/list/create/
// update/remove contract shared by every entity kind. Each mutation
// runs inside exactly one transaction and either fully commits or
// leaves state unchanged.
type Repo[E, C, U any] struct {
	DB *sql.DB
	m  Mapper[E, C, U]
}

// NewRepo binds a mapper to a database handle.
func NewRepo[E, C, U any](db *sql.DB, m Mapper[E, C, U]) *Repo[E, C, U] {
	return &Repo[E, C, U]{DB: db, m: m}
}

func (r *Repo[E, C, U]) selectByID() string {
	return "SELECT " + strings.Join(r.m.Columns, ", ") + " FROM " + r.m.Table + " WHERE id = ? LIMIT 1"
}

// Get fetches a single entity by id. Absence is not an error: it
// returns (nil, nil) so callers decide how to report it.
func (r *Repo[E, C, U]) Get(ctx context.Context, id uint64) (*E, error) {
	e, err := r.m.Scan(r.DB.QueryRowContext(ctx, r.selectByID(), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "get " + r.m.Table, Err: err}
	}
	return &e, nil
}

// List returns one bounded page ordered by id. The limit is clamped to
// MaxPageSize; non-positive limits fall back to DefaultPageSize. An
// empty table yields an empty slice, not an error.
func (r *Repo[E, C, U]) List(ctx context.Context, offset, limit int) ([]E, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	query := "SELECT " + strings.Join(r.m.Columns, ", ") + " FROM " + r.m.Table + " ORDER BY id LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, &StorageError{Op: "list " + r.m.Table, Err: err}
	}
	defer rows.Close()
	out := make([]E, 0, limit)
	for rows.Next() {
		e, err := r.m.Scan(rows)
		if err != nil {
			return nil, &StorageError{Op: "list " + r.m.Table, Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list " + r.m.Table, Err: err}
	}
	return out, nil
}

// Create persists a new entity built from in and returns the row as
// stored, id and defaults populated. A bad input fails with
// ValidationError before anything is written.
func (r *Repo[E, C, U]) Create(ctx context.Context, in C) (*E, error) {
	cols, args, err := r.m.Insert(in)
	if err != nil {
		return nil, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "begin " + r.m.Table, Err: err}
	}
	query := "INSERT INTO " + r.m.Table + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders(len(cols)) + ")"
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		_ = tx.Rollback()
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, &StorageError{Op: "insert " + r.m.Table, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "insert " + r.m.Table, Err: err}
	}
	e, err := r.m.Scan(tx.QueryRowContext(ctx, r.selectByID(), id))
	if err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "reload " + r.m.Table, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "commit " + r.m.Table, Err: err}
	}
	return &e, nil
}

// Update applies the non-nil fields of in onto existing and returns the
// reloaded entity. Fields omitted from in are left untouched; an input
// with no fields set returns existing unchanged.
func (r *Repo[E, C, U]) Update(ctx context.Context, existing *E, in U) (*E, error) {
	sets, args, err := r.m.Apply(in)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return existing, nil
	}
	id := r.m.ID(existing)
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "begin " + r.m.Table, Err: err}
	}
	query := "UPDATE " + r.m.Table + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := tx.ExecContext(ctx, query, append(args, id)...); err != nil {
		_ = tx.Rollback()
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, &StorageError{Op: "update " + r.m.Table, Err: err}
	}
	e, err := r.m.Scan(tx.QueryRowContext(ctx, r.selectByID(), id))
	if err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "reload " + r.m.Table, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "commit " + r.m.Table, Err: err}
	}
	return &e, nil
}

// Remove deletes the entity with the given id and returns the deleted
// snapshot, or (nil, nil) when no such row existed.
func (r *Repo[E, C, U]) Remove(ctx context.Context, id uint64) (*E, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "begin " + r.m.Table, Err: err}
	}
	e, err := r.m.Scan(tx.QueryRowContext(ctx, r.selectByID(), id))
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return nil, nil
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "delete " + r.m.Table, Err: err}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+r.m.Table+" WHERE id = ?", id); err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "delete " + r.m.Table, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "commit " + r.m.Table, Err: err}
	}
	return &e, nil
}

// placeholders returns "?, ?, ..." of length n.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
