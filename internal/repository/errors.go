// Package repository implements persistence over a *sql.DB. It defines
// the error taxonomy shared by all repositories: ValidationError when
// an input cannot be mapped onto an entity's field set, StorageError
// when the database itself fails (always after the enclosing
// transaction has been rolled back), and sentinel values that handlers
// translate into specific HTTP responses.
package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConflict is returned when a delete cannot proceed because of
// dependent records, such as removing a block that still has intakes
// referencing it. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert violates a unique constraint
// (username or email already taken). Handlers translate this into
// HTTP 409.
var ErrDuplicate = errors.New("duplicate")

// ValidationError reports a create or update input that cannot be
// mapped onto the target entity, naming the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a persistence-layer failure. By the time it
// surfaces, any transaction it occurred in has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error code 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
