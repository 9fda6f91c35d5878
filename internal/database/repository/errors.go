package repository

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// DuplicateKeyError is returned when an insert collides with a uniqueness
// constraint. The existing row is left untouched.
type DuplicateKeyError struct {
	Table string
	Key   string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: duplicate key %q", e.Table, e.Key)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// IsDuplicateKey reports whether err is, or wraps, a DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	var dup *DuplicateKeyError
	return errors.As(err, &dup)
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func duplicateOr(err error, table, key string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return &DuplicateKeyError{Table: table, Key: key, Err: err}
	}
	return err
}
