package repository

import (
	"context"
	"database/sql"
)

// Meta keys persisted for the single local account.
const (
	MetaCryptoSalt    = "crypto_salt"
	MetaHasAccount    = "has_account"
	MetaKDFIterations = "kdf_iterations"
)

// MetaRepo is a small key/value table for account-level settings.
type MetaRepo struct{ db *sql.DB }

func NewMetaRepo(db *sql.DB) *MetaRepo { return &MetaRepo{db: db} }

// Get returns the value for key and whether it exists.
func (r *MetaRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *MetaRepo) Put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO meta(key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value;
	`, key, value)
	return err
}

// PutIfAbsent stores value only when key is not set yet and reports whether
// it was written.
func (r *MetaRepo) PutIfAbsent(ctx context.Context, key, value string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO meta(key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
