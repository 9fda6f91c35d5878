package repository

import (
	"context"
	"database/sql"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Add inserts a new category. An existing id yields *DuplicateKeyError.
func (r *CategoryRepo) Add(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories(id, name, kind) VALUES (?, ?, ?)`, c.ID, c.Name, c.Kind)
	return duplicateOr(err, "categories", c.ID)
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, `SELECT id, name, kind FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name, &c.Kind)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// List returns categories grouped by kind, then by name.
func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, kind FROM categories ORDER BY kind, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}

// Delete removes a category and reports whether it existed. Rules hold a
// RESTRICT reference, so deleting a category still in use fails.
func (r *CategoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
