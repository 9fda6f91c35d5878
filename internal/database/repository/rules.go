package repository

import (
	"context"
	"database/sql"
)

// RuleRepo stores categorization rules.
type RuleRepo struct{ db *sql.DB }

func NewRuleRepo(db *sql.DB) *RuleRepo { return &RuleRepo{db: db} }

// Add inserts r and returns its insertion sequence.
func (r *RuleRepo) Add(ctx context.Context, rule Rule) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO rules(id, pattern, category_id, priority, enabled)
	VALUES(?, ?, ?, ?, ?)
	`, rule.ID, rule.Pattern, rule.CategoryID, rule.Priority, rule.Enabled)
	if err != nil {
		return 0, duplicateOr(err, "rules", rule.ID)
	}
	return res.LastInsertId()
}

func (r *RuleRepo) Get(ctx context.Context, id string) (*Rule, error) {
	row := r.db.QueryRowContext(ctx, `SELECT seq, id, pattern, category_id, priority, enabled FROM rules WHERE id = ?`, id)
	var rule Rule
	if err := row.Scan(&rule.Seq, &rule.ID, &rule.Pattern, &rule.CategoryID, &rule.Priority, &rule.Enabled); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// List returns every rule in insertion order.
func (r *RuleRepo) List(ctx context.Context) ([]Rule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT seq, id, pattern, category_id, priority, enabled FROM rules ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.Seq, &rule.ID, &rule.Pattern, &rule.CategoryID, &rule.Priority, &rule.Enabled); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// SetEnabled toggles a rule and reports whether it exists.
func (r *RuleRepo) SetEnabled(ctx context.Context, id string, enabled bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE rules SET enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *RuleRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountByCategory returns how many rules point at categoryID.
func (r *RuleRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rules WHERE category_id = ?`, categoryID).Scan(&n)
	return n, err
}
