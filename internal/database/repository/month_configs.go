package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// MonthConfigRepo stores per-month saving goals and budgets.
type MonthConfigRepo struct{ db *sql.DB }

func NewMonthConfigRepo(db *sql.DB) *MonthConfigRepo { return &MonthConfigRepo{db: db} }

// Get returns the config for month, or nil when none was saved.
func (r *MonthConfigRepo) Get(ctx context.Context, month string) (*MonthConfig, error) {
	cfg := MonthConfig{Month: month, Budgets: map[string]decimal.Decimal{}}
	err := r.db.QueryRowContext(ctx, `SELECT saving_goal FROM month_configs WHERE month = ?`, month).Scan(&cfg.SavingGoal)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT category_id, budget_limit FROM month_budgets WHERE month = ? ORDER BY category_id`, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var categoryID string
		var limit decimal.Decimal
		if err := rows.Scan(&categoryID, &limit); err != nil {
			return nil, err
		}
		cfg.Budgets[categoryID] = limit
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert replaces the stored config for cfg.Month. Budget entries with a
// limit of zero or less are dropped.
func (r *MonthConfigRepo) Upsert(ctx context.Context, cfg MonthConfig) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO month_configs(month, saving_goal) VALUES (?, ?)
	ON CONFLICT(month) DO UPDATE SET saving_goal=excluded.saving_goal;
	`, cfg.Month, cfg.SavingGoal); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM month_budgets WHERE month = ?`, cfg.Month); err != nil {
		return err
	}
	for categoryID, limit := range cfg.Budgets {
		if !limit.IsPositive() {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO month_budgets(month, category_id, budget_limit) VALUES (?, ?, ?)`,
			cfg.Month, categoryID, limit); err != nil {
			return err
		}
	}
	return tx.Commit()
}
