package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/period"
)

// MonthService manages saving goals and budgets and summarises a month.
type MonthService struct {
	Configs      *repository.MonthConfigRepo
	Transactions *repository.TransactionRepo
	Categories   *repository.CategoryRepo
	Log          *zerolog.Logger
}

// Config returns the month's config, or the defaults (goal 0, no budgets)
// when none was saved.
func (s *MonthService) Config(ctx context.Context, month period.Month) (repository.MonthConfig, error) {
	cfg, err := s.Configs.Get(ctx, month.String())
	if err != nil {
		return repository.MonthConfig{}, err
	}
	if cfg == nil {
		return repository.MonthConfig{Month: month.String(), SavingGoal: decimal.Zero, Budgets: map[string]decimal.Decimal{}}, nil
	}
	return *cfg, nil
}

func (s *MonthService) SetSavingGoal(ctx context.Context, month period.Month, goal decimal.Decimal) error {
	if goal.IsNegative() {
		return fmt.Errorf("saving goal cannot be negative")
	}
	cfg, err := s.Config(ctx, month)
	if err != nil {
		return err
	}
	cfg.SavingGoal = goal
	if err := s.Configs.Upsert(ctx, cfg); err != nil {
		return err
	}
	loggerOr(s.Log).Info().Str("month", month.String()).Str("goal", goal.StringFixed(2)).Msg("saving goal set")
	return nil
}

// SetBudget sets a category's limit for the month. A limit of zero or less
// removes it.
func (s *MonthService) SetBudget(ctx context.Context, month period.Month, categoryID string, limit decimal.Decimal) error {
	if err := requireCategory(ctx, s.Categories, categoryID); err != nil {
		return err
	}
	cfg, err := s.Config(ctx, month)
	if err != nil {
		return err
	}
	if limit.IsPositive() {
		cfg.Budgets[categoryID] = limit
	} else {
		delete(cfg.Budgets, categoryID)
	}
	return s.Configs.Upsert(ctx, cfg)
}

// CategorySpend is one category's expenses against its budget.
type CategorySpend struct {
	CategoryID string
	Name       string
	Spent      decimal.Decimal
	Budget     decimal.NullDecimal
}

// Over reports whether spending exceeded a set budget.
func (c CategorySpend) Over() bool {
	return c.Budget.Valid && c.Spent.GreaterThan(c.Budget.Decimal)
}

type MonthSummary struct {
	Month      string
	Totals     Totals
	SavingGoal decimal.Decimal
	// Remaining is what can still be spent while meeting the goal.
	Remaining          decimal.Decimal
	Categories         []CategorySpend
	Uncategorized      int
	UncategorizedSpent decimal.Decimal
}

// Summary needs no key: amounts and categories are stored in the clear.
func (s *MonthService) Summary(ctx context.Context, month period.Month) (MonthSummary, error) {
	cfg, err := s.Config(ctx, month)
	if err != nil {
		return MonthSummary{}, err
	}
	txs, err := s.Transactions.ListByDateRange(ctx, monthRange(month), repository.Ascending)
	if err != nil {
		return MonthSummary{}, err
	}
	cats, err := s.Categories.List(ctx)
	if err != nil {
		return MonthSummary{}, err
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	sum := MonthSummary{Month: month.String(), Totals: totalsOf(txs), SavingGoal: cfg.SavingGoal}
	sum.Remaining = sum.Totals.Net.Sub(cfg.SavingGoal)

	spent := map[string]decimal.Decimal{}
	for _, t := range txs {
		if t.CategoryID == nil {
			sum.Uncategorized++
			if t.Direction == repository.DirectionExpense {
				sum.UncategorizedSpent = sum.UncategorizedSpent.Add(t.Amount.Abs())
			}
			continue
		}
		if t.Direction == repository.DirectionExpense {
			spent[*t.CategoryID] = spent[*t.CategoryID].Add(t.Amount.Abs())
		}
	}

	ids := make(map[string]struct{}, len(spent)+len(cfg.Budgets))
	for id := range spent {
		ids[id] = struct{}{}
	}
	for id := range cfg.Budgets {
		ids[id] = struct{}{}
	}
	for id := range ids {
		cs := CategorySpend{CategoryID: id, Name: names[id], Spent: spent[id]}
		if limit, ok := cfg.Budgets[id]; ok {
			cs.Budget = decimal.NewNullDecimal(limit)
		}
		sum.Categories = append(sum.Categories, cs)
	}
	sort.Slice(sum.Categories, func(i, j int) bool {
		a, b := sum.Categories[i], sum.Categories[j]
		if !a.Spent.Equal(b.Spent) {
			return a.Spent.GreaterThan(b.Spent)
		}
		return a.CategoryID < b.CategoryID
	})
	return sum, nil
}
