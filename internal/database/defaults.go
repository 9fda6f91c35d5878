package database

import (
	"context"
	"database/sql"

	"github.com/jask/finvault/internal/database/repository"
)

// DefaultCategories are created on a fresh ledger.
var DefaultCategories = []repository.Category{
	{ID: "alimentacao", Name: "Alimentação", Kind: repository.DirectionExpense},
	{ID: "transporte", Name: "Transporte", Kind: repository.DirectionExpense},
	{ID: "assinaturas", Name: "Assinaturas", Kind: repository.DirectionExpense},
	{ID: "mercado", Name: "Mercado", Kind: repository.DirectionExpense},
	{ID: "moradia", Name: "Moradia", Kind: repository.DirectionExpense},
	{ID: "saude", Name: "Saúde", Kind: repository.DirectionExpense},
	{ID: "lazer", Name: "Lazer", Kind: repository.DirectionExpense},
	{ID: "salario", Name: "Salário", Kind: repository.DirectionIncome},
	{ID: "pix_recebido", Name: "Pix Recebido", Kind: repository.DirectionIncome},
}

// SeedDefaults ensures baseline categories exist for new databases.
// It is idempotent and safe to run on every startup: nothing is added once
// any category exists.
func SeedDefaults(ctx context.Context, db *sql.DB) (int, error) {
	catRepo := repository.NewCategoryRepo(db)
	n, err := catRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for _, c := range DefaultCategories {
		if err := catRepo.Add(ctx, c); err != nil {
			return 0, err
		}
	}
	return len(DefaultCategories), nil
}
