package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/finvault/internal/database"
	"github.com/jask/finvault/internal/database/repository"
)

type repos struct {
	meta   *repository.MetaRepo
	cats   *repository.CategoryRepo
	rules  *repository.RuleRepo
	txns   *repository.TransactionRepo
	months *repository.MonthConfigRepo
}

func setupRepos(t *testing.T) (repos, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	_, err := database.RunMigrations(dbPath)
	require.NoError(t, err)
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.SeedDefaults(ctx, db)
	require.NoError(t, err)

	return repos{
		meta:   repository.NewMetaRepo(db),
		cats:   repository.NewCategoryRepo(db),
		rules:  repository.NewRuleRepo(db),
		txns:   repository.NewTransactionRepo(db),
		months: repository.NewMonthConfigRepo(db),
	}, ctx
}

func sampleTxn(key, date, amount string) repository.Transaction {
	amt := decimal.RequireFromString(amount)
	return repository.Transaction{
		DedupKey:       key,
		Date:           date,
		Amount:         amt,
		Direction:      repository.DirectionOf(amt),
		Account:        repository.AccountInter,
		Source:         repository.SourceImport,
		DescriptionEnc: "ciphertext",
		CreatedAt:      database.Now(),
	}
}

func TestTransactionInsertAndGet(t *testing.T) {
	t.Parallel()
	r, ctx := setupRepos(t)

	in := sampleTxn("k1", "2025-11-12", "-150.00")
	in.RawBalance = decimal.NewNullDecimal(decimal.RequireFromString("1234.56"))
	ref := "ref1"
	in.ReferenceID = &ref

	id, err := r.txns.Insert(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := r.txns.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "k1", got.DedupKey)
	require.True(t, got.Amount.Equal(decimal.RequireFromString("-150")))
	require.Equal(t, repository.DirectionExpense, got.Direction)
	require.Nil(t, got.CategoryID)
	require.True(t, got.RawBalance.Valid)
	require.True(t, got.RawBalance.Decimal.Equal(decimal.RequireFromString("1234.56")))
	require.NotNil(t, got.ReferenceID)
	require.Equal(t, "ref1", *got.ReferenceID)

	missing, err := r.txns.Get(ctx, id+100)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestTransactionDuplicateKey(t *testing.T) {
	t.Parallel()
	r, ctx := setupRepos(t)

	_, err := r.txns.Insert(ctx, sampleTxn("dup", "2025-11-01", "10"))
	require.NoError(t, err)

	_, err = r.txns.Insert(ctx, sampleTxn("dup", "2025-11-02", "20"))
	require.Error(t, err)
	require.True(t, repository.IsDuplicateKey(err))

	all, err := r.txns.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "2025-11-01", all[0].Date)
}

func TestTransactionDateRange(t *testing.T) {
	t.Parallel()
	r, ctx := setupRepos(t)

	for i, date := range []string{"2025-10-31", "2025-11-01", "2025-11-30", "2025-12-01"} {
		_, err := r.txns.Insert(ctx, sampleTxn(string(rune('a'+i)), date, "-1"))
		require.NoError(t, err)
	}

	nov := repository.DateRange{Start: "2025-11-01", End: "2025-12-01"}
	asc, err := r.txns.ListByDateRange(ctx, nov, repository.Ascending)
	require.NoError(t, err)
	require.Len(t, asc, 2)
	require.Equal(t, "2025-11-01", asc[0].Date)
	require.Equal(t, "2025-11-30", asc[1].Date)

	desc, err := r.txns.ListByDateRange(ctx, nov, repository.Descending)
	require.NoError(t, err)
	require.Len(t, desc, 2)
	require.Equal(t, "2025-11-30", desc[0].Date)

	inclusive := repository.DateRange{Start: "2025-11-01", End: "2025-12-01", IncludeEnd: true}
	withEnd, err := r.txns.ListByDateRange(ctx, inclusive, repository.Ascending)
	require.NoError(t, err)
	require.Len(t, withEnd, 3)

	open, err := r.txns.ListByDateRange(ctx, repository.DateRange{}, repository.Ascending)
	require.NoError(t, err)
	require.Len(t, open, 4)
}

func TestTransactionSameDateOrdersByID(t *testing.T) {
	t.Parallel()
	r, ctx := setupRepos(t)

	first, err := r.txns.Insert(ctx, sampleTxn("x1", "2025-11-05", "-1"))
	require.NoError(t, err)
	second, err := r.txns.Insert(ctx, sampleTxn("x2", "2025-11-05", "-2"))
	require.NoError(t, err)

	desc, err := r.txns.ListByDateRange(ctx, repository.DateRange{}, repository.Descending)
	require.NoError(t, err)
	require.Equal(t, second, desc[0].ID)
	require.Equal(t, first, desc[1].ID)
}

func TestTransactionUpdateCategoryAndDelete(t *testing.T) {
	t.Parallel()
	r, ctx := setupRepos(t)

	id, err := r.txns.Insert(ctx, sampleTxn("c1", "2025-11-05", "-30"))
	require.NoError(t, err)

	uncategorized, err := r.txns.CountUncategorized(ctx, repository.DateRange{})
	require.NoError(t, err)
	require.Equal(t, 1, uncategorized)

	cat := "mercado"
	ok, err := r.txns.UpdateCategory(ctx, id, &cat)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := r.txns.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	require.Equal(t, "mercado", *got.CategoryID)

	ok, err = r.txns.UpdateCategory(ctx, id+1, &cat)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = r.txns.Delete(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.txns.Delete(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCategoryDeleteBlockedByRule(t *testing.T) {
	t.Parallel()
	r, ctx := setupRepos(t)

	_, err := r.rules.Add(ctx, repository.Rule{ID: "r1", Pattern: "uber", CategoryID: "transporte", Priority: 100, Enabled: true})
	require.NoError(t, err)

	n, err := r.rules.CountByCategory(ctx, "transporte")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = r.cats.Delete(ctx, "transporte")
	require.Error(t, err)

	ok, err := r.rules.Delete(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.cats.Delete(ctx, "transporte")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := r.cats.Get(ctx, "transporte")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCategoryDuplicate(t *testing.T) {
	t.Parallel()
	r, ctx := setupRepos(t)

	err := r.cats.Add(ctx, repository.Category{ID: "mercado", Name: "Outro", Kind: repository.DirectionExpense})
	require.True(t, repository.IsDuplicateKey(err))
}

func TestRulesListInInsertionOrder(t *testing.T) {
	t.Parallel()
	r, ctx := setupRepos(t)

	for _, id := range []string{"b", "a", "c"} {
		_, err := r.rules.Add(ctx, repository.Rule{ID: id, Pattern: id, CategoryID: "lazer", Priority: 100, Enabled: true})
		require.NoError(t, err)
	}

	ok, err := r.rules.SetEnabled(ctx, "a", false)
	require.NoError(t, err)
	require.True(t, ok)

	list, err := r.rules.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "b", list[0].ID)
	require.Equal(t, "a", list[1].ID)
	require.False(t, list[1].Enabled)
	require.Equal(t, "c", list[2].ID)
	require.Less(t, list[0].Seq, list[1].Seq)
}

func TestMonthConfigUpsertDropsNonPositiveLimits(t *testing.T) {
	t.Parallel()
	r, ctx := setupRepos(t)

	missing, err := r.months.Get(ctx, "2025-11")
	require.NoError(t, err)
	require.Nil(t, missing)

	err = r.months.Upsert(ctx, repository.MonthConfig{
		Month:      "2025-11",
		SavingGoal: decimal.RequireFromString("500"),
		Budgets: map[string]decimal.Decimal{
			"mercado": decimal.RequireFromString("800"),
			"lazer":   decimal.Zero,
			"moradia": decimal.RequireFromString("-10"),
		},
	})
	require.NoError(t, err)

	got, err := r.months.Get(ctx, "2025-11")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.SavingGoal.Equal(decimal.RequireFromString("500")))
	require.Len(t, got.Budgets, 1)
	require.True(t, got.Budgets["mercado"].Equal(decimal.RequireFromString("800")))
}

func TestMetaPutIfAbsent(t *testing.T) {
	t.Parallel()
	r, ctx := setupRepos(t)

	_, ok, err := r.meta.Get(ctx, repository.MetaCryptoSalt)
	require.NoError(t, err)
	require.False(t, ok)

	stored, err := r.meta.PutIfAbsent(ctx, repository.MetaCryptoSalt, "first")
	require.NoError(t, err)
	require.True(t, stored)

	stored, err = r.meta.PutIfAbsent(ctx, repository.MetaCryptoSalt, "second")
	require.NoError(t, err)
	require.False(t, stored)

	v, ok, err := r.meta.Get(ctx, repository.MetaCryptoSalt)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "first", v)

	require.NoError(t, r.meta.Put(ctx, repository.MetaHasAccount, "1"))
	v, _, err = r.meta.Get(ctx, repository.MetaHasAccount)
	require.NoError(t, err)
	require.Equal(t, "1", v)
}
