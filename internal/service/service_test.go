package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/finvault/internal/database"
	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/period"
	"github.com/jask/finvault/internal/session"
	"github.com/jask/finvault/internal/vault"
)

type fixture struct {
	db     *sql.DB
	txns   *repository.TransactionRepo
	rules  *repository.RuleRepo
	cats   *repository.CategoryRepo
	months *repository.MonthConfigRepo
	sess   *session.Session
}

func setup(t *testing.T) (fixture, context.Context) {
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

	return fixture{
		db:     db,
		txns:   repository.NewTransactionRepo(db),
		rules:  repository.NewRuleRepo(db),
		cats:   repository.NewCategoryRepo(db),
		months: repository.NewMonthConfigRepo(db),
		sess:   newSession(t, "correct horse"),
	}, ctx
}

var testSalt = func() string {
	s, err := vault.NewSalt()
	if err != nil {
		panic(err)
	}
	return s
}()

func newSession(t *testing.T, password string) *session.Session {
	t.Helper()
	key, err := vault.DeriveKey(password, testSalt, 1000)
	require.NoError(t, err)
	return session.New(key)
}

func (f fixture) importer() *ImportService {
	return &ImportService{Transactions: f.txns, Rules: f.rules}
}

func (f fixture) addRule(t *testing.T, ctx context.Context, id, pattern, category string, priority int) {
	t.Helper()
	_, err := f.rules.Add(ctx, repository.Rule{ID: id, Pattern: pattern, CategoryID: category, Priority: priority, Enabled: true})
	require.NoError(t, err)
}

func mustMonth(t *testing.T, s string) period.Month {
	t.Helper()
	m, err := period.Parse(s)
	require.NoError(t, err)
	return m
}

func ptr(s string) *string { return &s }
