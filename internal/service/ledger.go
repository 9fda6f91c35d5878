package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jask/finvault/internal/database"
	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/digest"
	"github.com/jask/finvault/internal/period"
	"github.com/jask/finvault/internal/session"
	"github.com/jask/finvault/internal/statement"
	"github.com/jask/finvault/internal/vault"
)

// UndecryptableDescription replaces descriptions that fail to decrypt.
const UndecryptableDescription = "(cannot decrypt)"

var ErrTransactionNotFound = errors.New("transaction not found")

// LedgerService reads and edits individual transactions.
type LedgerService struct {
	Transactions *repository.TransactionRepo
	Categories   *repository.CategoryRepo
	// Parsers supplies the valid account keys; nil means the built-in formats.
	Parsers *statement.Registry
	Log     *zerolog.Logger
}

// TransactionView is a transaction with its description decrypted.
type TransactionView struct {
	repository.Transaction
	Description   string
	Undecryptable bool
}

// Totals sums a set of transactions by direction. Expense is positive.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// ListMonth returns the month's transactions newest first (date, then id).
// Rows that fail to decrypt are flagged and carry UndecryptableDescription.
func (s *LedgerService) ListMonth(ctx context.Context, sess *session.Session, month period.Month) ([]TransactionView, error) {
	key, err := sess.Key()
	if err != nil {
		return nil, err
	}
	txs, err := s.Transactions.ListByDateRange(ctx, monthRange(month), repository.Descending)
	if err != nil {
		return nil, err
	}
	views := make([]TransactionView, 0, len(txs))
	for _, t := range txs {
		v := TransactionView{Transaction: t}
		desc, err := vault.Decrypt(t.DescriptionEnc, key)
		switch {
		case err == nil:
			v.Description = desc
		case errors.Is(err, vault.ErrAuthentication):
			v.Description = UndecryptableDescription
			v.Undecryptable = true
		default:
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Totals sums views by direction.
func (s *LedgerService) Totals(views []TransactionView) Totals {
	txs := make([]repository.Transaction, len(views))
	for i, v := range views {
		txs[i] = v.Transaction
	}
	return totalsOf(txs)
}

func totalsOf(txs []repository.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		if tx.Direction == repository.DirectionIncome {
			t.Income = t.Income.Add(tx.Amount.Abs())
		} else {
			t.Expense = t.Expense.Add(tx.Amount.Abs())
		}
	}
	t.Net = t.Income.Sub(t.Expense)
	return t
}

// ManualEntry is a transaction typed in by the user.
type ManualEntry struct {
	Date        string
	Amount      decimal.Decimal
	Description string
	CategoryID  *string
	Account     repository.AccountKey
}

// AddManual encrypts and stores a manual entry. Manual entries get a random
// dedup key so identical entries never collide.
func (s *LedgerService) AddManual(ctx context.Context, sess *session.Session, e ManualEntry) (int64, error) {
	key, err := sess.Key()
	if err != nil {
		return 0, err
	}
	if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
		return 0, fmt.Errorf("date %q: want YYYY-MM-DD", e.Date)
	}
	if e.Account == "" {
		return 0, fmt.Errorf("account is required")
	}
	parsers := s.Parsers
	if parsers == nil {
		parsers = statement.Default()
	}
	if err := parsers.CheckAccount(e.Account); err != nil {
		return 0, err
	}
	if err := s.checkCategory(ctx, e.CategoryID); err != nil {
		return 0, err
	}
	enc, err := vault.Encrypt(strings.TrimSpace(e.Description), key)
	if err != nil {
		return 0, err
	}

	id, err := s.Transactions.Insert(ctx, repository.Transaction{
		DedupKey:       digest.DedupKey("manual|" + uuid.NewString()),
		Date:           e.Date,
		Amount:         e.Amount,
		Direction:      repository.DirectionOf(e.Amount),
		CategoryID:     e.CategoryID,
		Account:        e.Account,
		Source:         repository.SourceManual,
		DescriptionEnc: enc,
		CreatedAt:      database.Now(),
	})
	if err != nil {
		return 0, err
	}
	loggerOr(s.Log).Debug().Int64("id", id).Str("date", e.Date).Msg("manual transaction added")
	return id, nil
}

// SetCategory sets or clears (nil) a transaction's category.
func (s *LedgerService) SetCategory(ctx context.Context, id int64, categoryID *string) error {
	if err := s.checkCategory(ctx, categoryID); err != nil {
		return err
	}
	ok, err := s.Transactions.UpdateCategory(ctx, id, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrTransactionNotFound, id)
	}
	return nil
}

func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	ok, err := s.Transactions.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrTransactionNotFound, id)
	}
	return nil
}

func (s *LedgerService) checkCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	return requireCategory(ctx, s.Categories, *categoryID)
}
