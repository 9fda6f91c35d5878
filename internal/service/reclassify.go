package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/period"
	"github.com/jask/finvault/internal/rules"
	"github.com/jask/finvault/internal/session"
	"github.com/jask/finvault/internal/vault"
)

// ReclassifyService re-applies the current rules to a month's uncategorized
// transactions.
type ReclassifyService struct {
	Transactions *repository.TransactionRepo
	Rules        *repository.RuleRepo
	Log          *zerolog.Logger
}

// ReclassifyResult counts the uncategorized rows that were decrypted
// (Scanned), the ones that received a category (Updated) and the ones whose
// description could not be decrypted.
type ReclassifyResult struct {
	Scanned       int
	Updated       int
	Undecryptable int
}

// ReclassifyMonth only ever fills empty categories; rows that already have
// one are never touched. A row that fails to decrypt is skipped.
func (s *ReclassifyService) ReclassifyMonth(ctx context.Context, sess *session.Session, month period.Month) (ReclassifyResult, error) {
	key, err := sess.Key()
	if err != nil {
		return ReclassifyResult{}, err
	}
	log := loggerOr(s.Log)

	list, err := s.Rules.List(ctx)
	if err != nil {
		return ReclassifyResult{}, fmt.Errorf("load rules: %w", err)
	}
	engine := rules.New(list)

	txs, err := s.Transactions.ListByDateRange(ctx, monthRange(month), repository.Ascending)
	if err != nil {
		return ReclassifyResult{}, err
	}

	var res ReclassifyResult
	for _, t := range txs {
		if t.CategoryID != nil {
			continue
		}
		desc, err := vault.Decrypt(t.DescriptionEnc, key)
		if err != nil {
			if !errors.Is(err, vault.ErrAuthentication) {
				return res, err
			}
			res.Undecryptable++
			log.Warn().Int64("id", t.ID).Msg("skipping transaction that cannot be decrypted")
			continue
		}
		res.Scanned++

		rule, ok := engine.Match(desc)
		if !ok {
			continue
		}
		categoryID := rule.CategoryID
		if _, err := s.Transactions.UpdateCategory(ctx, t.ID, &categoryID); err != nil {
			return res, fmt.Errorf("update transaction %d: %w", t.ID, err)
		}
		res.Updated++
	}

	log.Info().
		Str("month", month.String()).
		Int("scanned", res.Scanned).
		Int("updated", res.Updated).
		Int("undecryptable", res.Undecryptable).
		Msg("reclassify complete")
	return res, nil
}
