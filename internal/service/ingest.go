package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jask/finvault/internal/database"
	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/rules"
	"github.com/jask/finvault/internal/session"
	"github.com/jask/finvault/internal/statement"
	"github.com/jask/finvault/internal/vault"
)

// ImportService runs statement imports: detect the format, parse, apply
// rules, encrypt descriptions and insert with dedup.
type ImportService struct {
	Transactions *repository.TransactionRepo
	Rules        *repository.RuleRepo
	Parsers      *statement.Registry
	Log          *zerolog.Logger
}

type ImportResult struct {
	Format      string
	Account     repository.AccountKey
	Inserted    int
	Duplicated  int
	Skipped     int
	Categorized int
}

// PreviewRow is a parsed row shown before importing.
type PreviewRow struct {
	statement.Candidate
	Description string
}

type ImportPreview struct {
	Format  string
	Account repository.AccountKey
	Total   int
	Skipped int
	Rows    []PreviewRow
}

// Preview parses raw and categorizes it without storing anything. It needs no
// key. At most limit rows are returned; limit <= 0 returns all of them.
func (s *ImportService) Preview(ctx context.Context, raw []byte, account repository.AccountKey, limit int) (ImportPreview, error) {
	parsed, engine, err := s.parse(ctx, raw, account)
	if err != nil {
		return ImportPreview{}, err
	}
	engine.Categorize(parsed.Candidates, parsed.Descriptions)

	out := ImportPreview{Format: parsed.Format, Account: account, Total: len(parsed.Candidates), Skipped: parsed.Skipped}
	for i, c := range parsed.Candidates {
		if i == 0 {
			out.Account = c.Account
		}
		if limit > 0 && i >= limit {
			break
		}
		out.Rows = append(out.Rows, PreviewRow{Candidate: c, Description: parsed.Descriptions[c.DedupKey]})
	}
	return out, nil
}

// Import stores every parsed row of raw. Rows whose dedup key already exists
// are counted as duplicates; any other store error aborts the rest of the
// batch and is returned along with the counts so far. Parse errors abort
// before anything is written.
func (s *ImportService) Import(ctx context.Context, sess *session.Session, raw []byte, account repository.AccountKey) (ImportResult, error) {
	key, err := sess.Key()
	if err != nil {
		return ImportResult{}, err
	}
	log := loggerOr(s.Log)

	parsed, engine, err := s.parse(ctx, raw, account)
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Format: parsed.Format, Account: account, Skipped: parsed.Skipped}
	res.Categorized = engine.Categorize(parsed.Candidates, parsed.Descriptions)

	for _, c := range parsed.Candidates {
		res.Account = c.Account
		enc, err := vault.Encrypt(parsed.Descriptions[c.DedupKey], key)
		if err != nil {
			return res, fmt.Errorf("encrypt description: %w", err)
		}
		t := c.Transaction(enc)
		t.CreatedAt = database.Now()
		if _, err := s.Transactions.Insert(ctx, t); err != nil {
			if repository.IsDuplicateKey(err) {
				res.Duplicated++
				log.Debug().Str("dedup_key", c.DedupKey).Msg("duplicate row")
				continue
			}
			log.Error().Err(err).Str("format", res.Format).Int("inserted", res.Inserted).Msg("import aborted")
			return res, fmt.Errorf("insert %s: %w", c.DedupKey, err)
		}
		res.Inserted++
	}

	log.Info().
		Str("format", res.Format).
		Str("account", string(res.Account)).
		Int("inserted", res.Inserted).
		Int("duplicated", res.Duplicated).
		Int("skipped", res.Skipped).
		Int("categorized", res.Categorized).
		Msg("import complete")
	return res, nil
}

func (s *ImportService) parse(ctx context.Context, raw []byte, account repository.AccountKey) (statement.Result, *rules.Engine, error) {
	parsers := s.Parsers
	if parsers == nil {
		parsers = statement.Default()
	}
	if account != "" {
		if err := parsers.CheckAccount(account); err != nil {
			return statement.Result{}, nil, err
		}
	}
	p, err := parsers.Detect(raw)
	if err != nil {
		return statement.Result{}, nil, err
	}
	parsed, err := p.Parse(raw, account)
	if err != nil {
		return statement.Result{}, nil, err
	}
	list, err := s.Rules.List(ctx)
	if err != nil {
		return statement.Result{}, nil, fmt.Errorf("load rules: %w", err)
	}
	return parsed, rules.New(list), nil
}
