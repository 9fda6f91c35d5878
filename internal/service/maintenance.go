package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jask/finvault/internal/database"
)

// MaintenanceDB is the part of *sql.DB that Reset uses.
type MaintenanceDB interface {
	database.TxBeginner
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// MaintenanceService houses destructive actions surfaced through the CLI.
type MaintenanceService struct {
	DB  MaintenanceDB
	Log *zerolog.Logger
}

// Reset wipes all user data, including the account salt. It keeps the schema
// intact so the ledger can be set up again.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"month_budgets",
			"month_configs",
			"transactions",
			"rules",
			"categories",
			"meta",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	log := loggerOr(s.Log)
	if _, err := s.DB.ExecContext(ctx, "VACUUM"); err != nil {
		log.Warn().Err(err).Msg("vacuum after reset failed")
	}
	log.Warn().Msg("ledger reset")
	return nil
}
