package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jask/finvault/internal/config"
	"github.com/jask/finvault/internal/database"
	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/logging"
	"github.com/jask/finvault/internal/period"
	"github.com/jask/finvault/internal/service"
	"github.com/jask/finvault/internal/session"
	"github.com/jask/finvault/internal/statement"
)

// app is everything a command needs, wired from config.
type app struct {
	cfg config.Config
	log zerolog.Logger
	db  *sql.DB

	categories *repository.CategoryRepo
	rules      *repository.RuleRepo

	sessions    *session.Manager
	importer    *service.ImportService
	reclassify  *service.ReclassifyService
	ledger      *service.LedgerService
	settings    *service.SettingsService
	months      *service.MonthService
	maintenance *service.MaintenanceService
}

// openApp loads config, migrates and opens the database, seeds defaults and
// builds the services.
func openApp(ctx context.Context, cmd *cobra.Command, opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if opts.DBPath != "" {
		cfg.Database.Path = opts.DBPath
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	version, err := database.RunMigrations(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	seeded, err := database.SeedDefaults(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	log.Debug().Str("db", cfg.Database.Path).Uint("schema", version).Int("seeded", seeded).Msg("database ready")

	parsers, err := loadParsers(cfg.Import.FormatsFile, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	// repositories
	metaRepo := repository.NewMetaRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	catRepo := repository.NewCategoryRepo(db)
	ruleRepo := repository.NewRuleRepo(db)
	monthRepo := repository.NewMonthConfigRepo(db)

	return &app{
		cfg:        cfg,
		log:        log,
		db:         db,
		categories: catRepo,
		rules:      ruleRepo,
		sessions: &session.Manager{
			Meta:              metaRepo,
			Iterations:        cfg.Security.KDFIterations,
			MinPasswordLength: cfg.Security.MinPasswordLength,
		},
		importer:    &service.ImportService{Transactions: txRepo, Rules: ruleRepo, Parsers: parsers, Log: &log},
		reclassify:  &service.ReclassifyService{Transactions: txRepo, Rules: ruleRepo, Log: &log},
		ledger:      &service.LedgerService{Transactions: txRepo, Categories: catRepo, Parsers: parsers, Log: &log},
		settings:    &service.SettingsService{Categories: catRepo, Rules: ruleRepo, Log: &log},
		months:      &service.MonthService{Configs: monthRepo, Transactions: txRepo, Categories: catRepo, Log: &log},
		maintenance: &service.MaintenanceService{DB: db, Log: &log},
	}, nil
}

func (a *app) Close() error {
	a.sessions.Logout()
	return a.db.Close()
}

// loadParsers returns the built-in formats plus any defined in path. A
// missing formats file is fine.
func loadParsers(path string, log zerolog.Logger) (*statement.Registry, error) {
	reg := statement.Default()
	if path == "" {
		return reg, nil
	}
	formats, err := statement.LoadFormats(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return reg, nil
		}
		return nil, err
	}
	for _, f := range formats {
		if err := reg.Register(f.Parser()); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Debug().Str("format", f.Name).Msg("custom format registered")
	}
	return reg, nil
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// month resolves a --month value, defaulting to the current month in the
// configured timezone.
func (a *app) month(value string) (period.Month, error) {
	if value == "" {
		return period.Current(time.Now().In(a.cfg.Location())), nil
	}
	return period.Parse(value)
}

func (a *app) categoryNames(ctx context.Context) (map[string]string, error) {
	cats, err := a.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}
