package main

import (
	"errors"
	"log/slog"

	"github.com/kgdevtools/lca-auth-sub003/internal/config"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/search"
	"github.com/kgdevtools/lca-auth-sub003/internal/service"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
)

// app holds the stores and services a command works with.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	db     *sqlite.Store
	ledger *store.Store
	index  *search.PlayerIndex

	search  *service.SearchService
	imports *service.ImportService
}

// openApp opens the data directory the way the server does. The server must
// not be running: Badger holds an exclusive lock on the ledger.
func openApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configArgs())
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	}).Logger

	a := &app{cfg: cfg, logger: log}

	if a.db, err = sqlite.Open(cfg.Data.DatabasePath(), log); err != nil {
		return nil, err
	}
	if a.ledger, err = store.New(cfg.Data.LedgerPath(), log); err != nil {
		_ = a.Close()
		return nil, err
	}
	if a.index, _, err = search.NewPlayerIndex(search.Options{DataPath: cfg.Data.SearchIndexPath(), Logger: log}); err != nil {
		_ = a.Close()
		return nil, err
	}

	rec := metrics.NewRecorder()
	opponents := service.NewOpponentService(a.db, rec, log)
	a.search = service.NewSearchService(a.index, a.db, rec, log)
	a.imports = service.NewImportService(a.db, a.ledger, opponents, a.search, rec, log, cfg.Import.Concurrency)

	return a, nil
}

// Close releases everything openApp opened.
func (a *app) Close() error {
	var errs []error
	if a.index != nil {
		errs = append(errs, a.index.Close())
	}
	if a.ledger != nil {
		errs = append(errs, a.ledger.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
