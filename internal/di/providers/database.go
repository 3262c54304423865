package providers

import (
	"github.com/samber/do/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/config"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
)

// DatabaseHandle wraps the SQLite store with shutdown capability.
type DatabaseHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *DatabaseHandle) Shutdown() error {
	return h.Close()
}

// ProvideDatabase provides the SQLite store holding tournaments, players,
// games and registrations.
func ProvideDatabase(i do.Injector) (*DatabaseHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.Data.DatabasePath()
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &DatabaseHandle{Store: db}, nil
}

// LedgerHandle wraps the import ledger with shutdown capability.
type LedgerHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *LedgerHandle) Shutdown() error {
	return h.Close()
}

// ProvideLedger provides the Badger import ledger.
func ProvideLedger(i do.Injector) (*LedgerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Data.LedgerPath()
	ledger, err := store.New(path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Import ledger initialized", "path", path)

	return &LedgerHandle{Store: ledger}, nil
}

// ProvideTieBreakClassifier provides the tie-break classifier, loading the
// configured rule file when one is set.
func ProvideTieBreakClassifier(i do.Injector) (*normalize.TieBreakClassifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Normalize.TieBreakRulesPath
	if path == "" {
		return normalize.DefaultTieBreakClassifier(), nil
	}

	classifier, err := normalize.LoadTieBreakRulesFile(path)
	if err != nil {
		return nil, err
	}
	log.Info("Tie-break rules loaded", "path", path)
	return classifier, nil
}
