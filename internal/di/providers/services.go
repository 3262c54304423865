package providers

import (
	"github.com/samber/do/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/config"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
	"github.com/kgdevtools/lca-auth-sub003/internal/ratelimit"
	"github.com/kgdevtools/lca-auth-sub003/internal/service"
	"github.com/kgdevtools/lca-auth-sub003/internal/validation"
)

// ProvideValidator provides the struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideRegistrationLimiter provides the per-client registration limiter.
// A non-positive rate disables limiting.
func ProvideRegistrationLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if cfg.Registration.RatePerSecond <= 0 {
		return nil, nil
	}
	return ratelimit.New(cfg.Registration.RatePerSecond, cfg.Registration.Burst), nil
}

// ProvideTournamentService provides the tournament service.
func ProvideTournamentService(i do.Injector) (*service.TournamentService, error) {
	dbHandle := do.MustInvoke[*DatabaseHandle](i)
	classifier := do.MustInvoke[*normalize.TieBreakClassifier](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTournamentService(dbHandle.Store, classifier, log.Logger), nil
}

// ProvideGameService provides the game service.
func ProvideGameService(i do.Injector) (*service.GameService, error) {
	dbHandle := do.MustInvoke[*DatabaseHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGameService(dbHandle.Store, log.Logger), nil
}

// ProvideOpponentService provides the cached opponent lookup.
func ProvideOpponentService(i do.Injector) (*service.OpponentService, error) {
	dbHandle := do.MustInvoke[*DatabaseHandle](i)
	rec := do.MustInvoke[*metrics.Recorder](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOpponentService(dbHandle.Store, rec, log.Logger), nil
}

// ProvideRegistrationService provides the registration service.
func ProvideRegistrationService(i do.Injector) (*service.RegistrationService, error) {
	dbHandle := do.MustInvoke[*DatabaseHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	limiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)
	rec := do.MustInvoke[*metrics.Recorder](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRegistrationService(dbHandle.Store, validator, limiter, rec, log.Logger), nil
}

// ProvideImportService provides the file import service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	dbHandle := do.MustInvoke[*DatabaseHandle](i)
	ledgerHandle := do.MustInvoke[*LedgerHandle](i)
	opponents := do.MustInvoke[*service.OpponentService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	rec := do.MustInvoke[*metrics.Recorder](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(
		dbHandle.Store,
		ledgerHandle.Store,
		opponents,
		searchService,
		rec,
		log.Logger,
		cfg.Import.Concurrency,
	), nil
}
