// Package providers contains dependency injection providers for the academy
// results server.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/config"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting academy results server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"watch_dir", cfg.Import.WatchDir,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}

// ProvideMetrics provides the Prometheus recorder.
func ProvideMetrics(i do.Injector) (*metrics.Recorder, error) {
	return metrics.NewRecorder(), nil
}
