package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/api"
	"github.com/kgdevtools/lca-auth-sub003/internal/config"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/service"
)

// In-flight requests get this long to finish once shutdown starts.
const shutdownTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	dbHandle := do.MustInvoke[*DatabaseHandle](i)
	rec := do.MustInvoke[*metrics.Recorder](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Tournament:   do.MustInvoke[*service.TournamentService](i),
		Game:         do.MustInvoke[*service.GameService](i),
		Opponent:     do.MustInvoke[*service.OpponentService](i),
		Search:       do.MustInvoke[*service.SearchService](i),
		Registration: do.MustInvoke[*service.RegistrationService](i),
		Import:       do.MustInvoke[*service.ImportService](i),
	}

	if cfg.Admin.APIKey == "" {
		log.Warn("No admin key configured, admin endpoints are disabled")
	}

	handler := api.NewServer(dbHandle.Store, services, api.Options{
		AdminKey:       cfg.Admin.APIKey,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MetricsEnabled: cfg.Metrics.Enabled,
		ImportDir:      cfg.Import.WatchDir,
	}, rec, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
