// Command api serves tournament results, player search and registrations
// for the academy over HTTP, importing dropped result files as they land.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/config"
	"github.com/kgdevtools/lca-auth-sub003/internal/di"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "lca api: %v\n", err)
		return 1
	}

	log := do.MustInvoke[*logger.Logger](injector)
	cfg := do.MustInvoke[*config.Config](injector)
	log.Info("Academy results server ready",
		"port", cfg.Server.Port,
		"data", cfg.Data.BasePath,
		"watch_dir", cfg.Import.WatchDir,
	)

	<-ctx.Done()
	log.Info("Signal received, draining")

	// Reverse dependency order: HTTP and the watcher stop before the stores close.
	if err := injector.Shutdown(); err != nil {
		log.WithError(err).Error("Shutdown finished with errors")
		return 1
	}
	log.Info("Shutdown complete")
	return 0
}
