package providers

import (
	"context"
	"os"

	"github.com/samber/do/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/config"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/service"
	"github.com/kgdevtools/lca-auth-sub003/internal/watcher"
)

// FileWatcherHandle wraps the import directory watcher with shutdown
// capability. Watcher is nil when watching is disabled.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher watches the import drop directory and feeds settled
// files to the import service. Files already in the directory are imported
// once on startup.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	importService := do.MustInvoke[*service.ImportService](i)

	if !cfg.Import.WatchEnabled || cfg.Import.WatchDir == "" {
		log.Info("Import directory watching disabled")
		return &FileWatcherHandle{}, nil
	}

	if err := os.MkdirAll(cfg.Import.WatchDir, 0o755); err != nil {
		return nil, err
	}

	w, err := watcher.New(log.Logger, watcher.Options{
		IgnoreHidden: true,
		SettleDelay:  cfg.Import.SettleDelay,
	})
	if err != nil {
		return nil, err
	}
	if err := w.Watch(cfg.Import.WatchDir); err != nil {
		_ = w.Stop()
		return nil, err
	}

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.WithError(err).Error("File watcher error")
		}
	}()

	// Process events in background
	go importService.Consume(ctx, w.Events(), service.ImportOptions{})

	go func() {
		for {
			select {
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				log.WithError(err).Warn("file watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()

	// Catch up on files dropped while the server was down.
	go func() {
		if _, err := importService.ImportPaths(ctx, []string{cfg.Import.WatchDir}, service.ImportOptions{}); err != nil {
			log.WithField("dir", cfg.Import.WatchDir).WithError(err).Warn("Initial import scan failed")
		}
	}()

	log.Info("File watcher started", "dir", cfg.Import.WatchDir)

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}
