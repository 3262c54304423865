package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/config"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/search"
	"github.com/kgdevtools/lca-auth-sub003/internal/service"
)

// SearchIndexHandle owns the on-disk player index.
type SearchIndexHandle struct {
	*search.PlayerIndex
	// Created is set when the index was missing or had a stale mapping
	// version and was rebuilt empty.
	Created bool
}

func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, created, err := search.NewPlayerIndex(search.Options{
		DataPath: cfg.Data.SearchIndexPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open player index at %s: %w", cfg.Data.SearchIndexPath(), err)
	}

	docs, _ := index.DocumentCount()
	log.Info("Player index opened", "documents", docs, "rebuilt", created)
	return &SearchIndexHandle{PlayerIndex: index, Created: created}, nil
}

func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	dbHandle := do.MustInvoke[*DatabaseHandle](i)
	rec := do.MustInvoke[*metrics.Recorder](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.PlayerIndex, dbHandle.Store, rec, log.Logger), nil
}

// TriggerSearchReindexIfNeeded repopulates the player index in the
// background when it was rebuilt on open, or when it holds fewer players
// than the results database.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	dbHandle := do.MustInvoke[*DatabaseHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	players, err := dbHandle.CountPlayers(context.Background())
	if err != nil {
		log.WithError(err).Warn("Could not count players, skipping startup reindex")
		return
	}
	docs, _ := searchService.DocumentCount()
	if players == 0 || (!indexHandle.Created && docs >= uint64(players)) {
		return
	}

	log.Info("Player index behind database, reindexing",
		"players", players,
		"documents", docs,
		"rebuilt", indexHandle.Created,
	)
	go func() {
		count, err := searchService.Reindex(context.Background())
		if err != nil {
			log.WithError(err).Error("Startup reindex failed")
			return
		}
		log.Info("Startup reindex completed", "documents", count)
	}()
}
