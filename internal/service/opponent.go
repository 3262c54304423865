package service

import (
	"context"
	"log/slog"
	"maps"

	"github.com/kgdevtools/lca-auth-sub003/internal/cache"
	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
)

// RankedPlayerSource fetches the players of a tournament that carry a rank.
type RankedPlayerSource interface {
	ListRankedPlayers(ctx context.Context, tournamentID string) ([]domain.RawRow, error)
}

// OpponentService resolves the rank numbers printed in round results to
// player details. Each tournament's rank map is fetched once and kept until
// ClearCache drops it.
//
// Concurrent misses for the same tournament may each fetch; the last one to
// finish wins. Fetch failures are logged and never cached.
type OpponentService struct {
	source  RankedPlayerSource
	cache   *cache.SyncMap[string, map[int]domain.OpponentDetails]
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewOpponentService creates an opponent service with an empty cache.
func NewOpponentService(source RankedPlayerSource, rec *metrics.Recorder, logger *slog.Logger) *OpponentService {
	return &OpponentService{
		source:  source,
		cache:   cache.NewSyncMap[string, map[int]domain.OpponentDetails](),
		metrics: rec,
		logger:  logger,
	}
}

// PlayersByRank returns the tournament's players keyed by rank. When two
// rows share a rank the later row wins. A failed fetch yields an empty map.
// The returned map is a copy and may be modified.
func (s *OpponentService) PlayersByRank(ctx context.Context, tournamentID string) map[int]domain.OpponentDetails {
	if cached, ok := s.cache.Load(tournamentID); ok {
		s.metrics.OpponentCache(metrics.CacheHit)
		return maps.Clone(cached)
	}
	s.metrics.OpponentCache(metrics.CacheMiss)

	rows, err := s.source.ListRankedPlayers(ctx, tournamentID)
	if err != nil {
		s.metrics.OpponentCache(metrics.CacheError)
		s.logger.Warn("failed to fetch ranked players",
			"tournament_id", tournamentID,
			"error", err,
		)
		return map[int]domain.OpponentDetails{}
	}

	byRank := make(map[int]domain.OpponentDetails, len(rows))
	for _, row := range rows {
		if d, ok := normalize.NewOpponent(row); ok {
			byRank[d.Rank] = d
		}
	}
	s.cache.Store(tournamentID, byRank)

	s.logger.Debug("cached opponents", "tournament_id", tournamentID, "players", len(byRank))
	return maps.Clone(byRank)
}

// OpponentByRank returns the player holding rank, or nil when there is
// none or the lookup failed.
func (s *OpponentService) OpponentByRank(ctx context.Context, tournamentID string, rank int) *domain.OpponentDetails {
	d, ok := s.PlayersByRank(ctx, tournamentID)[rank]
	if !ok {
		return nil
	}
	return &d
}

// ClearCache drops the cached maps of the given tournaments, or every map
// when called without arguments.
func (s *OpponentService) ClearCache(tournamentIDs ...string) {
	if len(tournamentIDs) == 0 {
		s.cache.Clear()
		s.logger.Info("opponent cache cleared")
		return
	}
	for _, id := range tournamentIDs {
		s.cache.Delete(id)
	}
	s.logger.Info("opponent cache entries cleared", "tournament_ids", tournamentIDs)
}

// CachedTournaments returns the ids of the tournaments currently cached.
func (s *OpponentService) CachedTournaments() []string {
	return s.cache.Keys()
}
