package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/search"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
)

const maxSearchLimit = 100

// SearchService keeps the player index in step with the store and answers
// player searches.
type SearchService struct {
	index   *search.PlayerIndex
	store   *sqlite.Store
	metrics *metrics.Recorder
	logger  *slog.Logger

	// reindexMu serializes full and per-tournament reindexing.
	reindexMu sync.Mutex
}

// NewSearchService creates a search service.
func NewSearchService(index *search.PlayerIndex, store *sqlite.Store, rec *metrics.Recorder, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:   index,
		store:   store,
		metrics: rec,
		logger:  logger,
	}
}

// Search finds players across every tournament.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Limit <= 0 {
		params.Limit = search.DefaultSearchParams().Limit
	}
	params.Limit = min(params.Limit, maxSearchLimit)
	params.Offset = max(params.Offset, 0)

	return s.index.Search(ctx, params)
}

// DocumentCount returns how many players are indexed.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// Reindex rebuilds the whole index from the store and returns how many
// players were indexed.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	s.reindexMu.Lock()
	defer s.reindexMu.Unlock()

	start := time.Now()
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	var docs []*search.PlayerDocument
	err := s.store.EachPlayer(ctx, func(row domain.RawRow) error {
		if doc, ok := search.PlayerToDocument(row); ok {
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read players: %w", err)
	}

	if err := s.index.IndexPlayers(docs); err != nil {
		return 0, fmt.Errorf("index players: %w", err)
	}
	s.metrics.SearchDocuments(len(docs))

	s.logger.Info("search index rebuilt",
		"players", len(docs),
		"duration", time.Since(start),
	)
	return len(docs), nil
}

// ReindexTournament replaces the indexed players of one tournament with
// its current standings.
func (s *SearchService) ReindexTournament(ctx context.Context, tournamentID string) (int, error) {
	s.reindexMu.Lock()
	defer s.reindexMu.Unlock()

	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return 0, err
	}
	rows, err := s.store.ListPlayers(ctx, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("list players: %w", err)
	}

	if _, err := s.index.DeleteTournament(tournamentID); err != nil {
		return 0, fmt.Errorf("drop indexed players: %w", err)
	}

	docs := make([]*search.PlayerDocument, 0, len(rows))
	for _, row := range rows {
		row["tournament_name"] = t["name"]
		if doc, ok := search.PlayerToDocument(row); ok {
			docs = append(docs, doc)
		}
	}
	if err := s.index.IndexPlayers(docs); err != nil {
		return 0, fmt.Errorf("index players: %w", err)
	}

	if n, err := s.index.DocumentCount(); err == nil {
		s.metrics.SearchDocuments(int(n))
	}
	s.logger.Debug("tournament reindexed", "tournament_id", tournamentID, "players", len(docs))
	return len(docs), nil
}
