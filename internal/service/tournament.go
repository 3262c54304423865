package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
)

// TournamentService serves normalized tournaments and standings.
type TournamentService struct {
	store      *sqlite.Store
	classifier *normalize.TieBreakClassifier
	logger     *slog.Logger
}

// NewTournamentService creates a tournament service. A nil classifier uses
// the built-in tie-break rules.
func NewTournamentService(store *sqlite.Store, classifier *normalize.TieBreakClassifier, logger *slog.Logger) *TournamentService {
	if classifier == nil {
		classifier = normalize.DefaultTieBreakClassifier()
	}
	return &TournamentService{
		store:      store,
		classifier: classifier,
		logger:     logger,
	}
}

// TournamentList is one page of tournaments.
type TournamentList struct {
	Items []domain.Tournament `json:"items"`
	Total int                 `json:"total"`
}

// ListTournaments returns a page of tournaments whose names contain query.
func (s *TournamentService) ListTournaments(ctx context.Context, query string, params store.PaginationParams) (*TournamentList, error) {
	rows, total, err := s.store.ListTournaments(ctx, sqlite.TournamentFilter{
		Query:            query,
		PaginationParams: params,
	})
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}

	list := &TournamentList{
		Items: make([]domain.Tournament, 0, len(rows)),
		Total: total,
	}
	for _, row := range rows {
		list.Items = append(list.Items, normalize.NewTournament(row))
	}
	return list, nil
}

// GetTournament returns one tournament.
func (s *TournamentService) GetTournament(ctx context.Context, id string) (*domain.Tournament, error) {
	row, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	t := normalize.NewTournament(row)
	return &t, nil
}

// ListPlayers returns the standings of a tournament in rank order with
// labelled tie-breaks.
func (s *TournamentService) ListPlayers(ctx context.Context, tournamentID string) ([]domain.Player, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	rows, err := s.store.ListPlayers(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	players := make([]domain.Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, normalize.NewPlayer(row, s.classifier))
	}
	return players, nil
}
