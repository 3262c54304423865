package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
)

// GameService serves imported games.
type GameService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewGameService creates a game service.
func NewGameService(store *sqlite.Store, logger *slog.Logger) *GameService {
	return &GameService{
		store:  store,
		logger: logger,
	}
}

// GameList is one page of a game table.
type GameList struct {
	Table       string              `json:"table"`
	DisplayName string              `json:"display_name"`
	Items       []domain.GameRecord `json:"items"`
	Total       int                 `json:"total"`
}

// ListTables returns every game table with its display name.
func (s *GameService) ListTables(ctx context.Context) ([]domain.GameTable, error) {
	counts, err := s.store.ListGameTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list game tables: %w", err)
	}

	tables := make([]domain.GameTable, 0, len(counts))
	for _, c := range counts {
		tables = append(tables, domain.GameTable{
			Table:       c.Table,
			DisplayName: normalize.TableNameToDisplayName(c.Table),
			Games:       c.Games,
		})
	}
	return tables, nil
}

// ListGames returns a page of one table's games.
func (s *GameService) ListGames(ctx context.Context, table string, params store.PaginationParams) (*GameList, error) {
	rows, total, err := s.store.ListGames(ctx, table, params)
	if err != nil {
		return nil, err
	}

	list := &GameList{
		Table:       table,
		DisplayName: normalize.TableNameToDisplayName(table),
		Items:       make([]domain.GameRecord, 0, len(rows)),
		Total:       total,
	}
	for _, row := range rows {
		list.Items = append(list.Items, normalize.NewGameRecord(row))
	}
	return list, nil
}

// GetGame returns one game by its numeric id.
func (s *GameService) GetGame(ctx context.Context, id string) (*domain.GameRecord, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return nil, domainerrors.NotFoundf("game %s not found", id)
	}

	row, err := s.store.GetGame(ctx, n)
	if err != nil {
		return nil, err
	}
	rec := normalize.NewGameRecord(row)
	return &rec, nil
}
