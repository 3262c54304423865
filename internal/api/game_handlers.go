package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	"github.com/kgdevtools/lca-auth-sub003/internal/service"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
)

func (s *Server) registerGameRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGameTables",
		Method:      http.MethodGet,
		Path:        "/api/v1/games/tables",
		Summary:     "List game tables",
		Description: "Returns every imported game table with its display name and size",
		Tags:        []string{"Games"},
	}, s.handleListGameTables)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGames",
		Method:      http.MethodGet,
		Path:        "/api/v1/games/tables/{table}",
		Summary:     "List games",
		Description: "Returns a page of games from one table",
		Tags:        []string{"Games"},
	}, s.handleListGames)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGame",
		Method:      http.MethodGet,
		Path:        "/api/v1/games/{id}",
		Summary:     "Get game",
		Description: "Returns one game with its PGN and parsed headers",
		Tags:        []string{"Games"},
	}, s.handleGetGame)
}

// GameTablesOutput wraps the game tables for Huma.
type GameTablesOutput struct {
	Body struct {
		Tables []domain.GameTable `json:"tables" doc:"Game tables"`
	}
}

// ListGamesInput contains the games listing query.
type ListGamesInput struct {
	Table  string `path:"table" doc:"Table name, e.g. limpopo_open_2024"`
	Limit  int    `query:"limit" minimum:"0" maximum:"500" doc:"Page size (default 50)"`
	Offset int    `query:"offset" minimum:"0" doc:"Rows to skip"`
}

// ListGamesOutput wraps a page of games for Huma.
type ListGamesOutput struct {
	Body *service.GameList
}

// GetGameInput identifies a game.
type GetGameInput struct {
	ID string `path:"id" doc:"Game ID"`
}

// GameOutput wraps a game for Huma.
type GameOutput struct {
	Body *domain.GameRecord
}

func (s *Server) handleListGameTables(ctx context.Context, _ *struct{}) (*GameTablesOutput, error) {
	tables, err := s.services.Game.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []domain.GameTable{}
	}
	out := &GameTablesOutput{}
	out.Body.Tables = tables
	return out, nil
}

func (s *Server) handleListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	params := store.PaginationParams{Limit: input.Limit, Offset: input.Offset}
	params.Validate()

	list, err := s.services.Game.ListGames(ctx, input.Table, params)
	if err != nil {
		return nil, err
	}
	return &ListGamesOutput{Body: list}, nil
}

func (s *Server) handleGetGame(ctx context.Context, input *GetGameInput) (*GameOutput, error) {
	game, err := s.services.Game.GetGame(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GameOutput{Body: game}, nil
}
