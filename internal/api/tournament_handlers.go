package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
)

func (s *Server) registerTournamentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTournaments",
		Method:      http.MethodGet,
		Path:        "/api/v1/tournaments",
		Summary:     "List tournaments",
		Description: "Returns a page of tournaments, optionally filtered by name",
		Tags:        []string{"Tournaments"},
	}, s.handleListTournaments)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTournament",
		Method:      http.MethodGet,
		Path:        "/api/v1/tournaments/{id}",
		Summary:     "Get tournament",
		Description: "Returns a tournament's normalized details",
		Tags:        []string{"Tournaments"},
	}, s.handleGetTournament)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTournamentPlayers",
		Method:      http.MethodGet,
		Path:        "/api/v1/tournaments/{id}/players",
		Summary:     "List standings",
		Description: "Returns the tournament's players in rank order with classified tie-breaks",
		Tags:        []string{"Tournaments"},
	}, s.handleListPlayers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOpponentByRank",
		Method:      http.MethodGet,
		Path:        "/api/v1/tournaments/{id}/opponents/{rank}",
		Summary:     "Get opponent by rank",
		Description: "Resolves a rank number from a crosstable cell to the player who finished there",
		Tags:        []string{"Tournaments"},
	}, s.handleGetOpponent)
}

// ListTournamentsInput contains the tournament listing query.
type ListTournamentsInput struct {
	Query  string `query:"q" doc:"Case-insensitive name filter"`
	Limit  int    `query:"limit" minimum:"0" maximum:"500" doc:"Page size (default 50)"`
	Offset int    `query:"offset" minimum:"0" doc:"Rows to skip"`
}

// ListTournamentsResponse is one page of tournaments.
type ListTournamentsResponse struct {
	Items  []domain.Tournament `json:"items" doc:"Tournaments on this page"`
	Total  int                 `json:"total" doc:"Total matching tournaments"`
	Limit  int                 `json:"limit" doc:"Page size used"`
	Offset int                 `json:"offset" doc:"Rows skipped"`
}

// ListTournamentsOutput wraps the listing for Huma.
type ListTournamentsOutput struct {
	Body ListTournamentsResponse
}

// TournamentInput identifies a tournament.
type TournamentInput struct {
	ID string `path:"id" doc:"Tournament ID"`
}

// TournamentOutput wraps a tournament for Huma.
type TournamentOutput struct {
	Body *domain.Tournament
}

// PlayersResponse contains a tournament's standings.
type PlayersResponse struct {
	TournamentID string          `json:"tournament_id" doc:"Tournament ID"`
	Players      []domain.Player `json:"players" doc:"Players in rank order"`
}

// PlayersOutput wraps the standings for Huma.
type PlayersOutput struct {
	Body PlayersResponse
}

// OpponentInput identifies a player by final rank.
type OpponentInput struct {
	ID   string `path:"id" doc:"Tournament ID"`
	Rank int    `path:"rank" minimum:"1" doc:"Final rank"`
}

// OpponentOutput wraps opponent details for Huma.
type OpponentOutput struct {
	Body *domain.OpponentDetails
}

func (s *Server) handleListTournaments(ctx context.Context, input *ListTournamentsInput) (*ListTournamentsOutput, error) {
	params := store.PaginationParams{Limit: input.Limit, Offset: input.Offset}
	params.Validate()

	list, err := s.services.Tournament.ListTournaments(ctx, input.Query, params)
	if err != nil {
		return nil, err
	}

	return &ListTournamentsOutput{
		Body: ListTournamentsResponse{
			Items:  list.Items,
			Total:  list.Total,
			Limit:  params.Limit,
			Offset: params.Offset,
		},
	}, nil
}

func (s *Server) handleGetTournament(ctx context.Context, input *TournamentInput) (*TournamentOutput, error) {
	t, err := s.services.Tournament.GetTournament(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TournamentOutput{Body: t}, nil
}

func (s *Server) handleListPlayers(ctx context.Context, input *TournamentInput) (*PlayersOutput, error) {
	players, err := s.services.Tournament.ListPlayers(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []domain.Player{}
	}
	return &PlayersOutput{
		Body: PlayersResponse{
			TournamentID: input.ID,
			Players:      players,
		},
	}, nil
}

func (s *Server) handleGetOpponent(ctx context.Context, input *OpponentInput) (*OpponentOutput, error) {
	opp := s.services.Opponent.OpponentByRank(ctx, input.ID, input.Rank)
	if opp == nil {
		return nil, domainerrors.NotFoundf("no player at rank %d in tournament %s", input.Rank, input.ID)
	}
	return &OpponentOutput{Body: opp}, nil
}
