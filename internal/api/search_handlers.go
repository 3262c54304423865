package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchPlayers",
		Method:      http.MethodGet,
		Path:        "/api/v1/players/search",
		Summary:     "Search players",
		Description: "Full-text player search across all tournaments, accent and case insensitive",
		Tags:        []string{"Search"},
	}, s.handleSearchPlayers)
}

// SearchPlayersInput contains the player search query.
type SearchPlayersInput struct {
	Query        string `query:"q" doc:"Search text"`
	TournamentID string `query:"tournament_id" doc:"Restrict to one tournament"`
	Federation   string `query:"federation" doc:"Restrict to one federation"`
	Limit        int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits (default 20)"`
	Offset       int    `query:"offset" minimum:"0" doc:"Hits to skip"`
	Facets       bool   `query:"facets" doc:"Include federation and title facets"`
}

// SearchPlayersOutput wraps the search result for Huma.
type SearchPlayersOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearchPlayers(ctx context.Context, input *SearchPlayersInput) (*SearchPlayersOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.TournamentID = input.TournamentID
	params.Federation = input.Federation
	params.Offset = input.Offset
	params.IncludeFacets = input.Facets
	if input.Limit > 0 {
		params.Limit = input.Limit
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchPlayersOutput{Body: result}, nil
}
