package search

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
)

// SearchParams configures a player search.
type SearchParams struct {
	Query        string // Free text; folded before matching
	TournamentID string // Restrict to one tournament
	Federation   string // Restrict to one federation

	Limit  int
	Offset int

	IncludeFacets bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		IncludeFacets: true,
	}
}

// SearchResult is one page of matching players.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []PlayerHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitempty"`
}

// PlayerHit is a single matching player standing.
type PlayerHit struct {
	ID             string  `json:"id"`
	TournamentID   string  `json:"tournament_id"`
	TournamentName string  `json:"tournament_name,omitempty"`
	Name           string  `json:"name"`
	Title          string  `json:"title,omitempty"`
	Federation     string  `json:"federation,omitempty"`
	Rating         int     `json:"rating,omitempty"`
	Rank           int     `json:"rank,omitempty"`
	Score          float64 `json:"score"`
}

// SearchFacets holds facet counts over the matching players.
type SearchFacets struct {
	Federations []FacetCount `json:"federations,omitempty"`
	Titles      []FacetCount `json:"titles,omitempty"`
}

// FacetCount is a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search runs params against the index.
func (p *PlayerIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "_id"})
	req.Fields = []string{"tournament_id", "tournament_name", "name", "title", "federation", "rating", "rank"}
	if params.IncludeFacets {
		req.AddFacet("federation", bleve.NewFacetRequest("federation", 20))
		req.AddFacet("title", bleve.NewFacetRequest("title", 20))
	}

	res, err := p.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]PlayerHit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		h := PlayerHit{ID: hit.ID, Score: hit.Score}
		h.TournamentID, _ = hit.Fields["tournament_id"].(string)
		h.TournamentName, _ = hit.Fields["tournament_name"].(string)
		h.Name, _ = hit.Fields["name"].(string)
		h.Title, _ = hit.Fields["title"].(string)
		h.Federation, _ = hit.Fields["federation"].(string)
		if v, ok := hit.Fields["rating"].(float64); ok {
			h.Rating = int(v)
		}
		if v, ok := hit.Fields["rank"].(float64); ok {
			h.Rank = int(v)
		}
		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(res)
	}
	return result, nil
}

// queryTokens folds q and splits it into letter runs, matching what
// the simple analyzer produces at index time.
func queryTokens(q string) []string {
	return strings.FieldsFunc(normalize.FoldName(q), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// buildSearchQuery requires every query token to match the folded name,
// either exactly, as a prefix (type-ahead), or within one edit.
func buildSearchQuery(params SearchParams) query.Query {
	var must []query.Query

	for _, tok := range queryTokens(params.Query) {
		exact := bleve.NewTermQuery(tok)
		exact.SetField("name_folded")
		exact.SetBoost(3.0)
		alternatives := []query.Query{exact}

		if len(tok) >= 2 {
			prefix := bleve.NewPrefixQuery(tok)
			prefix.SetField("name_folded")
			prefix.SetBoost(1.0)
			alternatives = append(alternatives, prefix)
		}
		if len(tok) >= 4 {
			fuzzy := bleve.NewFuzzyQuery(tok)
			fuzzy.SetFuzziness(1)
			fuzzy.SetField("name_folded")
			fuzzy.SetBoost(0.5)
			alternatives = append(alternatives, fuzzy)
		}
		must = append(must, bleve.NewDisjunctionQuery(alternatives...))
	}

	if params.TournamentID != "" {
		tq := bleve.NewTermQuery(params.TournamentID)
		tq.SetField("tournament_id")
		must = append(must, tq)
	}
	if params.Federation != "" {
		fq := bleve.NewTermQuery(strings.ToUpper(strings.TrimSpace(params.Federation)))
		fq.SetField("federation")
		must = append(must, fq)
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}

func extractFacets(res *bleve.SearchResult) SearchFacets {
	var facets SearchFacets
	if f, ok := res.Facets["federation"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Federations = append(facets.Federations, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	if f, ok := res.Facets["title"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Titles = append(facets.Titles, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	return facets
}
