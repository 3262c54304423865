package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
)

// setupTestIndex creates an index under a temp dir and seeds it with docs.
func setupTestIndex(t *testing.T, docs ...*PlayerDocument) *PlayerIndex {
	t.Helper()

	idx, created, err := NewPlayerIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	require.True(t, created)
	t.Cleanup(func() { _ = idx.Close() })

	require.NoError(t, idx.IndexPlayers(docs))
	return idx
}

func player(t *testing.T, row domain.RawRow) *PlayerDocument {
	t.Helper()
	doc, ok := PlayerToDocument(row)
	require.True(t, ok)
	return doc
}

func samplePlayers(t *testing.T) []*PlayerDocument {
	return []*PlayerDocument{
		player(t, domain.RawRow{"id": "p1", "tournament_id": "lca-open", "tournament_name": "LCA Open", "name": "Thabo Mokoena", "rating": "1850", "rank": 1, "federation": "rsa"}),
		player(t, domain.RawRow{"id": "p2", "tournament_id": "lca-open", "tournament_name": "LCA Open", "name": "Élodie Ndlovu", "title": "WCM", "rank": "2"}),
		player(t, domain.RawRow{"id": "p3", "tournament_id": "cdc-3", "tournament_name": "CDC 3", "name": "Lerato Mokoena", "federation": "BOT"}),
		player(t, domain.RawRow{"id": "p4", "tournament_id": "cdc-3", "tournament_name": "CDC 3", "name": "Sipho Dlamini"}),
	}
}

func hitIDs(res *SearchResult) []string {
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids
}

func TestPlayerToDocument(t *testing.T) {
	doc, ok := PlayerToDocument(domain.RawRow{"id": "p1", "name": " Ólafsson, Helgi ", "rating": float64(2401), "rank": "3", "fed": "isl"})
	require.True(t, ok)
	assert.Equal(t, "Ólafsson, Helgi", doc.Name)
	assert.Equal(t, "olafsson, helgi", doc.NameFolded)
	assert.Equal(t, 2401, doc.Rating)
	assert.Equal(t, 3, doc.Rank)
	assert.Equal(t, "ISL", doc.Federation)

	_, ok = PlayerToDocument(domain.RawRow{"id": "p1"})
	assert.False(t, ok)
	_, ok = PlayerToDocument(domain.RawRow{"name": "No Id"})
	assert.False(t, ok)
}

func TestNewPlayerIndex_Reopen(t *testing.T) {
	dir := t.TempDir()

	idx, created, err := NewPlayerIndex(Options{DataPath: dir})
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, idx.IndexPlayers(samplePlayers(t)))
	require.NoError(t, idx.Close())

	idx, created, err = NewPlayerIndex(Options{DataPath: dir})
	require.NoError(t, err)
	assert.False(t, created)
	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
	require.NoError(t, idx.Close())
}

func TestNewPlayerIndex_RecreatesOnMappingChange(t *testing.T) {
	dir := t.TempDir()

	idx, _, err := NewPlayerIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, idx.IndexPlayers(samplePlayers(t)))
	require.NoError(t, idx.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "players.version"), []byte("0"), 0o644))

	idx, created, err := NewPlayerIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer idx.Close()
	assert.True(t, created)
	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearch_FoldedName(t *testing.T) {
	idx := setupTestIndex(t, samplePlayers(t)...)

	res, err := idx.Search(context.Background(), SearchParams{Query: "elodie"})
	require.NoError(t, err)
	require.Equal(t, []string{"p2"}, hitIDs(res))
	assert.Equal(t, "Élodie Ndlovu", res.Hits[0].Name)
	assert.Equal(t, "WCM", res.Hits[0].Title)
	assert.Equal(t, 2, res.Hits[0].Rank)
	assert.Equal(t, "LCA Open", res.Hits[0].TournamentName)
}

func TestSearch_PrefixTypeAhead(t *testing.T) {
	idx := setupTestIndex(t, samplePlayers(t)...)

	res, err := idx.Search(context.Background(), SearchParams{Query: "Mok"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p3"}, hitIDs(res))

	res, err = idx.Search(context.Background(), SearchParams{Query: "thabo mok"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, hitIDs(res))
}

func TestSearch_Typo(t *testing.T) {
	idx := setupTestIndex(t, samplePlayers(t)...)

	res, err := idx.Search(context.Background(), SearchParams{Query: "dlamin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p4"}, hitIDs(res))

	res, err = idx.Search(context.Background(), SearchParams{Query: "sipbo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p4"}, hitIDs(res))

	res, err = idx.Search(context.Background(), SearchParams{Query: "zzzz"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestSearch_Filters(t *testing.T) {
	idx := setupTestIndex(t, samplePlayers(t)...)

	res, err := idx.Search(context.Background(), SearchParams{Query: "mokoena", TournamentID: "cdc-3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, hitIDs(res))

	res, err = idx.Search(context.Background(), SearchParams{Federation: "rsa"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, hitIDs(res))
	assert.Equal(t, 1850, res.Hits[0].Rating)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	idx := setupTestIndex(t, samplePlayers(t)...)

	res, err := idx.Search(context.Background(), DefaultSearchParams())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), res.Total)
	assert.Contains(t, res.Facets.Federations, FacetCount{Value: "BOT", Count: 1})
	assert.Contains(t, res.Facets.Titles, FacetCount{Value: "WCM", Count: 1})
}

func TestSearch_Pagination(t *testing.T) {
	var docs []*PlayerDocument
	for i := range 25 {
		docs = append(docs, &PlayerDocument{
			ID:           fmt.Sprintf("p%02d", i),
			TournamentID: "big",
			Name:         fmt.Sprintf("Player %02d", i),
			NameFolded:   "player",
		})
	}
	idx := setupTestIndex(t, docs...)

	res, err := idx.Search(context.Background(), SearchParams{Query: "player", Limit: 10, Offset: 20})
	require.NoError(t, err)
	assert.Equal(t, uint64(25), res.Total)
	assert.Len(t, res.Hits, 5)
}

func TestDeleteTournament(t *testing.T) {
	idx := setupTestIndex(t, samplePlayers(t)...)

	removed, err := idx.DeleteTournament("lca-open")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	removed, err = idx.DeleteTournament("lca-open")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRebuild(t *testing.T) {
	idx := setupTestIndex(t, samplePlayers(t)...)

	require.NoError(t, idx.Rebuild())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, idx.IndexPlayers(samplePlayers(t)[:1]))
	res, err := idx.Search(context.Background(), SearchParams{Query: "thabo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, hitIDs(res))
}
