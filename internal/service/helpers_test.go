package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/search"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func setupTestIndex(t *testing.T) *search.PlayerIndex {
	t.Helper()
	idx, _, err := search.NewPlayerIndex(search.Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

// seedLimpopoOpen stores a tournament with three ranked players.
func seedLimpopoOpen(t *testing.T, s *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.UpsertTournament(ctx, domain.RawRow{
		"id":         "limpopo_open_2025",
		"name":       "Limpopo Open 2025",
		"location":   "Polokwane",
		"date":       "2025/10/03 to 2025/10/05",
		"rounds":     "7",
		"federation": "RSA",
	}))
	require.NoError(t, s.ReplacePlayers(ctx, "limpopo_open_2025", []domain.RawRow{
		{"rank": 2, "name": "Élodie Ndlovu", "rating": 1790, "points": "5½", "tie_breaks": map[string]any{"BH": 28.5, "SB": 20.25}},
		{"rank": 1, "name": "Thabo Mokoena", "rating": "1850", "points": 6, "tie_breaks": `{"Buchholz": 30, "mystery": 1}`},
		{"rank": "3", "name": "Lerato Mokoena", "points": float64(5)},
	}))
}
