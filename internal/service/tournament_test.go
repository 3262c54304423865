package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
)

func TestTournamentService_GetTournament(t *testing.T) {
	s := setupTestStore(t)
	seedLimpopoOpen(t, s)
	svc := NewTournamentService(s, nil, logger.Discard())

	got, err := svc.GetTournament(context.Background(), "limpopo_open_2025")
	require.NoError(t, err)
	assert.Equal(t, "Limpopo Open 2025", got.DisplayName)
	assert.Equal(t, "Polokwane", got.Location)
	assert.Equal(t, "2025-10-03", got.StartDate)
	assert.Equal(t, "2025-10-05", got.EndDate)
	require.NotNil(t, got.Rounds)
	assert.Equal(t, 7, *got.Rounds)

	_, err = svc.GetTournament(context.Background(), "nope")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestTournamentService_ListTournaments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	seedLimpopoOpen(t, s)
	require.NoError(t, s.UpsertTournament(ctx, domain.RawRow{"id": "cdc_tournament_3_2025", "start_date": float64(45933)}))
	svc := NewTournamentService(s, nil, logger.Discard())

	list, err := svc.ListTournaments(ctx, "", store.DefaultPaginationParams())
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Items, 2)

	byID := map[string]domain.Tournament{}
	for _, tr := range list.Items {
		byID[tr.ID] = tr
	}
	assert.Equal(t, "Cdc Tournament 3 2025", byID["cdc_tournament_3_2025"].DisplayName)
	assert.Equal(t, "2025-10-03", byID["cdc_tournament_3_2025"].StartDate)

	list, err = svc.ListTournaments(ctx, "limpopo", store.DefaultPaginationParams())
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "limpopo_open_2025", list.Items[0].ID)
}

func TestTournamentService_ListPlayers(t *testing.T) {
	s := setupTestStore(t)
	seedLimpopoOpen(t, s)
	svc := NewTournamentService(s, nil, logger.Discard())

	players, err := svc.ListPlayers(context.Background(), "limpopo_open_2025")
	require.NoError(t, err)
	require.Len(t, players, 3)

	first := players[0]
	assert.Equal(t, "Thabo Mokoena", first.Name)
	require.NotNil(t, first.Rank)
	assert.Equal(t, 1, *first.Rank)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 1850, *first.Rating)
	assert.Equal(t, map[string]string{"Buchholz": "Buchholz"}, first.TieBreakLabels)
	require.Len(t, first.TieBreakDetail, 2)
	assert.False(t, first.TieBreakDetail[1].Classified, "mystery column stays unclassified")

	second := players[1]
	require.NotNil(t, second.Points)
	assert.Equal(t, 5.5, *second.Points)
	assert.Equal(t, map[string]string{"BH": "Buchholz", "SB": "Sonneborn-Berger"}, second.TieBreakLabels)

	assert.Empty(t, players[2].TieBreakLabels)
}

func TestTournamentService_ListPlayers_UnknownTournament(t *testing.T) {
	svc := NewTournamentService(setupTestStore(t), nil, logger.Discard())

	_, err := svc.ListPlayers(context.Background(), "nope")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
