package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
)

func TestCreateRegistration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTournament(t, s, "t1")

	rating := 1650
	reg := &domain.Registration{
		ID:           "reg-1",
		Reference:    "K7M2Q9TX",
		TournamentID: "t1",
		FullName:     "Thabo Mokoena",
		Email:        "thabo@example.com",
		Rating:       &rating,
		Section:      "Open",
		CreatedAt:    time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateRegistration(ctx, reg))

	dup := *reg
	dup.ID = "reg-2"
	dup.Reference = "K7M2Q9TY"
	dup.Email = "THABO@example.com"
	err := s.CreateRegistration(ctx, &dup)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict), "emails compare case-insensitively")
	assert.NotErrorIs(t, err, ErrReferenceTaken)

	list, err := s.ListRegistrations(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Thabo Mokoena", list[0].FullName)
	require.NotNil(t, list[0].Rating)
	assert.Equal(t, 1650, *list[0].Rating)
	assert.Empty(t, list[0].Phone)
	assert.True(t, reg.CreatedAt.Equal(list[0].CreatedAt))

	got, err := s.GetRegistrationByReference(ctx, "K7M2Q9TX")
	require.NoError(t, err)
	assert.Equal(t, "reg-1", got.ID)

	_, err = s.GetRegistrationByReference(ctx, "NOPE")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestCreateRegistration_ReferenceCollision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTournament(t, s, "t1")

	first := &domain.Registration{ID: "reg-1", Reference: "SAME", TournamentID: "t1", FullName: "A", Email: "a@example.com", CreatedAt: time.Now()}
	second := &domain.Registration{ID: "reg-2", Reference: "SAME", TournamentID: "t1", FullName: "B", Email: "b@example.com", CreatedAt: time.Now()}
	require.NoError(t, s.CreateRegistration(ctx, first))

	err := s.CreateRegistration(ctx, second)
	require.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
	assert.ErrorIs(t, err, ErrReferenceTaken)
}

func TestCreateRegistration_UnknownTournament(t *testing.T) {
	s := newTestStore(t)

	err := s.CreateRegistration(context.Background(), &domain.Registration{
		ID: "reg-1", Reference: "R1", TournamentID: "missing", FullName: "X", Email: "x@example.com", CreatedAt: time.Now(),
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
