package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/ratelimit"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
	"github.com/kgdevtools/lca-auth-sub003/internal/validation"
)

func setupRegistration(t *testing.T, limiter *ratelimit.KeyedRateLimiter) (*RegistrationService, *sqlite.Store) {
	t.Helper()
	s := setupTestStore(t)
	seedLimpopoOpen(t, s)
	svc := NewRegistrationService(s, validation.New(), limiter, metrics.NewRecorder(), logger.Discard())
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 10, 0, 0, 0, time.FixedZone("SAST", 2*3600)) }
	return svc, s
}

func validRequest() RegistrationRequest {
	rating := 1650
	return RegistrationRequest{
		FullName: "  Naledi Khumalo ",
		Email:    "naledi@example.com",
		Phone:    "082 555 1234",
		Rating:   &rating,
		Section:  "Open",
	}
}

func TestRegistrationService_Register(t *testing.T) {
	svc, _ := setupRegistration(t, nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "limpopo_open_2025", "198.51.100.4", validRequest())
	require.NoError(t, err)
	assert.Regexp(t, `^reg-`, reg.ID)
	assert.Len(t, reg.Reference, 8)
	assert.Equal(t, "Naledi Khumalo", reg.FullName)
	assert.Equal(t, time.UTC, reg.CreatedAt.Location())
	assert.Equal(t, 8, reg.CreatedAt.Hour())

	list, err := svc.ListRegistrations(ctx, "limpopo_open_2025")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, reg.ID, list[0].ID)

	got, err := svc.GetByReference(ctx, " "+reg.Reference+" ")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)
}

func TestRegistrationService_Duplicate(t *testing.T) {
	svc, _ := setupRegistration(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "limpopo_open_2025", "a", validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Email = "NALEDI@example.com"
	_, err = svc.Register(ctx, "limpopo_open_2025", "b", req)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestRegistrationService_Validation(t *testing.T) {
	svc, _ := setupRegistration(t, nil)

	req := validRequest()
	req.Email = "not-an-email"
	req.FullName = "   "

	_, err := svc.Register(context.Background(), "limpopo_open_2025", "a", req)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	details := domainErr.Details.(map[string]string)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "full_name")
}

func TestRegistrationService_UnknownTournament(t *testing.T) {
	svc, _ := setupRegistration(t, nil)

	_, err := svc.Register(context.Background(), "nope", "a", validRequest())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	_, err = svc.ListRegistrations(context.Background(), "nope")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestRegistrationService_RateLimited(t *testing.T) {
	limiter := ratelimit.New(0.001, 2)
	t.Cleanup(limiter.Stop)
	svc, _ := setupRegistration(t, limiter)
	ctx := context.Background()

	for i, email := range []string{"a@example.com", "b@example.com"} {
		req := validRequest()
		req.Email = email
		_, err := svc.Register(ctx, "limpopo_open_2025", "203.0.113.9", req)
		require.NoError(t, err, i)
	}

	req := validRequest()
	req.Email = "c@example.com"
	_, err := svc.Register(ctx, "limpopo_open_2025", "203.0.113.9", req)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrRateLimited))

	_, err = svc.Register(ctx, "limpopo_open_2025", "203.0.113.10", req)
	assert.NoError(t, err, "other clients keep their own budget")
}
