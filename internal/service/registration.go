package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
	"github.com/kgdevtools/lca-auth-sub003/internal/id"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/ratelimit"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
	"github.com/kgdevtools/lca-auth-sub003/internal/validation"
)

// referenceAttempts bounds retries when a fresh reference code collides.
const referenceAttempts = 3

// RegistrationRequest is a tournament entry as submitted by the website.
type RegistrationRequest struct {
	FullName string `json:"full_name" validate:"notblank,max=120" doc:"Player's full name"`
	Email    string `json:"email" validate:"required,email,max=254" doc:"Contact email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,phone" doc:"Contact phone number"`
	Rating   *int   `json:"rating,omitempty" validate:"omitempty,gte=100,lte=3500" doc:"Current rating"`
	Section  string `json:"section,omitempty" validate:"max=60" doc:"Section entered"`
	Notes    string `json:"notes,omitempty" validate:"max=1000" doc:"Free-form notes"`
}

// RegistrationService accepts tournament registrations.
type RegistrationService struct {
	store     *sqlite.Store
	validator *validation.Validator
	limiter   *ratelimit.KeyedRateLimiter
	metrics   *metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewRegistrationService creates a registration service. limiter may be nil
// to disable rate limiting.
func NewRegistrationService(
	store *sqlite.Store,
	validator *validation.Validator,
	limiter *ratelimit.KeyedRateLimiter,
	rec *metrics.Recorder,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		store:     store,
		validator: validator,
		limiter:   limiter,
		metrics:   rec,
		logger:    logger,
		now:       time.Now,
	}
}

// Register stores a registration for tournamentID. clientKey identifies the
// submitter for rate limiting, usually the client IP.
func (s *RegistrationService) Register(ctx context.Context, tournamentID, clientKey string, req RegistrationRequest) (*domain.Registration, error) {
	if s.limiter != nil && !s.limiter.Allow(clientKey) {
		s.metrics.Registration(metrics.RegistrationRateLimited)
		s.logger.Warn("registration rate limited", "client", clientKey, "tournament_id", tournamentID)
		return nil, domainerrors.RateLimited("too many registrations, try again later")
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Section = strings.TrimSpace(req.Section)
	req.Notes = strings.TrimSpace(req.Notes)
	if err := s.validator.Validate(req); err != nil {
		s.metrics.Registration(metrics.RegistrationRejected)
		return nil, err
	}

	exists, err := s.store.TournamentExists(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("check tournament: %w", err)
	}
	if !exists {
		s.metrics.Registration(metrics.RegistrationRejected)
		return nil, domainerrors.NotFoundf("tournament %s not found", tournamentID)
	}

	regID, err := id.Generate("reg")
	if err != nil {
		return nil, err
	}
	reg := &domain.Registration{
		ID:           regID,
		TournamentID: tournamentID,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Rating:       req.Rating,
		Section:      req.Section,
		Notes:        req.Notes,
		CreatedAt:    s.now().UTC(),
	}

	for attempt := 1; ; attempt++ {
		if reg.Reference, err = id.ReferenceCode(); err != nil {
			return nil, err
		}
		err = s.store.CreateRegistration(ctx, reg)
		if err == nil {
			break
		}
		if attempt < referenceAttempts && errors.Is(err, sqlite.ErrReferenceTaken) {
			continue
		}
		s.metrics.Registration(metrics.RegistrationRejected)
		return nil, err
	}

	s.metrics.Registration(metrics.RegistrationCreated)
	s.logger.Info("registration created",
		"registration_id", reg.ID,
		"reference", reg.Reference,
		"tournament_id", tournamentID,
	)
	return reg, nil
}

// ListRegistrations returns the registrations of a tournament.
func (s *RegistrationService) ListRegistrations(ctx context.Context, tournamentID string) ([]*domain.Registration, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.store.ListRegistrations(ctx, tournamentID)
}

// GetByReference returns the registration a registrant's reference code
// points to.
func (s *RegistrationService) GetByReference(ctx context.Context, reference string) (*domain.Registration, error) {
	return s.store.GetRegistrationByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
}
