package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	"github.com/kgdevtools/lca-auth-sub003/internal/service"
)

func (s *Server) registerRegistrationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createRegistration",
		Method:        http.MethodPost,
		Path:          "/api/v1/tournaments/{id}/registrations",
		Summary:       "Register for a tournament",
		Description:   "Submits a tournament entry and returns its reference code",
		Tags:          []string{"Registrations"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRegistration)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRegistration",
		Method:      http.MethodGet,
		Path:        "/api/v1/registrations/{reference}",
		Summary:     "Look up a registration",
		Description: "Returns the registration a reference code points to",
		Tags:        []string{"Registrations"},
	}, s.handleGetRegistration)
}

// CreateRegistrationInput contains the registration request.
type CreateRegistrationInput struct {
	ID   string `path:"id" doc:"Tournament ID"`
	Body service.RegistrationRequest
}

// RegistrationOutput wraps a registration for Huma.
type RegistrationOutput struct {
	Body *domain.Registration
}

// GetRegistrationInput identifies a registration by reference code.
type GetRegistrationInput struct {
	Reference string `path:"reference" minLength:"1" doc:"Reference code, case-insensitive"`
}

func (s *Server) handleCreateRegistration(ctx context.Context, input *CreateRegistrationInput) (*RegistrationOutput, error) {
	reg, err := s.services.Registration.Register(ctx, input.ID, clientIP(ctx), input.Body)
	if err != nil {
		return nil, err
	}
	return &RegistrationOutput{Body: reg}, nil
}

func (s *Server) handleGetRegistration(ctx context.Context, input *GetRegistrationInput) (*RegistrationOutput, error) {
	reg, err := s.services.Registration.GetByReference(ctx, input.Reference)
	if err != nil {
		return nil, err
	}
	return &RegistrationOutput{Body: reg}, nil
}
