package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/service"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
)

//nolint:gochecknoglobals // shared operation security
var adminSecurity = []map[string][]string{{"adminKey": {}}}

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "clearOpponentCache",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/cache/opponents",
		Summary:     "Clear opponent cache",
		Description: "Drops cached rank lookups for one tournament, or for all when tournament_id is omitted",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleClearOpponentCache)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexSearch",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/search/reindex",
		Summary:     "Rebuild search index",
		Description: "Reindexes every player from the database",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleReindex)

	huma.Register(s.api, huma.Operation{
		OperationID: "listImports",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/imports",
		Summary:     "List imports",
		Description: "Returns recorded file imports, newest first",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleListImports)

	huma.Register(s.api, huma.Operation{
		OperationID: "forgetImport",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/imports/{fingerprint}",
		Summary:     "Forget an import",
		Description: "Removes an import record so the same file is imported again next time",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleForgetImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "scanImports",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/imports/scan",
		Summary:     "Scan import directory",
		Description: "Imports every supported file in the configured import directory",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleScanImports)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTournamentRegistrations",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/tournaments/{id}/registrations",
		Summary:     "List registrations",
		Description: "Returns every registration for a tournament",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleListRegistrations)
}

// ClearOpponentCacheInput selects the tournament to clear.
type ClearOpponentCacheInput struct {
	TournamentID string `query:"tournament_id" doc:"Tournament to clear; all when empty"`
}

// ClearOpponentCacheOutput reports what was cleared.
type ClearOpponentCacheOutput struct {
	Body struct {
		Cleared []string `json:"cleared" doc:"Tournaments whose cache entries were dropped"`
	}
}

// ReindexOutput reports the reindex result.
type ReindexOutput struct {
	Body struct {
		Indexed int `json:"indexed" doc:"Players indexed"`
	}
}

// ListImportsInput contains the import listing query.
type ListImportsInput struct {
	Cursor string `query:"cursor" doc:"Cursor from a previous page"`
	Limit  int    `query:"limit" minimum:"0" maximum:"500" doc:"Page size (default 50)"`
}

// ListImportsOutput wraps a page of imports for Huma.
type ListImportsOutput struct {
	Body *store.PaginatedResult[domain.ImportRecord]
}

// ForgetImportInput identifies an import record.
type ForgetImportInput struct {
	Fingerprint string `path:"fingerprint" doc:"Content fingerprint"`
}

// ScanImportsInput contains scan options.
type ScanImportsInput struct {
	Force bool `query:"force" doc:"Reimport files that were already imported"`
}

// ScanImportsOutput wraps the import summary for Huma.
type ScanImportsOutput struct {
	Body *service.ImportSummary
}

// RegistrationsOutput wraps a tournament's registrations for Huma.
type RegistrationsOutput struct {
	Body struct {
		TournamentID  string                 `json:"tournament_id" doc:"Tournament ID"`
		Registrations []*domain.Registration `json:"registrations" doc:"Registrations, oldest first"`
	}
}

func (s *Server) handleClearOpponentCache(ctx context.Context, input *ClearOpponentCacheInput) (*ClearOpponentCacheOutput, error) {
	out := &ClearOpponentCacheOutput{}
	if input.TournamentID != "" {
		s.services.Opponent.ClearCache(input.TournamentID)
		out.Body.Cleared = []string{input.TournamentID}
	} else {
		out.Body.Cleared = s.services.Opponent.CachedTournaments()
		s.services.Opponent.ClearCache()
	}
	if out.Body.Cleared == nil {
		out.Body.Cleared = []string{}
	}

	logger.FromContext(ctx, s.logger).Info("opponent cache cleared", "tournaments", len(out.Body.Cleared))
	return out, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	n, err := s.services.Search.Reindex(ctx)
	if err != nil {
		return nil, err
	}
	out := &ReindexOutput{}
	out.Body.Indexed = n
	return out, nil
}

func (s *Server) handleListImports(ctx context.Context, input *ListImportsInput) (*ListImportsOutput, error) {
	page, err := s.services.Import.ListImports(ctx, store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, err
	}
	return &ListImportsOutput{Body: page}, nil
}

func (s *Server) handleForgetImport(ctx context.Context, input *ForgetImportInput) (*struct{}, error) {
	if err := s.services.Import.Forget(ctx, input.Fingerprint); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.logger).Info("import forgotten", "fingerprint", input.Fingerprint)
	return nil, nil
}

func (s *Server) handleScanImports(ctx context.Context, input *ScanImportsInput) (*ScanImportsOutput, error) {
	if s.opts.ImportDir == "" {
		return nil, domainerrors.Unavailable("no import directory configured")
	}
	summary, err := s.services.Import.ImportPaths(ctx, []string{s.opts.ImportDir}, service.ImportOptions{Force: input.Force})
	if err != nil {
		return nil, err
	}
	return &ScanImportsOutput{Body: summary}, nil
}

func (s *Server) handleListRegistrations(ctx context.Context, input *TournamentInput) (*RegistrationsOutput, error) {
	regs, err := s.services.Registration.ListRegistrations(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out := &RegistrationsOutput{}
	out.Body.TournamentID = input.ID
	out.Body.Registrations = regs
	if out.Body.Registrations == nil {
		out.Body.Registrations = []*domain.Registration{}
	}
	return out, nil
}
