// Package api provides the HTTP API server and handlers for the academy
// results site.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/service"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Services groups the business services used by the API server.
type Services struct {
	Tournament   *service.TournamentService
	Game         *service.GameService
	Opponent     *service.OpponentService
	Search       *service.SearchService
	Registration *service.RegistrationService
	Import       *service.ImportService
}

// Options configure the server.
type Options struct {
	// AdminKey guards /api/v1/admin. Empty disables the admin endpoints.
	AdminKey string
	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string
	// MetricsEnabled exposes /metrics.
	MetricsEnabled bool
	// ImportDir is scanned by the admin import endpoint.
	ImportDir string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *sqlite.Store
	services *Services
	opts     Options
	router   *chi.Mux
	api      huma.API
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *sqlite.Store, services *Services, opts Options, rec *metrics.Recorder, logger *slog.Logger) *Server {
	s := &Server{
		store:    store,
		services: services,
		opts:     opts,
		router:   chi.NewRouter(),
		metrics:  rec,
		logger:   logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Limpopo Chess Academy API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"adminKey": {
			Type: "apiKey",
			In:   "header",
			Name: adminKeyHeader,
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerTournamentRoutes()
	s.registerRegistrationRoutes()
	s.registerGameRoutes()
	s.registerSearchRoutes()
	s.registerNormalizeRoutes()
	s.registerAdminRoutes()

	if opts.MetricsEnabled && rec != nil {
		s.router.Handle("/metrics", rec.Handler())
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, for the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(clientIPMiddleware)
	s.router.Use(s.requestLogger)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(s.opts.CORSOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", adminKeyHeader},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.requireAdminKey)
	s.router.Use(middleware.Compress(5))
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
