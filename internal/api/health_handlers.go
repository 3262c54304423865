package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/store"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Reports the results database, the player index and the import ledger. Always 200; read the status field.",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth is one probe result.
type ComponentHealth struct {
	Status  string `json:"status" enum:"healthy,degraded,unhealthy" doc:"Component status"`
	Latency string `json:"latency,omitempty" doc:"Probe duration"`
	Message string `json:"message,omitempty" doc:"What the probe found"`
}

type HealthResponse struct {
	Status     string                     `json:"status" enum:"healthy,degraded,unhealthy" doc:"Worst component status"`
	Components map[string]ComponentHealth `json:"components"`
}

type HealthOutput struct {
	Body HealthResponse
}

// probe returns a message for a degraded-but-working component via
// degraded=true, or an error when the component is down.
type probe func(ctx context.Context) (msg string, degraded bool, err error)

func (s *Server) probes() map[string]probe {
	p := map[string]probe{
		"database": s.probeDatabase,
		"search":   s.probeSearch,
	}
	if s.services != nil && s.services.Import != nil {
		p["imports"] = s.probeImports
	}
	return p
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{Status: statusHealthy, Components: map[string]ComponentHealth{}}
	for name, check := range s.probes() {
		c := runProbe(ctx, check)
		resp.Components[name] = c
		resp.Status = worse(resp.Status, c.Status)
	}
	return &HealthOutput{Body: resp}, nil
}

func runProbe(ctx context.Context, check probe) ComponentHealth {
	start := time.Now()
	msg, degraded, err := check(ctx)
	c := ComponentHealth{Status: statusHealthy, Latency: time.Since(start).String(), Message: msg}
	switch {
	case err != nil:
		c.Status = statusUnhealthy
	case degraded:
		c.Status = statusDegraded
	}
	return c
}

func worse(a, b string) string {
	rank := map[string]int{statusHealthy: 0, statusDegraded: 1, statusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func (s *Server) probeDatabase(ctx context.Context) (string, bool, error) {
	if s.store == nil {
		return "database not configured", true, nil
	}
	if err := s.store.Ping(ctx); err != nil {
		return "database ping failed", false, err
	}
	return "", false, nil
}

// An empty index is reachable but answers nothing until a reindex.
func (s *Server) probeSearch(_ context.Context) (string, bool, error) {
	if s.services == nil || s.services.Search == nil {
		return "search service not configured", true, nil
	}
	n, err := s.services.Search.DocumentCount()
	if err != nil {
		return "search index unreachable", false, err
	}
	if n == 0 {
		return "search index empty", true, nil
	}
	return fmt.Sprintf("%d players indexed", n), false, nil
}

func (s *Server) probeImports(ctx context.Context) (string, bool, error) {
	page, err := s.services.Import.ListImports(ctx, store.PaginationParams{Limit: 1})
	if err != nil {
		return "import ledger unreadable", false, err
	}
	if len(page.Items) == 0 {
		return "no imports yet", false, nil
	}
	return "last import " + page.Items[0].ImportedAt.UTC().Format(time.RFC3339), false, nil
}
