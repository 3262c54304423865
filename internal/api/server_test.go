package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
	"github.com/kgdevtools/lca-auth-sub003/internal/metrics"
	"github.com/kgdevtools/lca-auth-sub003/internal/ratelimit"
	"github.com/kgdevtools/lca-auth-sub003/internal/search"
	"github.com/kgdevtools/lca-auth-sub003/internal/service"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
	"github.com/kgdevtools/lca-auth-sub003/internal/store/sqlite"
	"github.com/kgdevtools/lca-auth-sub003/internal/validation"
)

const testAdminKey = "s3cret-admin"

// testServer wraps the API server with its backing store.
type testServer struct {
	*Server
	db       *sqlite.Store
	services *Services
}

// setupTestServer builds a server over a temporary database seeded with one
// tournament.
func setupTestServer(t *testing.T, opts Options, limiter *ratelimit.KeyedRateLimiter) *testServer {
	t.Helper()
	log := logger.Discard()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ledger, err := store.NewInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })

	idx, _, err := search.NewPlayerIndex(search.Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	rec := metrics.NewRecorder()
	opponents := service.NewOpponentService(db, rec, log)
	searchSvc := service.NewSearchService(idx, db, rec, log)

	services := &Services{
		Tournament:   service.NewTournamentService(db, nil, log),
		Game:         service.NewGameService(db, log),
		Opponent:     opponents,
		Search:       searchSvc,
		Registration: service.NewRegistrationService(db, validation.New(), limiter, rec, log),
		Import:       service.NewImportService(db, ledger, opponents, searchSvc, rec, log, 2),
	}

	seedTournament(t, db)

	return &testServer{
		Server:   NewServer(db, services, opts, rec, log),
		db:       db,
		services: services,
	}
}

func seedTournament(t *testing.T, db *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, db.UpsertTournament(ctx, domain.RawRow{
		"id":       "limpopo_open_2025",
		"name":     "Limpopo Open 2025",
		"location": "Polokwane",
		"date":     "2025/10/03 to 2025/10/05",
	}))
	require.NoError(t, db.ReplacePlayers(ctx, "limpopo_open_2025", []domain.RawRow{
		{"rank": 2, "name": "Lerato Dlamini", "rating": 1720, "points": "4½"},
		{"rank": 1, "name": "Thabo Mokoena", "rating": 1850, "points": 5, "tie_breaks": map[string]any{"BH": 12}},
	}))
	_, err := db.ReplaceGames(ctx, "limpopo_open_2025", []domain.RawRow{
		{"pgn": "[White \"Thabo Mokoena\"]\n[Black \"Lerato Dlamini\"]\n[Result \"1-0\"]\n\n1. e4 e5 1-0", "white": "Thabo Mokoena", "black": "Lerato Dlamini", "result": "1-0"},
	})
	require.NoError(t, err)
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, Options{}, nil)

	rr := ts.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[HealthResponse](t, rr)
	assert.Equal(t, "healthy", resp.Components["database"].Status)
	// Nothing has been indexed yet.
	assert.Equal(t, "degraded", resp.Components["search"].Status)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "no imports yet", resp.Components["imports"].Message)

	_, err := ts.services.Search.Reindex(context.Background())
	require.NoError(t, err)

	resp = decode[HealthResponse](t, ts.do(t, http.MethodGet, "/health", nil, nil))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "2 players indexed", resp.Components["search"].Message)
}

func TestTournamentRoutes(t *testing.T) {
	ts := setupTestServer(t, Options{}, nil)

	t.Run("list", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/v1/tournaments?q=limpopo", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		resp := decode[ListTournamentsResponse](t, rr)
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, 50, resp.Limit)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Polokwane", resp.Items[0].Location)
		assert.Equal(t, "2025-10-03", resp.Items[0].StartDate)
	})

	t.Run("list no match", func(t *testing.T) {
		resp := decode[ListTournamentsResponse](t, ts.do(t, http.MethodGet, "/api/v1/tournaments?q=gauteng", nil, nil))
		assert.Equal(t, 0, resp.Total)
		assert.Empty(t, resp.Items)
	})

	t.Run("get", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/v1/tournaments/limpopo_open_2025", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Limpopo Open 2025", decode[domain.Tournament](t, rr).Name)
	})

	t.Run("get missing", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/v1/tournaments/nope", nil, nil)
		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "NOT_FOUND", decode[errorBody](t, rr).Code)
	})

	t.Run("players in rank order", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/v1/tournaments/limpopo_open_2025/players", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		resp := decode[PlayersResponse](t, rr)
		require.Len(t, resp.Players, 2)
		assert.Equal(t, "Thabo Mokoena", resp.Players[0].Name)
		assert.Equal(t, "Lerato Dlamini", resp.Players[1].Name)
		require.NotNil(t, resp.Players[1].Points)
		assert.InDelta(t, 4.5, *resp.Players[1].Points, 0.001)
	})

	t.Run("opponent by rank", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/v1/tournaments/limpopo_open_2025/opponents/2", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		opp := decode[domain.OpponentDetails](t, rr)
		assert.Equal(t, 2, opp.Rank)
		assert.Equal(t, "Lerato Dlamini", opp.Name)
	})

	t.Run("opponent rank missing", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/v1/tournaments/limpopo_open_2025/opponents/9", nil, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("opponent rank invalid", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/v1/tournaments/limpopo_open_2025/opponents/0", nil, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "VALIDATION", decode[errorBody](t, rr).Code)
	})
}

func TestRegistrationRoutes(t *testing.T) {
	ts := setupTestServer(t, Options{}, nil)

	valid := map[string]any{
		"full_name": "Naledi Khoza",
		"email":     "naledi@example.com",
		"rating":    1500,
	}

	rr := ts.do(t, http.MethodPost, "/api/v1/tournaments/limpopo_open_2025/registrations", valid, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	reg := decode[domain.Registration](t, rr)
	assert.Len(t, reg.Reference, 8)
	assert.Equal(t, "limpopo_open_2025", reg.TournamentID)

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/v1/registrations/"+strings.ToLower(reg.Reference), nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, reg.ID, decode[domain.Registration](t, rr).ID)
	})

	t.Run("unknown reference", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/v1/registrations/ZZZZZZZZ", nil, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown tournament", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/v1/tournaments/nope/registrations", valid, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing email", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/v1/tournaments/limpopo_open_2025/registrations",
			map[string]any{"full_name": "Naledi Khoza"}, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "VALIDATION", decode[errorBody](t, rr).Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/v1/tournaments/limpopo_open_2025/registrations",
			map[string]any{"full_name": "Naledi Khoza", "email": "not-an-email"}, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "VALIDATION", decode[errorBody](t, rr).Code)
	})
}

func TestRegistrationRateLimit(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, Options{}, limiter)

	body := map[string]any{"full_name": "Naledi Khoza", "email": "naledi@example.com"}
	headers := map[string]string{"X-Forwarded-For": "198.51.100.7"}

	rr := ts.do(t, http.MethodPost, "/api/v1/tournaments/limpopo_open_2025/registrations", body, headers)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/v1/tournaments/limpopo_open_2025/registrations", body, headers)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "RATE_LIMITED", decode[errorBody](t, rr).Code)

	// Another client has its own budget.
	headers["X-Forwarded-For"] = "198.51.100.8"
	other := map[string]any{"full_name": "Thabo Mokoena", "email": "thabo@example.com"}
	rr = ts.do(t, http.MethodPost, "/api/v1/tournaments/limpopo_open_2025/registrations", other, headers)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestRegistrationDuplicateEmail(t *testing.T) {
	ts := setupTestServer(t, Options{}, nil)

	body := map[string]any{"full_name": "Naledi Khoza", "email": "naledi@example.com"}

	rr := ts.do(t, http.MethodPost, "/api/v1/tournaments/limpopo_open_2025/registrations", body,
		map[string]string{"X-Forwarded-For": "198.51.100.7"})
	require.Equal(t, http.StatusCreated, rr.Code)

	// A fresh client address does not get around the one-entry-per-email rule.
	rr = ts.do(t, http.MethodPost, "/api/v1/tournaments/limpopo_open_2025/registrations", body,
		map[string]string{"X-Forwarded-For": "198.51.100.9"})
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "CONFLICT", decode[errorBody](t, rr).Code)
}

func TestGameRoutes(t *testing.T) {
	ts := setupTestServer(t, Options{}, nil)

	rr := ts.do(t, http.MethodGet, "/api/v1/games/tables", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	tables := decode[struct {
		Tables []domain.GameTable `json:"tables"`
	}](t, rr)
	require.Len(t, tables.Tables, 1)
	assert.Equal(t, "limpopo_open_2025", tables.Tables[0].Table)
	assert.Equal(t, 1, tables.Tables[0].Games)

	rr = ts.do(t, http.MethodGet, "/api/v1/games/tables/limpopo_open_2025", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[service.GameList](t, rr)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Thabo Mokoena", list.Items[0].White)

	rr = ts.do(t, http.MethodGet, "/api/v1/games/"+list.Items[0].ID, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1-0", decode[domain.GameRecord](t, rr).Result)

	rr = ts.do(t, http.MethodGet, "/api/v1/games/abc", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSearchRoute(t *testing.T) {
	ts := setupTestServer(t, Options{}, nil)
	_, err := ts.services.Search.Reindex(context.Background())
	require.NoError(t, err)

	rr := ts.do(t, http.MethodGet, "/api/v1/players/search?q=mokoena", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	result := decode[search.SearchResult](t, rr)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "Thabo Mokoena", result.Hits[0].Name)
}

func TestNormalizeRoutes(t *testing.T) {
	ts := setupTestServer(t, Options{}, nil)

	rr := ts.do(t, http.MethodGet, "/api/v1/normalize/date?value=45321", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var date struct {
		Date      string `json:"date"`
		Kind      string `json:"kind"`
		Canonical bool   `json:"canonical"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &date))
	assert.Equal(t, "2024-01-30", date.Date)
	assert.Equal(t, "serial", date.Kind)
	assert.True(t, date.Canonical)

	rr = ts.do(t, http.MethodGet, "/api/v1/normalize/date?value=sometime", nil, nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &date))
	assert.Equal(t, "unparsed", date.Kind)
	assert.False(t, date.Canonical)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t, Options{MetricsEnabled: true}, nil)

	ts.do(t, http.MethodGet, "/api/v1/tournaments", nil, nil)

	rr := ts.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
	assert.Contains(t, rr.Body.String(), `route="/api/v1/tournaments"`)
}

func TestMetricsDisabled(t *testing.T) {
	ts := setupTestServer(t, Options{}, nil)

	rr := ts.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOpenAPIDocument(t *testing.T) {
	ts := setupTestServer(t, Options{}, nil)

	rr := ts.do(t, http.MethodGet, "/openapi.json", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "createRegistration")
	assert.Contains(t, rr.Body.String(), "adminKey")
}

func TestNormalizeTableRoute(t *testing.T) {
	ts := setupTestServer(t, Options{}, nil)

	var got struct {
		Table       string `json:"table"`
		DisplayName string `json:"display_name"`
	}

	for _, name := range []string{"CDC%20Tournament%203%20(2025)", "cdc_tournament_3_2025_games"} {
		rr := ts.do(t, http.MethodGet, "/api/v1/normalize/table?name="+name, nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "cdc_tournament_3_2025_games", got.Table)
		assert.Equal(t, "Cdc Tournament 3 2025", got.DisplayName)
	}
}
