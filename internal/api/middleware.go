package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kgdevtools/lca-auth-sub003/internal/http/response"
	"github.com/kgdevtools/lca-auth-sub003/internal/logger"
)

const (
	adminKeyHeader = "X-Admin-Key"
	adminPrefix    = "/api/v1/admin/"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const clientIPKey ctxKey = "clientIP"

// clientIPMiddleware stores the caller's address for rate limiting.
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP returns the address stored by clientIPMiddleware.
func clientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}
	return ""
}

// requestLogger attaches a logger carrying the request id to the context.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), reqLog)))
	})
}

// requireAdminKey guards the admin routes with a shared key. Without a
// configured key the admin routes are switched off.
func (s *Server) requireAdminKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, adminPrefix) || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if s.opts.AdminKey == "" {
			response.Forbidden(w, "Admin endpoints are disabled", s.logger)
			return
		}

		key := r.Header.Get(adminKeyHeader)
		if key == "" {
			response.Unauthorized(w, "Missing admin key", s.logger)
			return
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.AdminKey)) != 1 {
			logger.FromContext(r.Context(), s.logger).Warn("rejected admin request",
				"ip", clientIP(r.Context()),
				"path", r.URL.Path,
			)
			response.Unauthorized(w, "Invalid admin key", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware counts requests by route pattern and status.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequest(r.Method, route, status, time.Since(start))

		logger.FromContext(r.Context(), s.logger).Debug("request handled",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
		)
	})
}
