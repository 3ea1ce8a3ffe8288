package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/adaptive-cover/internal/auth"
)

// healthCheckTimeout bounds all dependency checks of one /health request.
const healthCheckTimeout = 3 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.With(s.requirePermission(auth.PermEntityRead)).Get("/entities", s.handleListEntities)
			r.With(s.requirePermission(auth.PermEntityRead)).Get("/entities/{id}", s.handleGetEntity)
			r.With(s.requirePermission(auth.PermEntityWrite)).Put("/entities/{id}/value", s.handleSetEntityValue)

			r.With(s.requirePermission(auth.PermEntityRead)).Get("/entries/{id}/cover", s.handleGetCover)

			r.With(s.requirePermission(auth.PermEntityRead)).Get("/ws", s.handleWebSocket)

			if s.audit != nil {
				r.With(s.requirePermission(auth.PermSystemAdmin)).Get("/audit", s.handleListAudit)
			}
		})
	})

	return r
}

// handleHealth returns 200 when every dependency check passes, else 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}
