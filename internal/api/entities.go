package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/adaptive-cover/internal/audit"
	"github.com/nerrad567/adaptive-cover/internal/auth"
	"github.com/nerrad567/adaptive-cover/internal/coordinator"
	"github.com/nerrad567/adaptive-cover/internal/entity"
)

// setValueRequest is the body of PUT /entities/{id}/value.
type setValueRequest struct {
	Value *float64 `json:"value"`
}

// coverResponse is the body of GET /entries/{id}/cover.
type coverResponse struct {
	EntryID           string            `json:"entry_id"`
	LastUpdateSuccess bool              `json:"last_update_success"`
	DistanceOverride  *float64          `json:"distance_override"`
	Data              *coordinator.Data `json:"data"`
}

func (s *Server) handleListEntities(w http.ResponseWriter, _ *http.Request) {
	states := s.entities.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"entities": states,
		"count":    len(states),
	})
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	st, err := s.entities.State(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEntityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSetEntityValue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "value is required")
		return
	}

	actor := audit.Actor{Source: audit.SourceAPI}
	if claims, ok := r.Context().Value(ctxKeyClaims).(*auth.CustomClaims); ok {
		actor.Subject = claims.Subject
	}
	ctx := audit.WithActor(r.Context(), actor)

	if err := s.entities.SetValue(ctx, id, *req.Value); err != nil {
		s.writeEntityError(w, r, err)
		return
	}

	st, err := s.entities.State(id)
	if err != nil {
		s.writeEntityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetCover(w http.ResponseWriter, r *http.Request) {
	c, err := s.covers.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, coordinator.ErrCoordinatorNotFound) {
			writeNotFound(w, "entry not found")
			return
		}
		writeInternalError(w, "looking up entry")
		return
	}

	resp := coverResponse{
		EntryID:           c.Entry().ID,
		LastUpdateSuccess: c.LastUpdateSuccess(),
		DistanceOverride:  c.DistanceOverride(),
	}
	if data, ok := c.Data(); ok {
		resp.Data = &data
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeEntityError maps platform and coordinator errors to HTTP statuses.
func (s *Server) writeEntityError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrEntityNotFound):
		writeNotFound(w, "entity not found")
	case errors.Is(err, entity.ErrOutOfRange), errors.Is(err, entity.ErrInvalidStep):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, entity.ErrNotAttached):
		writeError(w, http.StatusConflict, ErrCodeConflict, "entity is not ready yet")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, ErrCodeCancelled, "request ended before the value was applied")
	case errors.Is(err, coordinator.ErrUpdateFailed):
		s.logger.Warn("cover refresh failed", "error", err, "request_id", r.Context().Value(ctxKeyRequestID))
		writeError(w, http.StatusBadGateway, ErrCodeRefreshFailed, "cover refresh failed")
	default:
		s.logger.Error("entity request failed", "error", err, "request_id", r.Context().Value(ctxKeyRequestID))
		writeInternalError(w, "internal server error")
	}
}
