package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/adaptive-cover/internal/audit"
)

// handleListAudit returns a page of value-change logs.
// Query parameters: entity_id, source, limit, offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{
		EntityID: q.Get("entity_id"),
		Source:   q.Get("source"),
	}

	var err error
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil {
			writeBadRequest(w, "offset must be an integer")
			return
		}
	}

	res, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit logs", "error", err, "request_id", r.Context().Value(ctxKeyRequestID))
		writeInternalError(w, "listing audit logs")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
