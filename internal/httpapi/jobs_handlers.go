package httpapi

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"jobboard-engine/internal/board"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/store"
)

type JobsHandler struct {
	DB    *sql.DB
	Board *board.Service
	Hub   *events.Hub
}

func (h JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	ok, err := store.DeleteJob(r.Context(), h.DB, id)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	if !ok {
		WriteError(w, r, http.StatusNotFound, "not_found", "no job with id "+id)
		return
	}
	h.Board.Invalidate()

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeJobDeleted, 1, map[string]any{"id": id}))
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}
