package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobboard-engine/internal/board"
	"jobboard-engine/internal/tier"
)

type ListingsHandler struct {
	Board *board.Service
}

// All returns every canonical tier, each mapped to its representatives.
func (h ListingsHandler) All(w http.ResponseWriter, r *http.Request) {
	b, err := h.Board.Listings(r.Context())
	if err != nil {
		writeBoardError(w, r, "listings_failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, b)
}

// Tier accepts canonical names and aliases like latest_job.
func (h ListingsHandler) Tier(w http.ResponseWriter, r *http.Request) {
	t, ok := tier.Normalize(chi.URLParam(r, "tier"))
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_tier", "unknown tier "+chi.URLParam(r, "tier"))
		return
	}
	reps, err := h.Board.Tier(r.Context(), t)
	if err != nil {
		writeBoardError(w, r, "listings_failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"tier":            t,
		"representatives": reps,
	})
}

func (h ListingsHandler) News(w http.ResponseWriter, r *http.Request) {
	items, err := h.Board.News(r.Context())
	if err != nil {
		writeBoardError(w, r, "news_failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}
