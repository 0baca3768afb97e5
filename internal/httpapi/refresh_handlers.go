package httpapi

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"jobboard-engine/internal/poll"
)

type RefreshHandler struct {
	Poller  Refresher
	BaseCtx context.Context
	Log     *zap.Logger
}

func (h RefreshHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Poller.Status())
}

// Run starts a poll in the background and answers right away.
func (h RefreshHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Poller.Status().Running {
		WriteError(w, r, http.StatusConflict, "already_running", "a refresh is already running")
		return
	}

	reqID := RequestIDFrom(r.Context())
	go func() {
		err := h.Poller.Run(h.BaseCtx)
		if errors.Is(err, poll.ErrRunning) {
			h.Log.Info("refresh skipped: poll already running", zap.String("request_id", reqID))
		}
	}()
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
