package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"jobboard-engine/internal/board"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// WriteJSON encodes v as the response body with the given status. Encoding
// errors are dropped since the header is already out.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error envelope, tagged with the request id. An empty
// message becomes the status text.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeBoardError maps board failures onto the envelope. Anything it does
// not recognize is a 500 with the given code.
func writeBoardError(w http.ResponseWriter, r *http.Request, code string, err error) {
	switch {
	case errors.Is(err, board.ErrUnknownTier):
		WriteError(w, r, http.StatusNotFound, "unknown_tier", err.Error())
	case r.Context().Err() != nil:
		// client went away; nobody reads this
		WriteError(w, r, http.StatusServiceUnavailable, code, "")
	default:
		WriteError(w, r, http.StatusInternalServerError, code, err.Error())
	}
}
