package events

import (
	"encoding/json"
	"time"
)

// Event types pushed over /events.
const (
	TypeHello           = "hello"
	TypeListingsUpdated = "listings_updated"
	TypeJobDeleted      = "job_deleted"
	TypeConfigUpdated   = "config_updated"
	TypePollFailed      = "poll_failed"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err == nil {
			raw = b
		}
	}
	b, _ := json.Marshal(Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	})
	return string(b)
}
