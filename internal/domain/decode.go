package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// looseID accepts a JSON string, number or null. Producers are not
// consistent about id types and the value is only ever used as a key.
type looseID string

func (id *looseID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = looseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: want string or number, got %s", b)
	}
	*id = looseID(n.String())
	return nil
}

// The outer ID shadows the embedded one. Job itself keeps the default
// decoding so types that embed it are not affected.
type looseJob struct {
	Job
	ID looseID `json:"id"`
}

type looseNews struct {
	NewsItem
	ID looseID `json:"id"`
}

// DecodeJobs reads a JSON array of jobs. Numeric ids are kept as their
// decimal text.
func DecodeJobs(r io.Reader) ([]Job, error) {
	var raw []looseJob
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]Job, len(raw))
	for i, l := range raw {
		out[i] = l.Job
		out[i].ID = string(l.ID)
	}
	return out, nil
}

// DecodeNews is DecodeJobs for announcements.
func DecodeNews(r io.Reader) ([]NewsItem, error) {
	var raw []looseNews
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]NewsItem, len(raw))
	for i, l := range raw {
		out[i] = l.NewsItem
		out[i].ID = string(l.ID)
	}
	return out, nil
}
