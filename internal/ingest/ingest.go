// Package ingest defines the sources raw listings and announcements are
// pulled from.
package ingest

import (
	"context"

	"jobboard-engine/internal/domain"
)

type Result struct {
	Source string
	Jobs   []domain.Job
	News   []domain.NewsItem
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}
