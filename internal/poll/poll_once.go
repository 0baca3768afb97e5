package poll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobboard-engine/internal/events"
	"jobboard-engine/internal/ingest"
	"jobboard-engine/internal/metrics"
	"jobboard-engine/internal/store"
)

const defaultSourceTimeout = 2 * time.Minute

// Invalidator is told when stored records change.
type Invalidator interface {
	Invalidate()
}

type Deps struct {
	DB       *sql.DB
	Fetchers func() []ingest.Fetcher
	Board    Invalidator
	Hub      *events.Hub
	Log      *zap.Logger

	// SourceTimeout bounds each fetcher. Zero means two minutes.
	SourceTimeout time.Duration
	// RetentionDays prunes jobs older than this after each run; 0 keeps all.
	RetentionDays func() int
}

// Status reports the last poll. Times are RFC3339.
type Status struct {
	Running   bool           `json:"running"`
	LastRunAt string         `json:"last_run_at,omitempty"`
	LastOkAt  string         `json:"last_ok_at,omitempty"`
	LastError string         `json:"last_error,omitempty"`
	LastAdded int            `json:"last_added"`
	Sources   map[string]int `json:"sources,omitempty"`
}

type sourceResult struct {
	res ingest.Result
	err error
	dur time.Duration
}

// PollOnce fetches every source concurrently and stores what came back. A
// failing source does not stop the others; PollOnce only fails when every
// source failed or the store rejected the results.
func PollOnce(ctx context.Context, d Deps) (Status, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	st := Status{LastRunAt: time.Now().UTC().Format(time.RFC3339), Sources: map[string]int{}}

	var fetchers []ingest.Fetcher
	if d.Fetchers != nil {
		fetchers = d.Fetchers()
	}
	if len(fetchers) == 0 {
		log.Debug("poll skipped: no sources enabled")
		st.LastOkAt = st.LastRunAt
		return st, nil
	}

	timeout := d.SourceTimeout
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}

	results := make([]sourceResult, len(fetchers))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fetchers {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			start := time.Now()
			res, err := f.Fetch(fctx)
			results[i] = sourceResult{res: res, err: err, dur: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	var (
		failed    []error
		storeErrs []error
		changed   int
	)
	for i, r := range results {
		name := fetchers[i].Name()
		if r.err != nil {
			metrics.ObservePoll(name, "error")
			log.Warn("source fetch failed", zap.String("source", name), zap.Duration("took", r.dur), zap.Error(r.err))
			failed = append(failed, fmt.Errorf("%s: %w", name, r.err))
			continue
		}
		metrics.ObservePoll(name, "ok")

		// Each upsert commits on its own, so a later failure must not hide
		// rows that already landed.
		nj, err := store.UpsertJobs(ctx, d.DB, r.res.Jobs)
		if err != nil {
			log.Error("store jobs failed", zap.String("source", name), zap.Error(err))
			storeErrs = append(storeErrs, fmt.Errorf("store %s jobs: %w", name, err))
			continue
		}
		metrics.ObserveChanged("jobs", nj)
		st.Sources[name] = nj
		changed += nj

		nn, err := store.UpsertNews(ctx, d.DB, r.res.News)
		if err != nil {
			log.Error("store news failed", zap.String("source", name), zap.Error(err))
			storeErrs = append(storeErrs, fmt.Errorf("store %s news: %w", name, err))
			continue
		}
		metrics.ObserveChanged("news", nn)
		st.Sources[name] += nn
		changed += nn

		log.Info("source fetched",
			zap.String("source", name),
			zap.Int("jobs", len(r.res.Jobs)),
			zap.Int("news", len(r.res.News)),
			zap.Int("changed", nj+nn),
			zap.Duration("took", r.dur),
		)
	}

	var pruned int64
	if d.RetentionDays != nil {
		n, err := store.CleanupOldJobs(ctx, d.DB, d.RetentionDays())
		if err != nil {
			log.Warn("job retention cleanup failed", zap.Error(err))
		}
		pruned = n
	}

	st.LastAdded = changed
	if changed > 0 || pruned > 0 {
		if d.Board != nil {
			d.Board.Invalidate()
		}
		if d.Hub != nil {
			d.Hub.Publish(events.MakeEvent("", events.TypeListingsUpdated, 1, map[string]any{
				"changed": changed,
				"pruned":  pruned,
			}))
		}
	}

	if len(storeErrs) > 0 {
		err := errors.Join(append(storeErrs, failed...)...)
		st.LastError = err.Error()
		return st, err
	}
	if len(failed) == len(fetchers) {
		err := errors.Join(failed...)
		st.LastError = err.Error()
		return st, err
	}
	if len(failed) > 0 {
		st.LastError = errors.Join(failed...).Error()
	}
	st.LastOkAt = time.Now().UTC().Format(time.RFC3339)
	return st, nil
}
