package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"jobboard-engine/internal/events"
	"jobboard-engine/internal/scheduler"
)

var ErrRunning = errors.New("poll already running")

// Poller serializes runs and keeps the last Status for /refresh/status.
type Poller struct {
	deps Deps

	mu     sync.Mutex
	status Status
}

func New(d Deps) *Poller {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Poller{deps: d}
}

func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Run polls once. It returns ErrRunning instead of waiting when another run
// is in progress.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.status.Running {
		p.mu.Unlock()
		return ErrRunning
	}
	prev := p.status
	p.status.Running = true
	p.status.LastRunAt = time.Now().UTC().Format(time.RFC3339)
	p.mu.Unlock()

	st, err := PollOnce(ctx, p.deps)

	if st.LastOkAt == "" {
		st.LastOkAt = prev.LastOkAt
	}
	st.Running = false

	p.mu.Lock()
	p.status = st
	p.mu.Unlock()

	if err != nil {
		p.deps.Log.Error("poll failed", zap.Error(err))
		if p.deps.Hub != nil {
			p.deps.Hub.Publish(events.MakeEvent("", events.TypePollFailed, 1, map[string]string{"error": err.Error()}))
		}
		return err
	}
	p.deps.Log.Info("poll ok", zap.Int("changed", st.LastAdded))
	return nil
}

// Start polls on interval until ctx is cancelled. It blocks.
func (p *Poller) Start(ctx context.Context, interval time.Duration) {
	// Run logs its own failures
	scheduler.Every(ctx, interval, "poll", p.deps.Log, func(ctx context.Context) error {
		_ = p.Run(ctx)
		return nil
	})
}

// Start is shorthand for New(d).Start.
func Start(ctx context.Context, d Deps, interval time.Duration) *Poller {
	p := New(d)
	go p.Start(ctx, interval)
	return p
}
