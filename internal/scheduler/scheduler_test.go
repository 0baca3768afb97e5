package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEveryRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	done := make(chan struct{})
	go func() {
		Every(ctx, 5*time.Millisecond, "tick", nil, func(context.Context) error {
			if n.Add(1) == 3 {
				cancel()
			}
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Every did not stop after cancel")
	}
	require.GreaterOrEqual(t, n.Load(), int32(3))
}

func TestEveryLogsErrors(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	Every(ctx, time.Hour, "poll", zap.New(core), func(context.Context) error {
		return errors.New("boom")
	})

	entries := logs.FilterMessage("scheduled task failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, "poll", entries[0].ContextMap()["task"])
}
