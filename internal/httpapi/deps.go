package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"go.uber.org/zap"

	"jobboard-engine/internal/board"
	"jobboard-engine/internal/config"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/poll"
)

// Refresher runs polls on demand.
type Refresher interface {
	Run(ctx context.Context) error
	Status() poll.Status
}

type Deps struct {
	DB    *sql.DB
	Board *board.Service
	Hub   *events.Hub
	Log   *zap.Logger

	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Poller Refresher

	// BaseCtx scopes background work started by handlers, like refreshes.
	BaseCtx context.Context
}
