package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobboard-engine/internal/board"
	"jobboard-engine/internal/config"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/httpapi"
	"jobboard-engine/internal/ingest"
	"jobboard-engine/internal/ingest/feed"
	"jobboard-engine/internal/ingest/remote"
	"jobboard-engine/internal/logging"
	"jobboard-engine/internal/poll"
	"jobboard-engine/internal/secrets"
	"jobboard-engine/internal/store"
)

type serveOptions struct {
	dataDir       string
	defaultConfig string
}

func bindServeFlags(cmd *cobra.Command, o *serveOptions) {
	cmd.Flags().StringVar(&o.dataDir, "data-dir", "", "engine data directory (default $JOBBOARD_DATA_DIR or .)")
	cmd.Flags().StringVar(&o.defaultConfig, "default-config", filepath.Join("config", "config.yml"), "shipped config copied into the data dir on first run")
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine HTTP server and poller",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	bindServeFlags(cmd, opts)
	return cmd
}

func resolveDataDir(flag string) string {
	if flag != "" {
		return flag
	}
	// The desktop shell passes its app data dir.
	if d := os.Getenv("JOBBOARD_DATA_DIR"); d != "" {
		return d
	}
	return "."
}

func runServe(parent context.Context, o *serveOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	dataDir := resolveDataDir(o.dataDir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	lock, err := store.LockDataDir(dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	userCfgPath, err := config.EnsureUserConfig(dataDir, o.defaultConfig)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}
	feedsPath := filepath.Join(dataDir, "feeds.yml")

	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		if err := config.OverlayFeeds(&cfg, feedsPath); err != nil {
			return cfg, fmt.Errorf("feeds overlay: %w", err)
		}
		cfg, vr := config.NormalizeAndValidate(cfg)
		if !vr.OK() {
			return cfg, config.Validate(cfg)
		}
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)

	log, err := logging.New(cfg.App.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	_, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Warn("config", zap.String("warning", w))
	}

	dbPath := filepath.Join(dataDir, "jobboard.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub()
	svc := board.New(db.Pool, log.Named("board"))

	poller := poll.New(poll.Deps{
		DB: db.Pool,
		Fetchers: func() []ingest.Fetcher {
			return buildFetchers(cfgVal.Load().(config.Config))
		},
		Board: svc,
		Hub:   hub,
		Log:   log.Named("poll"),
		RetentionDays: func() int {
			return cfgVal.Load().(config.Config).Retention.JobDays
		},
	})
	go poller.Start(ctx, cfg.PollInterval())

	r := httpapi.NewRouter(httpapi.Deps{
		DB:          db.Pool,
		Board:       svc,
		Hub:         hub,
		Log:         log.Named("http"),
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		Poller:      poller,
		BaseCtx:     ctx,
	})

	token := os.Getenv("JOBBOARD_SHUTDOWN_TOKEN")
	if token == "" {
		if token, err = randomToken(32); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	r.Post("/shutdown", shutdownHandler(token, srv))

	// Bind to a predictable local port (simpler for the UI).
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Info("engine listening",
		zap.String("addr", "http://"+addr),
		zap.String("db", dbPath),
		zap.String("config", userCfgPath),
	)
	if os.Getenv("JOBBOARD_SHUTDOWN_TOKEN") == "" {
		// the parent process reads this line to learn the token
		fmt.Fprintf(os.Stdout, "SHUTDOWN_TOKEN=%s\n", token)
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("engine stopped")
	return nil
}

// buildFetchers turns the enabled sources into fetchers. One limiter is
// shared so feeds on the service host share its budget.
func buildFetchers(cfg config.Config) []ingest.Fetcher {
	limiter := ingest.NewHostLimiter(cfg.Service.RequestsPerSecond, cfg.Service.Burst)

	var out []ingest.Fetcher
	if cfg.Service.Enabled {
		out = append(out, remote.New(remote.Config{
			BaseURL:  cfg.Service.BaseURL,
			JobsPath: cfg.Service.JobsPath,
			NewsPath: cfg.Service.NewsPath,
			Timeout:  cfg.ServiceTimeout(),
		}, limiter, secrets.TokenFunc(cfg.Service.KeyringAccount)))
	}
	for _, f := range cfg.Feeds {
		out = append(out, feed.New(f, limiter))
	}
	return out
}
