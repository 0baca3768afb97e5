package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"jobboard-engine/internal/board"
	"jobboard-engine/internal/config"
	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/listing"
	"jobboard-engine/internal/poll"
	"jobboard-engine/internal/secrets"
	"jobboard-engine/internal/store"
)

type fakePoller struct {
	mu      sync.Mutex
	running bool
	runs    int
}

func (p *fakePoller) Run(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs++
	return nil
}

func (p *fakePoller) Status() poll.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return poll.Status{Running: p.running, LastAdded: 7}
}

func (p *fakePoller) Runs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

type testEnv struct {
	h      http.Handler
	db     *store.DB
	hub    *events.Hub
	poller *fakePoller
	cfgVal *atomic.Value
	cfgPth string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfgPath := filepath.Join(dir, "config.yml")
	require.NoError(t, config.SaveAtomic(cfgPath, config.Default()))
	cfgVal := &atomic.Value{}
	cfgVal.Store(config.Default())

	env := &testEnv{
		db:     db,
		hub:    events.NewHub(),
		poller: &fakePoller{},
		cfgVal: cfgVal,
		cfgPth: cfgPath,
	}
	env.h = NewRouter(Deps{
		DB:          db.Pool,
		Board:       board.New(db.Pool, nil),
		Hub:         env.hub,
		CfgVal:      cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
		Poller:      env.poller,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func seedJobs(t *testing.T, db *store.DB) {
	t.Helper()
	_, err := store.UpsertJobs(context.Background(), db.Pool, []domain.Job{
		{ID: "1", Company: "Acme", Tier: "megajob", Source: domain.SourceOnline, Featured: true, PostedDate: "2024-01-01"},
		{ID: "2", Company: "Acme", Tier: "megajob", Source: domain.SourceOnline, PostedDate: "2024-03-01"},
		{ID: "3", Company: "Gazette", Tier: "newspaper_job", Source: domain.SourceNewspaper, PublishedDate: "2024-02-01"},
		{ID: "4", Company: "Corner Shop", Tier: "latest_job", Source: domain.SourceOnline, PublishedDate: "2024-02-02"},
	})
	require.NoError(t, err)
}

func TestHealthAndRequestID(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
	require.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	env.h.ServeHTTP(rec, req)
	require.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestListings(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	seedJobs(t, env.db)

	rec := env.do(t, http.MethodGet, "/listings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var all map[string][]listing.Representative
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 5)
	require.Len(t, all["megajob"], 1)
	require.Equal(t, "1", all["megajob"][0].ID)
	require.Equal(t, 2, all["megajob"][0].CompanyJobCount)
	require.Len(t, all["newspaper"], 1)
	require.Len(t, all["latest"], 1)
	require.Empty(t, all["premium"])

	rec = env.do(t, http.MethodGet, "/listings/NEWSPAPER_JOB", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var one struct {
		Tier            string                   `json:"tier"`
		Representatives []listing.Representative `json:"representatives"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	require.Equal(t, "newspaper", one.Tier)
	require.Len(t, one.Representatives, 1)

	rec = env.do(t, http.MethodGet, "/listings/gold", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	require.Equal(t, "unknown_tier", apiErr.Error.Code)
	require.NotEmpty(t, apiErr.Error.RequestID)
}

func TestDeleteJobInvalidatesBoard(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	seedJobs(t, env.db)
	sub := env.hub.Subscribe()

	rec := env.do(t, http.MethodGet, "/listings/megajob", nil)
	require.Contains(t, rec.Body.String(), `"companyJobCount":2`)

	rec = env.do(t, http.MethodDelete, "/jobs/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, <-sub, events.TypeJobDeleted)

	rec = env.do(t, http.MethodGet, "/listings/megajob", nil)
	require.Contains(t, rec.Body.String(), `"companyJobCount":1`)

	rec = env.do(t, http.MethodDelete, "/jobs/2", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNews(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	_, err := store.UpsertNews(context.Background(), env.db.Pool, []domain.NewsItem{
		{ID: "a", Title: "Old video", Type: domain.NewsTypeYouTube, Link: "https://youtube.com/watch?v=Q", UpdatedAt: "2024-01-01", CreatedAt: "2024-01-01"},
		{ID: "b", Title: "New video", Type: domain.NewsTypeYouTube, Link: "https://youtu.be/Q", UpdatedAt: "2024-02-01", CreatedAt: "2024-02-01"},
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/news", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []domain.NewsItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.Equal(t, "b", items[0].ID)
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/refresh", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Eventually(t, func() bool { return env.poller.Runs() == 1 }, time.Second, time.Millisecond)

	rec = env.do(t, http.MethodGet, "/refresh/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"last_added":7`)

	env.poller.mu.Lock()
	env.poller.running = true
	env.poller.mu.Unlock()
	rec = env.do(t, http.MethodPost, "/refresh", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/refresh", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestConfigGetPutValidate(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	rec := env.do(t, http.MethodGet, "/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg config.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	require.Equal(t, 38471, cfg.App.Port)

	cfg.Feeds = []config.FeedSource{{URL: "https://example.com/rss"}}
	body, _ := json.Marshal(cfg)
	rec = env.do(t, http.MethodPut, "/config", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := env.cfgVal.Load().(config.Config)
	require.Len(t, saved.Feeds, 1)
	require.Equal(t, "example.com", saved.Feeds[0].Name)

	cfg.App.Port = 0
	body, _ = json.Marshal(cfg)
	rec = env.do(t, http.MethodPut, "/config", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var vr config.Validation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vr))
	require.Contains(t, vr.Errors, "app.port must be 1..65535")

	rec = env.do(t, http.MethodPut, "/config", []byte(`{"bogus":1}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_json")

	rec = env.do(t, http.MethodGet, "/config/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"errors"`)

	rec = env.do(t, http.MethodGet, "/config/path", nil)
	require.Contains(t, rec.Body.String(), "config.yml")
}

func TestSecretsToken(t *testing.T) {
	keyring.MockInit()
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/secrets/token", []byte(`{"token":"tok-1"}`))
	require.Equal(t, http.StatusNoContent, rec.Code)
	got, err := secrets.GetServiceToken(config.Default().Service.KeyringAccount)
	require.NoError(t, err)
	require.Equal(t, "tok-1", got)

	rec = env.do(t, http.MethodPost, "/api/secrets/token", []byte(`{"token":""}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/secrets/token", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCheckpointLoopbackOnly(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/db/checkpoint", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/db/checkpoint", nil)
	req.RemoteAddr = "127.0.0.1:50000"
	rec = httptest.NewRecorder()
	env.h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCorsPreflight(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/listings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	env.h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecover(t *testing.T) {
	t.Parallel()

	h := RequestID(Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal_error")
}

func TestEventsStream(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	srv := httptest.NewServer(env.h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	next := func() string {
		for sc.Scan() {
			if line := sc.Text(); strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(line, "data: ")
			}
		}
		return ""
	}

	require.Contains(t, next(), events.TypeHello)
	env.hub.Publish(events.MakeEvent("", events.TypeListingsUpdated, 1, nil))
	require.Contains(t, next(), events.TypeListingsUpdated)
}
