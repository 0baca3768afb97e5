// Package remote pulls job and announcement records from the data service.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/ingest"
)

const userAgent = "JobBoard/1.0 (+local)"

// the service never sends payloads anywhere near this; larger bodies are
// treated as a broken upstream
const maxBody = 32 << 20

var ErrNoToken = errors.New("remote: service token not configured")

type Config struct {
	BaseURL  string
	JobsPath string
	NewsPath string // empty skips announcements
	Timeout  time.Duration
}

// TokenFunc returns the bearer token for the service. An empty token sends
// the request unauthenticated.
type TokenFunc func() (string, error)

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *ingest.HostLimiter
	token   TokenFunc
}

func New(cfg Config, limiter *ingest.HostLimiter, token TokenFunc) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		token:   token,
	}
}

func (c *Client) Name() string { return "service" }

// Fetch implements ingest.Fetcher. News is skipped when no path is set.
func (c *Client) Fetch(ctx context.Context) (ingest.Result, error) {
	res := ingest.Result{Source: c.Name()}

	jobs, err := c.FetchJobs(ctx)
	if err != nil {
		return res, err
	}
	res.Jobs = jobs

	if c.cfg.NewsPath == "" {
		return res, nil
	}
	items, err := c.FetchNews(ctx)
	if err != nil {
		return res, err
	}
	for i := range items {
		if items[i].Source == "" {
			items[i].Source = c.Name()
		}
	}
	res.News = items
	return res, nil
}

func (c *Client) FetchJobs(ctx context.Context) ([]domain.Job, error) {
	var out []domain.Job
	err := c.getJSON(ctx, c.cfg.JobsPath, func(r io.Reader) (err error) {
		out, err = domain.DecodeJobs(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch jobs: %w", err)
	}
	return out, nil
}

func (c *Client) FetchNews(ctx context.Context) ([]domain.NewsItem, error) {
	var out []domain.NewsItem
	err := c.getJSON(ctx, c.cfg.NewsPath, func(r io.Reader) (err error) {
		out, err = domain.DecodeNews(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, decode func(io.Reader) error) error {
	u := c.cfg.BaseURL + path
	if err := c.limiter.WaitURL(ctx, u); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	if c.token != nil {
		tok, err := c.token()
		if err != nil {
			return fmt.Errorf("service token: %w", err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := decode(io.LimitReader(resp.Body, maxBody)); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
