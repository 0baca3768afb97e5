package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  port: 40000
  development: false
service:
  enabled: true
  base_url: "https://data.example.com/"
  timeout_seconds: 5
feeds:
  - name: board
    url: https://example.com/feed.xml
    pinned: true
polling:
  interval_seconds: 120
`

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 40000, cfg.App.Port)
	require.False(t, cfg.App.Development)
	require.Equal(t, "/api/jobs", cfg.Service.JobsPath)
	require.Equal(t, 2, cfg.Service.Burst)
	require.Equal(t, 90, cfg.Retention.JobDays)
	require.Len(t, cfg.Feeds, 1)
	require.True(t, cfg.Feeds[0].Pinned)
	require.Equal(t, int64(120), int64(cfg.PollInterval().Seconds()))
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("app: [1, 2"), 0o644))
	_, err = Load(bad)
	require.ErrorContains(t, err, "parse config")
}

func TestNormalizeAndValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Service.Enabled = true
	cfg.Service.BaseURL = " https://data.example.com/// "
	cfg.Feeds = []FeedSource{
		{URL: " https://www.news.example.com/rss "},
		{URL: "HTTPS://WWW.NEWS.EXAMPLE.COM/RSS"},
		{URL: ""},
	}

	out, vr := NormalizeAndValidate(cfg)
	require.True(t, vr.OK(), vr.Errors)
	require.Equal(t, "https://data.example.com", out.Service.BaseURL)
	require.Len(t, out.Feeds, 1)
	require.Equal(t, "news.example.com", out.Feeds[0].Name)
	require.Len(t, vr.Warnings, 1)

	cfg = Default()
	cfg.App.Port = 0
	cfg.Service.Enabled = true
	cfg.Service.JobsPath = "jobs"
	cfg.Polling.IntervalSeconds = 0
	_, vr = NormalizeAndValidate(cfg)
	require.False(t, vr.OK())
	require.Contains(t, vr.Errors, "app.port must be 1..65535")
	require.Contains(t, vr.Errors, "service.base_url is required when service.enabled=true")
	require.Contains(t, vr.Errors, "service.jobs_path must start with /")
	require.Contains(t, vr.Errors, "polling.interval_seconds must be > 0")
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	first := Default()
	require.NoError(t, SaveAtomic(path, first))

	second := Default()
	second.App.Port = 41000
	require.NoError(t, SaveAtomic(path, second))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 41000, got.App.Port)

	bak, err := Load(path + ".bak")
	require.NoError(t, err)
	require.Equal(t, first.App.Port, bak.App.Port)

	invalid := Default()
	invalid.App.Port = -1
	require.ErrorContains(t, SaveAtomic(path, invalid), "app.port")
}

func TestEnsureUserConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	def := filepath.Join(t.TempDir(), "default.yml")
	require.NoError(t, os.WriteFile(def, []byte(sampleYAML), 0o644))

	path, err := EnsureUserConfig(dir, def)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "config.yml"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, sampleYAML, string(b))

	// existing user config is left alone
	require.NoError(t, os.WriteFile(def, []byte("app: {port: 1}"), 0o644))
	_, err = EnsureUserConfig(dir, def)
	require.NoError(t, err)
	b, _ = os.ReadFile(path)
	require.Equal(t, sampleYAML, string(b))

	// no default shipped: write the built-in defaults
	other := t.TempDir()
	path, err = EnsureUserConfig(other, filepath.Join(other, "nope.yml"))
	require.NoError(t, err)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestOverlayFeeds(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, OverlayFeeds(&cfg, filepath.Join(t.TempDir(), "absent.yml")))
	require.Empty(t, cfg.Feeds)

	path := filepath.Join(t.TempDir(), "feeds.yml")
	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - name: a\n    url: https://a.example.com/rss\n"), 0o644))
	require.NoError(t, OverlayFeeds(&cfg, path))
	require.Equal(t, []FeedSource{{Name: "a", URL: "https://a.example.com/rss"}}, cfg.Feeds)
}
