package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong
// with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.Service.BaseURL = strings.TrimRight(strings.TrimSpace(out.Service.BaseURL), "/")

	// feeds: trim, drop blanks, dedupe by URL (case-insensitive)
	seen := map[string]bool{}
	var feeds []FeedSource
	for _, f := range out.Feeds {
		f.Name = strings.TrimSpace(f.Name)
		f.URL = strings.TrimSpace(f.URL)
		if f.URL == "" {
			continue
		}
		key := strings.ToLower(f.URL)
		if seen[key] {
			res.addWarn("feed %q listed twice; keeping the first entry", f.URL)
			continue
		}
		seen[key] = true
		if f.Name == "" {
			f.Name = hostOf(f.URL)
		}
		feeds = append(feeds, f)
	}
	out.Feeds = feeds

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Service.Enabled {
		if out.Service.BaseURL == "" {
			res.addErr("service.base_url is required when service.enabled=true")
		} else if u, err := url.Parse(out.Service.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("service.base_url %q is not an absolute URL", out.Service.BaseURL)
		}
		if !strings.HasPrefix(out.Service.JobsPath, "/") {
			res.addErr("service.jobs_path must start with /")
		}
		if out.Service.NewsPath != "" && !strings.HasPrefix(out.Service.NewsPath, "/") {
			res.addErr("service.news_path must start with / (or be empty to skip news)")
		}
	}
	if out.Service.TimeoutSeconds <= 0 {
		res.addErr("service.timeout_seconds must be > 0")
	}
	if out.Service.RequestsPerSecond <= 0 {
		res.addErr("service.requests_per_second must be > 0")
	}
	if out.Service.Burst <= 0 {
		res.addErr("service.burst must be > 0")
	}

	for i, f := range out.Feeds {
		if u, err := url.Parse(f.URL); err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("feeds[%d].url %q is not an absolute URL", i, f.URL)
		}
	}

	if out.Polling.IntervalSeconds <= 0 {
		res.addErr("polling.interval_seconds must be > 0")
	} else if out.Polling.IntervalSeconds < 30 {
		res.addWarn("polling.interval_seconds is very low (%d) and may hammer the data service.", out.Polling.IntervalSeconds)
	}

	if out.Retention.JobDays < 0 {
		res.addErr("retention.job_days must be >= 0 (0 keeps everything)")
	}

	if !out.Service.Enabled && len(out.Feeds) == 0 {
		res.addWarn("no sources enabled: listings stay empty until service.enabled=true or a feed is added")
	}

	return out, res
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
