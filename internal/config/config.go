// engine/internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FeedSource is an RSS/Atom announcement feed.
type FeedSource struct {
	Name   string `yaml:"name" json:"name"`
	URL    string `yaml:"url" json:"url"`
	Pinned bool   `yaml:"pinned" json:"pinned"`
}

type Config struct {
	App struct {
		Port        int    `yaml:"port" json:"port"`
		DataDir     string `yaml:"data_dir" json:"data_dir"`
		Development bool   `yaml:"development" json:"development"`
	} `yaml:"app" json:"app"`

	// Service is the remote data service the listings come from.
	Service struct {
		Enabled           bool    `yaml:"enabled" json:"enabled"`
		BaseURL           string  `yaml:"base_url" json:"base_url"`
		JobsPath          string  `yaml:"jobs_path" json:"jobs_path"`
		NewsPath          string  `yaml:"news_path" json:"news_path"`
		TimeoutSeconds    int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst             int     `yaml:"burst" json:"burst"`
		KeyringAccount    string  `yaml:"keyring_account" json:"keyring_account"`
	} `yaml:"service" json:"service"`

	Feeds []FeedSource `yaml:"feeds,omitempty" json:"feeds"`

	Polling struct {
		IntervalSeconds int `yaml:"interval_seconds" json:"interval_seconds"`
	} `yaml:"polling" json:"polling"`

	Retention struct {
		JobDays int `yaml:"job_days" json:"job_days"`
	} `yaml:"retention" json:"retention"`
}

// Default is used for any field a config file leaves out.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.App.Development = true
	cfg.Service.JobsPath = "/api/jobs"
	cfg.Service.NewsPath = "/api/news"
	cfg.Service.TimeoutSeconds = 15
	cfg.Service.RequestsPerSecond = 1
	cfg.Service.Burst = 2
	cfg.Service.KeyringAccount = "jobboard:service"
	cfg.Polling.IntervalSeconds = 300
	cfg.Retention.JobDays = 90
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalSeconds) * time.Second
}

func (c Config) ServiceTimeout() time.Duration {
	return time.Duration(c.Service.TimeoutSeconds) * time.Second
}
