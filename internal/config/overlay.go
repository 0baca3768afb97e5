// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// FeedsFile is the optional feeds.yml kept next to config.yml so the feed
// list can be edited without touching the rest of the config.
type FeedsFile struct {
	Feeds []FeedSource `yaml:"feeds"`
}

func OverlayFeeds(cfg *Config, feedsPath string) error {
	b, err := os.ReadFile(feedsPath)
	if err != nil {
		// Missing feeds file should not kill startup
		return nil
	}

	var ff FeedsFile
	if err := yaml.Unmarshal(b, &ff); err != nil {
		return err
	}

	if len(ff.Feeds) > 0 {
		cfg.Feeds = ff.Feeds
	}
	return nil
}
