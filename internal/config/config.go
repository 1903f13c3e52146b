package config

import (
	"fmt"
	"strings"

	"github.com/ping13/star-collector/pkg/config"
)

// DefaultItemLimit is used when FEED_ITEM_LIMIT is absent or not a positive
// integer.
const DefaultItemLimit = 5

// FeedConfig carries everything the feed pipeline needs. It is loaded once
// per process and passed explicitly to the components that use it; there is
// no ambient credential lookup anywhere below this point.
type FeedConfig struct {
	AccessToken     string
	InstanceBaseURL string
	Username        string
	ItemLimit       int

	// PublicOnly drops statuses whose visibility is not public.
	PublicOnly bool

	// ExtraFeedURLs lists additional RSS/Atom feeds merged into the output.
	ExtraFeedURLs []string

	// SelfURL overrides the feed's self link; the HTTP handler normally
	// derives it from the inbound request, the export CLI from this value.
	SelfURL string
}

// Load reads the feed configuration from the environment. A missing required
// field is a fatal configuration error, reported before any network activity.
func Load() (FeedConfig, error) {
	cfg := FeedConfig{
		AccessToken:     config.GetEnv("MASTODON_ACCESS_TOKEN", ""),
		InstanceBaseURL: strings.TrimRight(config.GetEnv("MASTODON_INSTANCE", ""), "/"),
		Username:        config.GetEnv("MASTODON_USERNAME", ""),
		ItemLimit:       config.GetEnvInt("FEED_ITEM_LIMIT", DefaultItemLimit),
		PublicOnly:      config.GetEnvBool("FEED_PUBLIC_ONLY", false),
		SelfURL:         config.GetEnv("FEED_SELF_URL", ""),
	}

	required := map[string]string{
		"MASTODON_ACCESS_TOKEN": cfg.AccessToken,
		"MASTODON_INSTANCE":     cfg.InstanceBaseURL,
		"MASTODON_USERNAME":     cfg.Username,
	}
	for _, key := range []string{"MASTODON_ACCESS_TOKEN", "MASTODON_INSTANCE", "MASTODON_USERNAME"} {
		if required[key] == "" {
			return FeedConfig{}, fmt.Errorf("missing or empty %s", key)
		}
	}

	if cfg.ItemLimit <= 0 {
		cfg.ItemLimit = DefaultItemLimit
	}

	if raw := config.GetEnv("EXTRA_FEED_URLS", ""); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.ExtraFeedURLs = append(cfg.ExtraFeedURLs, u)
			}
		}
	}

	return cfg, nil
}

// ChannelLink is the feed channel's link, the user's profile page.
func (c FeedConfig) ChannelLink() string {
	return fmt.Sprintf("%s/@%s", c.InstanceBaseURL, c.Username)
}
