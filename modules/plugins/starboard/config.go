package starboard

import (
	"fmt"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/pkg/errors"
)

const (
	defaultEmoji         = "⭐"
	defaultThreshold     = 3
	defaultReviewTimeout = 15 * time.Minute
)

// Config of the starboard, read from the "starboard" object of config.json
type Config struct {
	Emoji             Emoji
	Threshold         int
	ReviewChannelID   string
	PublicChannelID   string
	ModeratorIDs      []string
	Enabled           bool
	ReviewTimeout     time.Duration
	ReactorFetchLimit int
	ReactorCacheSize  int
	ReactorCacheTTL   time.Duration
}

// IsModerator returns true if userID may accept or deny entries
func (c Config) IsModerator(userID string) bool {
	for _, moderatorID := range c.ModeratorIDs {
		if moderatorID == userID {
			return true
		}
	}
	return false
}

// ConfigFromContainer reads the starboard settings below "starboard" in the bot config
func ConfigFromContainer(container *gabs.Container) (config Config, err error) {
	section := container.Path("starboard")
	if section.Data() == nil {
		return config, errors.New("no starboard section in config")
	}

	config = Config{
		Threshold:         defaultThreshold,
		Enabled:           true,
		ReviewTimeout:     defaultReviewTimeout,
		ReactorFetchLimit: defaultReactorFetchLimit,
		ReactorCacheSize:  defaultReactorCacheSize,
		ReactorCacheTTL:   defaultReactorCacheTTL,
	}

	emojiText := defaultEmoji
	if value, ok := section.Path("emoji").Data().(string); ok && value != "" {
		emojiText = value
	}
	config.Emoji, err = ParseEmoji(emojiText)
	if err != nil {
		return config, errors.Wrap(err, "invalid starboard.emoji")
	}

	if value, ok := section.Path("threshold").Data().(float64); ok {
		config.Threshold = int(value)
	}
	if config.Threshold < 1 {
		return config, errors.New("starboard.threshold has to be at least 1")
	}

	config.ReviewChannelID, _ = section.Path("review_channel_id").Data().(string)
	config.PublicChannelID, _ = section.Path("public_channel_id").Data().(string)
	if config.ReviewChannelID == "" || config.PublicChannelID == "" {
		return config, errors.New("starboard.review_channel_id and starboard.public_channel_id are required")
	}

	moderators, _ := section.Path("moderator_ids").Children()
	for _, moderator := range moderators {
		switch value := moderator.Data().(type) {
		case string:
			config.ModeratorIDs = append(config.ModeratorIDs, value)
		case float64:
			// snowflakes do not fit into a float64, ask for strings
			return config, fmt.Errorf("starboard.moderator_ids has to contain strings, got %v", value)
		}
	}

	if value, ok := section.Path("enabled").Data().(bool); ok {
		config.Enabled = value
	}

	if value, ok := section.Path("review_timeout").Data().(string); ok && value != "" {
		config.ReviewTimeout, err = time.ParseDuration(value)
		if err != nil {
			return config, errors.Wrap(err, "invalid starboard.review_timeout")
		}
	}

	if value, ok := section.Path("reactor_fetch_limit").Data().(float64); ok && value > 0 {
		config.ReactorFetchLimit = int(value)
	}

	if value, ok := section.Path("reactor_cache_size").Data().(float64); ok && value > 0 {
		config.ReactorCacheSize = int(value)
	}

	if value, ok := section.Path("reactor_cache_ttl").Data().(string); ok && value != "" {
		config.ReactorCacheTTL, err = time.ParseDuration(value)
		if err != nil {
			return config, errors.Wrap(err, "invalid starboard.reactor_cache_ttl")
		}
	}

	return config, nil
}
