package starboard

import (
	"testing"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T, json string) (Config, error) {
	t.Helper()
	container, err := gabs.ParseJSON([]byte(json))
	require.NoError(t, err)
	return ConfigFromContainer(container)
}

func TestConfigFromContainer(t *testing.T) {
	config, err := parseConfig(t, `{"starboard": {
		"emoji": "<:star:123>",
		"threshold": 5,
		"review_channel_id": "review",
		"public_channel_id": "public",
		"moderator_ids": ["mod1", "mod2"],
		"enabled": false,
		"review_timeout": "1h",
		"reactor_fetch_limit": 300,
		"reactor_cache_size": 500,
		"reactor_cache_ttl": "10m"
	}}`)
	require.NoError(t, err)

	assert.Equal(t, Emoji{ID: "123", Name: "star"}, config.Emoji)
	assert.Equal(t, 5, config.Threshold)
	assert.Equal(t, "review", config.ReviewChannelID)
	assert.Equal(t, "public", config.PublicChannelID)
	assert.Equal(t, []string{"mod1", "mod2"}, config.ModeratorIDs)
	assert.False(t, config.Enabled)
	assert.Equal(t, time.Hour, config.ReviewTimeout)
	assert.Equal(t, 300, config.ReactorFetchLimit)
	assert.Equal(t, 500, config.ReactorCacheSize)
	assert.Equal(t, 10*time.Minute, config.ReactorCacheTTL)
	assert.True(t, config.IsModerator("mod2"))
	assert.False(t, config.IsModerator("user"))
}

func TestConfigDefaults(t *testing.T) {
	config, err := parseConfig(t, `{"starboard": {"review_channel_id": "review", "public_channel_id": "public"}}`)
	require.NoError(t, err)

	assert.Equal(t, Emoji{Name: "⭐"}, config.Emoji)
	assert.Equal(t, 3, config.Threshold)
	assert.True(t, config.Enabled)
	assert.Equal(t, 15*time.Minute, config.ReviewTimeout)
	assert.Equal(t, 100, config.ReactorFetchLimit)
	assert.Equal(t, 10000, config.ReactorCacheSize)
	assert.Equal(t, time.Hour, config.ReactorCacheTTL)
	assert.Empty(t, config.ModeratorIDs)
}

func TestConfigInvalid(t *testing.T) {
	for _, json := range []string{
		`{}`,
		`{"starboard": {"public_channel_id": "public"}}`,
		`{"starboard": {"review_channel_id": "r", "public_channel_id": "p", "threshold": 0}}`,
		`{"starboard": {"review_channel_id": "r", "public_channel_id": "p", "emoji": "star"}}`,
		`{"starboard": {"review_channel_id": "r", "public_channel_id": "p", "review_timeout": "soon"}}`,
		`{"starboard": {"review_channel_id": "r", "public_channel_id": "p", "reactor_cache_ttl": "long"}}`,
		`{"starboard": {"review_channel_id": "r", "public_channel_id": "p", "moderator_ids": [123]}}`,
	} {
		_, err := parseConfig(t, json)
		assert.Error(t, err, json)
	}
}
