package starboard

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redisCache "github.com/go-redis/cache"
	"github.com/go-redis/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack"
)

func TestRedisSwitch(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	codec := &redisCache.Codec{
		Redis: client,
		Marshal: func(v interface{}) ([]byte, error) {
			return msgpack.Marshal(v)
		},
		Unmarshal: func(b []byte, v interface{}) error {
			return msgpack.Unmarshal(b, v)
		},
	}
	ctx := context.Background()

	switcher := NewRedisSwitch(codec, true)
	assert.True(t, switcher.Enabled(ctx))

	require.NoError(t, switcher.SetEnabled(ctx, false))
	assert.False(t, switcher.Enabled(ctx))

	// other shards see the flag
	assert.False(t, NewRedisSwitch(codec, true).Enabled(ctx))

	require.NoError(t, switcher.SetEnabled(ctx, true))
	assert.True(t, NewRedisSwitch(codec, false).Enabled(ctx))
}

func TestStaticSwitch(t *testing.T) {
	switcher := NewStaticSwitch(false)
	assert.False(t, switcher.Enabled(context.Background()))

	require.NoError(t, switcher.SetEnabled(context.Background(), true))
	assert.True(t, switcher.Enabled(context.Background()))
}
