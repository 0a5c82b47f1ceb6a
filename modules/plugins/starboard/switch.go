package starboard

import (
	"context"
	"sync"

	"github.com/Seklfreak/robyul-starboard/models"
	redisCache "github.com/go-redis/cache"
	"github.com/pkg/errors"
)

// Switch turns the starboard on and off at runtime
type Switch interface {
	Enabled(ctx context.Context) bool
	SetEnabled(ctx context.Context, enabled bool) error
}

// StaticSwitch keeps the flag in memory
type StaticSwitch struct {
	sync.RWMutex
	enabled bool
}

func NewStaticSwitch(enabled bool) *StaticSwitch {
	return &StaticSwitch{enabled: enabled}
}

func (s *StaticSwitch) Enabled(ctx context.Context) bool {
	s.RLock()
	defer s.RUnlock()
	return s.enabled
}

func (s *StaticSwitch) SetEnabled(ctx context.Context, enabled bool) error {
	s.Lock()
	s.enabled = enabled
	s.Unlock()
	return nil
}

// RedisSwitch shares the flag between shards through redis. Until the flag was
// set once the configured default applies.
type RedisSwitch struct {
	codec    *redisCache.Codec
	fallback bool
}

func NewRedisSwitch(codec *redisCache.Codec, fallback bool) *RedisSwitch {
	return &RedisSwitch{
		codec:    codec,
		fallback: fallback,
	}
}

func (s *RedisSwitch) Enabled(ctx context.Context) bool {
	var enabled bool
	if err := s.codec.Get(models.StarboardEnabledRedisKey, &enabled); err != nil {
		return s.fallback
	}
	return enabled
}

func (s *RedisSwitch) SetEnabled(ctx context.Context, enabled bool) error {
	err := s.codec.Set(&redisCache.Item{
		Key:        models.StarboardEnabledRedisKey,
		Object:     enabled,
		Expiration: -1, // no TTL
	})
	return errors.Wrap(err, "storing starboard switch failed")
}
