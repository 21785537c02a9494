package kvstore

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AudioCache stores base64 speech payloads on a best-effort basis: oversized
// payloads and failed writes are logged and dropped, never returned.
type AudioCache struct {
	store    Store
	ttl      time.Duration
	maxBytes int
	log      zerolog.Logger
}

func NewAudioCache(store Store, ttl time.Duration, maxBytes int, log zerolog.Logger) *AudioCache {
	return &AudioCache{
		store:    store,
		ttl:      ttl,
		maxBytes: maxBytes,
		log:      log.With().Str("component", "audio_cache").Logger(),
	}
}

// Get returns a cached payload. Read errors count as a miss.
func (c *AudioCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Audio cache read failed")
		return "", false
	}
	return v, ok && v != ""
}

// Put caches payload if it fits. It reports whether the value was stored.
func (c *AudioCache) Put(ctx context.Context, key, payload string) bool {
	if payload == "" {
		return false
	}
	if c.maxBytes > 0 && len(payload) > c.maxBytes {
		c.log.Debug().Str("key", key).Int("bytes", len(payload)).Msg("Audio payload too large to cache")
		return false
	}
	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Int("bytes", len(payload)).Msg("Audio cache write failed")
		return false
	}
	return true
}

// Forget drops cached payloads, logging failures.
func (c *AudioCache) Forget(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("Audio cache delete failed")
	}
}
