// Package kvstore is the key-value collaborator used for session snapshots
// and cached speech audio.
package kvstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQuotaExceeded is returned when a write would exceed the store's budget.
var ErrQuotaExceeded = errors.New("kvstore: quota exceeded")

// Store is a string key-value store. Get on a missing key returns ok=false
// and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisStore backs Store with Redis.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value; a zero ttl keeps the key until deleted. Redis OOM
// replies are reported as ErrQuotaExceeded.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	err := s.rdb.Set(ctx, key, value, ttl).Err()
	if err != nil && isOOM(err) {
		return errors.Join(ErrQuotaExceeded, err)
	}
	return err
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func isOOM(err error) bool {
	var re redis.Error
	if errors.As(err, &re) {
		msg := re.Error()
		return len(msg) >= 3 && msg[:3] == "OOM"
	}
	return false
}

type memEntry struct {
	value   string
	expires time.Time
}

// MemoryStore is an in-process Store with an optional total byte budget.
// It is used by tools and tests that run without Redis.
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string]memEntry
	used     int
	maxBytes int
	now      func() time.Time
}

// NewMemoryStore returns a store limited to maxBytes of keys and values;
// zero means unlimited.
func NewMemoryStore(maxBytes int) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string]memEntry),
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		s.removeLocked(key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := len(key) + len(value)
	prev := 0
	if old, ok := s.data[key]; ok {
		prev = len(key) + len(old.value)
	}
	if s.maxBytes > 0 && s.used-prev+size > s.maxBytes {
		return ErrQuotaExceeded
	}

	var expires time.Time
	if ttl > 0 {
		expires = s.now().Add(ttl)
	}
	s.data[key] = memEntry{value: value, expires: expires}
	s.used += size - prev
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.removeLocked(k)
	}
	return nil
}

func (s *MemoryStore) removeLocked(key string) {
	if e, ok := s.data[key]; ok {
		s.used -= len(key) + len(e.value)
		delete(s.data, key)
	}
}
