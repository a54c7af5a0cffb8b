// Package cache holds the filter metadata cache: redis when REDIS_URL is
// configured, an in-process map otherwise.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	applog "medicatalog/internal/log"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ---------- in-process ----------

type memEntry struct {
	val       []byte
	expiresAt time.Time
}

type Memory struct {
	mu  sync.RWMutex
	m   map[string]memEntry
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{m: map[string]memEntry{}, now: time.Now}
}

func (s *Memory) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, ErrMiss
	}
	return append([]byte(nil), e.val...), nil
}

func (s *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = memEntry{val: append([]byte(nil), val...), expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Memory) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.m, k)
	}
	return nil
}

// ---------- redis ----------

type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to url and pings it once.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client, prefix: "medicatalog:"}, nil
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (s *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, val, ttl).Err()
}

func (s *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.client.Del(ctx, full...).Err()
}

func (s *Redis) Close() error { return s.client.Close() }

// Open returns a redis store for a non-empty url, falling back to memory
// when redis is unreachable.
func Open(ctx context.Context, url string) Store {
	if url == "" {
		return NewMemory()
	}
	r, err := NewRedis(ctx, url)
	if err != nil {
		applog.Event("cache.redis.unavailable", err, map[string]any{"fallback": "memory"})
		return NewMemory()
	}
	applog.Event("cache.redis.connected", nil, nil)
	return r
}
