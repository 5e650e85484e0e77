// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package cache provides a two-tier memoization store for model
// configuration. The distributed tier is a namespaced Redis keyspace with
// TTL; when Redis is unreachable at construction time the cache permanently
// routes to a process-local map instead. Reads never return errors: any
// backend failure is reported as a miss.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultNamespace prefixes every distributed key.
	DefaultNamespace = "lunaris"

	// DefaultTTL is applied when a write passes a non-positive TTL.
	DefaultTTL = 24 * time.Hour

	// probeTimeout bounds the single connectivity probe at construction.
	probeTimeout = 3 * time.Second
)

// Stats describes the cache tier in use and its current key count.
type Stats struct {
	Distributed bool
	Namespace   string
	Keys        int
}

// ModelCache is a two-tier key/value store. All methods are safe for
// concurrent use.
type ModelCache struct {
	namespace string
	ttl       time.Duration
	logger    *slog.Logger

	rdb *redis.Client // nil when the distributed tier is disabled

	mu    sync.RWMutex
	local map[string]Entry
}

// Option configures a ModelCache.
type Option func(*ModelCache) error

// WithNamespace sets the key prefix for the distributed tier.
func WithNamespace(namespace string) Option {
	return func(c *ModelCache) error {
		if namespace == "" {
			namespace = DefaultNamespace
		}
		c.namespace = namespace
		return nil
	}
}

// WithTTL sets the default time-to-live for distributed writes.
func WithTTL(ttl time.Duration) Option {
	return func(c *ModelCache) error {
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		c.ttl = ttl
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ModelCache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a ModelCache. redisURL selects the distributed tier; an empty
// URL, an unparseable URL or a failed connectivity probe all fall back to
// the local tier. Construction never fails because of the backend, only
// because of an invalid option.
func New(redisURL string, opts ...Option) (*ModelCache, error) {
	c := &ModelCache{
		namespace: DefaultNamespace,
		ttl:       DefaultTTL,
		logger:    slog.Default().With("component", "model-cache"),
		local:     make(map[string]Entry),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if redisURL == "" {
		c.logger.Debug("no redis url configured, using local tier")
		return c, nil
	}

	ropts, err := redis.ParseURL(redisURL)
	if err != nil {
		c.logger.Warn("invalid redis url, using local tier", "error", err)
		return c, nil
	}

	rdb := redis.NewClient(ropts)
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		c.logger.Warn("redis unreachable, using local tier", "error", err)
		_ = rdb.Close()
		return c, nil
	}

	c.rdb = rdb
	c.logger.Debug("distributed tier enabled", "namespace", c.namespace)
	return c, nil
}

// Distributed reports whether the Redis tier is in use.
func (c *ModelCache) Distributed() bool {
	return c.rdb != nil
}

// Close releases the distributed tier connection, if any.
func (c *ModelCache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Get returns the value stored under key, or false on a miss. Backend
// failures count as misses.
func (c *ModelCache) Get(ctx context.Context, key string) ([]byte, bool) {
	entry, ok := c.getEntry(ctx, key)
	if !ok {
		return nil, false
	}
	return entry.Value, true
}

// GetWithMetadata returns the full entry stored under key, including the
// write metadata and stored-at timestamp.
func (c *ModelCache) GetWithMetadata(ctx context.Context, key string) (Entry, bool) {
	return c.getEntry(ctx, key)
}

// Set stores value under key with the given TTL (non-positive → default).
// It returns false when the write did not land; the caller loses nothing
// but the memoization.
func (c *ModelCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	return c.setEntry(ctx, Entry{Key: key, Value: value, Timestamp: time.Now()}, ttl)
}

// SetWithMetadata stores value together with caller metadata.
func (c *ModelCache) SetWithMetadata(ctx context.Context, key string, value []byte, metadata map[string]string, ttl time.Duration) bool {
	return c.setEntry(ctx, Entry{Key: key, Value: value, Metadata: metadata, Timestamp: time.Now()}, ttl)
}

// Delete removes key and reports whether an entry was removed.
func (c *ModelCache) Delete(ctx context.Context, key string) bool {
	if c.rdb != nil {
		removed, err := c.rdb.Del(ctx, c.namespaced(key)).Result()
		if err != nil {
			c.logger.Warn("cache delete failed", "key", key, "error", err)
			return false
		}
		return removed > 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.local[key]
	delete(c.local, key)
	return ok
}

// Exists reports whether key is present.
func (c *ModelCache) Exists(ctx context.Context, key string) bool {
	if c.rdb != nil {
		found, err := c.rdb.Exists(ctx, c.namespaced(key)).Result()
		if err != nil {
			c.logger.Warn("cache exists failed", "key", key, "error", err)
			return false
		}
		if found > 0 {
			return true
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.local[key]
	return ok
}

// ClearNamespace removes every key in this cache's namespace and returns
// the number of entries removed. Other namespaces are untouched.
func (c *ModelCache) ClearNamespace(ctx context.Context) int {
	if c.rdb != nil {
		var keys []string
		iter := c.rdb.Scan(ctx, 0, c.namespace+":*", 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			c.logger.Warn("namespace scan failed", "namespace", c.namespace, "error", err)
			return 0
		}
		if len(keys) == 0 {
			return 0
		}
		removed, err := c.rdb.Del(ctx, keys...).Result()
		if err != nil {
			c.logger.Warn("namespace clear failed", "namespace", c.namespace, "error", err)
			return 0
		}
		return int(removed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := len(c.local)
	c.local = make(map[string]Entry)
	return removed
}

// Stats reports the tier in use and the number of live keys.
func (c *ModelCache) Stats(ctx context.Context) Stats {
	stats := Stats{Distributed: c.rdb != nil, Namespace: c.namespace}

	if c.rdb != nil {
		iter := c.rdb.Scan(ctx, 0, c.namespace+":*", 100).Iterator()
		for iter.Next(ctx) {
			stats.Keys++
		}
		if err := iter.Err(); err != nil {
			c.logger.Warn("namespace scan failed", "namespace", c.namespace, "error", err)
		}
		return stats
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	stats.Keys = len(c.local)
	return stats
}

func (c *ModelCache) namespaced(key string) string {
	return c.namespace + ":" + key
}

func (c *ModelCache) getEntry(ctx context.Context, key string) (Entry, bool) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, c.namespaced(key)).Bytes()
		switch {
		case err == nil:
			entry, _, err := EntryMUS.Unmarshal(raw)
			if err != nil {
				c.logger.Warn("corrupt cache entry", "key", key, "error", err)
				break
			}
			return entry, true
		case errors.Is(err, redis.Nil):
		default:
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.local[key]
	return entry, ok
}

func (c *ModelCache) setEntry(ctx context.Context, entry Entry, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = c.ttl
	}

	if c.rdb != nil {
		buf := make([]byte, EntryMUS.Size(entry))
		EntryMUS.Marshal(entry, buf)
		if err := c.rdb.Set(ctx, c.namespaced(entry.Key), buf, ttl).Err(); err != nil {
			c.logger.Warn("cache set failed", "key", entry.Key, "error", err)
			return false
		}
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.local[entry.Key] = entry
	return true
}
