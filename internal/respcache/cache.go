// Package respcache caches statistics API responses in redis.
package respcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is used when no positive TTL is configured.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "chessex:resp:"

// Entry is a cached response.
type Entry struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Cache stores responses keyed by request path.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to the redis instance at url.
func New(ctx context.Context, url string, ttl time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("failed to parse cache url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		if cerr := rdb.Close(); cerr != nil {
			// Best-effort close on ping failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to reach cache: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Close releases the redis connection pool.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func (c *Cache) key(path string) string { return keyPrefix + path }

// Get returns the cached entry for path. The bool is false on a miss.
func (c *Cache) Get(ctx context.Context, path string) (Entry, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return e, true, nil
}

// Set stores an entry for path with the configured TTL.
func (c *Cache) Set(ctx context.Context, path string, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(path), raw, c.ttl).Err()
}
