// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go provides a Valkey-backed cache of public API responses.
// Feed pages, the category tree and article bodies are stored as rendered
// bytes so repeated requests skip the database and markdown rendering.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached responses.
	responseKeyPrefix = "resp:"

	// DefaultResponseTTL is how long a cached response stays valid.
	DefaultResponseTTL = time.Minute
)

// ResponseCache manages response caching in Valkey. A nil *ResponseCache
// is valid and caches nothing, which is how the service runs without Valkey.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a response cache backed by the given Valkey client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Get retrieves a cached response. The second result is false on a miss.
func (rc *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if rc == nil {
		return nil, false
	}
	val, err := rc.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.WarnContext(ctx, "response cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.DebugContext(ctx, "response cache hit", "key", key)
	return val, true
}

// Set stores a response with the configured TTL.
func (rc *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if rc == nil {
		return
	}
	if err := rc.client.Set(ctx, responseKeyPrefix+key, body, rc.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "response cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes all cached responses by scanning for the prefix.
// Used after any lifecycle or taxonomy change, since any feed page could
// be affected.
func (rc *ResponseCache) InvalidateAll(ctx context.Context) error {
	if rc == nil {
		return nil
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, responseKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("response cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("response cache delete: %w", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.InfoContext(ctx, "response cache cleared", "deleted", deleted)
	}
	return nil
}

// FeedKey returns the cache key for one feed page.
func FeedKey(pageSize, pageNumber int, categoryID *int64, allNews bool) string {
	cat := "all"
	if categoryID != nil {
		cat = fmt.Sprintf("%d", *categoryID)
	}
	return fmt.Sprintf("feed:%d:%d:%s:%t", pageSize, pageNumber, cat, allNews)
}

// CategoriesKey returns the cache key for the category tree.
func CategoriesKey() string {
	return "categories"
}

// DetailKey returns the cache key for a rendered item body.
func DetailKey(id int64) string {
	return fmt.Sprintf("detail:%d", id)
}
