// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ValkeyMarker records short-lived "seen" markers in Valkey with SET NX,
// so concurrent instances of the service share one de-duplication window.
type ValkeyMarker struct {
	client *redis.Client
}

// NewValkeyMarker creates a marker store on the given client.
func NewValkeyMarker(client *redis.Client) *ValkeyMarker {
	return &ValkeyMarker{client: client}
}

// Mark sets key for ttl and reports whether it was not already set.
func (m *ValkeyMarker) Mark(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := m.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("valkey setnx: %w", err)
	}
	return ok, nil
}

// MemoryMarker keeps markers in process memory. It is used when Valkey is
// not configured; markers are then per instance and lost on restart.
type MemoryMarker struct {
	cache *gocache.Cache
}

// NewMemoryMarker creates an in-memory marker store that purges expired
// markers every cleanup interval.
func NewMemoryMarker(cleanup time.Duration) *MemoryMarker {
	return &MemoryMarker{cache: gocache.New(gocache.NoExpiration, cleanup)}
}

// Mark sets key for ttl and reports whether it was not already set.
func (m *MemoryMarker) Mark(_ context.Context, key string, ttl time.Duration) (bool, error) {
	// Add fails when a live entry exists, which makes check-and-set atomic.
	if err := m.cache.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}
