// Package views counts article views, de-duplicating repeated hits from the
// same client address within a window.
package views

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// DefaultWindow is how long a client's hit on an item is remembered.
const DefaultWindow = 24 * time.Hour

// Store persists the view counter of published items.
type Store interface {
	IncrementViews(ctx context.Context, id int64) (int64, bool, error)
	Views(ctx context.Context, id int64) (int64, bool, error)
}

// Marker records a key for a duration and reports whether it was new.
type Marker interface {
	Mark(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Counter increments the view counter at most once per client per window.
type Counter struct {
	store  Store
	marker Marker
	window time.Duration
}

// NewCounter creates a view counter. A zero window uses DefaultWindow.
func NewCounter(store Store, marker Marker, window time.Duration) *Counter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Counter{store: store, marker: marker, window: window}
}

// Key returns the de-duplication key for a client address and item. The
// address is hashed so raw IPs never reach the cache.
func Key(id int64, ip string) string {
	sum := md5.Sum([]byte(ip))
	return fmt.Sprintf("content_view_%d_%s", id, hex.EncodeToString(sum[:]))
}

// Hit registers a view of item id from ip and returns the resulting count.
// found is false when no published item has that id. A marker failure is
// logged and the view is counted.
func (c *Counter) Hit(ctx context.Context, id int64, ip string) (views int64, found bool, err error) {
	first := true
	if c.marker != nil {
		first, err = c.marker.Mark(ctx, Key(id, ip), c.window)
		if err != nil {
			slog.WarnContext(ctx, "view marker failed, counting hit", "id", id, "error", err)
			first = true
		}
	}

	if !first {
		views, found, err = c.store.Views(ctx, id)
		if err != nil {
			return 0, false, fmt.Errorf("read views: %w", err)
		}
		return views, found, nil
	}

	views, found, err = c.store.IncrementViews(ctx, id)
	if err != nil {
		return 0, false, fmt.Errorf("increment views: %w", err)
	}
	return views, found, nil
}
