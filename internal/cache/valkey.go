// Package cache holds the Valkey (Redis-compatible) pieces of the media
// service: the public feed response cache and view de-duplication markers.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyOptions locates the Valkey instance shared by the feed cache and
// the view markers.
type ValkeyOptions struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr joins host and port, bracketing IPv6 hosts.
func (o ValkeyOptions) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

const (
	valkeyClientName  = "mediaservice"
	valkeyPingTimeout = 5 * time.Second
)

// ConnectValkey opens a client and pings it. The connection shows up as
// "mediaservice" in CLIENT LIST.
func ConnectValkey(ctx context.Context, opts ValkeyOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       opts.Addr(),
		Password:   opts.Password,
		DB:         opts.DB,
		ClientName: valkeyClientName,
	})

	pingCtx, cancel := context.WithTimeout(ctx, valkeyPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", opts.Addr(), err)
	}

	slog.InfoContext(ctx, "valkey connected", "addr", opts.Addr(), "db", opts.DB)
	return client, nil
}
