// Command publish-scheduled runs the scheduled-publish sweep once and
// exits. It is meant for an external scheduler when the server's own
// cron is disabled or for catching up manually.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"mediaservice/internal/cache"
	"mediaservice/internal/config"
	"mediaservice/internal/database"
	"mediaservice/internal/logging"
	"mediaservice/internal/scheduler"
	"mediaservice/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.IsDev()))

	ctx := logging.WithTraceID(context.Background(), "cmd-publish-"+uuid.NewString())
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DSN(), database.DefaultPool)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var responseCache *cache.ResponseCache
	if cfg.ValkeyEnabled() {
		client, err := cache.ConnectValkey(ctx, cache.ValkeyOptions{
			Host:     cfg.ValkeyHost,
			Port:     cfg.ValkeyPort,
			Password: cfg.ValkeyPassword,
			DB:       cfg.ValkeyDB,
		})
		if err != nil {
			slog.WarnContext(ctx, "valkey unavailable, cached feeds expire on their own", "error", err)
		} else {
			defer client.Close()
			responseCache = cache.NewResponseCache(client, cfg.FeedCacheTTL)
		}
	}

	job := scheduler.NewSweepJob(store.NewContentStore(db), responseCache)
	n, err := job.Sweep(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "publish sweep failed", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "publish sweep finished", "published", n)
}
