// Package main is the entry point for the media service. It loads
// configuration, connects to services, sets up routing and the publish
// scheduler, and runs the HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"mediaservice/internal/cache"
	"mediaservice/internal/config"
	"mediaservice/internal/database"
	"mediaservice/internal/feed"
	"mediaservice/internal/handlers"
	"mediaservice/internal/logging"
	"mediaservice/internal/middleware"
	"mediaservice/internal/router"
	"mediaservice/internal/scheduler"
	"mediaservice/internal/storage"
	"mediaservice/internal/store"
	"mediaservice/internal/video"
	"mediaservice/internal/views"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Text logs in development, JSON otherwise. Every record carries the
	// request trace id when there is one.
	slog.SetDefault(logging.New(os.Stdout, cfg.IsDev()))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"valkey", cfg.ValkeyEnabled(),
		"scheduler", cfg.SchedulerSpec,
	)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.Connect(ctx, cfg.DSN(), database.Pool{
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	// Run pending migrations.
	if _, err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	// Valkey is optional. Without it responses are not cached and view
	// de-duplication is kept in process memory.
	var (
		responseCache *cache.ResponseCache
		marker        views.Marker
	)
	if cfg.ValkeyEnabled() {
		valkeyClient, err := cache.ConnectValkey(ctx, cache.ValkeyOptions{
			Host:     cfg.ValkeyHost,
			Port:     cfg.ValkeyPort,
			Password: cfg.ValkeyPassword,
			DB:       cfg.ValkeyDB,
		})
		if err != nil {
			return err
		}
		defer valkeyClient.Close()
		responseCache = cache.NewResponseCache(valkeyClient, cfg.FeedCacheTTL)
		marker = cache.NewValkeyMarker(valkeyClient)
	} else {
		slog.Warn("valkey not configured, response cache disabled")
		marker = cache.NewMemoryMarker(10 * time.Minute)
	}

	// S3-compatible object storage for title pictures (optional).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3BucketPublic, cfg.S3PublicURL,
	)
	if err != nil {
		return err
	}
	if storageClient != nil {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := storageClient.CheckBucket(checkCtx); err != nil {
			slog.Warn("s3 bucket not reachable, picture urls may be broken", "error", err)
		} else {
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
		}
		cancel()
	} else {
		slog.Warn("s3 storage not configured, title pictures served as stored")
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	contentStore := store.NewContentStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)

	// Video metadata providers.
	fetcher := video.NewFetcher(video.NewRegistry(video.Config{
		YouTube:        video.ProviderConfig{APIKey: cfg.YouTubeAPIKey, BaseURL: cfg.YouTubeBaseURL},
		RuTube:         video.ProviderConfig{BaseURL: cfg.RuTubeBaseURL},
		ConnectTimeout: cfg.VideoConnectTimeout,
		TotalTimeout:   cfg.VideoTotalTimeout,
	}), cfg.VideoRatePerSecond)
	fetcher.Budget = cfg.VideoFetchBudget
	if cfg.YouTubeAPIKey == "" {
		slog.Warn("YOUTUBE_API_KEY not set, youtube metadata disabled")
	}

	feedService := feed.NewService(contentStore, categoryStore, storageClient)
	counter := views.NewCounter(contentStore, marker, cfg.ViewDedupTTL)

	// Create handler groups with their dependencies.
	newsHandlers := handlers.NewNews(feedService, contentStore, counter, responseCache)
	contentHandlers := handlers.NewContent(contentStore, categoryStore, tagStore, fetcher, storageClient, responseCache)
	taxonomyHandlers := handlers.NewTaxonomy(categoryStore, tagStore, responseCache)

	hitLimiter := middleware.NewRateLimiter(cfg.HitRateLimit, time.Minute)
	defer hitLimiter.Stop()

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	r := router.New(db, newsHandlers, contentHandlers, taxonomyHandlers, userStore, hitLimiter, trustedProxies)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Scheduled publishing runs in-process.
	sched := scheduler.NewManager(cfg.SchedulerSpec, scheduler.NewSweepJob(contentStore, responseCache))
	if err := sched.RegisterJobs(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	sched.Start()

	// Graceful shutdown: wait for a signal or a server failure, then drain.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown started")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		sched.Stop(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
