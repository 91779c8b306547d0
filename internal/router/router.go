// Package router sets up all HTTP routes and middleware chains for the
// media service. It organizes routes into the public news API and the
// author API with appropriate middleware stacks.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mediaservice/internal/handlers"
	"mediaservice/internal/middleware"
)

// Pinger reports whether a backing service is reachable. *sql.DB
// satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. hitLimiter may be nil to disable rate
// limiting of view hits. Forwarding headers are honored only from
// trustedProxies.
func New(db Pinger, news *handlers.News, content *handlers.Content, taxonomy *handlers.Taxonomy, auth middleware.Authenticator, hitLimiter *middleware.RateLimiter, trustedProxies []netip.Prefix) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Trace)
	r.Use(middleware.RealIP(trustedProxies))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(chimw.StripSlashes)

	r.Get("/health", healthHandler(db))

	// Public news API.
	r.Route("/news", func(r chi.Router) {
		r.Use(middleware.CORS)

		r.Get("/feed", news.Feed)
		r.Post("/feed", news.FeedExcluding)
		r.Get("/categories", news.Categories)
		r.Get("/{id}", news.Detail)

		r.Group(func(r chi.Router) {
			if hitLimiter != nil {
				r.Use(hitLimiter.Middleware)
			}
			r.Post("/{id}/hit", news.Hit)
		})
	})

	// Author API, HTTP Basic authentication.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAuthor(auth))

		r.Route("/contents", func(r chi.Router) {
			r.Get("/", content.List)
			r.Post("/", content.Create)
			r.Get("/{id}", content.Get)
			r.Put("/{id}/tags", content.SetTags)
			r.Post("/{id}/publish", content.Publish)
			r.Post("/{id}/hide", content.Hide)
			r.Post("/{id}/unschedule", content.Unschedule)
			r.Post("/{id}/schedule", content.Schedule)
			r.Post("/{id}/refresh-metadata", content.RefreshMetadata)
		})

		r.Get("/categories", taxonomy.ListCategories)
		r.Post("/categories", taxonomy.CreateCategory)
		r.Put("/categories/{id}", taxonomy.UpdateCategory)
		r.Delete("/categories/{id}", taxonomy.DeleteCategory)
		r.Get("/tags", taxonomy.ListTags)
		r.Post("/tags", taxonomy.CreateTag)
		r.Put("/tags/{id}", taxonomy.RenameTag)
	})

	return r
}

// healthHandler reports ok when the database answers within a second.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.ErrorContext(r.Context(), "health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
