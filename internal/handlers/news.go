// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"mediaservice/internal/cache"
	"mediaservice/internal/feed"
	"mediaservice/internal/markdown"
	"mediaservice/internal/middleware"
	"mediaservice/internal/models"
)

// emptyBody is served for published items that have no body yet.
const emptyBody = "<p>Контент отсутствует</p>"

// PublishedFinder loads a published content item by id, returning nil
// when there is none.
type PublishedFinder interface {
	FindPublishedByID(ctx context.Context, id int64) (*models.ContentItem, error)
}

// ViewCounter registers a view of an item from a client address.
type ViewCounter interface {
	Hit(ctx context.Context, id int64, ip string) (views int64, found bool, err error)
}

// News groups the public news API handlers. Cacheable responses go
// through the Valkey response cache; a nil cache disables caching.
type News struct {
	feed     *feed.Service
	content  PublishedFinder
	views    ViewCounter
	cache    *cache.ResponseCache
	clientIP func(*http.Request) string
}

// NewNews creates the public news handler group.
func NewNews(feedService *feed.Service, content PublishedFinder, views ViewCounter, responseCache *cache.ResponseCache) *News {
	return &News{
		feed:     feedService,
		content:  content,
		views:    views,
		cache:    responseCache,
		clientIP: middleware.ClientIP,
	}
}

// Feed handles GET /news/feed.
func (n *News) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := feed.ParseQuery(r.URL.Query())
	if err != nil {
		writeValidation(w, r, err)
		return
	}

	key := cache.FeedKey(q.PageSize, q.PageNumber, q.CategoryID, q.AllNews)
	if cached, ok := n.cache.Get(ctx, key); ok {
		writeRaw(w, http.StatusOK, cached)
		return
	}

	page, err := n.feed.Feed(ctx, q)
	if err != nil {
		writeValidation(w, r, err)
		return
	}

	body, err := json.Marshal(dataEnvelope{Data: page.Items, Meta: &feedMeta{TotalCount: page.TotalCount}})
	if err != nil {
		writeInternal(w, r, "encode feed failed", err)
		return
	}
	n.cache.Set(ctx, key, body)
	writeRaw(w, http.StatusOK, body)
}

// FeedExcluding handles POST /news/feed with {"excluded": [ids]}. The
// result is the whole published feed minus those ids and is not cached.
func (n *News) FeedExcluding(w http.ResponseWriter, r *http.Request) {
	var q feed.ExcludeQuery
	if err := decodeJSON(r, &q); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	page, err := n.feed.FeedExcluding(r.Context(), q)
	if err != nil {
		writeValidation(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: page.Items, Meta: &feedMeta{TotalCount: page.TotalCount}})
}

// Categories handles GET /news/categories.
func (n *News) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, ok := n.cache.Get(ctx, cache.CategoriesKey()); ok {
		writeRaw(w, http.StatusOK, cached)
		return
	}

	tree, err := n.feed.Categories(ctx)
	if err != nil {
		writeInternal(w, r, "list categories failed", err)
		return
	}

	body, err := json.Marshal(dataEnvelope{Data: tree})
	if err != nil {
		writeInternal(w, r, "encode categories failed", err)
		return
	}
	n.cache.Set(ctx, cache.CategoriesKey(), body)
	writeRaw(w, http.StatusOK, body)
}

// Detail handles GET /news/{id} and returns the rendered body as an HTML
// fragment.
func (n *News) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(r)
	if !ok {
		writeNotFound(w, fmt.Sprintf("Article with ID %s does not exist", chi.URLParam(r, "id")))
		return
	}

	if cached, ok := n.cache.Get(ctx, cache.DetailKey(id)); ok {
		writeHTML(w, cached)
		return
	}

	item, err := n.content.FindPublishedByID(ctx, id)
	if err != nil {
		writeInternal(w, r, "find published content failed", err)
		return
	}
	if item == nil {
		writeNotFound(w, fmt.Sprintf("Article with ID %d does not exist", id))
		return
	}

	rendered := emptyBody
	if strings.TrimSpace(item.Body) != "" {
		rendered, err = markdown.RenderBody(item.Body)
		if err != nil {
			writeInternal(w, r, "render body failed", err)
			return
		}
	}

	body := []byte(rendered)
	n.cache.Set(ctx, cache.DetailKey(id), body)
	writeHTML(w, body)
}

// Hit handles POST /news/{id}/hit and returns the current view count.
// Repeated hits from one client within the dedup window are not counted.
func (n *News) Hit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeNotFound(w, "Article does not exist")
		return
	}

	views, found, err := n.views.Hit(r.Context(), id, n.clientIP(r))
	if err != nil {
		writeInternal(w, r, "count view failed", err)
		return
	}
	if !found {
		writeNotFound(w, fmt.Sprintf("Article with ID %d does not exist", id))
		return
	}

	slog.DebugContext(r.Context(), "view counted", "id", id, "views", views)
	writeJSON(w, http.StatusOK, map[string]int64{"views": views})
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
