// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediaservice/internal/feed"
	"mediaservice/internal/middleware"
	"mediaservice/internal/models"
	"mediaservice/internal/slug"
	"mediaservice/internal/video"
)

// ContentRepository is the persistence the author API needs.
// store.ContentStore satisfies it.
type ContentRepository interface {
	Create(ctx context.Context, c *models.ContentItem, tagIDs []int64) (*models.ContentItem, error)
	FindByID(ctx context.Context, id int64) (*models.ContentItem, error)
	SaveState(ctx context.Context, c *models.ContentItem) error
	UpdateFields(ctx context.Context, c *models.ContentItem, fields []string) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, f models.ContentFilter) ([]models.ContentItem, error)
	Count(ctx context.Context, f models.ContentFilter) (int, error)
}

// CategoryLookup finds the categories content items are filed under.
// store.CategoryStore satisfies it.
type CategoryLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// TagLinker finds tags and links them to content items. store.TagStore
// satisfies it.
type TagLinker interface {
	FindByID(ctx context.Context, id int64) (*models.Tag, error)
	SetForContent(ctx context.Context, contentID int64, tagIDs []int64) error
}

// MetadataEnricher fills blank fields of a video item from its provider
// and returns the changed column names. *video.Fetcher satisfies it.
type MetadataEnricher interface {
	Enrich(ctx context.Context, item *models.ContentItem) []string
}

// PictureURLs converts title pictures between stored keys and public URLs
// and checks that stored keys exist. *storage.Client satisfies it,
// including a nil client.
type PictureURLs interface {
	ResolvePicture(value string) string
	NormalizePicture(value string) string
	PictureExists(ctx context.Context, value string) (bool, error)
}

// Invalidator drops cached public responses after a mutation.
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Content groups the author API handlers for content items.
type Content struct {
	content    ContentRepository
	categories CategoryLookup
	tags       TagLinker
	fetcher    MetadataEnricher
	pictures   PictureURLs
	cache      Invalidator
	now        func() time.Time
}

// NewContent creates the author content handler group.
func NewContent(content ContentRepository, categories CategoryLookup, tags TagLinker, fetcher MetadataEnricher, pictures PictureURLs, cache Invalidator) *Content {
	return &Content{
		content:    content,
		categories: categories,
		tags:       tags,
		fetcher:    fetcher,
		pictures:   pictures,
		cache:      cache,
		now:        time.Now,
	}
}

// createContentRequest is the body of POST /api/contents. Video ids may be
// given directly or as links, from which the id is extracted.
type createContentRequest struct {
	Type         string  `json:"type" validate:"required,oneof=article video"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Lead         string  `json:"lead" validate:"max=2000"`
	Body         string  `json:"body"`
	TitlePicture string  `json:"titlePicture"`
	CategoryID   *int64  `json:"categoryId" validate:"omitempty,min=1"`
	TagIDs       []int64 `json:"tagIds" validate:"dive,min=1"`
	Status       string  `json:"status" validate:"omitempty,oneof=draft published"`
	ScheduledAt  string  `json:"scheduledAt"`
	IsFeatured   bool    `json:"isFeatured"`

	YouTubeID  string `json:"youtubeId" validate:"max=32"`
	RuTubeID   string `json:"rutubeId" validate:"max=64"`
	VKVideoID  string `json:"vkvideoId" validate:"max=64"`
	YouTubeURL string `json:"youtubeUrl" validate:"omitempty,url"`
	RuTubeURL  string `json:"rutubeUrl" validate:"omitempty,url"`
	VKVideoURL string `json:"vkvideoUrl" validate:"omitempty,url"`
}

// itemView is the author API representation of a content item.
type itemView struct {
	*models.ContentItem
	TitlePictureURL string `json:"title_picture_url,omitempty"`
	VideoURL        string `json:"video_url,omitempty"`
}

func (c *Content) view(item *models.ContentItem) itemView {
	return itemView{
		ContentItem:     item,
		TitlePictureURL: c.pictures.ResolvePicture(item.TitlePicture),
		VideoURL:        item.PrimaryVideoURL(),
	}
}

// Create handles POST /api/contents. Video items are enriched with
// provider metadata before they are stored, so a video may be created
// from a link alone.
func (c *Content) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromCtx(ctx)
	if user == nil {
		writeErrors(w, http.StatusUnauthorized, apiError{Code: "unauthorized", Title: "Authentication required", Details: "Sign in as an author."})
		return
	}

	var req createContentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if msg := firstViolation(req); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	item, msg := c.buildItem(&req)
	if msg != "" {
		writeBadRequest(w, msg)
		return
	}
	item.AuthorID = user.ID

	msg, err := c.checkReferences(ctx, item.CategoryID, req.TagIDs)
	if err != nil {
		writeInternal(w, r, "check content references failed", err)
		return
	}
	if msg != "" {
		writeBadRequest(w, msg)
		return
	}
	if item.TitlePicture != "" {
		found, err := c.pictures.PictureExists(ctx, item.TitlePicture)
		if err != nil {
			slog.WarnContext(ctx, "title picture check failed", "picture", item.TitlePicture, "error", err)
		} else if !found {
			writeBadRequest(w, fmt.Sprintf("Title picture %q is not in storage.", item.TitlePicture))
			return
		}
	}

	now := c.now()
	if req.ScheduledAt != "" {
		at, msg := parseTime("scheduledAt", req.ScheduledAt)
		if msg != "" {
			writeBadRequest(w, msg)
			return
		}
		if err := item.Schedule(at, now); err != nil {
			writeScheduleError(w, r, err)
			return
		}
	}

	if item.IsVideo() && item.HasVideo() {
		if fields := c.fetcher.Enrich(ctx, item); len(fields) > 0 {
			slog.InfoContext(ctx, "video metadata applied", "fields", fields)
		}
	}
	if msg := validateContent(item.Type, item.Title, req.Slug, item.Body); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	source := req.Slug
	if source == "" {
		source = item.Title
	}
	s, err := slug.Unique(ctx, source, string(item.Type), slug.MaxLen, c.content.SlugExists)
	if err != nil {
		writeInternal(w, r, "generate slug failed", err)
		return
	}
	item.Slug = s

	created, err := c.content.Create(ctx, item, req.TagIDs)
	if err != nil {
		writeInternal(w, r, "create content failed", err)
		return
	}

	slog.InfoContext(ctx, "content created",
		"id", created.ID, "type", created.Type, "status", created.Status, "author", user.Byline())
	c.invalidate(ctx)
	writeJSON(w, http.StatusCreated, c.view(created))
}

// checkReferences returns a message naming the first category or tag id
// that does not exist, or "" when all of them do.
func (c *Content) checkReferences(ctx context.Context, categoryID *int64, tagIDs []int64) (string, error) {
	if categoryID != nil {
		cat, err := c.categories.FindByID(ctx, *categoryID)
		if err != nil {
			return "", err
		}
		if cat == nil {
			return fmt.Sprintf("Category %d does not exist.", *categoryID), nil
		}
	}
	seen := make(map[int64]bool, len(tagIDs))
	for _, id := range tagIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		tag, err := c.tags.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		if tag == nil {
			return fmt.Sprintf("Tag %d does not exist.", id), nil
		}
	}
	return "", nil
}

// buildItem maps a create request onto a new item, extracting video ids
// from links. It returns a message when the request is inconsistent.
func (c *Content) buildItem(req *createContentRequest) (*models.ContentItem, string) {
	item := &models.ContentItem{
		Type:         models.ContentType(req.Type),
		Title:        strings.TrimSpace(req.Title),
		Lead:         strings.TrimSpace(req.Lead),
		Body:         req.Body,
		TitlePicture: c.pictures.NormalizePicture(req.TitlePicture),
		CategoryID:   req.CategoryID,
		Status:       models.ContentStatusDraft,
		IsFeatured:   req.IsFeatured,
		YouTubeID:    strings.TrimSpace(req.YouTubeID),
		RuTubeID:     strings.TrimSpace(req.RuTubeID),
		VKVideoID:    strings.TrimSpace(req.VKVideoID),
	}
	if req.Status != "" {
		item.Status = models.ContentStatus(req.Status)
	}

	links := []struct {
		url  string
		src  video.Source
		dest *string
	}{
		{req.YouTubeURL, video.SourceYouTube, &item.YouTubeID},
		{req.RuTubeURL, video.SourceRuTube, &item.RuTubeID},
		{req.VKVideoURL, video.SourceVK, &item.VKVideoID},
	}
	for _, l := range links {
		if l.url == "" {
			continue
		}
		id, ok := video.ExtractID(l.url, l.src)
		if !ok {
			return nil, fmt.Sprintf("Cannot read a %s video id from %q.", l.src, l.url)
		}
		*l.dest = id
	}

	if item.IsArticle() && item.HasVideo() {
		return nil, "Articles cannot carry video ids."
	}
	if item.IsVideo() && !item.HasVideo() {
		return nil, "A video needs a YouTube, RuTube or VK id."
	}
	return item, ""
}

// listContentQuery holds the filters of GET /api/contents.
type listContentQuery struct {
	Type       string `json:"type" validate:"omitempty,oneof=article video"`
	Status     string `json:"status" validate:"omitempty,oneof=draft published"`
	Category   string `json:"category" validate:"max=100"`
	PageSize   int    `json:"pageSize" validate:"min=1,max=100"`
	PageNumber int    `json:"pageNumber" validate:"min=1,max=100000"`
}

// contentTypeNames maps the accepted spellings of ?type= to a content type.
var contentTypeNames = map[string]string{
	"video":   "video",
	"v":       "video",
	"article": "article",
	"post":    "article",
	"a":       "article",
}

func parseListQuery(values url.Values) (listContentQuery, string) {
	q := listContentQuery{
		Status:     strings.TrimSpace(values.Get("status")),
		Category:   strings.TrimSpace(values.Get("category")),
		PageSize:   feed.DefaultPageSize,
		PageNumber: feed.DefaultPageNumber,
	}

	t := values.Get("type")
	if t == "" {
		t = values.Get("content_type")
	}
	if t != "" {
		name, ok := contentTypeNames[strings.ToLower(strings.TrimSpace(t))]
		if !ok {
			return q, fmt.Sprintf("Unknown content type %q.", t)
		}
		q.Type = name
	}

	for _, p := range []struct {
		name string
		dest *int
	}{{"pageSize", &q.PageSize}, {"pageNumber", &q.PageNumber}} {
		raw := values.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Sprintf("%s must be an integer.", p.name)
		}
		*p.dest = n
	}
	return q, firstViolation(q)
}

// List handles GET /api/contents. Drafts and published items of every
// author are listed, newest first, optionally narrowed by type, status
// and category slug. An unknown category slug matches nothing.
func (c *Content) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, msg := parseListQuery(r.URL.Query())
	if msg != "" {
		writeBadRequest(w, msg)
		return
	}

	filter := models.ContentFilter{
		Type:   models.ContentType(q.Type),
		Status: models.ContentStatus(q.Status),
	}
	if q.Category != "" {
		cat, err := c.categories.FindBySlug(ctx, q.Category)
		if err != nil {
			writeInternal(w, r, "find category failed", err)
			return
		}
		if cat == nil {
			writeJSON(w, http.StatusOK, dataEnvelope{Data: []itemView{}, Meta: &feedMeta{}})
			return
		}
		filter.FilterCategory = true
		filter.CategoryIDs = []int64{cat.ID}
	}

	total, err := c.content.Count(ctx, filter)
	if err != nil {
		writeInternal(w, r, "count content failed", err)
		return
	}

	views := []itemView{}
	filter.Limit = q.PageSize
	filter.Offset = (q.PageNumber - 1) * q.PageSize
	if filter.Offset < total {
		items, err := c.content.List(ctx, filter)
		if err != nil {
			writeInternal(w, r, "list content failed", err)
			return
		}
		for i := range items {
			views = append(views, c.view(&items[i]))
		}
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: views, Meta: &feedMeta{TotalCount: total}})
}

// Get handles GET /api/contents/{id}. Drafts are visible to authors.
func (c *Content) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := c.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.view(item))
}

// Publish handles POST /api/contents/{id}/publish.
func (c *Content) Publish(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, func(item *models.ContentItem, now time.Time) *apiError {
		if !item.Publish(now) {
			return &apiError{Code: "already_published", Title: "Already published", Details: "The item is already published."}
		}
		return nil
	})
}

// Hide handles POST /api/contents/{id}/hide.
func (c *Content) Hide(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, func(item *models.ContentItem, now time.Time) *apiError {
		if !item.Hide(now) {
			return &apiError{Code: "already_draft", Title: "Already a draft", Details: "The item is not published."}
		}
		return nil
	})
}

// Unschedule handles POST /api/contents/{id}/unschedule. It always
// succeeds, even when nothing was scheduled.
func (c *Content) Unschedule(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, func(item *models.ContentItem, now time.Time) *apiError {
		item.Unschedule(now)
		return nil
	})
}

type scheduleRequest struct {
	PublishAt string `json:"publishAt"`
}

// Schedule handles POST /api/contents/{id}/schedule with {"publishAt"}.
func (c *Content) Schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	at, msg := parseTime("publishAt", req.PublishAt)
	if msg != "" {
		writeBadRequest(w, msg)
		return
	}

	item, ok := c.load(w, r)
	if !ok {
		return
	}
	if err := item.Schedule(at, c.now()); err != nil {
		writeScheduleError(w, r, err)
		return
	}
	c.save(w, r, item)
}

type tagsRequest struct {
	TagIDs []int64 `json:"tagIds" validate:"required,dive,min=1"`
}

// SetTags handles PUT /api/contents/{id}/tags with {"tagIds"}. The list
// replaces the item's tags; an empty list removes them all.
func (c *Content) SetTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req tagsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if msg := firstViolation(req); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	item, ok := c.load(w, r)
	if !ok {
		return
	}
	msg, err := c.checkReferences(ctx, nil, req.TagIDs)
	if err != nil {
		writeInternal(w, r, "check tags failed", err)
		return
	}
	if msg != "" {
		writeBadRequest(w, msg)
		return
	}

	if err := c.tags.SetForContent(ctx, item.ID, req.TagIDs); err != nil {
		writeInternal(w, r, "set content tags failed", err)
		return
	}
	slog.InfoContext(ctx, "content tags replaced", "id", item.ID, "tags", req.TagIDs)
	c.invalidate(ctx)

	item, ok = c.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.view(item))
}

type refreshResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// RefreshMetadata handles POST /api/contents/{id}/refresh-metadata. Only
// blank title, lead and title picture are filled in.
func (c *Content) RefreshMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item, ok := c.load(w, r)
	if !ok {
		return
	}
	if !item.IsVideo() {
		writeJSON(w, http.StatusBadRequest, refreshResponse{Message: "Not a video item"})
		return
	}

	fields := c.fetcher.Enrich(ctx, item)
	if len(fields) == 0 {
		writeJSON(w, http.StatusBadRequest, refreshResponse{Message: "No metadata applied"})
		return
	}
	if err := c.content.UpdateFields(ctx, item, fields); err != nil {
		writeInternal(w, r, "update metadata failed", err)
		return
	}

	slog.InfoContext(ctx, "video metadata refreshed", "id", item.ID, "fields", fields)
	c.invalidate(ctx)
	writeJSON(w, http.StatusOK, refreshResponse{Success: true, Message: "Metadata updated", Fields: fields})
}

// transition loads the item, applies a state change and persists it.
func (c *Content) transition(w http.ResponseWriter, r *http.Request, apply func(*models.ContentItem, time.Time) *apiError) {
	item, ok := c.load(w, r)
	if !ok {
		return
	}
	if conflict := apply(item, c.now()); conflict != nil {
		writeErrors(w, http.StatusConflict, *conflict)
		return
	}
	c.save(w, r, item)
}

func (c *Content) save(w http.ResponseWriter, r *http.Request, item *models.ContentItem) {
	ctx := r.Context()
	if err := c.content.SaveState(ctx, item); err != nil {
		writeInternal(w, r, "save content state failed", err)
		return
	}
	slog.InfoContext(ctx, "content state saved", "id", item.ID, "status", item.Status, "scheduled_at", item.ScheduledAt)
	c.invalidate(ctx)
	writeJSON(w, http.StatusOK, c.view(item))
}

// load fetches the {id} item or writes a 404.
func (c *Content) load(w http.ResponseWriter, r *http.Request) (*models.ContentItem, bool) {
	id, ok := idParam(r)
	if !ok {
		writeNotFound(w, "Content item does not exist")
		return nil, false
	}
	item, err := c.content.FindByID(r.Context(), id)
	if err != nil {
		writeInternal(w, r, "find content failed", err)
		return nil, false
	}
	if item == nil {
		writeNotFound(w, fmt.Sprintf("Content item with ID %d does not exist", id))
		return nil, false
	}
	return item, true
}

func (c *Content) invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.InvalidateAll(ctx); err != nil {
		slog.WarnContext(ctx, "response cache invalidation failed", "error", err)
	}
}

func writeScheduleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, models.ErrInvalidSchedule) {
		writeErrors(w, http.StatusBadRequest, apiError{
			Code:    "invalid_schedule",
			Title:   "Invalid publish time",
			Details: err.Error(),
		})
		return
	}
	writeInternal(w, r, "schedule content failed", err)
}
