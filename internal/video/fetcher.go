// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package video

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"mediaservice/internal/models"
)

const (
	// DefaultMaxAttempts is the initial attempt plus two retries.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is multiplied by the attempt number between attempts
	// (1s after the first, 2s after the second).
	DefaultBaseDelay = time.Second

	// DefaultBudget bounds one Fetch call, attempts and backoff included.
	// It stays below the server's write timeout.
	DefaultBudget = 20 * time.Second

	// MaxLeadLen is the rune budget for a fetched description, ellipsis included.
	MaxLeadLen = 500

	ellipsis = "..."
)

// Fetcher retrieves and applies video metadata with a bounded retry loop.
// Failures are logged and never returned: enrichment is best effort.
type Fetcher struct {
	registry *Registry
	limiter  *rate.Limiter

	MaxAttempts int
	BaseDelay   time.Duration
	Budget      time.Duration

	// Sleep waits between attempts. Tests replace it to avoid real delays.
	Sleep func(ctx context.Context, d time.Duration)
}

// NewFetcher creates a Fetcher. ratePerSecond caps outbound provider calls
// across all requests; zero or less disables the limit.
func NewFetcher(registry *Registry, ratePerSecond float64) *Fetcher {
	f := &Fetcher{
		registry:    registry,
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Budget:      DefaultBudget,
		Sleep:       sleepContext,
	}
	if ratePerSecond > 0 {
		burst := int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return f
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Fetch returns normalized metadata for a video item, or nil when no
// provider produced any. Each attempt tries YouTube and then RuTube for
// whichever ids are set; the loop stops at the first usable result or
// when Budget runs out.
func (f *Fetcher) Fetch(ctx context.Context, item *models.ContentItem) *Metadata {
	if !item.IsVideo() {
		slog.DebugContext(ctx, "metadata fetch skipped for non-video item", "content_id", item.ID)
		return nil
	}
	if item.YouTubeID == "" && item.RuTubeID == "" {
		// VK ids have no metadata source.
		return nil
	}

	if f.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Budget)
		defer cancel()
	}

	for attempt := 1; attempt <= f.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "video metadata fetch abandoned",
				"content_id", item.ID, "attempt", attempt, "error", ctx.Err())
			return nil
		}
		if item.YouTubeID != "" {
			if md := f.try(ctx, SourceYouTube, item.YouTubeID, attempt); md != nil {
				return md
			}
		}
		if item.RuTubeID != "" && ctx.Err() == nil {
			if md := f.try(ctx, SourceRuTube, item.RuTubeID, attempt); md != nil {
				return md
			}
		}
		if attempt < f.MaxAttempts {
			f.Sleep(ctx, time.Duration(attempt)*f.BaseDelay)
		}
	}

	slog.InfoContext(ctx, "no video metadata after retries",
		"content_id", item.ID, "attempts", f.MaxAttempts)
	return nil
}

// try makes a single provider call and normalizes its result.
func (f *Fetcher) try(ctx context.Context, src Source, id string, attempt int) *Metadata {
	p, ok := f.registry.Get(src)
	if !ok {
		return nil
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			slog.WarnContext(ctx, "video rate limiter", "source", src, "error", err)
			return nil
		}
	}

	md, err := p.Fetch(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "video metadata request failed",
			"source", src, "video_id", id, "attempt", attempt, "error", err)
		return nil
	}
	if md == nil || (md.Title == "" && md.Lead == "" && md.Thumbnail == "") {
		slog.InfoContext(ctx, "video not found", "source", src, "video_id", id, "attempt", attempt)
		return nil
	}

	return &Metadata{
		Title:     truncateRunes(md.Title, models.MaxTitleLen, ""),
		Lead:      truncateRunes(md.Lead, MaxLeadLen, ellipsis),
		Thumbnail: md.Thumbnail,
	}
}

// Apply copies metadata into the blank fields of item and returns the
// names of the columns it changed. Fields with any non-whitespace content
// are never overwritten.
func Apply(item *models.ContentItem, md *Metadata) []string {
	if md == nil {
		return nil
	}
	var changed []string
	if blank(item.Title) && md.Title != "" {
		item.Title = md.Title
		changed = append(changed, "title")
	}
	if blank(item.Lead) && md.Lead != "" {
		item.Lead = md.Lead
		changed = append(changed, "lead")
	}
	if blank(item.TitlePicture) && md.Thumbnail != "" {
		item.TitlePicture = md.Thumbnail
		changed = append(changed, "title_picture")
	}
	return changed
}

// Enrich fetches metadata for item and applies it. It returns the changed
// column names so the caller can persist exactly those.
func (f *Fetcher) Enrich(ctx context.Context, item *models.ContentItem) []string {
	return Apply(item, f.Fetch(ctx, item))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// truncateRunes shortens s to at most limit runes. When s is cut and marker
// is set, the result ends with marker and still fits in limit.
func truncateRunes(s string, limit int, marker string) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(marker)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(s)
	return string(runes[:keep]) + marker
}
