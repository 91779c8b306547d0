// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentType distinguishes articles from videos in the unified content table.
// It is fixed when the item is created.
type ContentType string

const (
	ContentTypeArticle ContentType = "article"
	ContentTypeVideo   ContentType = "video"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	return t == ContentTypeArticle || t == ContentTypeVideo
}

// ContentStatus represents the publishing state of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// MaxTitleLen is the maximum number of characters stored in a title.
// Fetched video titles are cut to this length.
const MaxTitleLen = 255

// ErrInvalidSchedule is returned when a publish time is not strictly in the future.
var ErrInvalidSchedule = errors.New("scheduled time must be in the future")

// ScheduleError carries the rejected publish time alongside ErrInvalidSchedule.
type ScheduleError struct {
	At  time.Time
	Now time.Time
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("%s: %s is not after %s",
		ErrInvalidSchedule, e.At.Format(time.RFC3339), e.Now.Format(time.RFC3339))
}

func (e *ScheduleError) Unwrap() error { return ErrInvalidSchedule }

// ContentItem is an article or a video. Both share one table; video-only
// fields (YouTubeID, RuTubeID, VKVideoID) stay empty for articles.
type ContentItem struct {
	ID           int64         `json:"id"`
	Type         ContentType   `json:"content_type"`
	Title        string        `json:"title"`
	Slug         string        `json:"slug"`
	Lead         string        `json:"lead"`
	Body         string        `json:"body"`
	TitlePicture string        `json:"title_picture"`
	CategoryID   *int64        `json:"category_id"`
	AuthorID     uuid.UUID     `json:"author_id"`
	Status       ContentStatus `json:"status"`
	IsFeatured   bool          `json:"is_featured"`
	Views        int64         `json:"views"`
	CreatedAt    time.Time     `json:"created_at"`
	ScheduledAt  *time.Time    `json:"scheduled_at"`
	PublishedAt  *time.Time    `json:"published_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	YouTubeID string `json:"youtube_id"`
	RuTubeID  string `json:"rutube_id"`
	VKVideoID string `json:"vkvideo_id"`

	// Populated by store methods that join content_item_tags.
	Tags []Tag `json:"tags,omitempty"`
}

// IsPublished returns true if the content item is in published status.
func (c *ContentItem) IsPublished() bool {
	return c.Status == ContentStatusPublished
}

// IsScheduled returns true if the item is a draft waiting for a publish time.
func (c *ContentItem) IsScheduled() bool {
	return c.ScheduledAt != nil && c.Status == ContentStatusDraft
}

// IsVideo returns true for video items.
func (c *ContentItem) IsVideo() bool {
	return c.Type == ContentTypeVideo
}

// IsArticle returns true for article items.
func (c *ContentItem) IsArticle() bool {
	return c.Type == ContentTypeArticle
}

// HasVideo reports whether at least one external video id is set.
func (c *ContentItem) HasVideo() bool {
	return c.YouTubeID != "" || c.RuTubeID != "" || c.VKVideoID != ""
}

// ShouldPublish reports whether a scheduled draft is due at now.
func (c *ContentItem) ShouldPublish(now time.Time) bool {
	return c.IsScheduled() && !c.ScheduledAt.After(now)
}

// EffectiveTime is the feed sort key: the publish time, or the creation
// time for items that were never stamped.
func (c *ContentItem) EffectiveTime() time.Time {
	if c.PublishedAt != nil {
		return *c.PublishedAt
	}
	return c.CreatedAt
}

// Publish moves a draft to published and stamps PublishedAt with now.
// Republishing after Hide refreshes the stamp. Returns false if the item
// was already published.
func (c *ContentItem) Publish(now time.Time) bool {
	if c.Status == ContentStatusPublished {
		return false
	}
	c.Status = ContentStatusPublished
	c.PublishedAt = &now
	c.ScheduledAt = nil
	c.UpdatedAt = now
	return true
}

// Hide moves a published item back to draft. PublishedAt is kept.
// Returns false if the item was already a draft.
func (c *ContentItem) Hide(now time.Time) bool {
	if c.Status == ContentStatusDraft {
		return false
	}
	c.Status = ContentStatusDraft
	c.UpdatedAt = now
	return true
}

// Schedule sets a future publish time and forces the item back to draft.
// The item is left untouched when at is not after now.
func (c *ContentItem) Schedule(at, now time.Time) error {
	if !at.After(now) {
		return &ScheduleError{At: at, Now: now}
	}
	c.ScheduledAt = &at
	c.Status = ContentStatusDraft
	c.UpdatedAt = now
	return nil
}

// Unschedule clears the publish time. It always succeeds.
func (c *ContentItem) Unschedule(now time.Time) bool {
	c.ScheduledAt = nil
	c.UpdatedAt = now
	return true
}

// Normalize applies the transitions that happen implicitly on every save:
// a due scheduled draft is published, and a published item without a
// publish stamp gets one.
func (c *ContentItem) Normalize(now time.Time) {
	if c.ShouldPublish(now) {
		c.Publish(now)
		return
	}
	if c.Status == ContentStatusPublished {
		c.ScheduledAt = nil
		if c.PublishedAt == nil {
			c.PublishedAt = &now
		}
	}
}

// YouTubeURL returns the watch URL, or "" when no YouTube id is set.
func (c *ContentItem) YouTubeURL() string {
	if c.YouTubeID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + c.YouTubeID
}

// RuTubeURL returns the RuTube page URL, or "".
func (c *ContentItem) RuTubeURL() string {
	if c.RuTubeID == "" {
		return ""
	}
	return "https://rutube.ru/video/" + c.RuTubeID + "/"
}

// VKVideoURL returns the VK Video URL, or "".
func (c *ContentItem) VKVideoURL() string {
	if c.VKVideoID == "" {
		return ""
	}
	return "https://vk.com/video-" + strings.TrimPrefix(c.VKVideoID, "-")
}

// PrimaryVideoURL picks the first available source in YouTube, RuTube, VK order.
func (c *ContentItem) PrimaryVideoURL() string {
	switch {
	case c.YouTubeID != "":
		return c.YouTubeURL()
	case c.RuTubeID != "":
		return c.RuTubeURL()
	case c.VKVideoID != "":
		return c.VKVideoURL()
	}
	return ""
}

// ContentFilter narrows a listing of content items. Zero values mean
// "no restriction" except CategoryIDs, which is only applied when
// FilterCategory is set (an empty set then matches nothing).
type ContentFilter struct {
	Type           ContentType
	Status         ContentStatus
	FilterCategory bool
	CategoryIDs    []int64
	ExcludeIDs     []int64
	Limit          int
	Offset         int
}
