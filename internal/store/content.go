// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mediaservice/internal/models"
)

// ContentStore handles all content-related database operations.
// It serves both articles and videos through the unified content_items table.
type ContentStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db, now: time.Now}
}

const contentColumns = `id, content_type, title, slug, lead, body, title_picture,
	category_id, author_id, status, is_featured, views,
	youtube_id, rutube_id, vkvideo_id,
	created_at, scheduled_at, published_at, updated_at`

// scanContent scans a row into a ContentItem.
func scanContent(scanner interface{ Scan(...any) error }) (*models.ContentItem, error) {
	var c models.ContentItem
	err := scanner.Scan(
		&c.ID, &c.Type, &c.Title, &c.Slug, &c.Lead, &c.Body, &c.TitlePicture,
		&c.CategoryID, &c.AuthorID, &c.Status, &c.IsFeatured, &c.Views,
		&c.YouTubeID, &c.RuTubeID, &c.VKVideoID,
		&c.CreatedAt, &c.ScheduledAt, &c.PublishedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// metadataColumns are the only columns UpdateFields may write. They match
// the field names returned by video metadata enrichment.
var metadataColumns = map[string]bool{
	"title":         true,
	"lead":          true,
	"title_picture": true,
}

// Create inserts a new content item together with its tag links and returns
// the stored row. The implicit save transitions are applied first, so a
// due scheduled item is stored as published.
func (s *ContentStore) Create(ctx context.Context, c *models.ContentItem, tagIDs []int64) (*models.ContentItem, error) {
	now := s.now()
	if c.Status == "" {
		c.Status = models.ContentStatusDraft
	}
	c.Normalize(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO content_items (content_type, title, slug, lead, body, title_picture,
		                           category_id, author_id, status, is_featured,
		                           youtube_id, rutube_id, vkvideo_id,
		                           created_at, scheduled_at, published_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $14)
		RETURNING `+contentColumns,
		c.Type, c.Title, c.Slug, c.Lead, c.Body, c.TitlePicture,
		c.CategoryID, c.AuthorID, c.Status, c.IsFeatured,
		c.YouTubeID, c.RuTubeID, c.VKVideoID,
		now, c.ScheduledAt, c.PublishedAt,
	)
	result, err := scanContent(row)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO content_item_tags (content_item_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, result.ID, tagID); err != nil {
			return nil, fmt.Errorf("link tag %d: %w", tagID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit content: %w", err)
	}

	result.Tags, err = s.tagsFor(ctx, result.ID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindByID retrieves a content item with its tags. Returns nil if not found.
func (s *ContentStore) FindByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content_items WHERE id = $1`, id)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	c.Tags, err = s.tagsFor(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindPublishedByID retrieves a published content item. Drafts and missing
// ids both return nil.
func (s *ContentStore) FindPublishedByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contentColumns+` FROM content_items
		WHERE id = $1 AND status = 'published'`, id)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published content: %w", err)
	}
	return c, nil
}

// SaveState persists the lifecycle columns of an item after a state machine
// transition (publish, hide, schedule, unschedule). The implicit save
// transitions are applied before writing.
func (s *ContentStore) SaveState(ctx context.Context, c *models.ContentItem) error {
	now := s.now()
	c.Normalize(now)
	_, err := s.db.ExecContext(ctx, `
		UPDATE content_items SET
			status = $1, scheduled_at = $2, published_at = $3, updated_at = $4
		WHERE id = $5
	`, c.Status, c.ScheduledAt, c.PublishedAt, now, c.ID)
	if err != nil {
		return fmt.Errorf("save content state: %w", err)
	}
	c.UpdatedAt = now
	return nil
}

// UpdateFields writes only the named metadata columns of c. Unknown column
// names are rejected so callers cannot widen the update by accident.
func (s *ContentStore) UpdateFields(ctx context.Context, c *models.ContentItem, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	values := map[string]any{
		"title":         c.Title,
		"lead":          c.Lead,
		"title_picture": c.TitlePicture,
	}

	var sets []string
	var args []any
	for _, f := range fields {
		if !metadataColumns[f] {
			return fmt.Errorf("update content: column %q is not updatable", f)
		}
		args = append(args, values[f])
		sets = append(sets, fmt.Sprintf("%s = $%d", f, len(args)))
	}
	now := s.now()
	args = append(args, now)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, c.ID)

	query := fmt.Sprintf(`UPDATE content_items SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update content fields: %w", err)
	}
	c.UpdatedAt = now
	return nil
}

// PublishScheduled publishes every draft whose scheduled time has passed
// in a single predicate-scoped UPDATE and returns how many rows changed.
// Concurrent or repeated calls are safe: rows already published no longer
// match the predicate.
func (s *ContentStore) PublishScheduled(ctx context.Context, now time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE content_items SET
			status = 'published', published_at = $1, scheduled_at = NULL, updated_at = $1
		WHERE status = 'draft' AND scheduled_at IS NOT NULL AND scheduled_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("publish scheduled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("publish scheduled rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("publish scheduled commit: %w", err)
	}
	return n, nil
}

// IncrementViews atomically adds one view to a published item and returns
// the new total. found is false when no published item has the given id.
// updated_at is not touched: a view is not an edit.
func (s *ContentStore) IncrementViews(ctx context.Context, id int64) (views int64, found bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		UPDATE content_items SET views = views + 1
		WHERE id = $1 AND status = 'published'
		RETURNING views
	`, id).Scan(&views)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("increment views: %w", err)
	}
	return views, true, nil
}

// Views returns the current view count of a published item.
func (s *ContentStore) Views(ctx context.Context, id int64) (views int64, found bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT views FROM content_items WHERE id = $1 AND status = 'published'
	`, id).Scan(&views)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read views: %w", err)
	}
	return views, true, nil
}

// whereClause renders the WHERE part for a content filter.
func whereClause(f models.ContentFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Type != "" {
		add("content_type = $%d", f.Type)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.FilterCategory {
		add("category_id = ANY($%d)", f.CategoryIDs)
	}
	if len(f.ExcludeIDs) > 0 {
		add("NOT (id = ANY($%d))", f.ExcludeIDs)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns content items matching f, newest first by effective publish
// time (published_at, falling back to created_at) with updated_at as the
// tie-break. Limit 0 means no limit.
func (s *ContentStore) List(ctx context.Context, f models.ContentFilter) ([]models.ContentItem, error) {
	where, args := whereClause(f)
	query := `SELECT ` + contentColumns + ` FROM content_items` + where +
		` ORDER BY COALESCE(published_at, created_at) DESC, updated_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Count returns the number of items matching f, ignoring Limit and Offset.
func (s *ContentStore) Count(ctx context.Context, f models.ContentFilter) (int, error) {
	where, args := whereClause(f)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_items`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return count, nil
}

// tagsFor loads the tags linked to a content item, ordered by name.
func (s *ContentStore) tagsFor(ctx context.Context, id int64) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug FROM tags t
		JOIN content_item_tags ct ON ct.tag_id = t.id
		WHERE ct.content_item_id = $1
		ORDER BY t.name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load content tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SlugExists reports whether a content item already uses slug.
func (s *ContentStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM content_items WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check content slug: %w", err)
	}
	return exists, nil
}
