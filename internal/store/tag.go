// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"mediaservice/internal/models"
)

// TagStore manages tags and their links to content items.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// List returns all tags ordered by name.
func (s *TagStore) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
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

// FindByID retrieves a tag by ID. Returns nil if not found.
func (s *TagStore) FindByID(ctx context.Context, id int64) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx, `SELECT id, name, slug FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by id: %w", err)
	}
	return &t, nil
}

// Create inserts a new tag and returns it.
func (s *TagStore) Create(ctx context.Context, name, slug string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		RETURNING id, name, slug
	`, name, slug).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &t, nil
}

// Rename changes the name of a tag. The slug is left as is so existing
// links keep working. Returns nil if the tag does not exist.
func (s *TagStore) Rename(ctx context.Context, id int64, name string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx, `
		UPDATE tags SET name = $1 WHERE id = $2
		RETURNING id, name, slug
	`, name, id).Scan(&t.ID, &t.Name, &t.Slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rename tag: %w", err)
	}
	return &t, nil
}

// SetForContent replaces the tag links of a content item in one transaction.
func (s *TagStore) SetForContent(ctx context.Context, contentID int64, tagIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM content_item_tags WHERE content_item_id = $1`, contentID); err != nil {
		return fmt.Errorf("clear content tags: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO content_item_tags (content_item_id, tag_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare content tags: %w", err)
	}
	defer stmt.Close()

	for _, id := range tagIDs {
		if _, err := stmt.ExecContext(ctx, contentID, id); err != nil {
			return fmt.Errorf("link tag %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// SlugExists reports whether a tag with the given slug exists.
func (s *TagStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tags WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tag slug: %w", err)
	}
	return exists, nil
}
