// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package feed builds the public news feed: published articles and videos,
// optionally narrowed to a category subtree or with given ids left out,
// newest first.
package feed

import (
	"context"
	"fmt"
	"time"

	"mediaservice/internal/models"
)

// ContentSource lists and counts content items. store.ContentStore
// satisfies it.
type ContentSource interface {
	List(ctx context.Context, f models.ContentFilter) ([]models.ContentItem, error)
	Count(ctx context.Context, f models.ContentFilter) (int, error)
}

// CategorySource returns the flat category list. store.CategoryStore
// satisfies it.
type CategorySource interface {
	List(ctx context.Context) ([]models.Category, error)
}

// PictureResolver turns a stored title_picture value into a public URL,
// returning "" when it cannot.
type PictureResolver interface {
	ResolvePicture(value string) string
}

// Page is one slice of the feed plus the size of the whole filtered set.
type Page struct {
	Items      []Summary
	TotalCount int
}

// Summary is the public view of a content item in the feed.
type Summary struct {
	ID            int64         `json:"id"`
	DatePublished *time.Time    `json:"datePublished"`
	Title         string        `json:"title"`
	Lead          string        `json:"lead"`
	TitlePicture  *string       `json:"titlePicture"`
	YTCode        *string       `json:"ytCode"`
	Category      *CategoryNode `json:"category"`
}

// CategoryNode is the public view of a category.
type CategoryNode struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	SubCategories []CategoryNode `json:"subCategories"`
}

// Service answers feed and category queries.
type Service struct {
	content    ContentSource
	categories CategorySource
	pictures   PictureResolver
}

// NewService creates a feed service. pictures may be nil, in which case
// title pictures are passed through unchanged.
func NewService(content ContentSource, categories CategorySource, pictures PictureResolver) *Service {
	return &Service{content: content, categories: categories, pictures: pictures}
}

// Feed returns one page of published items, or all of them when
// q.AllNews is set. A category id that does not exist yields an empty
// page, not an error.
func (s *Service) Feed(ctx context.Context, q Query) (*Page, error) {
	q.ApplyDefaults()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	flat, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed categories: %w", err)
	}

	filter := models.ContentFilter{Status: models.ContentStatusPublished}
	if q.CategoryID != nil {
		ids, ok := models.DescendantIDs(flat, *q.CategoryID)
		if !ok {
			return &Page{Items: []Summary{}}, nil
		}
		filter.FilterCategory = true
		filter.CategoryIDs = ids
	}

	total, err := s.content.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("feed count: %w", err)
	}

	if !q.AllNews {
		filter.Limit = q.PageSize
		filter.Offset = q.Offset()
		if filter.Offset >= total {
			return &Page{Items: []Summary{}, TotalCount: total}, nil
		}
	}

	items, err := s.content.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("feed list: %w", err)
	}
	return &Page{Items: s.summaries(items, flat), TotalCount: total}, nil
}

// FeedExcluding returns every published item whose id is not in
// q.Excluded, unpaginated.
func (s *Service) FeedExcluding(ctx context.Context, q ExcludeQuery) (*Page, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	flat, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed categories: %w", err)
	}

	filter := models.ContentFilter{
		Status:     models.ContentStatusPublished,
		ExcludeIDs: q.Excluded,
	}
	items, err := s.content.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("feed list: %w", err)
	}
	return &Page{Items: s.summaries(items, flat), TotalCount: len(items)}, nil
}

// Categories returns the root categories, each with its full subtree.
func (s *Service) Categories(ctx context.Context) ([]CategoryNode, error) {
	flat, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	roots := models.BuildCategoryTree(flat)
	nodes := make([]CategoryNode, 0, len(roots))
	for _, r := range roots {
		nodes = append(nodes, treeNode(r))
	}
	return nodes, nil
}

func treeNode(c models.Category) CategoryNode {
	n := CategoryNode{
		ID:            c.ID,
		Name:          c.Name,
		Type:          string(c.Type),
		SubCategories: make([]CategoryNode, 0, len(c.Children)),
	}
	for _, child := range c.Children {
		n.SubCategories = append(n.SubCategories, treeNode(child))
	}
	return n
}

// summaries maps items to their public view. Each item's category carries
// its direct children only.
func (s *Service) summaries(items []models.ContentItem, flat []models.Category) []Summary {
	byID := make(map[int64]models.Category, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}

	out := make([]Summary, 0, len(items))
	for i := range items {
		out = append(out, s.summary(&items[i], flat, byID))
	}
	return out
}

func (s *Service) summary(item *models.ContentItem, flat []models.Category, byID map[int64]models.Category) Summary {
	sum := Summary{
		ID:            item.ID,
		DatePublished: item.PublishedAt,
		Title:         item.Title,
		Lead:          item.Lead,
	}

	if pic := s.resolvePicture(item.TitlePicture); pic != "" {
		sum.TitlePicture = &pic
	}
	if item.IsVideo() && item.YouTubeID != "" {
		code := item.YouTubeID
		sum.YTCode = &code
	}
	if item.CategoryID != nil {
		if c, ok := byID[*item.CategoryID]; ok {
			node := CategoryNode{ID: c.ID, Name: c.Name, Type: string(c.Type), SubCategories: []CategoryNode{}}
			for _, child := range models.DirectChildren(flat, c.ID) {
				node.SubCategories = append(node.SubCategories, CategoryNode{
					ID: child.ID, Name: child.Name, Type: string(child.Type), SubCategories: []CategoryNode{},
				})
			}
			sum.Category = &node
		}
	}
	return sum
}

func (s *Service) resolvePicture(value string) string {
	if value == "" {
		return ""
	}
	if s.pictures == nil {
		return value
	}
	return s.pictures.ResolvePicture(value)
}
