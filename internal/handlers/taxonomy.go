package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"mediaservice/internal/middleware"
	"mediaservice/internal/models"
	"mediaservice/internal/slug"
)

// CategoryRepository is the category persistence used by the author API.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Tree(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id int64) (bool, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// TagRepository is the tag persistence used by the author API.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	Create(ctx context.Context, name, slug string) (*models.Tag, error)
	Rename(ctx context.Context, id int64, name string) (*models.Tag, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Taxonomy groups the category and tag handlers. Every author may read
// them; only admins and editors may change them.
type Taxonomy struct {
	categories CategoryRepository
	tags       TagRepository
	cache      Invalidator
}

// NewTaxonomy creates the taxonomy handler group.
func NewTaxonomy(categories CategoryRepository, tags TagRepository, cache Invalidator) *Taxonomy {
	return &Taxonomy{categories: categories, tags: tags, cache: cache}
}

type createCategoryRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Slug     string `json:"slug" validate:"max=100"`
	Type     string `json:"type" validate:"omitempty,oneof=article video"`
	ParentID *int64 `json:"parentId" validate:"omitempty,min=1"`
}

// CreateCategory handles POST /api/categories.
func (t *Taxonomy) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !t.allowed(w, r) {
		return
	}

	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if msg := firstViolation(req); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	if req.ParentID != nil {
		parent, err := t.categories.FindByID(ctx, *req.ParentID)
		if err != nil {
			writeInternal(w, r, "find parent category failed", err)
			return
		}
		if parent == nil {
			writeBadRequest(w, fmt.Sprintf("Parent category %d does not exist.", *req.ParentID))
			return
		}
	}

	c := &models.Category{
		Name:     req.Name,
		Type:     models.CategoryTypeArticle,
		ParentID: req.ParentID,
	}
	if req.Type != "" {
		c.Type = models.CategoryType(req.Type)
	}

	source := req.Slug
	if source == "" {
		source = req.Name
	}
	s, err := slug.Unique(ctx, source, "category", models.TaxonomySlugLen, t.categories.SlugExists)
	if err != nil {
		writeInternal(w, r, "generate category slug failed", err)
		return
	}
	c.Slug = s

	created, err := t.categories.Create(ctx, c)
	if err != nil {
		writeInternal(w, r, "create category failed", err)
		return
	}

	slog.InfoContext(ctx, "category created", "id", created.ID, "slug", created.Slug)
	t.invalidate(ctx)
	writeJSON(w, http.StatusCreated, created)
}

// ListCategories handles GET /api/categories: root categories with their
// nested children.
func (t *Taxonomy) ListCategories(w http.ResponseWriter, r *http.Request) {
	tree, err := t.categories.Tree(r.Context())
	if err != nil {
		writeInternal(w, r, "list categories failed", err)
		return
	}
	if tree == nil {
		tree = []models.Category{}
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: tree})
}

type updateCategoryRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Type     string `json:"type" validate:"omitempty,oneof=article video"`
	ParentID *int64 `json:"parentId" validate:"omitempty,min=1"`
}

// UpdateCategory handles PUT /api/categories/{id}. It renames, retypes or
// moves a category; the slug is kept. A category cannot be moved under
// itself or one of its descendants.
func (t *Taxonomy) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !t.allowed(w, r) {
		return
	}

	id, ok := idParam(r)
	if !ok {
		writeNotFound(w, "Category does not exist")
		return
	}
	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if msg := firstViolation(req); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	flat, err := t.categories.List(ctx)
	if err != nil {
		writeInternal(w, r, "list categories failed", err)
		return
	}
	subtree, found := models.DescendantIDs(flat, id)
	if !found {
		writeNotFound(w, fmt.Sprintf("Category with ID %d does not exist", id))
		return
	}
	if req.ParentID != nil {
		if slices.Contains(subtree, *req.ParentID) {
			writeBadRequest(w, "A category cannot be moved under itself or its descendants.")
			return
		}
		if !slices.ContainsFunc(flat, func(c models.Category) bool { return c.ID == *req.ParentID }) {
			writeBadRequest(w, fmt.Sprintf("Parent category %d does not exist.", *req.ParentID))
			return
		}
	}

	c := &models.Category{ID: id, Name: req.Name, Type: models.CategoryTypeArticle, ParentID: req.ParentID}
	if req.Type != "" {
		c.Type = models.CategoryType(req.Type)
	}
	updated, err := t.categories.Update(ctx, c)
	if err != nil {
		writeInternal(w, r, "update category failed", err)
		return
	}
	if updated == nil {
		writeNotFound(w, fmt.Sprintf("Category with ID %d does not exist", id))
		return
	}

	slog.InfoContext(ctx, "category updated", "id", id, "parent", updated.ParentID)
	t.invalidate(ctx)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCategory handles DELETE /api/categories/{id}. Children become
// roots and items in the category become uncategorized.
func (t *Taxonomy) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !t.allowed(w, r) {
		return
	}

	id, ok := idParam(r)
	if !ok {
		writeNotFound(w, "Category does not exist")
		return
	}
	deleted, err := t.categories.Delete(ctx, id)
	if err != nil {
		writeInternal(w, r, "delete category failed", err)
		return
	}
	if !deleted {
		writeNotFound(w, fmt.Sprintf("Category with ID %d does not exist", id))
		return
	}

	slog.InfoContext(ctx, "category deleted", "id", id)
	t.invalidate(ctx)
	w.WriteHeader(http.StatusNoContent)
}

type tagRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ListTags handles GET /api/tags, ordered by name.
func (t *Taxonomy) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := t.tags.List(r.Context())
	if err != nil {
		writeInternal(w, r, "list tags failed", err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: tags})
}

// CreateTag handles POST /api/tags.
func (t *Taxonomy) CreateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !t.allowed(w, r) {
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if msg := firstViolation(req); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	s, err := slug.Unique(ctx, req.Name, "tag", models.TaxonomySlugLen, t.tags.SlugExists)
	if err != nil {
		writeInternal(w, r, "generate tag slug failed", err)
		return
	}
	tag, err := t.tags.Create(ctx, req.Name, s)
	if err != nil {
		writeInternal(w, r, "create tag failed", err)
		return
	}

	slog.InfoContext(ctx, "tag created", "id", tag.ID, "slug", tag.Slug)
	writeJSON(w, http.StatusCreated, tag)
}

// RenameTag handles PUT /api/tags/{id}. The slug does not change.
func (t *Taxonomy) RenameTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !t.allowed(w, r) {
		return
	}

	id, ok := idParam(r)
	if !ok {
		writeNotFound(w, "Tag does not exist")
		return
	}
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if msg := firstViolation(req); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	tag, err := t.tags.Rename(ctx, id, req.Name)
	if err != nil {
		writeInternal(w, r, "rename tag failed", err)
		return
	}
	if tag == nil {
		writeNotFound(w, fmt.Sprintf("Tag with ID %d does not exist", id))
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// allowed writes 403 unless the caller may manage categories and tags.
func (t *Taxonomy) allowed(w http.ResponseWriter, r *http.Request) bool {
	user := middleware.UserFromCtx(r.Context())
	if user == nil || !user.CanManageTaxonomy() {
		writeErrors(w, http.StatusForbidden, apiError{
			Code:    "forbidden",
			Title:   "Forbidden",
			Details: "Only editors and admins may change categories and tags.",
		})
		return false
	}
	return true
}

func (t *Taxonomy) invalidate(ctx context.Context) {
	if t.cache == nil {
		return
	}
	if err := t.cache.InvalidateAll(ctx); err != nil {
		slog.WarnContext(ctx, "response cache invalidation failed", "error", err)
	}
}
