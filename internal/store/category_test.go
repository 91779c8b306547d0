package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"mediaservice/internal/models"
)

func TestCategoryStoreCRUD(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	suffix := uuid.NewString()[:8]
	rootSlug, childSlug := "cat-root-"+suffix, "cat-child-"+suffix
	t.Cleanup(func() { cleanCategories(t, db, childSlug, rootSlug) })

	root, err := s.Create(ctx, &models.Category{Name: "Root", Slug: rootSlug, Type: models.CategoryTypeVideo})
	if err != nil {
		t.Fatalf("Create root: %v", err)
	}
	if root.Type != models.CategoryTypeVideo || !root.IsRoot() {
		t.Errorf("root: %+v", root)
	}

	child, err := s.Create(ctx, &models.Category{Name: "Child", Slug: childSlug, Type: models.CategoryTypeVideo, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("Create child: %v", err)
	}

	flat, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	ids, ok := models.DescendantIDs(flat, root.ID)
	if !ok || len(ids) != 2 {
		t.Errorf("descendants of root: %v (ok=%v)", ids, ok)
	}

	exists, err := s.SlugExists(ctx, childSlug)
	if err != nil || !exists {
		t.Errorf("SlugExists: %v, %v", exists, err)
	}

	bySlug, err := s.FindBySlug(ctx, childSlug)
	if err != nil || bySlug == nil || bySlug.ID != child.ID {
		t.Errorf("FindBySlug: %+v, %v", bySlug, err)
	}
	if none, err := s.FindBySlug(ctx, "no-such-"+suffix); err != nil || none != nil {
		t.Errorf("FindBySlug(missing): %+v, %v", none, err)
	}

	tree, err := s.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	var found bool
	for _, r := range tree {
		if r.ID == root.ID {
			found = len(r.Children) == 1 && r.Children[0].ID == child.ID
		}
	}
	if !found {
		t.Errorf("tree does not nest the child under its root")
	}

	child.Name = "Moved"
	child.Type = models.CategoryTypeArticle
	child.ParentID = nil
	updated, err := s.Update(ctx, child)
	if err != nil || updated == nil {
		t.Fatalf("Update: %v, %v", updated, err)
	}
	if updated.Name != "Moved" || updated.Slug != childSlug || !updated.IsRoot() {
		t.Errorf("updated: %+v", updated)
	}
	child.ParentID = &root.ID
	if _, err := s.Update(ctx, child); err != nil {
		t.Fatalf("Update back: %v", err)
	}
	if missing, err := s.Update(ctx, &models.Category{ID: -1, Name: "x", Type: models.CategoryTypeArticle}); err != nil || missing != nil {
		t.Errorf("Update(-1): %v, %v", missing, err)
	}

	deleted, err := s.Delete(ctx, root.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete: %v, %v", deleted, err)
	}

	// The child is re-rooted, not removed.
	orphan, err := s.FindByID(ctx, child.ID)
	if err != nil || orphan == nil {
		t.Fatalf("FindByID(child): %v, %v", orphan, err)
	}
	if !orphan.IsRoot() {
		t.Errorf("child parent: got %v, want nil", orphan.ParentID)
	}

	again, err := s.Delete(ctx, root.ID)
	if err != nil || again {
		t.Errorf("second Delete: %v, %v", again, err)
	}
}

func TestTagStoreRenameAndLink(t *testing.T) {
	db := testDB(t)
	tags := NewTagStore(db)
	content := NewContentStore(db)
	ctx := context.Background()
	author := testAuthor(t, db, "tag-link@store-test.local")

	slugA, slugB := "tag-a-"+uuid.NewString()[:8], "tag-b-"+uuid.NewString()[:8]
	t.Cleanup(func() { cleanTags(t, db, slugA, slugB) })

	a, err := tags.Create(ctx, slugA, slugA)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := tags.Create(ctx, slugB, slugB)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	item, err := content.Create(ctx, newTestItem(t, db, author), []int64{a.ID})
	if err != nil {
		t.Fatalf("Create content: %v", err)
	}

	renamed, err := tags.Rename(ctx, a.ID, "Renamed "+slugA)
	if err != nil || renamed == nil {
		t.Fatalf("Rename: %v, %v", renamed, err)
	}
	if renamed.Slug != slugA {
		t.Errorf("slug changed on rename: %q", renamed.Slug)
	}

	if err := tags.SetForContent(ctx, item.ID, []int64{b.ID}); err != nil {
		t.Fatalf("SetForContent: %v", err)
	}
	got, _ := content.FindByID(ctx, item.ID)
	if len(got.Tags) != 1 || got.Tags[0].ID != b.ID {
		t.Errorf("tags after SetForContent: %+v", got.Tags)
	}

	byID, err := tags.FindByID(ctx, b.ID)
	if err != nil || byID == nil || byID.Slug != slugB {
		t.Errorf("FindByID: %+v, %v", byID, err)
	}
	if none, err := tags.FindByID(ctx, -1); err != nil || none != nil {
		t.Errorf("FindByID(-1): %+v, %v", none, err)
	}

	all, err := tags.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var listed int
	for _, tg := range all {
		if tg.ID == a.ID || tg.ID == b.ID {
			listed++
		}
	}
	if listed != 2 {
		t.Errorf("List: found %d of the 2 test tags", listed)
	}

	missing, err := tags.Rename(ctx, -1, "x")
	if err != nil || missing != nil {
		t.Errorf("Rename(-1): %v, %v", missing, err)
	}
}
