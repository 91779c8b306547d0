// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// CategoryType is informational: it tells clients whether a category is
// meant for articles or videos. Items of either type may be filed anywhere.
type CategoryType string

const (
	CategoryTypeArticle CategoryType = "article"
	CategoryTypeVideo   CategoryType = "video"
)

// TaxonomySlugLen is the column width of category and tag slugs.
const TaxonomySlugLen = 100

// Category is a node of the category tree. The tree is stored flat with
// parent references; nothing in the schema prevents a cycle, so every walk
// over it tracks the ids it has already seen.
type Category struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Type      CategoryType `json:"type"`
	ParentID  *int64       `json:"parent_id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Virtual field populated by BuildCategoryTree.
	Children []Category `json:"children,omitempty"`
}

// IsRoot returns true for categories without a parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// childIndex groups category ids by parent id, preserving input order.
func childIndex(flat []Category) map[int64][]int {
	idx := make(map[int64][]int)
	for i, c := range flat {
		if c.ParentID != nil {
			idx[*c.ParentID] = append(idx[*c.ParentID], i)
		}
	}
	return idx
}

// DescendantIDs returns rootID followed by the ids of all its transitive
// children, breadth first. The second result is false when rootID is not in
// flat. A category reached twice (a cycle) is skipped on the second visit.
func DescendantIDs(flat []Category, rootID int64) ([]int64, bool) {
	found := false
	for _, c := range flat {
		if c.ID == rootID {
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}

	children := childIndex(flat)
	visited := map[int64]bool{rootID: true}
	ids := []int64{rootID}
	for i := 0; i < len(ids); i++ {
		for _, ci := range children[ids[i]] {
			id := flat[ci].ID
			if visited[id] {
				continue
			}
			visited[id] = true
			ids = append(ids, id)
		}
	}
	return ids, true
}

// BuildCategoryTree nests a flat category list under its roots. There is no
// depth limit; a node already placed in the tree is not placed again, so a
// cycle ends the branch instead of recursing forever. Categories that only
// belong to a cycle are unreachable from any root and are left out.
func BuildCategoryTree(flat []Category) []Category {
	children := childIndex(flat)
	visited := make(map[int64]bool, len(flat))

	var build func(i int) Category
	build = func(i int) Category {
		node := flat[i]
		node.Children = nil
		visited[node.ID] = true
		for _, ci := range children[node.ID] {
			if visited[flat[ci].ID] {
				continue
			}
			node.Children = append(node.Children, build(ci))
		}
		return node
	}

	var roots []Category
	for i, c := range flat {
		if c.IsRoot() && !visited[c.ID] {
			roots = append(roots, build(i))
		}
	}
	return roots
}

// DirectChildren returns the immediate children of id, in input order.
func DirectChildren(flat []Category, id int64) []Category {
	var result []Category
	for _, c := range flat {
		if c.ParentID != nil && *c.ParentID == id && c.ID != id {
			result = append(result, c)
		}
	}
	return result
}
