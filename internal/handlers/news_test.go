package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"mediaservice/internal/feed"
	"mediaservice/internal/models"
)

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

func publishedItem(id int64, hoursAgo int, cat *int64) models.ContentItem {
	at := t0.Add(-time.Duration(hoursAgo) * time.Hour)
	return models.ContentItem{
		ID:          id,
		Type:        models.ContentTypeArticle,
		Title:       "Item",
		Body:        "# Heading\n\nText",
		Status:      models.ContentStatusPublished,
		CategoryID:  cat,
		CreatedAt:   at,
		PublishedAt: &at,
		UpdatedAt:   at,
	}
}

type fakeViews struct {
	views map[int64]int64
	ips   []string
	err   error
}

func (f *fakeViews) Hit(_ context.Context, id int64, ip string) (int64, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	f.ips = append(f.ips, ip)
	v, ok := f.views[id]
	if !ok {
		return 0, false, nil
	}
	v++
	f.views[id] = v
	return v, true, nil
}

func newTestNews(content *memContent, views *fakeViews) *News {
	cats := &memCategories{items: []models.Category{
		{ID: 1, Name: "News", Type: models.CategoryTypeArticle},
		{ID: 2, Name: "Tech", Type: models.CategoryTypeArticle, ParentID: int64Ptr(1)},
		{ID: 3, Name: "Clips", Type: models.CategoryTypeVideo},
	}}
	n := NewNews(feed.NewService(content, cats, cdnPictures{}), content, views, nil)
	n.clientIP = func(*http.Request) string { return "203.0.113.7" }
	return n
}

type feedResponse struct {
	Data []feed.Summary `json:"data"`
	Meta struct {
		TotalCount int `json:"totalCount"`
	} `json:"meta"`
}

func decodeFeed(t *testing.T, body []byte) feedResponse {
	t.Helper()
	var resp feedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode feed: %v (%s)", err, body)
	}
	return resp
}

func TestNewsFeed(t *testing.T) {
	content := newMemContent(
		publishedItem(1, 3, int64Ptr(1)),
		publishedItem(2, 2, int64Ptr(2)),
		publishedItem(3, 1, int64Ptr(3)),
	)
	draft := publishedItem(4, 0, nil)
	draft.Status = models.ContentStatusDraft
	content.items[4] = &draft
	n := newTestNews(content, nil)

	tests := []struct {
		name  string
		query string
		ids   []int64
		total int
	}{
		{"default page", "", []int64{3, 2, 1}, 3},
		{"paged", "?pageSize=2&pageNumber=2", []int64{1}, 3},
		{"past the end", "?pageSize=2&pageNumber=5", []int64{}, 3},
		{"category subtree", "?categoryId=1", []int64{2, 1}, 2},
		{"unknown category", "?categoryId=99", []int64{}, 0},
		{"all news ignores paging", "?pageSize=1&allNews=true", []int64{3, 2, 1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, http.MethodGet, "/news/feed", "/news/feed"+tt.query, "", nil, n.Feed)
			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
			}
			resp := decodeFeed(t, w.Body.Bytes())
			if resp.Meta.TotalCount != tt.total {
				t.Errorf("totalCount: got %d, want %d", resp.Meta.TotalCount, tt.total)
			}
			if len(resp.Data) != len(tt.ids) {
				t.Fatalf("items: got %d, want %d", len(resp.Data), len(tt.ids))
			}
			for i, id := range tt.ids {
				if resp.Data[i].ID != id {
					t.Errorf("item %d: got id %d, want %d", i, resp.Data[i].ID, id)
				}
			}
		})
	}
}

func TestNewsFeedEmptyDataIsArray(t *testing.T) {
	n := newTestNews(newMemContent(), nil)
	w := serve(t, http.MethodGet, "/news/feed", "/news/feed", "", nil, n.Feed)
	if !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Errorf("empty feed must serialize data as []: %s", w.Body.String())
	}
}

func TestNewsFeedInvalidQuery(t *testing.T) {
	n := newTestNews(newMemContent(), nil)

	tests := []struct {
		query string
		code  string
	}{
		{"?pageSize=0", "invalid_pageSize"},
		{"?pageSize=101", "invalid_pageSize"},
		{"?pageNumber=0", "invalid_pageNumber"},
		{"?pageSize=abc", "invalid_pageSize"},
		{"?categoryId=x", "invalid_categoryId"},
		{"?allNews=maybe", "invalid_allNews"},
	}
	for _, tt := range tests {
		w := serve(t, http.MethodGet, "/news/feed", "/news/feed"+tt.query, "", nil, n.Feed)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", tt.query, w.Code)
			continue
		}
		if e := decodeErrors(t, w); e.Code != tt.code {
			t.Errorf("%s: code %q, want %q", tt.query, e.Code, tt.code)
		}
	}
}

func TestNewsFeedStoreError(t *testing.T) {
	content := newMemContent()
	content.err = errStore
	n := newTestNews(content, nil)

	w := serve(t, http.MethodGet, "/news/feed", "/news/feed", "", nil, n.Feed)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", w.Code)
	}
}

func TestNewsFeedExcluding(t *testing.T) {
	content := newMemContent(
		publishedItem(1, 3, nil),
		publishedItem(2, 2, nil),
		publishedItem(3, 1, nil),
	)
	n := newTestNews(content, nil)

	w := serve(t, http.MethodPost, "/news/feed", "/news/feed", `{"excluded":[2]}`, nil, n.FeedExcluding)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeFeed(t, w.Body.Bytes())
	if resp.Meta.TotalCount != 2 || len(resp.Data) != 2 || resp.Data[0].ID != 3 || resp.Data[1].ID != 1 {
		t.Errorf("got %+v", resp)
	}

	// An empty body excludes nothing.
	w = serve(t, http.MethodPost, "/news/feed", "/news/feed", "", nil, n.FeedExcluding)
	if resp := decodeFeed(t, w.Body.Bytes()); resp.Meta.TotalCount != 3 {
		t.Errorf("empty body: totalCount %d, want 3", resp.Meta.TotalCount)
	}

	w = serve(t, http.MethodPost, "/news/feed", "/news/feed", `{"excluded":[0]}`, nil, n.FeedExcluding)
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-positive id: status %d, want 400", w.Code)
	}

	w = serve(t, http.MethodPost, "/news/feed", "/news/feed", `{"excluded":"x"}`, nil, n.FeedExcluding)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status %d, want 400", w.Code)
	}
}

func TestNewsFeedSummaryShape(t *testing.T) {
	item := publishedItem(5, 1, int64Ptr(1))
	item.Type = models.ContentTypeVideo
	item.YouTubeID = "dQw4w9WgXcQ"
	item.TitlePicture = "pictures/5.jpg"
	n := newTestNews(newMemContent(item), nil)

	w := serve(t, http.MethodGet, "/news/feed", "/news/feed", "", nil, n.Feed)
	resp := decodeFeed(t, w.Body.Bytes())
	if len(resp.Data) != 1 {
		t.Fatalf("items: got %d", len(resp.Data))
	}
	s := resp.Data[0]
	if s.YTCode == nil || *s.YTCode != "dQw4w9WgXcQ" {
		t.Errorf("ytCode: got %v", s.YTCode)
	}
	if s.TitlePicture == nil || *s.TitlePicture != cdnBase+"pictures/5.jpg" {
		t.Errorf("titlePicture: got %v", s.TitlePicture)
	}
	if s.Category == nil || s.Category.ID != 1 || len(s.Category.SubCategories) != 1 {
		t.Errorf("category: got %+v", s.Category)
	}
}

func TestNewsCategories(t *testing.T) {
	n := newTestNews(newMemContent(), nil)

	w := serve(t, http.MethodGet, "/news/categories", "/news/categories", "", nil, n.Categories)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp struct {
		Data []feed.CategoryNode `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("roots: got %d, want 2", len(resp.Data))
	}
	if resp.Data[0].Name != "News" || len(resp.Data[0].SubCategories) != 1 || resp.Data[0].SubCategories[0].Name != "Tech" {
		t.Errorf("tree: got %+v", resp.Data[0])
	}
	if strings.Contains(w.Body.String(), `"meta"`) {
		t.Error("categories response must not carry meta")
	}
}

func TestNewsDetail(t *testing.T) {
	empty := publishedItem(2, 1, nil)
	empty.Body = "  "
	draft := publishedItem(3, 1, nil)
	draft.Status = models.ContentStatusDraft
	video := publishedItem(4, 1, nil)
	video.Type = models.ContentTypeVideo
	video.YouTubeID = "dQw4w9WgXcQ"
	video.Body = "Clip notes"
	n := newTestNews(newMemContent(publishedItem(1, 1, nil), empty, draft, video), nil)

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"rendered markdown", "/news/1", http.StatusOK, "<h2 id=\"heading\">"},
		{"empty body placeholder", "/news/2", http.StatusOK, emptyBody},
		{"draft hidden", "/news/3", http.StatusNotFound, "Article with ID 3 does not exist"},
		{"published video", "/news/4", http.StatusOK, "Clip notes"},
		{"missing", "/news/99", http.StatusNotFound, "Article with ID 99 does not exist"},
		{"non-numeric id", "/news/abc", http.StatusNotFound, "Article with ID abc does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, http.MethodGet, "/news/{id}", tt.path, "", nil, n.Detail)
			if w.Code != tt.status {
				t.Fatalf("status: got %d, want %d", w.Code, tt.status)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body %q does not contain %q", w.Body.String(), tt.want)
			}
			if tt.status == http.StatusOK && !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
				t.Errorf("content-type: got %q", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestNewsDetailNotFoundEnvelope(t *testing.T) {
	n := newTestNews(newMemContent(), nil)
	w := serve(t, http.MethodGet, "/news/{id}", "/news/7", "", nil, n.Detail)

	e := decodeErrors(t, w)
	if e.Code != "not_found" || e.Title != "Object not found" {
		t.Errorf("envelope: got %+v", e)
	}
}

func TestNewsHit(t *testing.T) {
	views := &fakeViews{views: map[int64]int64{1: 10}}
	n := newTestNews(newMemContent(publishedItem(1, 1, nil)), views)

	w := serve(t, http.MethodPost, "/news/{id}/hit", "/news/1/hit", "", nil, n.Hit)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["views"] != 11 {
		t.Errorf("views: got %d, want 11", resp["views"])
	}
	if len(views.ips) != 1 || views.ips[0] != "203.0.113.7" {
		t.Errorf("client ip: got %v", views.ips)
	}

	w = serve(t, http.MethodPost, "/news/{id}/hit", "/news/2/hit", "", nil, n.Hit)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown item: status %d, want 404", w.Code)
	}

	views.err = errStore
	w = serve(t, http.MethodPost, "/news/{id}/hit", "/news/1/hit", "", nil, n.Hit)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("counter error: status %d, want 500", w.Code)
	}
}
