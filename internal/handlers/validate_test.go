package handlers

import (
	"strings"
	"testing"

	"mediaservice/internal/models"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name        string
		contentType models.ContentType
		title       string
		slug        string
		body        string
		wantError   bool
	}{
		{"valid article", models.ContentTypeArticle, "My Title", "my-title", "Body text", false},
		{"article without title", models.ContentTypeArticle, "", "slug", "body", true},
		{"whitespace title", models.ContentTypeArticle, "   ", "slug", "body", true},
		{"video without title", models.ContentTypeVideo, "", "", "", false},
		{"title too long", models.ContentTypeArticle, strings.Repeat("a", 256), "slug", "body", true},
		{"cyrillic title at limit", models.ContentTypeArticle, strings.Repeat("я", 255), "", "", false},
		{"slug too long", models.ContentTypeArticle, "title", strings.Repeat("a", 301), "body", true},
		{"body too long", models.ContentTypeArticle, "title", "slug", strings.Repeat("a", 200_001), true},
		{"empty body allowed", models.ContentTypeArticle, "title", "slug", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateContent(tt.contentType, tt.title, tt.slug, tt.body)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestFirstViolation(t *testing.T) {
	tests := []struct {
		name string
		req  createContentRequest
		want string
	}{
		{"valid", createContentRequest{Type: "article", Title: "x"}, ""},
		{"missing type", createContentRequest{Title: "x"}, "type fails required"},
		{"unknown type", createContentRequest{Type: "podcast"}, "type fails oneof=article video"},
		{"bad status", createContentRequest{Type: "video", Status: "archived"}, "status fails oneof=draft published"},
		{"bad tag id", createContentRequest{Type: "video", TagIDs: []int64{0}}, "tagIds[0] fails min=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstViolation(tt.req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	if _, msg := parseTime("publishAt", "2026-11-01T09:00:00+03:00"); msg != "" {
		t.Errorf("valid timestamp rejected: %s", msg)
	}
	for _, bad := range []string{"", "tomorrow", "2026-11-01 09:00"} {
		if _, msg := parseTime("publishAt", bad); msg == "" {
			t.Errorf("parseTime(%q) should fail", bad)
		}
	}
}
