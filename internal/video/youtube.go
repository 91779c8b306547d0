// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package video

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// youtubeProvider implements Provider using the YouTube Data API v3
// (GET /youtube/v3/videos?part=snippet).
type youtubeProvider struct {
	config ProviderConfig
	client *resty.Client
}

// newYouTube creates a YouTube provider.
func newYouTube(cfg ProviderConfig, client *resty.Client) *youtubeProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.googleapis.com"
	}
	return &youtubeProvider{config: cfg, client: client}
}

func (p *youtubeProvider) Name() Source { return SourceYouTube }

// Fetch looks up a single video. Without an API key there is nothing to
// ask, which is reported as no data rather than an error.
func (p *youtubeProvider) Fetch(ctx context.Context, id string) (*Metadata, error) {
	if p.config.APIKey == "" {
		return nil, nil
	}

	var result youtubeResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"id":   id,
			"part": "snippet",
			"key":  p.config.APIKey,
		}).
		SetResult(&result).
		Get(p.config.BaseURL + "/youtube/v3/videos")
	if err != nil {
		return nil, fmt.Errorf("youtube http: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("youtube API error (status %d)", resp.StatusCode())
	}

	if len(result.Items) == 0 {
		return nil, nil
	}
	snippet := result.Items[0].Snippet
	return &Metadata{
		Title:     snippet.Title,
		Lead:      snippet.Description,
		Thumbnail: snippet.Thumbnails.best(),
	}, nil
}

// --- YouTube API types ---

type youtubeResponse struct {
	Items []youtubeItem `json:"items"`
}

type youtubeItem struct {
	Snippet youtubeSnippet `json:"snippet"`
}

type youtubeSnippet struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Thumbnails  youtubeThumbnails `json:"thumbnails"`
}

type youtubeThumbnail struct {
	URL string `json:"url"`
}

type youtubeThumbnails struct {
	High     *youtubeThumbnail `json:"high"`
	Standard *youtubeThumbnail `json:"standard"`
	Default  *youtubeThumbnail `json:"default"`
}

// best walks the ladder high, standard, default and returns the first
// non-empty URL, or "". maxres is not requested.
func (t youtubeThumbnails) best() string {
	for _, th := range []*youtubeThumbnail{t.High, t.Standard, t.Default} {
		if th != nil && th.URL != "" {
			return th.URL
		}
	}
	return ""
}
