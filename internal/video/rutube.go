// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package video

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// rutubeProvider implements Provider using the public RuTube video API
// (GET /api/video/{id}/). No credentials are needed.
type rutubeProvider struct {
	config ProviderConfig
	client *resty.Client
}

// newRuTube creates a RuTube provider.
func newRuTube(cfg ProviderConfig, client *resty.Client) *rutubeProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://rutube.ru"
	}
	return &rutubeProvider{config: cfg, client: client}
}

func (p *rutubeProvider) Name() Source { return SourceRuTube }

// Fetch looks up a single video. A 404 means the video does not exist and
// is reported as no data.
func (p *rutubeProvider) Fetch(ctx context.Context, id string) (*Metadata, error) {
	var result rutubeResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(p.config.BaseURL + "/api/video/" + url.PathEscape(id) + "/")
	if err != nil {
		return nil, fmt.Errorf("rutube http: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("rutube API error (status %d)", resp.StatusCode())
	}

	return &Metadata{
		Title:     result.Title,
		Lead:      result.Description,
		Thumbnail: result.ThumbnailURL,
	}, nil
}

type rutubeResponse struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
}
