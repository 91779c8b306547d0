// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package video fetches metadata (title, description, thumbnail) for video
// content items from external hosting platforms. Each platform implements
// the Provider interface, and the Registry looks them up by source.
package video

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// Source identifies a video hosting platform.
type Source string

const (
	SourceYouTube Source = "youtube"
	SourceRuTube  Source = "rutube"
	SourceVK      Source = "vk"
)

// Metadata is the normalized result of a provider call. Fields may be empty
// when the platform did not return them.
type Metadata struct {
	Title     string
	Lead      string
	Thumbnail string
}

// Provider defines the interface that all video platforms implement.
type Provider interface {
	// Fetch returns metadata for the platform-specific video id. A nil
	// result with a nil error means the platform has no data for the id.
	Fetch(ctx context.Context, id string) (*Metadata, error)

	// Name returns the source this provider serves.
	Name() Source
}

// ProviderConfig holds the credentials and endpoint for a single provider.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

// Config configures the shared HTTP client and the individual providers.
type Config struct {
	YouTube ProviderConfig
	RuTube  ProviderConfig

	// ConnectTimeout bounds the TCP dial; TotalTimeout bounds the whole request.
	ConnectTimeout time.Duration
	TotalTimeout   time.Duration
}

const (
	defaultConnectTimeout = 3 * time.Second
	defaultTotalTimeout   = 10 * time.Second
)

// newHTTPClient builds the resty client shared by all providers.
func newHTTPClient(cfg Config) *resty.Client {
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = defaultConnectTimeout
	}
	total := cfg.TotalTimeout
	if total <= 0 {
		total = defaultTotalTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}).DialContext

	client := resty.New().
		SetTransport(transport).
		SetTimeout(total).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	return client
}

// Registry manages the available providers. All methods are safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[Source]Provider
}

// NewRegistry creates a registry with the YouTube and RuTube providers.
// A YouTube provider without an API key is still registered; it simply
// never returns data. VK ids are recognized but no provider serves them.
func NewRegistry(cfg Config) *Registry {
	client := newHTTPClient(cfg)
	r := &Registry{providers: make(map[Source]Provider)}
	r.Register(newYouTube(cfg.YouTube, client))
	r.Register(newRuTube(cfg.RuTube, client))
	return r
}

// Register adds or replaces the provider for p.Name().
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider for src.
func (r *Registry) Get(src Source) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[src]
	return p, ok
}
