// Package youtube imports channel pages from YouTube.
package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/jovie-dev/ingest/extract"
	"github.com/jovie-dev/ingest/fetch"
	"github.com/jovie-dev/ingest/htmlutil"
	"github.com/jovie-dev/ingest/platform"
)

const platformName = "youtube"

// Channel header links are creator-declared, so they score high.
const headerLinkConfidence = 0.85

// Match returns true if the URL is a YouTube channel URL.
func Match(rawURL string) bool {
	link, err := platform.Normalize(rawURL)
	return err == nil && link.Platform == platform.YouTube
}

// AuthRequired returns false because YouTube channels are public.
func AuthRequired() bool { return false }

// Client handles YouTube requests.
type Client struct {
	httpClient *http.Client
	cache      fetch.Cacher
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*config)

type config struct {
	cache      fetch.Cacher
	logger     *slog.Logger
	httpClient *http.Client
}

// WithCache sets the HTTP response cache.
func WithCache(cache fetch.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// New creates a YouTube client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = fetch.NewHTTPClient()
	}

	return &Client{
		httpClient: httpClient,
		cache:      cfg.cache,
		logger:     cfg.logger,
	}, nil
}

// Fetch retrieves a YouTube channel's about page and extracts its links.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*extract.Result, error) {
	link, err := platform.Normalize(rawURL)
	if err != nil || link.Platform != platform.YouTube {
		return nil, fmt.Errorf("%w: not a youtube URL: %s", extract.ErrExtractionFailed, rawURL)
	}

	// External links render on the about tab.
	aboutURL := link.URL + "/about"
	c.logger.InfoContext(ctx, "fetching youtube channel", "url", aboutURL, "channel", link.CanonicalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, aboutURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fetch.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	body, err := fetch.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", extract.ErrExtractionFailed, aboutURL, err)
	}

	return parseDocument(body, aboutURL, link.CanonicalID), nil
}

func parseDocument(data []byte, sourceURL, channelID string) *extract.Result {
	content := string(data)

	res := &extract.Result{
		Platform:  platformName,
		SourceURL: sourceURL,
		Username:  channelID,
	}

	name := htmlutil.Title(content)
	// Strip "Channel Name - YouTube"
	if idx := strings.Index(name, " - YouTube"); idx != -1 {
		name = strings.TrimSpace(name[:idx])
	}
	res.DisplayName = name
	res.AvatarURL = htmlutil.MetaProperty(content, "og:image")

	seen := map[string]bool{}
	for _, u := range redirectTargets(content) {
		if seen[u] {
			continue
		}
		seen[u] = true
		res.AddLink(u, "", headerLinkConfidence)
	}

	return res
}

// YouTube wraps every external channel link through its redirect
// interstitial with the destination in the q parameter.
var redirectPattern = regexp.MustCompile(`https://www\.youtube\.com/redirect\?[^"'\s]+`)

func redirectTargets(content string) []string {
	matches := redirectPattern.FindAllString(content, -1)
	if matches == nil {
		return nil
	}

	var out []string
	for _, m := range matches {
		// Embedded URLs carry HTML or JSON escaped ampersands.
		m = strings.ReplaceAll(m, "&amp;", "&")
		m = strings.ReplaceAll(m, `\u0026`, "&")
		parsed, err := url.Parse(m)
		if err != nil {
			continue
		}
		target := parsed.Query().Get("q")
		if target == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(target); err == nil {
			target = decoded
		}
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			out = append(out, target)
		}
	}
	return out
}
