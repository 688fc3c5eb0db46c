// Package linktree imports link-in-bio pages from Linktree.
package linktree

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jovie-dev/ingest/extract"
	"github.com/jovie-dev/ingest/fetch"
	"github.com/jovie-dev/ingest/htmlutil"
	"github.com/jovie-dev/ingest/platform"
)

const platformName = "linktree"

// Confidence assigned to extracted links. Social icons are account-level
// declarations; body links are whatever the creator pasted in.
const (
	socialIconConfidence = 0.95
	bodyLinkConfidence   = 0.8
)

// Match returns true if the URL is a Linktree profile URL.
func Match(rawURL string) bool {
	link, err := platform.Normalize(rawURL)
	return err == nil && link.Platform == platform.Linktree
}

// AuthRequired returns false because Linktree profiles are public.
func AuthRequired() bool { return false }

// Client handles Linktree requests.
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

// New creates a Linktree client.
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

// Fetch retrieves a Linktree page and extracts its links.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*extract.Result, error) {
	link, err := platform.Normalize(rawURL)
	if err != nil || link.Platform != platform.Linktree {
		return nil, fmt.Errorf("%w: not a linktree URL: %s", extract.ErrExtractionFailed, rawURL)
	}

	c.logger.InfoContext(ctx, "fetching linktree page", "url", link.URL, "username", link.CanonicalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.URL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fetch.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	body, err := fetch.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", extract.ErrExtractionFailed, link.URL, err)
	}

	return parseDocument(body, link.URL, link.CanonicalID), nil
}

func parseDocument(data []byte, sourceURL, username string) *extract.Result {
	content := string(data)

	res := &extract.Result{
		Platform:  platformName,
		SourceURL: sourceURL,
		Username:  username,
	}

	if nextData := htmlutil.NextData(content); nextData != nil {
		parseNextData(res, nextData)
	}

	// Fallback: meta tags only.
	if res.DisplayName == "" {
		name := htmlutil.MetaProperty(content, "og:title")
		// Strip " | Linktree" suffix
		if idx := strings.Index(name, " | "); idx > 0 {
			name = strings.TrimSpace(name[:idx])
		}
		res.DisplayName = name
	}
	if res.AvatarURL == "" {
		res.AvatarURL = htmlutil.MetaProperty(content, "og:image")
	}

	return res
}

func parseNextData(res *extract.Result, data map[string]any) {
	pageProps := htmlutil.DigMap(data, "props", "pageProps")
	if pageProps == nil {
		return
	}

	parseAccount(res, pageProps)

	// Body links: the creator's ordered list of buttons.
	for _, raw := range htmlutil.DigSlice(pageProps, "links") {
		linkMap, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		url := htmlutil.DigString(linkMap, "url")
		if url == "" || strings.Contains(strings.ToLower(url), "linktr.ee") {
			continue
		}
		res.AddLink(url, htmlutil.DigString(linkMap, "title"), bodyLinkConfidence)
	}

	// Social icon row: typed account declarations.
	for _, raw := range htmlutil.DigSlice(pageProps, "socialLinks") {
		linkMap, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		url := htmlutil.DigString(linkMap, "url")
		if url == "" {
			continue
		}
		res.AddLink(url, htmlutil.DigString(linkMap, "type"), socialIconConfidence)
	}
}

func parseAccount(res *extract.Result, pageProps map[string]any) {
	account := htmlutil.DigMap(pageProps, "account")
	if account == nil {
		return
	}

	if username := htmlutil.DigString(account, "username"); username != "" {
		res.Username = username
	}
	// profileTitle is the display name; pageTitle a "@handle" fallback.
	if title := htmlutil.DigString(account, "profileTitle"); title != "" {
		res.DisplayName = title
	} else if pageTitle := htmlutil.DigString(account, "pageTitle"); pageTitle != "" {
		res.DisplayName = strings.TrimPrefix(pageTitle, "@")
	}
	res.AvatarURL = htmlutil.DigString(account, "profilePictureUrl")
}
