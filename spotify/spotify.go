// Package spotify imports artist pages from Spotify.
package spotify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/jovie-dev/ingest/extract"
	"github.com/jovie-dev/ingest/fetch"
	"github.com/jovie-dev/ingest/htmlutil"
	"github.com/jovie-dev/ingest/platform"
)

const platformName = "spotify"

// Artist-page external links come from the label or the artist team.
const externalLinkConfidence = 0.9

// Match returns true if the URL is a Spotify artist URL.
func Match(rawURL string) bool {
	link, err := platform.Normalize(rawURL)
	return err == nil && link.Platform == platform.Spotify
}

// AuthRequired returns false because Spotify artist pages are public.
func AuthRequired() bool { return false }

// Client handles Spotify requests.
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

// New creates a Spotify client.
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

// Fetch retrieves a Spotify artist page and extracts name, avatar, and any
// embedded external links.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*extract.Result, error) {
	link, err := platform.Normalize(rawURL)
	if err != nil || link.Platform != platform.Spotify {
		return nil, fmt.Errorf("%w: not a spotify artist URL: %s", extract.ErrExtractionFailed, rawURL)
	}

	c.logger.InfoContext(ctx, "fetching spotify artist", "url", link.URL, "artist", link.CanonicalID)

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

// Artist pages embed label-curated social links in server-rendered JSON.
var externalLinkPattern = regexp.MustCompile(`"url"\s*:\s*"(https://(?:www\.)?(?:instagram\.com|facebook\.com|twitter\.com|x\.com)/[^"\\]+)"`)

func parseDocument(data []byte, sourceURL, artistID string) *extract.Result {
	content := string(data)

	res := &extract.Result{
		Platform:  platformName,
		SourceURL: sourceURL,
		Username:  artistID,
	}

	name := htmlutil.MetaProperty(content, "og:title")
	if name == "" {
		name = htmlutil.Title(content)
		// Strip "Artist | Spotify" suffix
		if idx := strings.Index(name, " | Spotify"); idx != -1 {
			name = strings.TrimSpace(name[:idx])
		}
	}
	res.DisplayName = name
	res.AvatarURL = htmlutil.MetaProperty(content, "og:image")

	seen := map[string]bool{}
	for _, m := range externalLinkPattern.FindAllStringSubmatch(content, -1) {
		u := m[1]
		if seen[u] {
			continue
		}
		seen[u] = true
		res.AddLink(u, "", externalLinkConfidence)
	}

	return res
}
