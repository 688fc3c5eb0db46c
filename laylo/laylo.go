// Package laylo imports drop pages from Laylo.
package laylo

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

const platformName = "laylo"

const anchorConfidence = 0.7

// Match returns true if the URL is a Laylo profile URL.
func Match(rawURL string) bool {
	link, err := platform.Normalize(rawURL)
	return err == nil && link.Platform == platform.Laylo
}

// AuthRequired returns false because Laylo profiles are public.
func AuthRequired() bool { return false }

// Client handles Laylo requests.
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

// New creates a Laylo client.
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

// Fetch retrieves a Laylo page and extracts its links.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*extract.Result, error) {
	link, err := platform.Normalize(rawURL)
	if err != nil || link.Platform != platform.Laylo {
		return nil, fmt.Errorf("%w: not a laylo URL: %s", extract.ErrExtractionFailed, rawURL)
	}

	c.logger.InfoContext(ctx, "fetching laylo page", "url", link.URL, "username", link.CanonicalID)

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

	name := htmlutil.Title(content)
	for _, sep := range []string{" | ", " - ", " on Laylo"} {
		if idx := strings.Index(name, sep); idx > 0 {
			name = strings.TrimSpace(name[:idx])
			break
		}
	}
	res.DisplayName = name
	res.AvatarURL = htmlutil.MetaProperty(content, "og:image")

	for _, u := range htmlutil.AnchorURLs(content, "laylo.com") {
		res.AddLink(u, "", anchorConfidence)
	}

	return res
}
