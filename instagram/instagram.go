// Package instagram imports profile bio links from Instagram. Instagram
// serves nothing useful to anonymous clients, so a session cookie is
// required before a client can even be constructed.
package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jovie-dev/ingest/auth"
	"github.com/jovie-dev/ingest/extract"
	"github.com/jovie-dev/ingest/fetch"
	"github.com/jovie-dev/ingest/platform"
)

const platformName = "instagram"

// The web app's public app ID, required on API requests.
const igAppID = "936619743392459"

// Bio links are account-level declarations.
const bioLinkConfidence = 0.9

const profileAPIFormat = "https://www.instagram.com/api/v1/users/web_profile_info/?username=%s"

// Match returns true if the URL is an Instagram profile URL.
func Match(rawURL string) bool {
	link, err := platform.Normalize(rawURL)
	return err == nil && link.Platform == platform.Instagram
}

// AuthRequired returns true because Instagram requires a session cookie.
func AuthRequired() bool { return true }

// Client handles Instagram requests.
type Client struct {
	httpClient *http.Client
	cache      fetch.Cacher
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*config)

type config struct {
	cookies    map[string]string
	cache      fetch.Cacher
	logger     *slog.Logger
	httpClient *http.Client
}

// WithCookies sets explicit cookie values, bypassing env and browser lookup.
func WithCookies(cookies map[string]string) Option {
	return func(c *config) { c.cookies = cookies }
}

// WithCache sets the HTTP response cache.
func WithCache(cache fetch.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithHTTPClient sets a custom HTTP client. Cookies are still attached via
// the jar built from the resolved cookie source.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// New creates an Instagram client. It fails with extract.ErrAuthRequired
// when no cookie source yields a session.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	cookies, err := auth.ChainSources(ctx, platformName,
		auth.NewStaticSource(cfg.cookies),
		auth.EnvSource{},
		auth.NewBrowserSource(cfg.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("resolving cookies: %w", err)
	}
	if cookies["sessionid"] == "" {
		return nil, fmt.Errorf("%w: instagram needs a session cookie; set %v or use WithCookies",
			extract.ErrAuthRequired, auth.EnvVarsForPlatform(platformName))
	}

	jar, err := auth.NewCookieJar("instagram.com", cookies)
	if err != nil {
		return nil, fmt.Errorf("building cookie jar: %w", err)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = fetch.NewHTTPClient()
	}
	httpClient.Jar = jar

	return &Client{
		httpClient: httpClient,
		cache:      cfg.cache,
		logger:     cfg.logger,
	}, nil
}

// Fetch retrieves an Instagram profile via the web profile API and extracts
// its bio links.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*extract.Result, error) {
	link, err := platform.Normalize(rawURL)
	if err != nil || link.Platform != platform.Instagram {
		return nil, fmt.Errorf("%w: not an instagram URL: %s", extract.ErrExtractionFailed, rawURL)
	}
	username := link.CanonicalID

	apiURL := fmt.Sprintf(profileAPIFormat, url.QueryEscape(username))
	c.logger.InfoContext(ctx, "fetching instagram profile", "username", username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fetch.UserAgent)
	req.Header.Set("X-IG-App-ID", igAppID)
	req.Header.Set("Accept", "application/json")

	body, err := fetch.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
	if err != nil {
		var httpErr *fetch.HTTPError
		if errors.As(err, &httpErr) && (httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: session rejected for %s", extract.ErrAuthRequired, username)
		}
		return nil, fmt.Errorf("%w: fetching profile %s: %w", extract.ErrExtractionFailed, username, err)
	}

	res, err := parseProfileResponse(body, link.URL, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", extract.ErrExtractionFailed, err)
	}
	return res, nil
}

// profileResponse is the slice of the web_profile_info payload we care about.
type profileResponse struct {
	Data struct {
		User struct {
			FullName      string `json:"full_name"`
			ProfilePicURL string `json:"profile_pic_url_hd"`
			ExternalURL   string `json:"external_url"`
			BioLinks      []struct {
				URL string `json:"url"`
			} `json:"bio_links"`
		} `json:"user"`
	} `json:"data"`
}

func parseProfileResponse(data []byte, sourceURL, username string) (*extract.Result, error) {
	var resp profileResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding profile response: %w", err)
	}

	res := &extract.Result{
		Platform:    platformName,
		SourceURL:   sourceURL,
		Username:    username,
		DisplayName: resp.Data.User.FullName,
		AvatarURL:   resp.Data.User.ProfilePicURL,
	}

	seen := map[string]bool{}
	for _, l := range resp.Data.User.BioLinks {
		if l.URL == "" || seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		res.AddLink(l.URL, "", bioLinkConfidence)
	}
	if u := resp.Data.User.ExternalURL; u != "" && !seen[u] {
		res.AddLink(u, "", bioLinkConfidence)
	}

	return res, nil
}
