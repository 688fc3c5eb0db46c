// Package fetch provides the shared HTTP layer for ingestion strategies:
// bounded retries for transient failures, per-domain rate limiting, and
// response caching with thundering herd prevention.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// UserAgent identifies the ingestion crawler to third-party sites.
const UserAgent = "JovieBot/1.0 (+https://jov.ie/bot; link ingestion)"

// Timeout is the per-attempt bound on any outbound request. One slow fetch
// must never stall a worker past this.
const Timeout = 10 * time.Second

// maxBodySize caps response bodies; profile pages past this are junk.
const maxBodySize = 5 << 20

// NewHTTPClient returns the http.Client strategies should fetch with.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: Timeout}
}

// HTTPError represents a non-200 HTTP response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Do executes the request with retries for transient failures. Permanent
// failures (404 and other non-429 4xx) propagate on the first attempt.
// Transient failures (timeouts, 429, 5xx) are retried twice with backoff.
func Do(ctx context.Context, client *http.Client, req *http.Request, logger *slog.Logger) ([]byte, error) {
	return retry.DoWithData(
		func() ([]byte, error) {
			globalRateLimiter.Wait(req.URL.String(), logger)

			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close() //nolint:errcheck // intentional

			if resp.StatusCode != http.StatusOK {
				return nil, &HTTPError{StatusCode: resp.StatusCode, URL: req.URL.String()}
			}

			return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		},
		retry.Context(ctx),
		retry.Attempts(3), // initial attempt + two retries
		retry.Delay(200*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.RetryIf(IsTransient),
		retry.OnRetry(func(n uint, err error) {
			if logger != nil {
				logger.Debug("retrying HTTP request", "attempt", n+1, "url", req.URL.String(), "error", err)
			}
		}),
	)
}

// IsTransient returns true for errors worth retrying: network failures and
// rate-limit/server-side HTTP statuses.
func IsTransient(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false // other 4xx are permanent
		}
	}
	// Network errors, timeouts, DNS failures are retryable.
	return true
}

// Rate limiting: one in-flight pacing gate per third-party domain.
var globalRateLimiter = &domainRateLimiter{
	minDelay: 1100 * time.Millisecond,
	overrides: map[string]time.Duration{
		"open.spotify.com": 2 * time.Second,
		"instagram.com":    3 * time.Second,
		"www.youtube.com":  2 * time.Second,
	},
}

type domainRateLimiter struct {
	overrides   map[string]time.Duration
	lastRequest sync.Map
	mu          sync.Map
	minDelay    time.Duration
}

func (r *domainRateLimiter) Wait(rawURL string, logger *slog.Logger) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return
	}
	domain := u.Host

	muI, _ := r.mu.LoadOrStore(domain, &sync.Mutex{})
	mu, ok := muI.(*sync.Mutex)
	if !ok {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	delay := r.minDelay
	if override, ok := r.overrides[domain]; ok {
		delay = override
	}

	if lastI, ok := r.lastRequest.Load(domain); ok {
		if last, ok := lastI.(time.Time); ok {
			if elapsed := time.Since(last); elapsed < delay {
				waitTime := delay - elapsed
				if logger != nil {
					logger.Debug("rate limit pause", "domain", domain, "wait", waitTime)
				}
				time.Sleep(waitTime)
			}
		}
	}

	r.lastRequest.Store(domain, time.Now())
}
