// Package auth resolves session cookies for strategies that cannot crawl
// anonymously (Instagram, in this core). Cookies come from an explicit map,
// environment variables, or local browser stores, tried in that order.
package auth

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// NewCookieJar builds an http.CookieJar holding the given cookies for a
// domain, ready to attach to a strategy's HTTP client.
func NewCookieJar(domain string, cookies map[string]string) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse("https://" + domain)
	if err != nil {
		return nil, err
	}

	var httpCookies []*http.Cookie
	for name, value := range cookies {
		if value != "" {
			httpCookies = append(httpCookies, &http.Cookie{
				Name:   name,
				Value:  value,
				Domain: "." + domain,
				Path:   "/",
			})
		}
	}

	jar.SetCookies(u, httpCookies)
	return jar, nil
}

// Source is one place session cookies can come from.
type Source interface {
	// Cookies returns cookies for the given platform, or nil when the
	// source has none.
	Cookies(ctx context.Context, platform string) (map[string]string, error)
}

// ChainSources returns cookies from the first source that has them. An
// empty result means no source could authenticate the platform; the
// strategy decides whether that is fatal.
func ChainSources(ctx context.Context, platform string, sources ...Source) (map[string]string, error) {
	for _, src := range sources {
		cookies, err := src.Cookies(ctx, platform)
		if err != nil {
			return nil, err
		}
		if len(cookies) > 0 {
			return cookies, nil
		}
	}
	return nil, nil //nolint:nilnil // no source had cookies, but this is not an error
}
