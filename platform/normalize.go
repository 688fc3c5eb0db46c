package platform

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnrecognized is returned when a URL cannot be attributed to any known
// platform. Callers treat it as a value: unrecognized candidates are skipped,
// not failed.
var ErrUnrecognized = errors.New("unrecognized platform")

// Link is a normalized platform identity derived from a raw URL.
type Link struct {
	Platform    ID     `json:"platform"`
	CanonicalID string `json:"canonicalId"`
	URL         string `json:"url"` // canonical profile URL
}

// trackingParams are query parameters stripped before normalization.
// They carry attribution state, never identity.
var trackingParams = map[string]bool{
	"fbclid": true, "gclid": true, "igshid": true, "igsh": true,
	"si": true, "ref": true, "ref_src": true, "ref_url": true,
	"feature": true, "sub_confirmation": true, "mc_cid": true, "mc_eid": true,
}

// Normalize canonicalizes a raw URL into a platform identity.
//
// It operates only on the literal string given: no network I/O, no redirect
// resolution. Repeated calls with the same input return the same result.
// Returns ErrUnrecognized (wrapped) for domains outside the registry and for
// known domains whose path does not point at a profile-like entity.
func Normalize(rawURL string) (Link, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Link{}, fmt.Errorf("%w: empty URL", ErrUnrecognized)
	}
	if strings.HasPrefix(strings.ToLower(trimmed), "mailto:") {
		return Link{}, fmt.Errorf("%w: mailto link", ErrUnrecognized)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return Link{}, fmt.Errorf("%w: unparseable URL %q", ErrUnrecognized, rawURL)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	if !strings.Contains(host, ".") {
		return Link{}, fmt.Errorf("%w: bare host %q", ErrUnrecognized, host)
	}

	desc, pattern, ok := matchDomain(host)
	if !ok {
		// One-typo domains are corrected before giving up.
		desc, pattern, ok = matchDomainWithTypo(host)
		if !ok {
			return Link{}, fmt.Errorf("%w: domain %q", ErrUnrecognized, host)
		}
		// Rewrite the host as if the typo never happened, so subdomain
		// rules (bandcamp) still see a plausible host.
		host = pattern
	}

	segs := splitPath(u.EscapedPath())
	query := flattenQuery(u.Query())

	id := desc.canonicalID(host, segs, query)
	if id == "" {
		return Link{}, fmt.Errorf("%w: no canonical identity in %q", ErrUnrecognized, rawURL)
	}

	return Link{
		Platform:    desc.ID,
		CanonicalID: id,
		URL:         desc.canonicalURL(id),
	}, nil
}

func splitPath(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(s); err == nil {
			s = unescaped
		}
		segs = append(segs, s)
	}
	return segs
}

// flattenQuery keeps the first value of each non-tracking parameter.
func flattenQuery(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		lower := strings.ToLower(k)
		if trackingParams[lower] || strings.HasPrefix(lower, "utm_") {
			continue
		}
		if len(v) > 0 {
			out[lower] = v[0]
		}
	}
	return out
}
