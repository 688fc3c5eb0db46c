// Package extract defines the common types produced by platform extraction strategies.
package extract

import "errors"

// Common errors returned by strategy packages.
var (
	ErrAuthRequired     = errors.New("authentication required")
	ErrNoCookies        = errors.New("no cookies available")
	ErrExtractionFailed = errors.New("extraction failed")
	ErrRateLimited      = errors.New("rate limited")
)

// Link is a single candidate link discovered on a source document.
// RawURL is the link exactly as found; Label is the human-visible text or
// type tag the source attached to it, when one exists.
type Link struct {
	RawURL     string  `json:"rawUrl"`
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Result is the outcome of fetching and parsing one source document.
// It is consumed immediately by the merge engine and never persisted.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Result struct {
	// Metadata
	Platform  string `json:"platform"`  // source platform: "linktree", "beacons", ...
	SourceURL string `json:"sourceUrl"` // URL the document was fetched from

	// Profile data found alongside the links
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`

	// Candidate links for normalization and merging
	Links []Link `json:"links"`
}

// AddLink appends a candidate link, skipping empty URLs.
func (r *Result) AddLink(rawURL, label string, confidence float64) {
	if rawURL == "" {
		return
	}
	r.Links = append(r.Links, Link{RawURL: rawURL, Label: label, Confidence: confidence})
}
