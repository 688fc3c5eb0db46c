// Package job defines ingestion job types and their payload schemas.
// Payloads form a discriminated union tagged by Type, validated at the
// queue boundary so workers only ever see well-formed jobs.
package job

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jovie-dev/ingest/platform"
)

// Type tags an ingestion job with the strategy that should process it.
type Type string

// Known job types.
const (
	TypeLinktree  Type = "import_linktree"
	TypeBeacons   Type = "import_beacons"
	TypeLaylo     Type = "import_laylo"
	TypeYouTube   Type = "import_youtube"
	TypeInstagram Type = "import_instagram"
	TypeSpotify   Type = "import_spotify"
	TypeLyrics    Type = "import_lyrics"
)

// MaxDepth bounds recursive follow-up crawling. A job at depth 3 may not
// spawn further jobs.
const MaxDepth = 3

// Errors returned by payload validation and enqueue guards.
var (
	ErrUnknownType    = errors.New("unknown job type")
	ErrInvalidPayload = errors.New("invalid job payload")
	ErrDepthExceeded  = errors.New("job depth exceeds bound")
)

// Types lists every known job type.
func Types() []Type {
	return []Type{
		TypeLinktree, TypeBeacons, TypeLaylo,
		TypeYouTube, TypeInstagram, TypeSpotify, TypeLyrics,
	}
}

// Valid reports whether t is a known job type.
func (t Type) Valid() bool {
	switch t {
	case TypeLinktree, TypeBeacons, TypeLaylo, TypeYouTube, TypeInstagram, TypeSpotify, TypeLyrics:
		return true
	default:
		return false
	}
}

// sourcePlatforms maps a source-page job type to the platform its payload
// URL must normalize to.
var sourcePlatforms = map[Type]platform.ID{
	TypeLinktree:  platform.Linktree,
	TypeBeacons:   platform.Beacons,
	TypeLaylo:     platform.Laylo,
	TypeYouTube:   platform.YouTube,
	TypeInstagram: platform.Instagram,
	TypeSpotify:   platform.Spotify,
}

// FollowUpFor returns the follow-up job type to enqueue when a link to the
// given platform is discovered during a merge. Only high-value platforms
// trigger follow-up crawls.
func FollowUpFor(p platform.ID) (Type, bool) {
	switch p {
	case platform.Spotify:
		return TypeSpotify, true
	case platform.YouTube:
		return TypeYouTube, true
	default:
		return "", false
	}
}

// Payload is the variant half of the job union. Each implementation
// validates its own schema.
type Payload interface {
	JobType() Type
	Validate() error
}

// SourcePayload is implemented by payloads carrying a page URL to crawl.
type SourcePayload interface {
	Payload
	URL() string
}

// PagePayload is the payload for every source-page import type: the URL of
// the remote document to fetch.
type PagePayload struct {
	jobType   Type
	SourceURL string `json:"sourceUrl"`
}

// NewPagePayload builds a payload for a source-page job type.
func NewPagePayload(t Type, sourceURL string) PagePayload {
	return PagePayload{jobType: t, SourceURL: sourceURL}
}

// JobType returns the type tag of the payload.
func (p PagePayload) JobType() Type { return p.jobType }

// URL returns the source document URL.
func (p PagePayload) URL() string { return p.SourceURL }

// Validate checks that the source URL normalizes to the platform the job
// type crawls. A Linktree job pointed at an Instagram URL is malformed.
func (p PagePayload) Validate() error {
	want, ok := sourcePlatforms[p.jobType]
	if !ok {
		return fmt.Errorf("%w: %q has no source platform", ErrUnknownType, p.jobType)
	}
	if p.SourceURL == "" {
		return fmt.Errorf("%w: missing sourceUrl", ErrInvalidPayload)
	}
	link, err := platform.Normalize(p.SourceURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if link.Platform != want {
		return fmt.Errorf("%w: %q is a %s URL, job type %s expects %s",
			ErrInvalidPayload, p.SourceURL, link.Platform, p.jobType, want)
	}
	return nil
}

// Canonical returns the normalized identity of the source URL. Validate
// must have succeeded first.
func (p PagePayload) Canonical() (platform.Link, error) {
	return platform.Normalize(p.SourceURL)
}

// LyricsPayload is the payload for lyrics import jobs. The type stays in
// the enum for queue compatibility; no strategy in this core handles it.
type LyricsPayload struct {
	TrackID string `json:"trackId"`
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
}

// JobType returns TypeLyrics.
func (LyricsPayload) JobType() Type { return TypeLyrics }

// Validate checks the lyrics payload schema.
func (p LyricsPayload) Validate() error {
	if p.TrackID == "" {
		return fmt.Errorf("%w: missing trackId", ErrInvalidPayload)
	}
	return nil
}

// ParsePayload decodes and validates a raw payload for a job type.
func ParsePayload(t Type, raw []byte) (Payload, error) {
	switch t {
	case TypeLinktree, TypeBeacons, TypeLaylo, TypeYouTube, TypeInstagram, TypeSpotify:
		var p PagePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		p.jobType = t
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return p, nil
	case TypeLyrics:
		var p LyricsPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

// EncodePayload serializes a payload for storage.
func EncodePayload(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// DedupKey builds the conventional dedup key for a job: one active crawl
// per (type, canonical source identity).
func DedupKey(t Type, canonicalID string) string {
	return string(t) + ":" + canonicalID
}
