// Package platform holds the registry of known link platforms and the pure
// URL normalizer that maps raw URLs onto canonical platform identities.
package platform

import (
	"sort"
	"strings"
)

// ID identifies a known platform.
type ID string

// Known platforms.
const (
	Linktree   ID = "linktree"
	Beacons    ID = "beacons"
	Laylo      ID = "laylo"
	Instagram  ID = "instagram"
	YouTube    ID = "youtube"
	Spotify    ID = "spotify"
	AppleMusic ID = "apple_music"
	SoundCloud ID = "soundcloud"
	Bandcamp   ID = "bandcamp"
	TikTok     ID = "tiktok"
	Twitter    ID = "twitter"
	Facebook   ID = "facebook"
	Threads    ID = "threads"
	Twitch     ID = "twitch"
	Patreon    ID = "patreon"
)

// Descriptor describes one platform: the domains it lives on and how a URL
// path on those domains maps to a canonical identity. Descriptors are static
// and immutable after process start.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Descriptor struct {
	ID ID

	// DomainPatterns are registrable domains owned by the platform. A URL
	// host matches when it equals a pattern or is a subdomain of one.
	// Longest pattern wins across the whole registry.
	DomainPatterns []string

	// IsOfficialDSP marks official music streaming providers whose links
	// are high-value and worth a follow-up crawl.
	IsOfficialDSP bool

	// canonicalID extracts the canonical identity from a matched URL.
	// host is the lowercased hostname, segs the non-empty path segments.
	// Returns "" when the URL does not point at a profile-like entity.
	canonicalID func(host string, segs []string, query map[string]string) string

	// canonicalURL rebuilds the canonical profile URL for an identity.
	canonicalURL func(id string) string
}

// CanonicalURL returns the canonical profile URL for a canonical ID.
func (d *Descriptor) CanonicalURL(id string) string {
	return d.canonicalURL(id)
}

// registry holds every known platform descriptor, keyed by ID.
var registry = buildRegistry()

// domainIndex maps each domain pattern to its descriptor, with patterns
// sorted longest-first so subdomain patterns beat their parents.
var domainIndex = buildDomainIndex()

// Lookup returns the descriptor for a platform ID.
func Lookup(id ID) (*Descriptor, bool) {
	d, ok := registry[id]
	return d, ok
}

// All returns every registered descriptor.
func All() []*Descriptor {
	out := make([]*Descriptor, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsOfficialDSP reports whether the platform is an official music DSP.
func IsOfficialDSP(id ID) bool {
	d, ok := registry[id]
	return ok && d.IsOfficialDSP
}

type domainEntry struct {
	pattern string
	desc    *Descriptor
}

func buildDomainIndex() []domainEntry {
	var entries []domainEntry
	for _, d := range registry {
		for _, p := range d.DomainPatterns {
			entries = append(entries, domainEntry{pattern: p, desc: d})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].pattern) != len(entries[j].pattern) {
			return len(entries[i].pattern) > len(entries[j].pattern)
		}
		return entries[i].pattern < entries[j].pattern
	})
	return entries
}

// matchDomain finds the descriptor owning a host, longest pattern first.
func matchDomain(host string) (*Descriptor, string, bool) {
	for _, e := range domainIndex {
		if host == e.pattern || strings.HasSuffix(host, "."+e.pattern) {
			return e.desc, e.pattern, true
		}
	}
	return nil, "", false
}

func buildRegistry() map[ID]*Descriptor {
	descriptors := []*Descriptor{
		{
			ID:             Linktree,
			DomainPatterns: []string{"linktr.ee", "linktree.com"},
			canonicalID:    firstSegmentID("admin", "login", "register", "discover", "s"),
			canonicalURL:   func(id string) string { return "https://linktr.ee/" + id },
		},
		{
			ID:             Beacons,
			DomainPatterns: []string{"beacons.ai", "beacons.page"},
			canonicalID:    firstSegmentID("signup", "login", "creators", "i"),
			canonicalURL:   func(id string) string { return "https://beacons.ai/" + id },
		},
		{
			ID:             Laylo,
			DomainPatterns: []string{"laylo.com"},
			canonicalID:    firstSegmentID("drops", "login", "signup"),
			canonicalURL:   func(id string) string { return "https://laylo.com/" + id },
		},
		{
			ID:             Instagram,
			DomainPatterns: []string{"instagram.com", "instagr.am"},
			canonicalID:    firstSegmentID("p", "reel", "reels", "stories", "explore", "accounts", "tv", "direct"),
			canonicalURL:   func(id string) string { return "https://instagram.com/" + id },
		},
		{
			ID:             YouTube,
			DomainPatterns: []string{"youtube.com", "youtu.be", "music.youtube.com"},
			IsOfficialDSP:  true,
			canonicalID:    youtubeID,
			canonicalURL:   youtubeURL,
		},
		{
			ID:             Spotify,
			DomainPatterns: []string{"open.spotify.com", "spotify.com"},
			IsOfficialDSP:  true,
			canonicalID:    spotifyID,
			canonicalURL:   func(id string) string { return "https://open.spotify.com/artist/" + id },
		},
		{
			ID:             AppleMusic,
			DomainPatterns: []string{"music.apple.com", "itunes.apple.com"},
			IsOfficialDSP:  true,
			canonicalID:    appleMusicID,
			canonicalURL:   func(id string) string { return "https://music.apple.com/artist/" + id },
		},
		{
			ID:             SoundCloud,
			DomainPatterns: []string{"soundcloud.com"},
			IsOfficialDSP:  true,
			canonicalID:    firstSegmentID("discover", "stream", "upload", "search", "tags"),
			canonicalURL:   func(id string) string { return "https://soundcloud.com/" + id },
		},
		{
			ID:             Bandcamp,
			DomainPatterns: []string{"bandcamp.com"},
			canonicalID:    bandcampID,
			canonicalURL:   func(id string) string { return "https://" + id + ".bandcamp.com" },
		},
		{
			ID:             TikTok,
			DomainPatterns: []string{"tiktok.com"},
			canonicalID:    atHandleID,
			canonicalURL:   func(id string) string { return "https://tiktok.com/@" + id },
		},
		{
			ID:             Twitter,
			DomainPatterns: []string{"twitter.com", "x.com"},
			canonicalID:    firstSegmentID("intent", "i", "hashtag", "search", "share", "home"),
			canonicalURL:   func(id string) string { return "https://x.com/" + id },
		},
		{
			ID:             Facebook,
			DomainPatterns: []string{"facebook.com", "fb.com"},
			canonicalID:    facebookID,
			canonicalURL:   func(id string) string { return "https://facebook.com/" + id },
		},
		{
			ID:             Threads,
			DomainPatterns: []string{"threads.net", "threads.com"},
			canonicalID:    atHandleID,
			canonicalURL:   func(id string) string { return "https://threads.net/@" + id },
		},
		{
			ID:             Twitch,
			DomainPatterns: []string{"twitch.tv"},
			canonicalID:    firstSegmentID("directory", "videos", "downloads", "p"),
			canonicalURL:   func(id string) string { return "https://twitch.tv/" + id },
		},
		{
			ID:             Patreon,
			DomainPatterns: []string{"patreon.com"},
			canonicalID:    firstSegmentID("posts", "join", "login", "signup", "policy"),
			canonicalURL:   func(id string) string { return "https://patreon.com/" + id },
		},
	}

	out := make(map[ID]*Descriptor, len(descriptors))
	for _, d := range descriptors {
		out[d.ID] = d
	}
	return out
}

// firstSegmentID builds the common "first path segment is the handle" rule.
// Reserved segments are system paths that are never user profiles.
func firstSegmentID(reserved ...string) func(string, []string, map[string]string) string {
	reservedSet := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		reservedSet[r] = true
	}
	return func(_ string, segs []string, _ map[string]string) string {
		if len(segs) == 0 {
			return ""
		}
		handle := strings.ToLower(strings.TrimPrefix(segs[0], "@"))
		if handle == "" || reservedSet[handle] {
			return ""
		}
		return handle
	}
}

// atHandleID accepts only the /@handle form (TikTok, Threads).
func atHandleID(_ string, segs []string, _ map[string]string) string {
	if len(segs) == 0 || !strings.HasPrefix(segs[0], "@") {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(segs[0], "@"))
}

// youtubeID handles the four YouTube channel URL forms. Channel IDs keep
// their case (they are case-sensitive); handles and legacy names lowercase.
func youtubeID(_ string, segs []string, _ map[string]string) string {
	if len(segs) == 0 {
		return ""
	}
	switch {
	case strings.HasPrefix(segs[0], "@"):
		return strings.ToLower(strings.TrimPrefix(segs[0], "@"))
	case segs[0] == "channel" && len(segs) > 1:
		return segs[1]
	case (segs[0] == "c" || segs[0] == "user") && len(segs) > 1:
		return strings.ToLower(segs[1])
	default:
		return ""
	}
}

func youtubeURL(id string) string {
	// Channel IDs are 24 chars beginning with UC.
	if strings.HasPrefix(id, "UC") && len(id) == 24 {
		return "https://youtube.com/channel/" + id
	}
	return "https://youtube.com/@" + id
}

// spotifyID extracts the artist ID, tolerating the /intl-xx/ locale prefix.
// Non-artist entities (tracks, albums, playlists) are not profile links.
func spotifyID(_ string, segs []string, _ map[string]string) string {
	if len(segs) > 0 && strings.HasPrefix(segs[0], "intl-") {
		segs = segs[1:]
	}
	if len(segs) >= 2 && segs[0] == "artist" {
		return segs[1]
	}
	return ""
}

// appleMusicID extracts the numeric artist ID from
// music.apple.com/{storefront}/artist/{name}/{id}.
func appleMusicID(_ string, segs []string, _ map[string]string) string {
	for i, s := range segs {
		if s != "artist" {
			continue
		}
		// ID is the last segment after the artist marker.
		rest := segs[i+1:]
		if len(rest) == 0 {
			return ""
		}
		id := rest[len(rest)-1]
		id = strings.TrimPrefix(id, "id")
		if isDigits(id) {
			return id
		}
		return ""
	}
	return ""
}

// bandcampID takes the artist from the subdomain: {artist}.bandcamp.com.
func bandcampID(host string, _ []string, _ map[string]string) string {
	sub := strings.TrimSuffix(host, ".bandcamp.com")
	if sub == host || sub == "" {
		return "" // bare bandcamp.com, or not a subdomain
	}
	if sub == "daily" || sub == "blog" || sub == "get" {
		return ""
	}
	return strings.ToLower(sub)
}

// facebookID accepts vanity handles and the legacy profile.php?id= form.
func facebookID(_ string, segs []string, query map[string]string) string {
	if len(segs) > 0 && segs[0] == "profile.php" {
		if id := query["id"]; isDigits(id) {
			return id
		}
		return ""
	}
	reserved := map[string]bool{
		"sharer": true, "sharer.php": true, "groups": true, "events": true,
		"pages": true, "watch": true, "marketplace": true, "login": true,
	}
	if len(segs) == 0 || reserved[strings.ToLower(segs[0])] {
		return ""
	}
	return strings.ToLower(segs[0])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
