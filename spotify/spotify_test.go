package spotify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jovie-dev/ingest/extract"
)

const artistFixture = `<html><head>
<meta property="og:title" content="Lady Gaga">
<meta property="og:image" content="https://i.scdn.co/image/ladygaga">
<title>Lady Gaga | Spotify</title>
</head><body>
<script>{"externalLinks":{"items":[
{"name":"INSTAGRAM","url":"https://instagram.com/ladygaga"},
{"name":"FACEBOOK","url":"https://www.facebook.com/ladygaga"},
{"name":"INSTAGRAM","url":"https://instagram.com/ladygaga"}
]}}</script>
</body></html>`

func TestParseDocument(t *testing.T) {
	got := parseDocument([]byte(artistFixture),
		"https://open.spotify.com/artist/1HY2Jd0NmPuamShAr6KMms", "1HY2Jd0NmPuamShAr6KMms")

	want := &extract.Result{
		Platform:    "spotify",
		SourceURL:   "https://open.spotify.com/artist/1HY2Jd0NmPuamShAr6KMms",
		Username:    "1HY2Jd0NmPuamShAr6KMms",
		DisplayName: "Lady Gaga",
		AvatarURL:   "https://i.scdn.co/image/ladygaga",
		Links: []extract.Link{
			{RawURL: "https://instagram.com/ladygaga", Confidence: externalLinkConfidence},
			{RawURL: "https://www.facebook.com/ladygaga", Confidence: externalLinkConfidence},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseDocument() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDocumentTitleFallback(t *testing.T) {
	html := `<title>Lady Gaga | Spotify</title>`
	got := parseDocument([]byte(html), "https://open.spotify.com/artist/x", "x")
	if got.DisplayName != "Lady Gaga" {
		t.Errorf("DisplayName = %q, want %q", got.DisplayName, "Lady Gaga")
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://open.spotify.com/artist/1HY2Jd0NmPuamShAr6KMms", true},
		{"https://open.spotify.com/intl-de/artist/1HY2Jd0NmPuamShAr6KMms", true},
		{"https://open.spotify.com/track/abc", false},
		{"https://open.spotify.com/playlist/xyz", false},
		{"https://music.apple.com/us/artist/lady-gaga/277293880", false},
	}

	for _, tt := range tests {
		if got := Match(tt.url); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
