package beacons

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jovie-dev/ingest/extract"
)

const pageFixture = `<html><head>
<title>Lady Gaga | Beacons</title>
<meta property="og:image" content="https://cdn.beacons.ai/ladygaga.jpg">
</head><body>
<a href="https://www.instagram.com/ladygaga">Instagram</a>
<a href="https://open.spotify.com/artist/1HY2Jd0NmPuamShAr6KMms">Spotify</a>
<a href="https://beacons.ai/signup">Join Beacons</a>
<a href="https://www.instagram.com/ladygaga">Instagram again</a>
</body></html>`

func TestParseDocument(t *testing.T) {
	got := parseDocument([]byte(pageFixture), "https://beacons.ai/ladygaga", "ladygaga")

	want := &extract.Result{
		Platform:    "beacons",
		SourceURL:   "https://beacons.ai/ladygaga",
		Username:    "ladygaga",
		DisplayName: "Lady Gaga",
		AvatarURL:   "https://cdn.beacons.ai/ladygaga.jpg",
		Links: []extract.Link{
			{RawURL: "https://www.instagram.com/ladygaga", Confidence: anchorConfidence},
			{RawURL: "https://open.spotify.com/artist/1HY2Jd0NmPuamShAr6KMms", Confidence: anchorConfidence},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseDocument() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDocumentEmptyPage(t *testing.T) {
	got := parseDocument([]byte("<html><body></body></html>"), "https://beacons.ai/x", "x")
	if got.DisplayName != "" || len(got.Links) != 0 {
		t.Errorf("empty page should yield empty result, got %+v", got)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://beacons.ai/ladygaga", true},
		{"beacons.ai/ladygaga", true},
		{"https://linktr.ee/ladygaga", false},
	}

	for _, tt := range tests {
		if got := Match(tt.url); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
