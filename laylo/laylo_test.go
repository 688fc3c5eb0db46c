package laylo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jovie-dev/ingest/extract"
)

const pageFixture = `<html><head>
<title>Lady Gaga on Laylo</title>
<meta property="og:image" content="https://cdn.laylo.com/ladygaga.jpg">
</head><body>
<a href="https://www.tiktok.com/@ladygaga">TikTok</a>
<a href="https://music.apple.com/us/artist/lady-gaga/277293880">Apple Music</a>
<a href="https://laylo.com/drops">Drops</a>
</body></html>`

func TestParseDocument(t *testing.T) {
	got := parseDocument([]byte(pageFixture), "https://laylo.com/ladygaga", "ladygaga")

	want := &extract.Result{
		Platform:    "laylo",
		SourceURL:   "https://laylo.com/ladygaga",
		Username:    "ladygaga",
		DisplayName: "Lady Gaga",
		AvatarURL:   "https://cdn.laylo.com/ladygaga.jpg",
		Links: []extract.Link{
			{RawURL: "https://www.tiktok.com/@ladygaga", Confidence: anchorConfidence},
			{RawURL: "https://music.apple.com/us/artist/lady-gaga/277293880", Confidence: anchorConfidence},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseDocument() mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://laylo.com/ladygaga", true},
		{"laylo.com/ladygaga", true},
		{"https://linktr.ee/ladygaga", false},
	}

	for _, tt := range tests {
		if got := Match(tt.url); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
