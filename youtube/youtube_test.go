package youtube

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jovie-dev/ingest/extract"
)

const aboutFixture = `<html><head>
<title>Lady Gaga - YouTube</title>
<meta property="og:image" content="https://yt3.googleusercontent.com/ladygaga=s900">
</head><body>
<script>var ytInitialData = {"links":[
{"url":"https://www.youtube.com/redirect?event=channel_header&q=https%3A%2F%2Fwww.instagram.com%2Fladygaga"},
{"url":"https://www.youtube.com/redirect?event=about&q=https%3A%2F%2Fshop.ladygaga.com%2F"},
{"url":"https://www.youtube.com/redirect?event=about&q=https%3A%2F%2Fwww.instagram.com%2Fladygaga"}
]};</script>
<a href="https://www.youtube.com/redirect?event=page&amp;q=https%3A%2F%2Fopen.spotify.com%2Fartist%2F1HY2Jd0NmPuamShAr6KMms">Spotify</a>
</body></html>`

func TestParseDocument(t *testing.T) {
	got := parseDocument([]byte(aboutFixture), "https://youtube.com/@ladygaga/about", "ladygaga")

	want := &extract.Result{
		Platform:    "youtube",
		SourceURL:   "https://youtube.com/@ladygaga/about",
		Username:    "ladygaga",
		DisplayName: "Lady Gaga",
		AvatarURL:   "https://yt3.googleusercontent.com/ladygaga=s900",
		Links: []extract.Link{
			{RawURL: "https://www.instagram.com/ladygaga", Confidence: headerLinkConfidence},
			{RawURL: "https://shop.ladygaga.com/", Confidence: headerLinkConfidence},
			{RawURL: "https://open.spotify.com/artist/1HY2Jd0NmPuamShAr6KMms", Confidence: headerLinkConfidence},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseDocument() mismatch (-want +got):\n%s", diff)
	}
}

func TestRedirectTargets(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "json escaped ampersand",
			content: `"https://www.youtube.com/redirect?event=x&q=https%3A%2F%2Fexample.com"`,
			want:    []string{"https://example.com"},
		},
		{
			name:    "html escaped ampersand",
			content: `href="https://www.youtube.com/redirect?event=x&amp;q=https%3A%2F%2Fexample.com"`,
			want:    []string{"https://example.com"},
		},
		{
			name:    "unicode escaped ampersand",
			content: `"https://www.youtube.com/redirect?event=x\u0026q=https%3A%2F%2Fexample.com"`,
			want:    []string{"https://example.com"},
		},
		{
			name:    "missing q param",
			content: `"https://www.youtube.com/redirect?event=x"`,
			want:    nil,
		},
		{
			name:    "non-http target dropped",
			content: `"https://www.youtube.com/redirect?q=javascript%3Aalert(1)"`,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, redirectTargets(tt.content)); diff != "" {
				t.Errorf("redirectTargets() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/@ladygaga", true},
		{"https://youtube.com/channel/UC07Kxew-cMIaykMOkzqHtBQ", true},
		{"https://youtube.com/c/LadyGaga", true},
		{"https://youtube.com/watch?v=abc123", false},
		{"https://vimeo.com/ladygaga", false},
	}

	for _, tt := range tests {
		if got := Match(tt.url); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
