package instagram

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jovie-dev/ingest/extract"
)

const profileFixture = `{
  "data": {
    "user": {
      "full_name": "Lady Gaga",
      "profile_pic_url_hd": "https://scontent.cdninstagram.com/ladygaga.jpg",
      "external_url": "https://www.ladygaga.com/",
      "bio_links": [
        {"url": "https://linktr.ee/ladygaga"},
        {"url": "https://open.spotify.com/artist/1HY2Jd0NmPuamShAr6KMms"},
        {"url": "https://linktr.ee/ladygaga"}
      ]
    }
  }
}`

func TestParseProfileResponse(t *testing.T) {
	got, err := parseProfileResponse([]byte(profileFixture), "https://instagram.com/ladygaga", "ladygaga")
	if err != nil {
		t.Fatalf("parseProfileResponse() error: %v", err)
	}

	want := &extract.Result{
		Platform:    "instagram",
		SourceURL:   "https://instagram.com/ladygaga",
		Username:    "ladygaga",
		DisplayName: "Lady Gaga",
		AvatarURL:   "https://scontent.cdninstagram.com/ladygaga.jpg",
		Links: []extract.Link{
			{RawURL: "https://linktr.ee/ladygaga", Confidence: bioLinkConfidence},
			{RawURL: "https://open.spotify.com/artist/1HY2Jd0NmPuamShAr6KMms", Confidence: bioLinkConfidence},
			{RawURL: "https://www.ladygaga.com/", Confidence: bioLinkConfidence},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseProfileResponse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseProfileResponseInvalidJSON(t *testing.T) {
	_, err := parseProfileResponse([]byte("<html>login required</html>"), "https://instagram.com/x", "x")
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestParseProfileResponseEmptyUser(t *testing.T) {
	got, err := parseProfileResponse([]byte(`{"data":{"user":{}}}`), "https://instagram.com/x", "x")
	if err != nil {
		t.Fatalf("parseProfileResponse() error: %v", err)
	}
	if len(got.Links) != 0 {
		t.Errorf("Links = %v, want none", got.Links)
	}
}

func TestNewWithoutCookies(t *testing.T) {
	// Make sure ambient env cannot satisfy the auth chain.
	t.Setenv("INSTAGRAM_SESSIONID", "")
	t.Setenv("INSTAGRAM_CSRFTOKEN", "")
	t.Setenv("INSTAGRAM_DS_USER_ID", "")
	t.Setenv("HOME", t.TempDir())

	_, err := New(context.Background())
	if !errors.Is(err, extract.ErrAuthRequired) {
		t.Errorf("New() error = %v, want ErrAuthRequired", err)
	}
}

func TestNewWithCookies(t *testing.T) {
	c, err := New(context.Background(), WithCookies(map[string]string{
		"sessionid": "abc123",
		"csrftoken": "tok",
	}))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.httpClient.Jar == nil {
		t.Error("cookie jar not attached")
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.instagram.com/ladygaga", true},
		{"instagram.com/ladygaga/", true},
		{"https://instagram.com/p/Cxyz123", false}, // post, not profile
		{"https://threads.net/@ladygaga", false},
	}

	for _, tt := range tests {
		if got := Match(tt.url); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
