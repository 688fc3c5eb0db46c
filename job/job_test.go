package job

import (
	"errors"
	"testing"

	"github.com/jovie-dev/ingest/platform"
)

func TestTypeValid(t *testing.T) {
	for _, typ := range Types() {
		if !typ.Valid() {
			t.Errorf("Types() returned invalid type %q", typ)
		}
	}
	if Type("import_myspace").Valid() {
		t.Error("unknown type reported valid")
	}
}

func TestPagePayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		jobType Type
		url     string
		wantErr error
	}{
		{"linktree ok", TypeLinktree, "https://linktr.ee/testartist", nil},
		{"spotify ok", TypeSpotify, "https://open.spotify.com/artist/abc123", nil},
		{"instagram ok", TypeInstagram, "instagram.com/testartist", nil},
		{"empty url", TypeLinktree, "", ErrInvalidPayload},
		{"wrong platform", TypeLinktree, "https://instagram.com/testartist", ErrInvalidPayload},
		{"unrecognized domain", TypeBeacons, "https://example.com/foo", ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPagePayload(tt.jobType, tt.url).Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload(TypeLinktree, []byte(`{"sourceUrl":"https://linktr.ee/testartist"}`))
	if err != nil {
		t.Fatalf("ParsePayload() error: %v", err)
	}
	sp, ok := p.(SourcePayload)
	if !ok {
		t.Fatalf("ParsePayload() returned %T, want SourcePayload", p)
	}
	if sp.URL() != "https://linktr.ee/testartist" {
		t.Errorf("URL() = %q", sp.URL())
	}
	if sp.JobType() != TypeLinktree {
		t.Errorf("JobType() = %q", sp.JobType())
	}

	if _, err := ParsePayload(TypeLyrics, []byte(`{"trackId":"t1","title":"Song"}`)); err != nil {
		t.Errorf("lyrics payload rejected: %v", err)
	}
	if _, err := ParsePayload(TypeLyrics, []byte(`{}`)); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("empty lyrics payload = %v, want ErrInvalidPayload", err)
	}
	if _, err := ParsePayload(Type("bogus"), []byte(`{}`)); !errors.Is(err, ErrUnknownType) {
		t.Errorf("bogus type = %v, want ErrUnknownType", err)
	}
	if _, err := ParsePayload(TypeLinktree, []byte(`not json`)); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("bad json = %v, want ErrInvalidPayload", err)
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	orig := NewPagePayload(TypeSpotify, "https://open.spotify.com/artist/abc123")
	data, err := EncodePayload(orig)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ParsePayload(TypeSpotify, data)
	if err != nil {
		t.Fatalf("ParsePayload(encoded) error: %v", err)
	}
	if back.(SourcePayload).URL() != orig.SourceURL {
		t.Errorf("round trip lost URL: %q", back.(SourcePayload).URL())
	}
}

func TestFollowUpFor(t *testing.T) {
	if typ, ok := FollowUpFor(platform.Spotify); !ok || typ != TypeSpotify {
		t.Errorf("FollowUpFor(spotify) = %q/%v", typ, ok)
	}
	if typ, ok := FollowUpFor(platform.YouTube); !ok || typ != TypeYouTube {
		t.Errorf("FollowUpFor(youtube) = %q/%v", typ, ok)
	}
	if _, ok := FollowUpFor(platform.Instagram); ok {
		t.Error("FollowUpFor(instagram) should be false")
	}
}

func TestDedupKey(t *testing.T) {
	if got := DedupKey(TypeLinktree, "testartist"); got != "import_linktree:testartist" {
		t.Errorf("DedupKey = %q", got)
	}
}
