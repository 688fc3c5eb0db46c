package htmlutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "title tag",
			html: `<html><head><title>Lady Gaga | Linktree</title></head></html>`,
			want: "Lady Gaga | Linktree",
		},
		{
			name: "og title fallback",
			html: `<head><meta property="og:title" content="Lady Gaga"></head>`,
			want: "Lady Gaga",
		},
		{
			name: "h1 fallback",
			html: `<body><h1 class="hero">Lady Gaga</h1></body>`,
			want: "Lady Gaga",
		},
		{
			name: "entities unescaped",
			html: `<title>Tom &amp; Jerry</title>`,
			want: "Tom & Jerry",
		},
		{
			name: "nothing",
			html: `<body><p>hi</p></body>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.html); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetaProperty(t *testing.T) {
	tests := []struct {
		name string
		html string
		prop string
		want string
	}{
		{
			name: "property then content",
			html: `<meta property="og:image" content="https://cdn.example/a.jpg">`,
			prop: "og:image",
			want: "https://cdn.example/a.jpg",
		},
		{
			name: "content then property",
			html: `<meta content="https://cdn.example/a.jpg" property="og:image">`,
			prop: "og:image",
			want: "https://cdn.example/a.jpg",
		},
		{
			name: "missing",
			html: `<meta property="og:title" content="x">`,
			prop: "og:image",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MetaProperty(tt.html, tt.prop); got != tt.want {
				t.Errorf("MetaProperty(%q) = %q, want %q", tt.prop, got, tt.want)
			}
		})
	}
}

func TestAnchorURLs(t *testing.T) {
	html := `
		<a href="https://instagram.com/ladygaga">IG</a>
		<a class="btn" href="https://open.spotify.com/artist/abc">Spotify</a>
		<a href="https://instagram.com/ladygaga">IG again</a>
		<a href="https://beacons.ai/ladygaga/edit">self</a>
		<a href="/relative">rel</a>
		<a href="mailto:gaga@example.com">mail</a>`

	got := AnchorURLs(html, "beacons.ai")
	want := []string{
		"https://instagram.com/ladygaga",
		"https://open.spotify.com/artist/abc",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AnchorURLs() mismatch (-want +got):\n%s", diff)
	}
}

func TestNextData(t *testing.T) {
	html := `<script id="__NEXT_DATA__" type="application/json" crossorigin="anonymous">
		{"props":{"pageProps":{"account":{"username":"ladygaga"}}}}
	</script>`

	data := NextData(html)
	if data == nil {
		t.Fatal("NextData() = nil")
	}

	account := DigMap(data, "props", "pageProps", "account")
	if got := DigString(account, "username"); got != "ladygaga" {
		t.Errorf("username = %q, want %q", got, "ladygaga")
	}

	if NextData(`<p>no script</p>`) != nil {
		t.Error("NextData() on plain HTML should be nil")
	}
	if NextData(`<script id="__NEXT_DATA__" type="application/json">{bad json</script>`) != nil {
		t.Error("NextData() on invalid JSON should be nil")
	}
}
