package htmlutil

import (
	"html"
	"regexp"
	"strings"
)

var anchorPattern = regexp.MustCompile(`(?i)<a[^>]+href=["'](https?://[^"']+)["']`)

// AnchorURLs extracts absolute http(s) hrefs from anchor tags, dropping any
// whose host contains one of the given substrings. Order preserved, exact
// duplicates removed.
func AnchorURLs(htmlContent string, excludeHosts ...string) []string {
	matches := anchorPattern.FindAllStringSubmatch(htmlContent, -1)
	if matches == nil {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var urls []string
	for _, m := range matches {
		u := html.UnescapeString(m[1])
		if seen[u] || excluded(u, excludeHosts) {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

func excluded(u string, hosts []string) bool {
	lower := strings.ToLower(u)
	for _, h := range hosts {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}
