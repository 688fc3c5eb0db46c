package htmlutil

import (
	"encoding/json"
	"regexp"
)

// (?s) so the JSON body may span lines; [^>]* tolerates extra attributes.
var nextDataPattern = regexp.MustCompile(`(?s)<script id="__NEXT_DATA__" type="application/json"[^>]*>(.*?)</script>`)

// NextData extracts and decodes the __NEXT_DATA__ JSON blob that Next.js
// sites embed in server-rendered pages. Returns nil when absent or invalid.
func NextData(htmlContent string) map[string]any {
	matches := nextDataPattern.FindStringSubmatch(htmlContent)
	if len(matches) < 2 {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(matches[1]), &data); err != nil {
		return nil
	}
	return data
}

// DigMap walks nested JSON objects by key, returning nil when any step is
// missing or not an object.
func DigMap(data map[string]any, keys ...string) map[string]any {
	current := data
	for _, key := range keys {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

// DigString returns the string at key, or empty.
func DigString(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return s
}

// DigSlice returns the array at key, or nil.
func DigSlice(data map[string]any, key string) []any {
	if data == nil {
		return nil
	}
	s, _ := data[key].([]any)
	return s
}
