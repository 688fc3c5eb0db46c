package auth

import "context"

// StaticSource serves cookies handed in explicitly, typically through a
// strategy's WithCookies option or a test.
type StaticSource struct {
	cookies map[string]string
}

// NewStaticSource wraps an explicit cookie map in a Source.
func NewStaticSource(cookies map[string]string) *StaticSource {
	return &StaticSource{cookies: cookies}
}

// Cookies returns the configured cookies regardless of platform.
func (s *StaticSource) Cookies(_ context.Context, _ string) (map[string]string, error) {
	if len(s.cookies) == 0 {
		return nil, nil //nolint:nilnil // empty static source is not an error
	}
	// Callers may mutate the result; hand out a copy.
	result := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		result[k] = v
	}
	return result, nil
}
