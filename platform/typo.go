package platform

// matchDomainWithTypo retries the domain match allowing one edit of
// distance between the host's registrable part and a known pattern.
// Short patterns are excluded: one edit on a six-character domain is
// more likely a different site than a typo.
func matchDomainWithTypo(host string) (*Descriptor, string, bool) {
	const minPatternLen = 8

	for _, e := range domainIndex {
		if len(e.pattern) < minPatternLen {
			continue
		}
		if editDistanceAtMostOne(host, e.pattern) {
			return e.desc, e.pattern, true
		}
	}
	return nil, "", false
}

// editDistanceAtMostOne reports whether a and b are within Levenshtein
// distance 1. Single-pass; no DP table needed for a bound of one.
func editDistanceAtMostOne(a, b string) bool {
	la, lb := len(a), len(b)
	if la > lb {
		a, b = b, a
		la, lb = lb, la
	}
	if lb-la > 1 {
		return false
	}

	i, j := 0, 0
	edits := 0
	for i < la && j < lb {
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if la == lb {
			i++ // substitution
		}
		j++ // insertion into the shorter string
	}
	if j < lb || i < la {
		edits += (lb - j) + (la - i)
	}
	return edits <= 1
}
