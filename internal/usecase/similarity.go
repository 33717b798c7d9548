package usecase

import (
	"net/url"
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	punctuationRegex    = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
	phoneNoiseRegex     = regexp.MustCompile(`[\s\-\.\(\)]`)
)

const fuzzyEditDistance = 1 // tolerated per-token edit distance

// StringSimilarity scores how alike two strings are, in [0,1].
//   - 1.0 for an exact match (case and whitespace insensitive)
//   - 0.8 when one string contains the other
//   - otherwise a token-set similarity: the fraction of matched tokens over
//     the token union, tolerating one edit per token for typos
//
// The thresholds downstream (0.6 consider, 0.8 duplicate) are calibrated
// against this scale.
func StringSimilarity(a, b string) float64 {
	na := normalizeText(a)
	nb := normalizeText(b)

	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.8
	}

	ta := tokenize(na)
	tb := tokenize(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	matched := 0
	used := make([]bool, len(tb))
	for _, t1 := range ta {
		for j, t2 := range tb {
			if used[j] {
				continue
			}
			if t1 == t2 || fuzzyTokenMatch(t1, t2, fuzzyEditDistance) {
				matched++
				used[j] = true
				break
			}
		}
	}

	union := len(ta) + len(tb) - matched
	if union == 0 {
		return 0
	}
	return float64(matched) / float64(union)
}

// normalizeText lowercases, strips punctuation and collapses whitespace.
func normalizeText(s string) string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	cleaned = multipleSpacesRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// tokenize splits normalized text into tokens, dropping single characters.
func tokenize(s string) []string {
	words := strings.Fields(s)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) <= 1 {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance
// threshold. Short tokens are excluded to avoid false positives.
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings using
// a two-row matrix for space efficiency.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// normalizePhone strips spaces, dashes, dots and parentheses so numbers from
// different sources compare on digits alone.
func normalizePhone(phone string) string {
	return phoneNoiseRegex.ReplaceAllString(phone, "")
}

// phonesMatch reports whether two phone numbers identify the same line:
// after normalization one must contain the other, and both must be long
// enough to be meaningful.
func phonesMatch(a, b string) bool {
	na := normalizePhone(a)
	nb := normalizePhone(b)
	if len(na) < 6 || len(nb) < 6 {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// normalizeWebsite reduces a URL to hostname+path, stripping scheme, a
// leading www. and any trailing slash.
func normalizeWebsite(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(strings.TrimSuffix(s, "/"), "https://")
	}
	host := strings.TrimPrefix(u.Host, "www.")
	return host + strings.TrimSuffix(u.Path, "/")
}

// websitesMatch reports whether two URLs point at the same site.
func websitesMatch(a, b string) bool {
	na := normalizeWebsite(a)
	nb := normalizeWebsite(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
