package game

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// VocabularyMatcher decides whether a free-text token denotes a member of a
// fixed reference list. Matching is case-insensitive, tolerates up to
// maxDistance single-character edits, and reports the matched word's index so
// callers can apply the rarity threshold.
type VocabularyMatcher struct {
	words       []string
	index       map[string]int
	maxDistance int
}

// VocabularyMatch describes an accepted token.
type VocabularyMatch struct {
	Word     string
	Index    int
	Distance int
}

func NewVocabularyMatcher(words []string, maxDistance int) *VocabularyMatcher {
	m := &VocabularyMatcher{
		words:       make([]string, len(words)),
		index:       make(map[string]int, len(words)),
		maxDistance: maxDistance,
	}
	for i, w := range words {
		norm := Normalize(w)
		m.words[i] = norm
		if _, seen := m.index[norm]; !seen {
			m.index[norm] = i
		}
	}
	return m
}

// Normalize trims and lowercases a raw token.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Match returns the reference word the token denotes, preferring an exact hit
// and otherwise taking the first word in list order within edit distance.
// The distance gate is exact; "aple" matches "apple" but never "orange".
func (m *VocabularyMatcher) Match(token string) (VocabularyMatch, bool) {
	norm := Normalize(token)
	if norm == "" {
		return VocabularyMatch{}, false
	}

	if i, ok := m.index[norm]; ok {
		return VocabularyMatch{Word: m.words[i], Index: i}, true
	}

	for i, w := range m.words {
		if d := levenshtein.ComputeDistance(norm, w); d <= m.maxDistance {
			return VocabularyMatch{Word: w, Index: i, Distance: d}, true
		}
	}
	return VocabularyMatch{}, false
}

// Words exposes the normalized reference list in rank order.
func (m *VocabularyMatcher) Words() []string {
	return m.words
}
