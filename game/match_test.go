package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognify-health/cognify_api/game"
)

func TestVocabularyMatcher(t *testing.T) {
	m := game.NewVocabularyMatcher([]string{"Apple", "orange", "banana"}, 1)

	t.Run("exact match is case and space insensitive", func(t *testing.T) {
		got, ok := m.Match("  APPLE ")
		require.True(t, ok)
		assert.Equal(t, "apple", got.Word)
		assert.Equal(t, 0, got.Index)
		assert.Zero(t, got.Distance)
	})

	t.Run("one edit away is accepted", func(t *testing.T) {
		got, ok := m.Match("aple")
		require.True(t, ok)
		assert.Equal(t, "apple", got.Word)
		assert.Equal(t, 1, got.Distance)
	})

	t.Run("two edits away is rejected", func(t *testing.T) {
		_, ok := m.Match("aqle")
		assert.False(t, ok, "aqle is two edits from apple")
	})

	t.Run("distance gate never reaches across words", func(t *testing.T) {
		got, ok := m.Match("orang")
		require.True(t, ok)
		assert.Equal(t, "orange", got.Word)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		_, ok := m.Match("   ")
		assert.False(t, ok)
	})
}

func TestVocabularyMatcherPrefersListOrder(t *testing.T) {
	m := game.NewVocabularyMatcher([]string{"cars", "carp"}, 1)

	got, ok := m.Match("carz")
	require.True(t, ok)
	assert.Equal(t, "cars", got.Word, "ties resolve to the earlier list entry")
}
