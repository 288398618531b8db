package game_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognify-health/cognify_api/game"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func namingSession(t *testing.T) *game.NamingSession {
	t.Helper()
	lvl, ok := game.NamingLevel("easy")
	require.True(t, ok, "easy level should exist")
	matcher := game.NewVocabularyMatcher([]string{"dog", "cat", "horse"}, 1)
	return game.NewNamingSession(lvl, "animals", "Animals", matcher, testRand())
}

func TestSessionLifecycle(t *testing.T) {
	s := namingSession(t)
	now := time.Now()

	assert.Equal(t, game.StateSetup, s.State())
	assert.False(t, s.Pause(now), "pause should be illegal before start")
	assert.False(t, s.Resume(now), "resume should be illegal before start")

	require.True(t, s.Start(now))
	assert.Equal(t, game.StatePlaying, s.State())
	assert.False(t, s.Start(now), "second start should be rejected")

	require.True(t, s.Pause(now.Add(5*time.Second)))
	assert.Equal(t, game.StatePaused, s.State())
	assert.False(t, s.Pause(now.Add(6*time.Second)), "pause while paused should be rejected")

	require.True(t, s.Resume(now.Add(9*time.Second)))
	assert.Equal(t, game.StatePlaying, s.State())
}

func TestElapsedExcludesPauses(t *testing.T) {
	s := namingSession(t)
	now := time.Now()

	require.True(t, s.Start(now))
	assert.Equal(t, 5, s.ElapsedSeconds(now.Add(5*time.Second)))

	require.True(t, s.Pause(now.Add(5*time.Second)))
	assert.Equal(t, 5, s.ElapsedSeconds(now.Add(20*time.Second)), "clock should freeze while paused")

	require.True(t, s.Resume(now.Add(25*time.Second)))
	assert.Equal(t, 5, s.ElapsedSeconds(now.Add(25*time.Second)), "resume should not leak the pause duration")
	assert.Equal(t, 8, s.ElapsedSeconds(now.Add(28*time.Second)))

	require.Len(t, s.Pauses(), 1)
	assert.Equal(t, now.Add(5*time.Second), s.Pauses()[0].PausedAt)
	assert.Equal(t, now.Add(25*time.Second), s.Pauses()[0].ResumedAt)
}

func TestElapsedSurvivesRepeatedPauses(t *testing.T) {
	s := namingSession(t)
	now := time.Now()
	require.True(t, s.Start(now))

	cursor := now
	for i := 0; i < 4; i++ {
		cursor = cursor.Add(2 * time.Second)
		require.True(t, s.Pause(cursor))
		cursor = cursor.Add(30 * time.Second)
		require.True(t, s.Resume(cursor))
	}

	assert.Equal(t, 8, s.ElapsedSeconds(cursor), "only the playing intervals should count")
	assert.Len(t, s.Pauses(), 4)
}

func TestElapsedFrozenAfterCompletion(t *testing.T) {
	s := namingSession(t)
	now := time.Now()
	require.True(t, s.Start(now))

	require.True(t, s.Tick(now.Add(30*time.Second)), "easy limit is 30s")
	assert.Equal(t, game.StateCompleted, s.State())
	assert.True(t, s.TimedOut())

	assert.Equal(t, 30, s.ElapsedSeconds(now.Add(2*time.Minute)))
	assert.Equal(t, now.Add(30*time.Second), s.CompletedAt())
	assert.False(t, s.Pause(now.Add(40*time.Second)), "completed session should reject pause")
}

func TestResetReturnsToSetup(t *testing.T) {
	s := namingSession(t)
	now := time.Now()
	require.True(t, s.Start(now))

	_, ok := s.SubmitEntry("dog", now.Add(time.Second))
	require.True(t, ok)
	require.Equal(t, 1, s.Moves())

	s.Reset()
	assert.Equal(t, game.StateSetup, s.State())
	assert.Zero(t, s.Moves())
	assert.Empty(t, s.AcceptedEntries())
	assert.Zero(t, s.ElapsedSeconds(now.Add(time.Hour)))

	require.True(t, s.Start(now.Add(time.Minute)), "reset session should start again")
}
