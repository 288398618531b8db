package game_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognify-health/cognify_api/game"
)

func sequenceSteps() []game.Step {
	return []game.Step{
		{StepID: "dmr_01_s1", Text: "Wake up", CorrectIndex: 0},
		{StepID: "dmr_01_s2", Text: "Brush teeth", CorrectIndex: 1},
		{StepID: "dmr_01_s3", Text: "Eat breakfast", CorrectIndex: 2},
		{StepID: "dmr_01_s4", Text: "Leave for work", CorrectIndex: 3},
	}
}

func sequenceSession(t *testing.T, mode string) *game.SequenceSession {
	t.Helper()
	lvl, ok := game.SequenceLevel("easy")
	require.True(t, ok)
	return game.NewSequenceSession(lvl, mode, "dmr_01", "Daily Morning Routine", sequenceSteps(), testRand())
}

// solve swaps each position into place.
func solve(s *game.SequenceSession, now time.Time) {
	for i := 0; i < len(s.Order()); i++ {
		for j := i; j < len(s.Order()); j++ {
			if s.Order()[j].CorrectIndex == i {
				s.Swap(i, j, now)
				break
			}
		}
	}
}

func TestSequenceShuffleNeverStartsSolved(t *testing.T) {
	lvl, ok := game.SequenceLevel("easy")
	require.True(t, ok)

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s := game.NewSequenceSession(lvl, "untimed", "dmr_01", "Daily Morning Routine", sequenceSteps(), rng)
		order := s.Order()
		require.Len(t, order, 4)

		solvedAlready := true
		for i, st := range order {
			if st.CorrectIndex != i {
				solvedAlready = false
			}
		}
		assert.False(t, solvedAlready, "initial order must leave work to do")
	}
}

func TestSequenceSwapIsPermutation(t *testing.T) {
	s := sequenceSession(t, "untimed")
	now := time.Now()
	require.True(t, s.Start(now))

	require.True(t, s.Swap(0, 3, now))
	require.True(t, s.Swap(1, 2, now))
	assert.Equal(t, 2, s.Moves())

	seen := map[string]bool{}
	for _, st := range s.Order() {
		seen[st.StepID] = true
	}
	assert.Len(t, seen, 4, "every step still present exactly once")
}

func TestSequenceSwapSamePositionIsFree(t *testing.T) {
	s := sequenceSession(t, "untimed")
	now := time.Now()
	require.True(t, s.Start(now))

	before := append([]game.Step(nil), s.Order()...)
	require.True(t, s.Swap(2, 2, now))
	assert.Zero(t, s.Moves(), "self-swap costs no move")
	assert.Equal(t, before, s.Order())

	assert.False(t, s.Swap(-1, 0, now))
	assert.False(t, s.Swap(0, 4, now))
}

func TestSequenceSubmitPerfect(t *testing.T) {
	s := sequenceSession(t, "timed")
	now := time.Now()
	require.True(t, s.Start(now))

	solve(s, now)
	res, ok := s.Submit(now.Add(20 * time.Second))
	require.True(t, ok)

	assert.Equal(t, 4, res.CorrectCount)
	assert.Equal(t, 4, res.TotalSteps)
	assert.Equal(t, 40, res.BasePoints)
	assert.Equal(t, 50, res.PerfectBonus)
	assert.Equal(t, 100, res.TimedBonus, "100s remaining at multiplier 1")
	assert.Equal(t, 190, res.Final)
	assert.Equal(t, game.StateCompleted, s.State())
	assert.Equal(t, []int{0, 1, 2, 3}, s.UserOrder())

	_, ok = s.Submit(now.Add(21 * time.Second))
	assert.False(t, ok, "second submission is rejected")
}

func TestSequenceUntimedEarnsNoTimedBonus(t *testing.T) {
	s := sequenceSession(t, "untimed")
	now := time.Now()
	require.True(t, s.Start(now))

	solve(s, now)
	res, ok := s.Submit(now.Add(5 * time.Second))
	require.True(t, ok)
	assert.Zero(t, res.TimedBonus)
	assert.Equal(t, 90, res.Final)
}

func TestSequenceTimeoutAutoSubmits(t *testing.T) {
	s := sequenceSession(t, "timed")
	now := time.Now()
	require.True(t, s.Start(now))

	assert.False(t, s.Tick(now.Add(119*time.Second)), "before the limit nothing happens")
	require.True(t, s.Tick(now.Add(120*time.Second)))

	assert.True(t, s.TimedOut())
	assert.True(t, s.Submitted())
	assert.Equal(t, game.StateCompleted, s.State())
	assert.Zero(t, s.Result().TimedBonus, "timeout submission earns no timed bonus")
}

func TestSequenceTickIgnoredWhenUntimed(t *testing.T) {
	s := sequenceSession(t, "untimed")
	now := time.Now()
	require.True(t, s.Start(now))

	assert.False(t, s.Tick(now.Add(time.Hour)))
	assert.Equal(t, game.StatePlaying, s.State())
}
