package game

import (
	"math/rand"
	"time"
)

// Step is one orderable item of a sequence challenge. CorrectIndex is its
// position in the reference ordering.
type Step struct {
	StepID       string `json:"step_id"`
	Text         string `json:"text"`
	CorrectIndex int    `json:"correct_index"`
}

// SequenceSession drives one sequence-ordering attempt. The user order is a
// permutation of the challenge steps, mutated only by Swap, so every step is
// present exactly once at all times.
type SequenceSession struct {
	session

	Level       SequenceDifficulty
	Mode        string
	ChallengeID string
	Category    string

	order     []Step
	submitted bool
	result    SequenceScore
	timedOut  bool
}

// NewSequenceSession shuffles the challenge steps into the initial user order.
// A shuffle that lands on the solved ordering is reshuffled, so the player
// always has work to do.
func NewSequenceSession(lvl SequenceDifficulty, mode, challengeID, category string, steps []Step, rng *rand.Rand) *SequenceSession {
	order := make([]Step, len(steps))
	copy(order, steps)
	for {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		if len(order) < 2 || !solved(order) {
			break
		}
	}

	return &SequenceSession{
		session:     newSession(),
		Level:       lvl,
		Mode:        mode,
		ChallengeID: challengeID,
		Category:    category,
		order:       order,
	}
}

func solved(order []Step) bool {
	for i, st := range order {
		if st.CorrectIndex != i {
			return false
		}
	}
	return true
}

// Order is the current user ordering.
func (s *SequenceSession) Order() []Step {
	return s.order
}

func (s *SequenceSession) Submitted() bool {
	return s.submitted
}

func (s *SequenceSession) TimedOut() bool {
	return s.timedOut
}

// Result is the evaluation breakdown; valid only after submission.
func (s *SequenceSession) Result() SequenceScore {
	return s.result
}

// UserOrder reports the reference indices of the current ordering, the shape
// the result payload carries.
func (s *SequenceSession) UserOrder() []int {
	ids := make([]int, len(s.order))
	for i, st := range s.order {
		ids[i] = st.CorrectIndex
	}
	return ids
}

// Swap exchanges two positions and counts a move. Swapping a position with
// itself changes nothing and costs nothing.
func (s *SequenceSession) Swap(from, to int, now time.Time) bool {
	if s.state != StatePlaying {
		return false
	}
	if from < 0 || from >= len(s.order) || to < 0 || to >= len(s.order) {
		return false
	}
	if from == to {
		return true
	}
	s.order[from], s.order[to] = s.order[to], s.order[from]
	s.addMove()
	return true
}

// Submit evaluates the current ordering and completes the session. Only legal
// while Playing; a second submission is rejected.
func (s *SequenceSession) Submit(now time.Time) (SequenceScore, bool) {
	if s.state != StatePlaying || s.submitted {
		return SequenceScore{}, false
	}

	correct := 0
	for i, st := range s.order {
		if st.CorrectIndex == i {
			correct++
		}
	}

	elapsed := s.ElapsedSeconds(now)
	timed := s.Mode == "timed" && !s.timedOut
	s.result = ScoreSequence(s.Level, correct, len(s.order), elapsed, timed)
	s.submitted = true
	s.complete(now)
	return s.result, true
}

// Tick drives the timed-mode clock. When the limit is reached the current
// ordering is submitted as-is, with no timed bonus.
func (s *SequenceSession) Tick(now time.Time) bool {
	if s.state != StatePlaying || s.Mode != "timed" {
		return false
	}
	if s.ElapsedSeconds(now) < s.Level.TimeLimit {
		return false
	}
	s.timedOut = true
	s.Submit(now)
	return true
}

// Reset discards the attempt and returns to Setup.
func (s *SequenceSession) Reset() {
	s.session.reset()
	s.order = nil
	s.submitted = false
	s.timedOut = false
	s.result = SequenceScore{}
}
