package game

import (
	"math/rand"
	"time"
)

// Card roles within a pair.
const (
	CardRoleQuestion = "question"
	CardRoleAnswer   = "answer"
)

// Card is one face of a question/answer pair on the board.
type Card struct {
	ID        string `json:"id"`
	PairID    int    `json:"pair_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	IsFlipped bool   `json:"is_flipped"`
	IsMatched bool   `json:"is_matched"`
}

// PairContent is one sampled bank item a board is built from.
type PairContent struct {
	PairID   int
	Question string
	Answer   string
	Category string
}

// FlipResult reports how a flip event was handled.
type FlipResult struct {
	Accepted bool
	// PendingEvaluation is set when this flip closed a pair: the board is now
	// locked and ResolveEvaluation must run after the settle delay.
	PendingEvaluation bool
}

// EvalResult reports the outcome of a pair evaluation.
type EvalResult struct {
	Matched   bool
	PairID    int
	Lives     int
	Completed bool
	Won       bool
}

// PairMatchSession drives one memory-match attempt. The board lock is the
// session's single exclusivity primitive: it is taken when the second card of
// an attempt goes face-up and released only once the evaluation has resolved,
// so a flip landing inside the settle window can never open a new pair.
type PairMatchSession struct {
	session

	Level PairMatchDifficulty
	Mode  string

	cards       []Card
	flipped     []int
	matched     int
	lives       int
	livesUsed   bool
	boardLocked bool
	won         bool
}

// NewPairMatchSession builds a shuffled board from sampled bank content.
// Each item contributes one question card and one answer card.
func NewPairMatchSession(lvl PairMatchDifficulty, mode string, content []PairContent, rng *rand.Rand) *PairMatchSession {
	cards := make([]Card, 0, len(content)*2)
	for _, pc := range content {
		cards = append(cards,
			Card{PairID: pc.PairID, Role: CardRoleQuestion, Content: pc.Question, Category: pc.Category},
			Card{PairID: pc.PairID, Role: CardRoleAnswer, Content: pc.Answer, Category: pc.Category},
		)
	}
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	s := &PairMatchSession{
		session: newSession(),
		Level:   lvl,
		Mode:    mode,
		cards:   cards,
	}
	if mode == "challenge" {
		s.lives = ChallengeLives
		s.livesUsed = true
	}
	return s
}

func (s *PairMatchSession) Cards() []Card {
	return s.cards
}

func (s *PairMatchSession) MatchedPairs() int {
	return s.matched
}

func (s *PairMatchSession) TotalPairs() int {
	return len(s.cards) / 2
}

func (s *PairMatchSession) Lives() int {
	return s.lives
}

func (s *PairMatchSession) BoardLocked() bool {
	return s.boardLocked
}

func (s *PairMatchSession) Won() bool {
	return s.won
}

// Pause is refused while the board is locked: an in-flight evaluation delay
// is not frozen by pausing, so the transition waits until it resolves.
func (s *PairMatchSession) Pause(now time.Time) bool {
	if s.boardLocked {
		return false
	}
	return s.session.Pause(now)
}

// Flip turns a card face-up. Illegal flips (board locked, card already
// face-up or matched, session not Playing, index out of range) are rejected
// silently. The second flip of an attempt counts one move, locks the board
// and leaves the evaluation pending.
func (s *PairMatchSession) Flip(cardIndex int, now time.Time) FlipResult {
	if s.state != StatePlaying || s.boardLocked {
		return FlipResult{}
	}
	if cardIndex < 0 || cardIndex >= len(s.cards) {
		return FlipResult{}
	}
	card := &s.cards[cardIndex]
	if card.IsFlipped || card.IsMatched {
		return FlipResult{}
	}

	card.IsFlipped = true
	s.flipped = append(s.flipped, cardIndex)

	if len(s.flipped) < 2 {
		return FlipResult{Accepted: true}
	}

	s.boardLocked = true
	s.addMove()
	return FlipResult{Accepted: true, PendingEvaluation: true}
}

// ResolveEvaluation compares the two face-up cards and releases the board
// lock. It must be called exactly once per pending evaluation, after the
// settle delay has passed (a zero delay is fine, the lock still existed for
// the duration of the flip event).
func (s *PairMatchSession) ResolveEvaluation(now time.Time) EvalResult {
	if !s.boardLocked || len(s.flipped) != 2 {
		return EvalResult{}
	}

	first := &s.cards[s.flipped[0]]
	second := &s.cards[s.flipped[1]]
	res := EvalResult{PairID: first.PairID, Lives: s.lives}

	if first.PairID == second.PairID {
		first.IsMatched = true
		second.IsMatched = true
		s.matched++
		res.Matched = true
	} else {
		first.IsFlipped = false
		second.IsFlipped = false
		if s.livesUsed {
			if s.lives > 0 {
				s.lives--
			}
			res.Lives = s.lives
		}
	}

	s.flipped = s.flipped[:0]
	s.boardLocked = false

	if s.matched == s.TotalPairs() {
		s.won = true
		s.complete(now)
		res.Completed = true
		res.Won = true
	} else if s.livesUsed && s.lives == 0 {
		s.complete(now)
		res.Completed = true
	}
	return res
}

// Score computes the breakdown for the completed session.
func (s *PairMatchSession) Score(now time.Time) PairMatchScore {
	return ScorePairMatch(s.Level, s.moves, s.ElapsedSeconds(now))
}

// Accuracy is matched pairs over total pairs as a percentage.
func (s *PairMatchSession) Accuracy() float64 {
	total := s.TotalPairs()
	if total == 0 {
		return 0
	}
	return float64(s.matched) / float64(total) * 100
}

// Reset discards the attempt and returns to Setup. The board must be rebuilt
// by a new session; a reset session accepts no further play.
func (s *PairMatchSession) Reset() {
	s.session.reset()
	s.cards = nil
	s.flipped = nil
	s.matched = 0
	s.boardLocked = false
	s.won = false
	if s.livesUsed {
		s.lives = ChallengeLives
	}
}
