package game

import (
	"math/rand"
	"time"
)

// Entry outcomes for SubmitEntry.
const (
	EntryAccepted  = "accepted"
	EntryDuplicate = "duplicate"
	EntryInvalid   = "invalid"
)

// EntryResult reports how one typed token was classified.
type EntryResult struct {
	Status string `json:"status"`
	// Word is the canonical reference word the token resolved to, set only
	// on accepted and duplicate outcomes.
	Word string `json:"word,omitempty"`
	Rare bool   `json:"rare,omitempty"`
}

// NamingSession drives one category-naming attempt. Entries are resolved
// against the category vocabulary through the fuzzy matcher, deduplicated by
// canonical word, and rarity-tagged by reference index.
type NamingSession struct {
	session

	Level        NamingDifficulty
	CategoryID   string
	CategoryName string

	matcher  *VocabularyMatcher
	accepted []string
	seen     map[string]bool
	rare     int
	hints    []string
	timedOut bool
}

// NewNamingSession prepares a session for one category. The hint pool is
// drawn up front from the ten most common words so it stays stable for the
// whole attempt.
func NewNamingSession(lvl NamingDifficulty, categoryID, categoryName string, matcher *VocabularyMatcher, rng *rand.Rand) *NamingSession {
	pool := matcher.Words()
	if len(pool) > 10 {
		pool = pool[:10]
	}
	hints := make([]string, len(pool))
	copy(hints, pool)
	rng.Shuffle(len(hints), func(i, j int) {
		hints[i], hints[j] = hints[j], hints[i]
	})
	if len(hints) > 3 {
		hints = hints[:3]
	}

	return &NamingSession{
		session:      newSession(),
		Level:        lvl,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		matcher:      matcher,
		seen:         make(map[string]bool),
		hints:        hints,
	}
}

// AcceptedEntries returns the canonical words accepted so far, in submission
// order.
func (s *NamingSession) AcceptedEntries() []string {
	return s.accepted
}

func (s *NamingSession) RareCount() int {
	return s.rare
}

func (s *NamingSession) TimedOut() bool {
	return s.timedOut
}

// SubmitEntry classifies one typed token. Accepted entries count a move;
// duplicates and invalid tokens cost nothing. Duplicate detection runs on the
// canonical word, so "Apple" and "aple" collide once "apple" is in.
func (s *NamingSession) SubmitEntry(raw string, now time.Time) (EntryResult, bool) {
	if s.state != StatePlaying {
		return EntryResult{}, false
	}

	match, ok := s.matcher.Match(raw)
	if !ok {
		return EntryResult{Status: EntryInvalid}, true
	}
	if s.seen[match.Word] {
		return EntryResult{Status: EntryDuplicate, Word: match.Word}, true
	}

	s.seen[match.Word] = true
	s.accepted = append(s.accepted, match.Word)
	s.addMove()

	rare := match.Index >= RarityThreshold
	if rare {
		s.rare++
	}
	return EntryResult{Status: EntryAccepted, Word: match.Word, Rare: rare}, true
}

// Tick drives the countdown. The session completes when the time limit is
// reached; entries landing after that are rejected by the state check.
func (s *NamingSession) Tick(now time.Time) bool {
	if s.state != StatePlaying {
		return false
	}
	if s.ElapsedSeconds(now) < s.Level.TimeLimit {
		return false
	}
	s.timedOut = true
	s.complete(now)
	return true
}

// HintAvailable reports whether the hint has unlocked.
func (s *NamingSession) HintAvailable(now time.Time) bool {
	if s.state != StatePlaying {
		return false
	}
	return s.ElapsedSeconds(now) >= HintUnlockAfter
}

// Hints returns the session's fixed hint words. Callers gate on
// HintAvailable.
func (s *NamingSession) Hints() []string {
	return s.hints
}

// Score computes the breakdown from the entries accepted so far.
func (s *NamingSession) Score() NamingScore {
	return ScoreCategoryNaming(s.Level, len(s.accepted), s.rare)
}

// Reset discards the attempt and returns to Setup, keeping the vocabulary and
// hint pool so the same category can be replayed.
func (s *NamingSession) Reset() {
	s.session.reset()
	s.accepted = nil
	s.seen = make(map[string]bool)
	s.rare = 0
	s.timedOut = false
}
