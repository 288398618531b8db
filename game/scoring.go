package game

import "math"

// Pair-match scoring constants.
const (
	maxBaseScore       = 10000
	timePenaltyPerSec  = 5
	movePenaltyPerMove = 50
	speedBonus         = 500
	moveBonus          = 1000
)

// Category-naming scoring constants.
const (
	pointsPerEntry     = 1
	pointsPerRareEntry = 2
	milestoneBonus     = 10
)

// PairMatchScore is the breakdown for one completed pair-match session.
type PairMatchScore struct {
	Base       int `json:"base"`
	SpeedBonus int `json:"speed_bonus"`
	MoveBonus  int `json:"move_bonus"`
	Final      int `json:"final"`
}

// ScorePairMatch maps a completed session's raw metrics to its breakdown.
// The base component is clamped at zero before bonuses are applied, so a slow
// run can still earn its bonuses but the total never goes negative.
func ScorePairMatch(lvl PairMatchDifficulty, movesUsed, elapsedSec int) PairMatchScore {
	timePenalty := elapsedSec * timePenaltyPerSec

	extraMoves := movesUsed - lvl.IdealMoves
	if extraMoves < 0 {
		extraMoves = 0
	}
	movePenalty := extraMoves * movePenaltyPerMove

	base := maxBaseScore - timePenalty - movePenalty
	if base < 0 {
		base = 0
	}

	score := PairMatchScore{Base: base}
	if elapsedSec <= lvl.TimeBonusThreshold {
		score.SpeedBonus = speedBonus
	}
	if movesUsed <= lvl.IdealMoves {
		score.MoveBonus = moveBonus
	}
	score.Final = score.Base + score.SpeedBonus + score.MoveBonus
	return score
}

// NamingScore is the breakdown for one completed category-naming session.
type NamingScore struct {
	BaseScore      int `json:"base_score"`
	RareBonus      int `json:"rare_bonus"`
	MilestoneBonus int `json:"milestone_bonus"`
	Final          int `json:"final"`
}

func ScoreCategoryNaming(lvl NamingDifficulty, entries, rareEntries int) NamingScore {
	score := NamingScore{
		BaseScore: entries * pointsPerEntry,
		RareBonus: rareEntries * pointsPerRareEntry,
	}
	if entries >= lvl.RequiredCount {
		score.MilestoneBonus = milestoneBonus
	}
	score.Final = score.BaseScore + score.RareBonus + score.MilestoneBonus
	return score
}

// SequenceScore is the breakdown for one submitted sequence session.
type SequenceScore struct {
	CorrectCount int     `json:"correct_count"`
	TotalSteps   int     `json:"total_steps"`
	Accuracy     float64 `json:"accuracy"`
	BasePoints   int     `json:"base_points"`
	PerfectBonus int     `json:"perfect_bonus"`
	TimedBonus   int     `json:"timed_bonus"`
	Final        int     `json:"final"`
}

// ScoreSequence evaluates a submitted ordering. The timed bonus is granted
// only when the session ran in timed mode and was submitted strictly before
// the limit; a timeout-triggered submission earns none.
func ScoreSequence(lvl SequenceDifficulty, correctCount, totalSteps, elapsedSec int, timed bool) SequenceScore {
	score := SequenceScore{
		CorrectCount: correctCount,
		TotalSteps:   totalSteps,
		BasePoints:   correctCount * lvl.PerStepPoints,
	}
	if totalSteps > 0 {
		score.Accuracy = float64(correctCount) / float64(totalSteps) * 100
	}
	if correctCount == totalSteps {
		score.PerfectBonus = lvl.PerfectBonus
	}
	if timed && elapsedSec < lvl.TimeLimit {
		remaining := lvl.TimeLimit - elapsedSec
		score.TimedBonus = int(math.Floor(float64(remaining) * lvl.TimedBonusMultiplier))
	}
	score.Final = score.BasePoints + score.PerfectBonus + score.TimedBonus
	return score
}
