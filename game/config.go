package game

// Difficulty tables for the three exercise variants. These mirror the
// reference configuration the clients render in their setup screens; the
// engine treats them as immutable once a session leaves Setup.

type PairMatchDifficulty struct {
	Name               string
	Pairs              int
	GridRows           int
	GridCols           int
	IdealMoves         int
	TimeBonusThreshold int // seconds
}

var pairMatchLevels = map[string]PairMatchDifficulty{
	"beginner":     {Name: "beginner", Pairs: 2, GridRows: 2, GridCols: 2, IdealMoves: 4, TimeBonusThreshold: 15},
	"novice":       {Name: "novice", Pairs: 4, GridRows: 2, GridCols: 4, IdealMoves: 8, TimeBonusThreshold: 30},
	"intermediate": {Name: "intermediate", Pairs: 8, GridRows: 4, GridCols: 4, IdealMoves: 16, TimeBonusThreshold: 60},
	"advanced":     {Name: "advanced", Pairs: 18, GridRows: 6, GridCols: 6, IdealMoves: 36, TimeBonusThreshold: 120},
	"expert":       {Name: "expert", Pairs: 32, GridRows: 8, GridCols: 8, IdealMoves: 64, TimeBonusThreshold: 240},
}

func PairMatchLevel(name string) (PairMatchDifficulty, bool) {
	lvl, ok := pairMatchLevels[name]
	return lvl, ok
}

type NamingDifficulty struct {
	Name          string
	TimeLimit     int // seconds
	RequiredCount int // entries needed for the milestone bonus
}

var namingLevels = map[string]NamingDifficulty{
	"easy":   {Name: "easy", TimeLimit: 30, RequiredCount: 10},
	"medium": {Name: "medium", TimeLimit: 60, RequiredCount: 15},
	"hard":   {Name: "hard", TimeLimit: 90, RequiredCount: 20},
}

func NamingLevel(name string) (NamingDifficulty, bool) {
	lvl, ok := namingLevels[name]
	return lvl, ok
}

type SequenceDifficulty struct {
	Name                 string
	StepCounts           []int
	TimeLimit            int // seconds
	PerStepPoints        int
	PerfectBonus         int
	TimedBonusMultiplier float64
}

var sequenceLevels = map[string]SequenceDifficulty{
	"easy":   {Name: "easy", StepCounts: []int{4, 5, 6, 7}, TimeLimit: 120, PerStepPoints: 10, PerfectBonus: 50, TimedBonusMultiplier: 1},
	"medium": {Name: "medium", StepCounts: []int{4, 5, 6}, TimeLimit: 150, PerStepPoints: 15, PerfectBonus: 75, TimedBonusMultiplier: 1.5},
	"hard":   {Name: "hard", StepCounts: []int{5, 6}, TimeLimit: 180, PerStepPoints: 20, PerfectBonus: 100, TimedBonusMultiplier: 2},
}

func SequenceLevel(name string) (SequenceDifficulty, bool) {
	lvl, ok := sequenceLevels[name]
	return lvl, ok
}

// RarityThreshold is the reference-list index at or above which a category
// word counts as rare.
const RarityThreshold = 20

// HintUnlockAfter is how far into a naming session the hint becomes
// available, in seconds.
const HintUnlockAfter = 15

// Lives granted in pair-match challenge mode.
const ChallengeLives = 3
