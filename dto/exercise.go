package dto

import "time"

// Session creation

type CreatePairMatchRequest struct {
	Difficulty string `json:"difficulty" validate:"required,oneof=beginner novice intermediate advanced expert"`
	GameMode   string `json:"game_mode" validate:"required,oneof=relaxed timed challenge"`
	Category   string `json:"category,omitempty"`
}

func (r CreatePairMatchRequest) Validate() error {
	return validate.Struct(r)
}

type CreateSequenceRequest struct {
	Difficulty  string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	GameMode    string `json:"game_mode" validate:"required,oneof=untimed timed"`
	ChallengeID string `json:"challenge_id,omitempty"`
}

func (r CreateSequenceRequest) Validate() error {
	return validate.Struct(r)
}

type CreateCategoryNamingRequest struct {
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	CategoryID string `json:"category_id,omitempty"`
}

func (r CreateCategoryNamingRequest) Validate() error {
	return validate.Struct(r)
}

// In-session events

type FlipCardRequest struct {
	CardIndex *int `json:"card_index" validate:"required,gte=0"`
}

func (r FlipCardRequest) Validate() error {
	return validate.Struct(r)
}

type SwapStepsRequest struct {
	From *int `json:"from" validate:"required,gte=0"`
	To   *int `json:"to" validate:"required,gte=0"`
}

func (r SwapStepsRequest) Validate() error {
	return validate.Struct(r)
}

type SubmitEntryRequest struct {
	Entry string `json:"entry" validate:"required,min=1,max=64"`
}

func (r SubmitEntryRequest) Validate() error {
	return validate.Struct(r)
}

// Snapshots

type CardView struct {
	PairID   int    `json:"pair_id,omitempty"`
	Role     string `json:"role,omitempty"`
	Content  string `json:"content,omitempty"`
	Category string `json:"category,omitempty"`
	Flipped  bool   `json:"flipped"`
	Matched  bool   `json:"matched"`
}

type StepView struct {
	StepID string `json:"step_id"`
	Text   string `json:"text"`
}

// SessionResponse is the full snapshot handed back after every session event.
// Variant-specific sections are nil for the other variants.
type SessionResponse struct {
	SessionID   string `json:"session_id"`
	Variant     string `json:"variant"`
	State       string `json:"state"`
	Difficulty  string `json:"difficulty"`
	GameMode    string `json:"game_mode,omitempty"`
	TimeElapsed int    `json:"time_elapsed"`
	MovesUsed   int    `json:"moves_used"`

	PairMatch *PairMatchView `json:"pair_match,omitempty"`
	Sequence  *SequenceView  `json:"sequence,omitempty"`
	Naming    *NamingView    `json:"naming,omitempty"`

	Result *ResultView `json:"result,omitempty"`
}

type PairMatchView struct {
	GridRows     int        `json:"grid_rows"`
	GridCols     int        `json:"grid_cols"`
	TotalPairs   int        `json:"total_pairs"`
	MatchedPairs int        `json:"matched_pairs"`
	Lives        int        `json:"lives,omitempty"`
	BoardLocked  bool       `json:"board_locked"`
	Cards        []CardView `json:"cards"`
}

type SequenceView struct {
	ChallengeID string     `json:"challenge_id"`
	Category    string     `json:"category"`
	TimeLimit   int        `json:"time_limit,omitempty"`
	Order       []StepView `json:"order"`
}

type NamingView struct {
	CategoryID    string   `json:"category_id"`
	CategoryName  string   `json:"category_name"`
	TimeLimit     int      `json:"time_limit"`
	TimeRemaining int      `json:"time_remaining"`
	RequiredCount int      `json:"required_count"`
	Entries       []string `json:"entries"`
	RareCount     int      `json:"rare_count"`
	HintAvailable bool     `json:"hint_available"`
}

// ResultView is the completed-session outcome plus submission progress.
type ResultView struct {
	ExerciseID       string      `json:"exercise_id"`
	FinalScore       int         `json:"final_score"`
	Accuracy         float64     `json:"accuracy"`
	Won              bool        `json:"won"`
	Breakdown        interface{} `json:"breakdown"`
	SubmissionStatus string      `json:"submission_status"`
	SubmissionError  string      `json:"submission_error,omitempty"`
	CompletedAt      time.Time   `json:"completed_at"`
}

// EventOutcomeResponse reports one flip or swap. A rejected input is not an
// error; accepted is false and the snapshot shows the unchanged board.
type EventOutcomeResponse struct {
	Accepted bool             `json:"accepted"`
	Session  *SessionResponse `json:"session"`
}

type EntryOutcomeResponse struct {
	Status  string           `json:"status"`
	Word    string           `json:"word,omitempty"`
	Rare    bool             `json:"rare,omitempty"`
	Session *SessionResponse `json:"session"`
}

type HintResponse struct {
	Available bool     `json:"available"`
	UnlocksIn int      `json:"unlocks_in,omitempty"` // seconds
	Hints     []string `json:"hints,omitempty"`
}

type CategorySummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	WordCount int    `json:"word_count"`
}

type CategoryListResponse struct {
	Categories []CategorySummary `json:"categories"`
	Total      int               `json:"total"`
}

type AttemptView struct {
	ExerciseID       string    `json:"exercise_id"`
	Variant          string    `json:"variant"`
	Difficulty       string    `json:"difficulty"`
	GameMode         string    `json:"game_mode,omitempty"`
	TimeElapsed      int       `json:"time_elapsed"`
	MovesUsed        int       `json:"moves_used"`
	FinalScore       int       `json:"final_score"`
	Accuracy         float64   `json:"accuracy"`
	Won              bool      `json:"won"`
	SubmissionStatus string    `json:"submission_status"`
	CompletedAt      time.Time `json:"completed_at"`
}

type AttemptListResponse struct {
	Attempts []AttemptView `json:"attempts"`
	Total    int           `json:"total"`
}
