// model/exercise.go
package model

import (
	"encoding/json"
	"time"
)

// ExerciseAttempt is the persisted record of one completed session, written
// once at completion and updated as result submission progresses.
type ExerciseAttempt struct {
	ID         string `json:"id" gorm:"primaryKey"`
	ExerciseID string `json:"exercise_id" gorm:"uniqueIndex;not null"`
	UserID     string `json:"user_id" gorm:"index"`
	Variant    string `json:"variant" gorm:"not null"` // pair_match, sequence, category_naming
	Difficulty string `json:"difficulty" gorm:"not null"`
	GameMode   string `json:"game_mode"`

	TimeElapsed int     `json:"time_elapsed" gorm:"not null"` // in seconds
	MovesUsed   int     `json:"moves_used" gorm:"not null"`
	FinalScore  int     `json:"final_score" gorm:"not null"`
	Accuracy    float64 `json:"accuracy"`
	Won         bool    `json:"won"`

	// Breakdown is the variant-specific score breakdown, serialized as-is.
	Breakdown json.RawMessage `json:"breakdown" gorm:"type:text"`
	// Payload is the exact submission body sent to the collector.
	Payload json.RawMessage `json:"payload" gorm:"type:text"`

	SubmissionStatus string     `json:"submission_status" gorm:"not null"` // not_submitted, submitting, submitted, failed
	SubmissionError  string     `json:"submission_error"`
	SubmittedAt      *time.Time `json:"submitted_at"`

	CompletedAt time.Time `json:"completed_at" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CardPair is one question/answer item of the pair-match bank.
type CardPair struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Category  string    `json:"category" gorm:"index;not null"`
	Question  string    `json:"question" gorm:"not null"`
	Answer    string    `json:"answer" gorm:"not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category is one naming category with its ranked vocabulary. Words are
// stored most-common-first; rank decides rarity.
type Category struct {
	ID        string          `json:"id" gorm:"primaryKey"`
	Name      string          `json:"name" gorm:"not null"`
	Words     json.RawMessage `json:"words" gorm:"type:text"` // JSON array, rank order
	IsActive  bool            `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SequenceChallenge is one ordering challenge of the sequence bank.
type SequenceChallenge struct {
	ID         string          `json:"id" gorm:"primaryKey"` // e.g. "dmr_01"
	Category   string          `json:"category" gorm:"not null"`
	Difficulty string          `json:"difficulty" gorm:"index;not null"`
	Steps      json.RawMessage `json:"steps" gorm:"type:text"` // JSON array, correct order
	IsActive   bool            `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
