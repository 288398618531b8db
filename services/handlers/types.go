package handlers

import (
	"github.com/cognify-health/cognify_api/dto"
	"github.com/cognify-health/cognify_api/model"
)

type ExerciseServiceInterface interface {
	CreatePairMatch(userID string, req dto.CreatePairMatchRequest) (*dto.SessionResponse, error)
	CreateSequence(userID string, req dto.CreateSequenceRequest) (*dto.SessionResponse, error)
	CreateCategoryNaming(userID string, req dto.CreateCategoryNamingRequest) (*dto.SessionResponse, error)
	GetSession(sessionID string) (*dto.SessionResponse, error)
	StartSession(sessionID string) (*dto.SessionResponse, error)
	PauseSession(sessionID string) (*dto.SessionResponse, error)
	ResumeSession(sessionID string) (*dto.SessionResponse, error)
	ResetSession(sessionID string) (*dto.SessionResponse, error)
	FlipCard(sessionID string, cardIndex int) (*dto.EventOutcomeResponse, error)
	SwapSteps(sessionID string, from, to int) (*dto.EventOutcomeResponse, error)
	SubmitOrder(sessionID string) (*dto.SessionResponse, error)
	SubmitEntry(sessionID, entry string) (*dto.EntryOutcomeResponse, error)
	GetHint(sessionID string) (*dto.HintResponse, error)
	RetrySubmission(sessionID string) (*dto.SessionResponse, error)
	ListAttempts(userID string) (*dto.AttemptListResponse, error)
}

type ContentServiceInterface interface {
	ListCategories() ([]model.Category, map[string]int, error)
}
