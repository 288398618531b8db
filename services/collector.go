package services

import (
	"bytes"
	goContext "context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/cognify-health/cognify_api/shared"
)

// Collector endpoint paths per variant.
var collectorPaths = map[string]string{
	shared.VariantPairMatch:      "memory-match",
	shared.VariantCategoryNaming: "category-naming",
	shared.VariantSequence:       "sequence-ordering",
}

// PairMatchResult is the submission body for a completed pair-match session.
type PairMatchResult struct {
	ExerciseID   string  `json:"exercise_id"`
	Difficulty   string  `json:"difficulty"`
	GameMode     string  `json:"game_mode"`
	TotalPairs   int     `json:"total_pairs"`
	MatchedPairs int     `json:"matched_pairs"`
	MovesUsed    int     `json:"moves_used"`
	TimeElapsed  int     `json:"time_elapsed"`
	FinalScore   int     `json:"final_score"`
	Accuracy     float64 `json:"accuracy"`
}

// CategoryNamingResult is the submission body for a completed naming session.
type CategoryNamingResult struct {
	ExerciseID       string   `json:"exercise_id"`
	CategoryID       string   `json:"category_id"`
	Difficulty       string   `json:"difficulty"`
	TimeLimit        int      `json:"time_limit"`
	TimeElapsed      int      `json:"time_elapsed"`
	CorrectEntries   []string `json:"correct_entries"`
	RareEntriesCount int      `json:"rare_entries_count"`
	BaseScore        int      `json:"base_score"`
	RareBonus        int      `json:"rare_bonus"`
	MilestoneBonus   int      `json:"milestone_bonus"`
	FinalScore       int      `json:"final_score"`
}

// SequenceOrderingResult is the submission body for a completed sequence
// session.
type SequenceOrderingResult struct {
	ExerciseID   string  `json:"exercise_id"`
	ChallengeID  string  `json:"challenge_id"`
	Difficulty   string  `json:"difficulty"`
	GameMode     string  `json:"game_mode"`
	UserOrder    []int   `json:"user_order"`
	MovesUsed    int     `json:"moves_used"`
	TimeElapsed  int     `json:"time_elapsed"`
	CorrectCount int     `json:"correct_count"`
	TotalSteps   int     `json:"total_steps"`
	Accuracy     float64 `json:"accuracy"`
	BasePoints   int     `json:"base_points"`
	PerfectBonus int     `json:"perfect_bonus"`
	TimedBonus   int     `json:"timed_bonus"`
	FinalScore   int     `json:"final_score"`
}

// SubmissionError classifies a failed collector call into the message the
// player sees and whether retrying can help.
type SubmissionError struct {
	StatusCode int
	Message    string
	Retryable  bool
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// CollectorService posts completed results to the remote training collector.
type CollectorService struct {
	context.DefaultService

	baseURL string
	token   string
	client  *http.Client
}

const COLLECTOR_SVC = "collector_svc"

func (svc CollectorService) Id() string {
	return COLLECTOR_SVC
}

func (svc *CollectorService) Configure(ctx *context.Context) error {
	svc.baseURL = os.Getenv("COLLECTOR_BASE_URL")
	svc.token = os.Getenv("COLLECTOR_TOKEN")
	svc.client = &http.Client{Timeout: 10 * time.Second}
	return svc.DefaultService.Configure(ctx)
}

func (svc *CollectorService) Start() error {
	if svc.baseURL == "" {
		log.Warn().Msg("COLLECTOR_BASE_URL not set, result submissions will fail until configured")
	}
	return nil
}

// Submit posts one result body to the collector endpoint for the variant.
// Failures come back as *SubmissionError.
func (svc *CollectorService) Submit(ctx goContext.Context, variant string, payload interface{}) error {
	path, ok := collectorPaths[variant]
	if !ok {
		return &SubmissionError{
			StatusCode: http.StatusBadRequest,
			Message:    "Unknown exercise variant",
			Err:        fmt.Errorf("no collector path for variant %q", variant),
		}
	}
	if svc.baseURL == "" {
		return &SubmissionError{
			Message:   "Unable to reach the server. Please check your connection and try again.",
			Retryable: true,
			Err:       fmt.Errorf("collector base URL not configured"),
		}
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return &SubmissionError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid game data. Please try submitting again.",
			Err:        err,
		}
	}

	url := fmt.Sprintf("%s/cognitive-training/%s/submit", svc.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &SubmissionError{
			Message: "Unable to reach the server. Please check your connection and try again.",
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if svc.token != "" {
		req.Header.Set("Authorization", "Bearer "+svc.token)
	}

	resp, err := svc.client.Do(req)
	if err != nil {
		return &SubmissionError{
			Message:   "Unable to reach the server. Please check your connection and try again.",
			Retryable: true,
			Err:       err,
		}
	}
	defer resp.Body.Close()

	return svc.classifyResponse(variant, resp.StatusCode)
}

func (svc *CollectorService) classifyResponse(variant string, status int) error {
	switch {
	case status >= 200 && status < 300:
		log.Info().Str("variant", variant).Int("status", status).Msg("Result submitted to collector")
		return nil
	case status == http.StatusBadRequest:
		return &SubmissionError{
			StatusCode: status,
			Message:    "Invalid game data. Please try submitting again.",
			Retryable:  true,
		}
	case status == http.StatusUnauthorized:
		return &SubmissionError{
			StatusCode: status,
			Message:    "Please log in to save your progress.",
		}
	case status >= 500:
		return &SubmissionError{
			StatusCode: status,
			Message:    "The server had a problem saving your results. Please try again.",
			Retryable:  true,
		}
	default:
		return &SubmissionError{
			StatusCode: status,
			Message:    fmt.Sprintf("Unexpected response from the server (%d).", status),
			Retryable:  true,
		}
	}
}
