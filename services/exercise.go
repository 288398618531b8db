package services

import (
	goContext "context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cognify-health/cognify_api/dto"
	"github.com/cognify-health/cognify_api/game"
	"github.com/cognify-health/cognify_api/model"
	"github.com/cognify-health/cognify_api/shared"
)

const DEFAULT_SETTLE_DELAY_MS = 600

// attemptStore is the slice of SqlService the exercise flow needs.
type attemptStore interface {
	CreateAttempt(attempt *model.ExerciseAttempt) error
	UpdateAttempt(attempt *model.ExerciseAttempt) error
	GetAttemptByExerciseID(exerciseID string) (*model.ExerciseAttempt, error)
	ListAttemptsByUser(userID string, limit int) ([]model.ExerciseAttempt, error)
}

// resultSubmitter posts a completed result to the collector.
type resultSubmitter interface {
	Submit(ctx goContext.Context, variant string, payload interface{}) error
}

// submissionArchiver spools payloads that could not be delivered.
type submissionArchiver interface {
	Enabled() bool
	ArchiveFailedSubmission(ctx goContext.Context, variant, exerciseID string, payload []byte) error
}

// sessionMetrics records engine-level counters.
type sessionMetrics interface {
	RecordSessionStarted(variant, difficulty string)
	RecordSessionCompleted(variant, outcome string, finalScore int)
	RecordSubmission(variant, status string)
}

// liveSession is one in-memory session with its timers. All access goes
// through mu; timer callbacks re-lock before touching the engine.
type liveSession struct {
	mu sync.Mutex

	id      string
	variant string
	userID  string

	pair   *game.PairMatchSession
	seq    *game.SequenceSession
	naming *game.NamingSession

	settleTimer *time.Timer
	tickTimer   *time.Timer

	// Set once the session completes.
	exerciseID       string
	attempt          *model.ExerciseAttempt
	payload          interface{}
	submissionStatus string
	submissionError  string
}

// ExerciseService owns the session registry and the completion pipeline:
// score, persist, submit, archive on failure.
type ExerciseService struct {
	context.DefaultService

	sessions map[string]*liveSession
	mu       sync.RWMutex

	store      attemptStore
	submitter  resultSubmitter
	archiver   submissionArchiver
	metrics    sessionMetrics
	contentSvc *ContentService

	settleDelay time.Duration
	now         func() time.Time
}

const EXERCISE_SVC = "exercise_svc"

func (svc ExerciseService) Id() string {
	return EXERCISE_SVC
}

func (svc *ExerciseService) Configure(ctx *context.Context) error {
	svc.sessions = make(map[string]*liveSession)
	svc.now = time.Now

	svc.settleDelay = DEFAULT_SETTLE_DELAY_MS * time.Millisecond
	if ms := os.Getenv("SETTLE_DELAY_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v >= 0 {
			svc.settleDelay = time.Duration(v) * time.Millisecond
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *ExerciseService) Start() error {
	svc.store = svc.Service(SQL_SVC).(*SqlService)
	svc.submitter = svc.Service(COLLECTOR_SVC).(*CollectorService)
	svc.archiver = svc.Service(ARCHIVE_SVC).(*ArchiveService)
	svc.metrics = svc.Service(MONITORING_SVC).(*MonitoringService)
	svc.contentSvc = svc.Service(CONTENT_SVC).(*ContentService)
	return nil
}

func (svc *ExerciseService) Shutdown() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, ls := range svc.sessions {
		ls.mu.Lock()
		ls.stopTimers()
		ls.mu.Unlock()
	}
}

func (ls *liveSession) stopTimers() {
	if ls.settleTimer != nil {
		ls.settleTimer.Stop()
		ls.settleTimer = nil
	}
	if ls.tickTimer != nil {
		ls.tickTimer.Stop()
		ls.tickTimer = nil
	}
}

// Session creation

func (svc *ExerciseService) CreatePairMatch(userID string, req dto.CreatePairMatchRequest) (*dto.SessionResponse, error) {
	lvl, ok := game.PairMatchLevel(req.Difficulty)
	if !ok {
		return nil, shared.NewBadRequestError(fmt.Errorf("unknown difficulty %q", req.Difficulty), "Unknown difficulty")
	}

	content, err := svc.contentSvc.SamplePairs(lvl, req.Category)
	if err != nil {
		return nil, err
	}

	ls := &liveSession{
		id:               uuid.NewString(),
		variant:          shared.VariantPairMatch,
		userID:           userID,
		pair:             game.NewPairMatchSession(lvl, req.GameMode, content, svc.contentSvc.SessionRng()),
		submissionStatus: shared.SubmissionNotStarted,
	}
	svc.register(ls)

	svc.metrics.RecordSessionStarted(shared.VariantPairMatch, req.Difficulty)
	log.Info().Str("session_id", ls.id).Str("difficulty", req.Difficulty).Str("mode", req.GameMode).Msg("Pair match session created")
	return svc.snapshotLocked(ls), nil
}

func (svc *ExerciseService) CreateSequence(userID string, req dto.CreateSequenceRequest) (*dto.SessionResponse, error) {
	lvl, ok := game.SequenceLevel(req.Difficulty)
	if !ok {
		return nil, shared.NewBadRequestError(fmt.Errorf("unknown difficulty %q", req.Difficulty), "Unknown difficulty")
	}

	challenge, steps, err := svc.contentSvc.PickChallenge(req.Difficulty, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	ls := &liveSession{
		id:               uuid.NewString(),
		variant:          shared.VariantSequence,
		userID:           userID,
		seq:              game.NewSequenceSession(lvl, req.GameMode, challenge.ID, challenge.Category, steps, svc.contentSvc.SessionRng()),
		submissionStatus: shared.SubmissionNotStarted,
	}
	svc.register(ls)

	svc.metrics.RecordSessionStarted(shared.VariantSequence, req.Difficulty)
	log.Info().Str("session_id", ls.id).Str("challenge_id", challenge.ID).Str("mode", req.GameMode).Msg("Sequence session created")
	return svc.snapshotLocked(ls), nil
}

func (svc *ExerciseService) CreateCategoryNaming(userID string, req dto.CreateCategoryNamingRequest) (*dto.SessionResponse, error) {
	lvl, ok := game.NamingLevel(req.Difficulty)
	if !ok {
		return nil, shared.NewBadRequestError(fmt.Errorf("unknown difficulty %q", req.Difficulty), "Unknown difficulty")
	}

	category, words, err := svc.contentSvc.CategoryVocabulary(req.CategoryID)
	if err != nil {
		return nil, err
	}

	matcher := game.NewVocabularyMatcher(words, 1)
	ls := &liveSession{
		id:               uuid.NewString(),
		variant:          shared.VariantCategoryNaming,
		userID:           userID,
		naming:           game.NewNamingSession(lvl, category.ID, category.Name, matcher, svc.contentSvc.SessionRng()),
		submissionStatus: shared.SubmissionNotStarted,
	}
	svc.register(ls)

	svc.metrics.RecordSessionStarted(shared.VariantCategoryNaming, req.Difficulty)
	log.Info().Str("session_id", ls.id).Str("category", category.ID).Msg("Category naming session created")
	return svc.snapshotLocked(ls), nil
}

func (svc *ExerciseService) register(ls *liveSession) {
	svc.mu.Lock()
	svc.sessions[ls.id] = ls
	svc.mu.Unlock()
}

func (svc *ExerciseService) lookup(sessionID string) (*liveSession, error) {
	svc.mu.RLock()
	ls, ok := svc.sessions[sessionID]
	svc.mu.RUnlock()
	if !ok {
		return nil, shared.NewNotFoundError(fmt.Errorf("session %s not found", sessionID), "Session not found")
	}
	return ls, nil
}

// Lifecycle events

func (svc *ExerciseService) StartSession(sessionID string) (*dto.SessionResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	now := svc.now()
	if !ls.engine().Start(now) {
		return nil, shared.NewConflictError(fmt.Errorf("session %s is not in setup", sessionID), "Session already started")
	}
	svc.scheduleTickLocked(ls, now)
	return svc.snapshot(ls, now), nil
}

func (svc *ExerciseService) PauseSession(sessionID string) (*dto.SessionResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	now := svc.now()
	var paused bool
	if ls.pair != nil {
		paused = ls.pair.Pause(now)
	} else {
		paused = ls.engine().Pause(now)
	}
	if !paused {
		return nil, shared.NewConflictError(fmt.Errorf("session %s cannot pause", sessionID), "Session cannot be paused right now")
	}
	if ls.tickTimer != nil {
		ls.tickTimer.Stop()
		ls.tickTimer = nil
	}
	return svc.snapshot(ls, now), nil
}

func (svc *ExerciseService) ResumeSession(sessionID string) (*dto.SessionResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	now := svc.now()
	if !ls.engine().Resume(now) {
		return nil, shared.NewConflictError(fmt.Errorf("session %s is not paused", sessionID), "Session is not paused")
	}
	svc.scheduleTickLocked(ls, now)
	return svc.snapshot(ls, now), nil
}

// ResetSession returns the session to setup from any state. A completed
// session keeps its persisted attempt; only the live result and submission
// tracking are discarded, so a replay completes as a fresh attempt with a new
// exercise id.
func (svc *ExerciseService) ResetSession(sessionID string) (*dto.SessionResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.stopTimers()
	switch {
	case ls.pair != nil:
		ls.pair.Reset()
	case ls.seq != nil:
		ls.seq.Reset()
	case ls.naming != nil:
		ls.naming.Reset()
	}

	ls.exerciseID = ""
	ls.attempt = nil
	ls.payload = nil
	ls.submissionStatus = shared.SubmissionNotStarted
	ls.submissionError = ""

	log.Info().Str("session_id", sessionID).Msg("Session reset")
	return svc.snapshot(ls, svc.now()), nil
}

func (svc *ExerciseService) GetSession(sessionID string) (*dto.SessionResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	return svc.snapshot(ls, svc.now()), nil
}

// engine returns the shared state machine of whichever variant is live.
func (ls *liveSession) engine() interface {
	Start(time.Time) bool
	Pause(time.Time) bool
	Resume(time.Time) bool
	State() game.State
	Moves() int
	ElapsedSeconds(time.Time) int
	CompletedAt() time.Time
} {
	switch {
	case ls.pair != nil:
		return ls.pair
	case ls.seq != nil:
		return ls.seq
	default:
		return ls.naming
	}
}

// scheduleTickLocked arms the countdown timer for variants with a time limit.
func (svc *ExerciseService) scheduleTickLocked(ls *liveSession, now time.Time) {
	var remaining time.Duration

	switch {
	case ls.naming != nil:
		limit := time.Duration(ls.naming.Level.TimeLimit) * time.Second
		remaining = limit - ls.naming.Elapsed(now)
	case ls.seq != nil && ls.seq.Mode == shared.GameModeTimed:
		limit := time.Duration(ls.seq.Level.TimeLimit) * time.Second
		remaining = limit - ls.seq.Elapsed(now)
	default:
		return
	}

	if remaining < 0 {
		remaining = 0
	}
	ls.tickTimer = time.AfterFunc(remaining, func() {
		svc.handleTimeout(ls)
	})
}

func (svc *ExerciseService) handleTimeout(ls *liveSession) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	now := svc.now()
	switch {
	case ls.naming != nil:
		if ls.naming.Tick(now) {
			svc.completeLocked(ls, now)
		}
	case ls.seq != nil:
		if ls.seq.Tick(now) {
			svc.completeLocked(ls, now)
		}
	}
}

// Pair match events

// FlipCard applies one flip. Illegal flips (locked board, face-up card,
// out-of-range index, wrong state) are not errors: the outcome carries
// accepted=false and the unchanged snapshot.
func (svc *ExerciseService) FlipCard(sessionID string, cardIndex int) (*dto.EventOutcomeResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.pair == nil {
		return nil, shared.NewBadRequestError(fmt.Errorf("session %s is not pair match", sessionID), "Not a pair match session")
	}

	now := svc.now()
	res := ls.pair.Flip(cardIndex, now)
	if res.Accepted && res.PendingEvaluation {
		ls.settleTimer = time.AfterFunc(svc.settleDelay, func() {
			svc.handleSettle(ls)
		})
	}
	return &dto.EventOutcomeResponse{
		Accepted: res.Accepted,
		Session:  svc.snapshot(ls, now),
	}, nil
}

func (svc *ExerciseService) handleSettle(ls *liveSession) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.settleTimer = nil
	now := svc.now()
	eval := ls.pair.ResolveEvaluation(now)
	if eval.Completed {
		svc.completeLocked(ls, now)
	}
}

// Sequence events

// SwapSteps applies one swap, with the same inline rejection contract as
// FlipCard.
func (svc *ExerciseService) SwapSteps(sessionID string, from, to int) (*dto.EventOutcomeResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.seq == nil {
		return nil, shared.NewBadRequestError(fmt.Errorf("session %s is not sequence", sessionID), "Not a sequence session")
	}

	now := svc.now()
	accepted := ls.seq.Swap(from, to, now)
	return &dto.EventOutcomeResponse{
		Accepted: accepted,
		Session:  svc.snapshot(ls, now),
	}, nil
}

func (svc *ExerciseService) SubmitOrder(sessionID string) (*dto.SessionResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.seq == nil {
		return nil, shared.NewBadRequestError(fmt.Errorf("session %s is not sequence", sessionID), "Not a sequence session")
	}

	now := svc.now()
	if _, ok := ls.seq.Submit(now); !ok {
		return nil, shared.NewConflictError(fmt.Errorf("submit rejected for session %s", sessionID), "Order cannot be submitted right now")
	}
	svc.completeLocked(ls, now)
	return svc.snapshot(ls, now), nil
}

// Naming events

func (svc *ExerciseService) SubmitEntry(sessionID, entry string) (*dto.EntryOutcomeResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.naming == nil {
		return nil, shared.NewBadRequestError(fmt.Errorf("session %s is not category naming", sessionID), "Not a category naming session")
	}

	now := svc.now()
	res, ok := ls.naming.SubmitEntry(entry, now)
	if !ok {
		return nil, shared.NewConflictError(fmt.Errorf("entry rejected for session %s", sessionID), "Entries are not accepted right now")
	}

	return &dto.EntryOutcomeResponse{
		Status:  res.Status,
		Word:    res.Word,
		Rare:    res.Rare,
		Session: svc.snapshot(ls, now),
	}, nil
}

func (svc *ExerciseService) GetHint(sessionID string) (*dto.HintResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.naming == nil {
		return nil, shared.NewBadRequestError(fmt.Errorf("session %s is not category naming", sessionID), "Not a category naming session")
	}

	now := svc.now()
	if !ls.naming.HintAvailable(now) {
		unlocksIn := game.HintUnlockAfter - ls.naming.ElapsedSeconds(now)
		if unlocksIn < 0 {
			unlocksIn = 0
		}
		return &dto.HintResponse{Available: false, UnlocksIn: unlocksIn}, nil
	}
	return &dto.HintResponse{Available: true, Hints: ls.naming.Hints()}, nil
}

// Completion pipeline

// completeLocked runs once per session: assign the exercise id, score,
// persist the attempt and kick off the collector submission.
func (svc *ExerciseService) completeLocked(ls *liveSession, now time.Time) {
	if ls.exerciseID != "" {
		return
	}
	ls.stopTimers()

	var prefix string
	switch ls.variant {
	case shared.VariantPairMatch:
		prefix = "mm"
	case shared.VariantSequence:
		prefix = "sq"
	default:
		prefix = "cn"
	}
	ls.exerciseID = fmt.Sprintf("%s_%s", prefix, uuid.NewString())

	attempt, payload := svc.buildResult(ls, now)
	ls.attempt = attempt
	ls.payload = payload

	if err := svc.store.CreateAttempt(attempt); err != nil {
		log.Error().Err(err).Str("exercise_id", ls.exerciseID).Msg("Failed to persist attempt")
	}

	outcome := "completed"
	if attempt.Won {
		outcome = "won"
	} else if ls.variant == shared.VariantPairMatch {
		outcome = "lost"
	}
	svc.metrics.RecordSessionCompleted(ls.variant, outcome, attempt.FinalScore)

	svc.startSubmissionLocked(ls)
}

func (svc *ExerciseService) buildResult(ls *liveSession, now time.Time) (*model.ExerciseAttempt, interface{}) {
	attempt := &model.ExerciseAttempt{
		ID:          uuid.NewString(),
		ExerciseID:  ls.exerciseID,
		UserID:      ls.userID,
		Variant:     ls.variant,
		CompletedAt: ls.engine().CompletedAt(),
	}

	var payload interface{}
	var breakdown interface{}

	switch {
	case ls.pair != nil:
		s := ls.pair
		score := s.Score(now)
		attempt.Difficulty = s.Level.Name
		attempt.GameMode = s.Mode
		attempt.TimeElapsed = s.ElapsedSeconds(now)
		attempt.MovesUsed = s.Moves()
		attempt.FinalScore = score.Final
		attempt.Accuracy = s.Accuracy()
		attempt.Won = s.Won()
		breakdown = score
		payload = PairMatchResult{
			ExerciseID:   ls.exerciseID,
			Difficulty:   s.Level.Name,
			GameMode:     s.Mode,
			TotalPairs:   s.TotalPairs(),
			MatchedPairs: s.MatchedPairs(),
			MovesUsed:    s.Moves(),
			TimeElapsed:  attempt.TimeElapsed,
			FinalScore:   score.Final,
			Accuracy:     s.Accuracy(),
		}

	case ls.seq != nil:
		s := ls.seq
		score := s.Result()
		attempt.Difficulty = s.Level.Name
		attempt.GameMode = s.Mode
		attempt.TimeElapsed = s.ElapsedSeconds(now)
		attempt.MovesUsed = s.Moves()
		attempt.FinalScore = score.Final
		attempt.Accuracy = score.Accuracy
		attempt.Won = score.CorrectCount == score.TotalSteps
		breakdown = score
		payload = SequenceOrderingResult{
			ExerciseID:   ls.exerciseID,
			ChallengeID:  s.ChallengeID,
			Difficulty:   s.Level.Name,
			GameMode:     s.Mode,
			UserOrder:    s.UserOrder(),
			MovesUsed:    s.Moves(),
			TimeElapsed:  attempt.TimeElapsed,
			CorrectCount: score.CorrectCount,
			TotalSteps:   score.TotalSteps,
			Accuracy:     score.Accuracy,
			BasePoints:   score.BasePoints,
			PerfectBonus: score.PerfectBonus,
			TimedBonus:   score.TimedBonus,
			FinalScore:   score.Final,
		}

	case ls.naming != nil:
		s := ls.naming
		score := s.Score()
		attempt.Difficulty = s.Level.Name
		attempt.TimeElapsed = s.ElapsedSeconds(now)
		attempt.MovesUsed = s.Moves()
		attempt.FinalScore = score.Final
		attempt.Won = len(s.AcceptedEntries()) >= s.Level.RequiredCount
		breakdown = score
		entries := s.AcceptedEntries()
		if entries == nil {
			entries = []string{}
		}
		payload = CategoryNamingResult{
			ExerciseID:       ls.exerciseID,
			CategoryID:       s.CategoryID,
			Difficulty:       s.Level.Name,
			TimeLimit:        s.Level.TimeLimit,
			TimeElapsed:      attempt.TimeElapsed,
			CorrectEntries:   entries,
			RareEntriesCount: s.RareCount(),
			BaseScore:        score.BaseScore,
			RareBonus:        score.RareBonus,
			MilestoneBonus:   score.MilestoneBonus,
			FinalScore:       score.Final,
		}
	}

	if raw, err := sonic.Marshal(breakdown); err == nil {
		attempt.Breakdown = raw
	}
	if raw, err := sonic.Marshal(payload); err == nil {
		attempt.Payload = raw
	}
	attempt.SubmissionStatus = shared.SubmissionNotStarted
	return attempt, payload
}

// startSubmissionLocked marks the attempt in flight and submits it off the
// request path.
func (svc *ExerciseService) startSubmissionLocked(ls *liveSession) {
	ls.submissionStatus = shared.SubmissionInFlight
	ls.submissionError = ""
	ls.attempt.SubmissionStatus = shared.SubmissionInFlight
	if err := svc.store.UpdateAttempt(ls.attempt); err != nil {
		log.Error().Err(err).Str("exercise_id", ls.exerciseID).Msg("Failed to update attempt status")
	}

	go svc.submit(ls, ls.attempt, ls.variant, ls.payload)
}

// submit runs off the request path. It carries its own references to the
// attempt and payload, so a session reset while the call is in flight only
// detaches the live tracking; the persisted attempt is still finalized.
func (svc *ExerciseService) submit(ls *liveSession, attempt *model.ExerciseAttempt, variant string, payload interface{}) {
	exerciseID := attempt.ExerciseID

	ctx, cancel := goContext.WithTimeout(goContext.Background(), 15*time.Second)
	defer cancel()
	err := svc.submitter.Submit(ctx, variant, payload)

	ls.mu.Lock()
	defer ls.mu.Unlock()

	// The session may have been reset mid-flight; then the result is no
	// longer live and only the attempt record gets the outcome.
	live := ls.attempt == attempt

	now := svc.now()
	if err == nil {
		attempt.SubmissionStatus = shared.SubmissionSucceeded
		attempt.SubmissionError = ""
		attempt.SubmittedAt = &now
		if live {
			ls.submissionStatus = shared.SubmissionSucceeded
			ls.submissionError = ""
		}
		svc.metrics.RecordSubmission(variant, "succeeded")
	} else {
		message := err.Error()
		if subErr, ok := err.(*SubmissionError); ok {
			message = subErr.Message
		}
		attempt.SubmissionStatus = shared.SubmissionFailed
		attempt.SubmissionError = message
		if live {
			ls.submissionStatus = shared.SubmissionFailed
			ls.submissionError = message
		}
		svc.metrics.RecordSubmission(variant, "failed")
		log.Warn().Err(err).Str("exercise_id", exerciseID).Msg("Result submission failed")

		if svc.archiver.Enabled() {
			if archiveErr := svc.archiver.ArchiveFailedSubmission(ctx, variant, exerciseID, attempt.Payload); archiveErr != nil {
				log.Error().Err(archiveErr).Str("exercise_id", exerciseID).Msg("Failed to archive submission payload")
			}
		}
	}

	if err := svc.store.UpdateAttempt(attempt); err != nil {
		log.Error().Err(err).Str("exercise_id", exerciseID).Msg("Failed to update attempt after submission")
	}
}

// RetrySubmission re-runs the collector submission for a completed session
// whose previous attempt failed. The exercise id stays the same, so the
// collector can deduplicate.
func (svc *ExerciseService) RetrySubmission(sessionID string) (*dto.SessionResponse, error) {
	ls, err := svc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.exerciseID == "" {
		return nil, shared.NewConflictError(fmt.Errorf("session %s not completed", sessionID), "Session has no result to submit")
	}
	if ls.submissionStatus != shared.SubmissionFailed {
		return nil, shared.NewConflictError(fmt.Errorf("session %s submission is %s", sessionID, ls.submissionStatus), "Submission is not in a failed state")
	}

	svc.startSubmissionLocked(ls)
	return svc.snapshot(ls, svc.now()), nil
}

const attemptHistoryLimit = 50

// ListAttempts returns the user's most recent completed attempts.
func (svc *ExerciseService) ListAttempts(userID string) (*dto.AttemptListResponse, error) {
	attempts, err := svc.store.ListAttemptsByUser(userID, attemptHistoryLimit)
	if err != nil {
		return nil, err
	}

	resp := &dto.AttemptListResponse{Total: len(attempts)}
	for _, a := range attempts {
		resp.Attempts = append(resp.Attempts, dto.AttemptView{
			ExerciseID:       a.ExerciseID,
			Variant:          a.Variant,
			Difficulty:       a.Difficulty,
			GameMode:         a.GameMode,
			TimeElapsed:      a.TimeElapsed,
			MovesUsed:        a.MovesUsed,
			FinalScore:       a.FinalScore,
			Accuracy:         a.Accuracy,
			Won:              a.Won,
			SubmissionStatus: a.SubmissionStatus,
			CompletedAt:      a.CompletedAt,
		})
	}
	return resp, nil
}

// Snapshots

func (svc *ExerciseService) snapshotLocked(ls *liveSession) *dto.SessionResponse {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return svc.snapshot(ls, svc.now())
}

func (svc *ExerciseService) snapshot(ls *liveSession, now time.Time) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		SessionID:   ls.id,
		Variant:     ls.variant,
		State:       string(ls.engine().State()),
		TimeElapsed: ls.engine().ElapsedSeconds(now),
		MovesUsed:   ls.engine().Moves(),
	}

	switch {
	case ls.pair != nil:
		s := ls.pair
		resp.Difficulty = s.Level.Name
		resp.GameMode = s.Mode
		view := &dto.PairMatchView{
			GridRows:     s.Level.GridRows,
			GridCols:     s.Level.GridCols,
			TotalPairs:   s.TotalPairs(),
			MatchedPairs: s.MatchedPairs(),
			Lives:        s.Lives(),
			BoardLocked:  s.BoardLocked(),
		}
		for _, c := range s.Cards() {
			cv := dto.CardView{Flipped: c.IsFlipped, Matched: c.IsMatched}
			// Face-down cards keep their content server-side.
			if c.IsFlipped || c.IsMatched {
				cv.PairID = c.PairID
				cv.Role = c.Role
				cv.Content = c.Content
				cv.Category = c.Category
			}
			view.Cards = append(view.Cards, cv)
		}
		resp.PairMatch = view

	case ls.seq != nil:
		s := ls.seq
		resp.Difficulty = s.Level.Name
		resp.GameMode = s.Mode
		view := &dto.SequenceView{
			ChallengeID: s.ChallengeID,
			Category:    s.Category,
		}
		if s.Mode == shared.GameModeTimed {
			view.TimeLimit = s.Level.TimeLimit
		}
		for _, st := range s.Order() {
			view.Order = append(view.Order, dto.StepView{StepID: st.StepID, Text: st.Text})
		}
		resp.Sequence = view

	case ls.naming != nil:
		s := ls.naming
		resp.Difficulty = s.Level.Name
		remaining := s.Level.TimeLimit - s.ElapsedSeconds(now)
		if remaining < 0 {
			remaining = 0
		}
		entries := s.AcceptedEntries()
		if entries == nil {
			entries = []string{}
		}
		resp.Naming = &dto.NamingView{
			CategoryID:    s.CategoryID,
			CategoryName:  s.CategoryName,
			TimeLimit:     s.Level.TimeLimit,
			TimeRemaining: remaining,
			RequiredCount: s.Level.RequiredCount,
			Entries:       entries,
			RareCount:     s.RareCount(),
			HintAvailable: s.HintAvailable(now),
		}
	}

	if ls.attempt != nil {
		var breakdown interface{}
		_ = sonic.Unmarshal(ls.attempt.Breakdown, &breakdown)
		resp.Result = &dto.ResultView{
			ExerciseID:       ls.exerciseID,
			FinalScore:       ls.attempt.FinalScore,
			Accuracy:         ls.attempt.Accuracy,
			Won:              ls.attempt.Won,
			Breakdown:        breakdown,
			SubmissionStatus: ls.submissionStatus,
			SubmissionError:  ls.submissionError,
			CompletedAt:      ls.attempt.CompletedAt,
		}
	}
	return resp
}
