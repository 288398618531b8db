package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognify-health/cognify_api/game"
	"github.com/cognify-health/cognify_api/model"
	"github.com/cognify-health/cognify_api/shared"
)

// testClock is a manually advanced clock wired into ExerciseService.now.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeStore struct {
	mu       sync.Mutex
	attempts map[string]*model.ExerciseAttempt
	updates  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{attempts: make(map[string]*model.ExerciseAttempt)}
}

func (s *fakeStore) CreateAttempt(attempt *model.ExerciseAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ExerciseID] = attempt
	return nil
}

func (s *fakeStore) UpdateAttempt(attempt *model.ExerciseAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ExerciseID] = attempt
	s.updates++
	return nil
}

func (s *fakeStore) GetAttemptByExerciseID(exerciseID string) (*model.ExerciseAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[exerciseID], nil
}

func (s *fakeStore) ListAttemptsByUser(userID string, limit int) ([]model.ExerciseAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ExerciseAttempt
	for _, a := range s.attempts {
		if a.UserID == userID && len(out) < limit {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

type submitCall struct {
	variant string
	payload interface{}
}

type fakeSubmitter struct {
	mu    sync.Mutex
	err   error
	calls []submitCall
}

func (f *fakeSubmitter) Submit(ctx context.Context, variant string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, submitCall{variant: variant, payload: payload})
	return f.err
}

func (f *fakeSubmitter) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeArchiver struct {
	mu       sync.Mutex
	enabled  bool
	archived map[string][]byte
}

func (f *fakeArchiver) Enabled() bool { return f.enabled }

func (f *fakeArchiver) ArchiveFailedSubmission(ctx context.Context, variant, exerciseID string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.archived == nil {
		f.archived = make(map[string][]byte)
	}
	f.archived[exerciseID] = payload
	return nil
}

type fakeMetrics struct {
	mu          sync.Mutex
	started     int
	completed   map[string]int
	submissions map[string]int
}

func (f *fakeMetrics) RecordSessionStarted(variant, difficulty string) {
	f.mu.Lock()
	f.started++
	f.mu.Unlock()
}

func (f *fakeMetrics) RecordSessionCompleted(variant, outcome string, finalScore int) {
	f.mu.Lock()
	if f.completed == nil {
		f.completed = make(map[string]int)
	}
	f.completed[variant+":"+outcome]++
	f.mu.Unlock()
}

func (f *fakeMetrics) RecordSubmission(variant, status string) {
	f.mu.Lock()
	if f.submissions == nil {
		f.submissions = make(map[string]int)
	}
	f.submissions[variant+":"+status]++
	f.mu.Unlock()
}

type exerciseHarness struct {
	svc       *ExerciseService
	clock     *testClock
	store     *fakeStore
	submitter *fakeSubmitter
	archiver  *fakeArchiver
	metrics   *fakeMetrics
}

func newExerciseHarness(t *testing.T) *exerciseHarness {
	t.Helper()
	h := &exerciseHarness{
		clock:     newTestClock(),
		store:     newFakeStore(),
		submitter: &fakeSubmitter{},
		archiver:  &fakeArchiver{},
		metrics:   &fakeMetrics{},
	}
	h.svc = &ExerciseService{
		sessions:    make(map[string]*liveSession),
		store:       h.store,
		submitter:   h.submitter,
		archiver:    h.archiver,
		metrics:     h.metrics,
		settleDelay: time.Millisecond,
		now:         h.clock.Now,
	}
	return h
}

func (h *exerciseHarness) addPairSession(t *testing.T, mode string) *liveSession {
	t.Helper()
	lvl, ok := game.PairMatchLevel("beginner")
	require.True(t, ok)
	content := []game.PairContent{
		{PairID: 1, Question: "France", Answer: "Paris", Category: "geography"},
		{PairID: 2, Question: "Japan", Answer: "Tokyo", Category: "geography"},
	}
	ls := &liveSession{
		id:               "pair-session",
		variant:          shared.VariantPairMatch,
		pair:             game.NewPairMatchSession(lvl, mode, content, rand.New(rand.NewSource(1))),
		submissionStatus: shared.SubmissionNotStarted,
	}
	h.svc.register(ls)
	return ls
}

func (h *exerciseHarness) addSequenceSession(t *testing.T, mode string) *liveSession {
	t.Helper()
	lvl, ok := game.SequenceLevel("easy")
	require.True(t, ok)
	steps := []game.Step{
		{StepID: "s1", Text: "Wake up", CorrectIndex: 0},
		{StepID: "s2", Text: "Brush teeth", CorrectIndex: 1},
		{StepID: "s3", Text: "Eat breakfast", CorrectIndex: 2},
		{StepID: "s4", Text: "Head out", CorrectIndex: 3},
	}
	ls := &liveSession{
		id:               "seq-session",
		variant:          shared.VariantSequence,
		seq:              game.NewSequenceSession(lvl, mode, "dmr_01", "daily_routine", steps, rand.New(rand.NewSource(1))),
		submissionStatus: shared.SubmissionNotStarted,
	}
	h.svc.register(ls)
	return ls
}

func (h *exerciseHarness) addNamingSession(t *testing.T) *liveSession {
	t.Helper()
	lvl, ok := game.NamingLevel("easy")
	require.True(t, ok)
	words := []string{
		"apple", "banana", "orange", "grape", "strawberry", "blueberry",
		"pear", "peach", "mango", "pineapple", "watermelon", "kiwi",
		"cherry", "plum", "papaya", "apricot", "grapefruit", "lemon",
		"lime", "nectarine", "lychee",
	}
	matcher := game.NewVocabularyMatcher(words, 1)
	ls := &liveSession{
		id:               "naming-session",
		variant:          shared.VariantCategoryNaming,
		naming:           game.NewNamingSession(lvl, "fruits", "Fruits", matcher, rand.New(rand.NewSource(1))),
		submissionStatus: shared.SubmissionNotStarted,
	}
	h.svc.register(ls)
	return ls
}

// solveOrder swaps through the service until the user order matches the
// reference order.
func (h *exerciseHarness) solveOrder(t *testing.T, ls *liveSession) {
	t.Helper()
	order := ls.seq.Order()
	for i := 0; i < len(order); i++ {
		order = ls.seq.Order()
		if order[i].CorrectIndex == i {
			continue
		}
		for j := i + 1; j < len(order); j++ {
			if order[j].CorrectIndex == i {
				_, err := h.svc.SwapSteps(ls.id, i, j)
				require.NoError(t, err)
				break
			}
		}
	}
}

func (h *exerciseHarness) waitForSubmission(t *testing.T, ls *liveSession, status string) {
	t.Helper()
	require.Eventually(t, func() bool {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		return ls.submissionStatus == status
	}, 2*time.Second, 5*time.Millisecond, "submission never reached %s", status)
}

func requireConflict(t *testing.T, err error) {
	t.Helper()
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, 409, appErr.StatusCode)
}

func TestSessionLifecycleTransitions(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addSequenceSession(t, shared.GameModeUntimed)

	resp, err := h.svc.StartSession(ls.id)
	require.NoError(t, err)
	assert.Equal(t, string(game.StatePlaying), resp.State)

	_, err = h.svc.StartSession(ls.id)
	requireConflict(t, err)

	resp, err = h.svc.PauseSession(ls.id)
	require.NoError(t, err)
	assert.Equal(t, string(game.StatePaused), resp.State)

	_, err = h.svc.PauseSession(ls.id)
	requireConflict(t, err)

	resp, err = h.svc.ResumeSession(ls.id)
	require.NoError(t, err)
	assert.Equal(t, string(game.StatePlaying), resp.State)

	resp, err = h.svc.ResetSession(ls.id)
	require.NoError(t, err)
	assert.Equal(t, string(game.StateSetup), resp.State)
	assert.Zero(t, resp.MovesUsed)

	_, err = h.svc.GetSession("no-such-session")
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestPauseExcludedFromElapsed(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addSequenceSession(t, shared.GameModeUntimed)

	_, err := h.svc.StartSession(ls.id)
	require.NoError(t, err)

	h.clock.Advance(10 * time.Second)
	_, err = h.svc.PauseSession(ls.id)
	require.NoError(t, err)

	h.clock.Advance(30 * time.Second)
	_, err = h.svc.ResumeSession(ls.id)
	require.NoError(t, err)

	h.clock.Advance(5 * time.Second)
	resp, err := h.svc.GetSession(ls.id)
	require.NoError(t, err)
	assert.Equal(t, 15, resp.TimeElapsed, "pause must not count toward elapsed time")
}

func TestFlipCardSettlesMatch(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addPairSession(t, shared.GameModeRelaxed)

	out, err := h.svc.FlipCard(ls.id, 0)
	require.NoError(t, err)
	assert.False(t, out.Accepted, "flips before start are ignored, not errors")

	_, err = h.svc.StartSession(ls.id)
	require.NoError(t, err)

	first, second := -1, -1
	for i, c := range ls.pair.Cards() {
		if c.PairID == 1 {
			if first == -1 {
				first = i
			} else {
				second = i
			}
		}
	}
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)

	out, err = h.svc.FlipCard(ls.id, first)
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	assert.True(t, out.Session.PairMatch.Cards[first].Flipped)
	assert.NotEmpty(t, out.Session.PairMatch.Cards[first].Content, "flipped cards reveal content")

	out, err = h.svc.FlipCard(ls.id, second)
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	assert.True(t, out.Session.PairMatch.BoardLocked, "board locks while the pair settles")

	require.Eventually(t, func() bool {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		return !ls.pair.BoardLocked() && ls.pair.MatchedPairs() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPairMatchWinRunsCompletionPipeline(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addPairSession(t, shared.GameModeRelaxed)

	_, err := h.svc.StartSession(ls.id)
	require.NoError(t, err)

	for pairID := 1; pairID <= 2; pairID++ {
		first, second := -1, -1
		for i, c := range ls.pair.Cards() {
			if c.PairID == pairID {
				if first == -1 {
					first = i
				} else {
					second = i
				}
			}
		}
		_, err = h.svc.FlipCard(ls.id, first)
		require.NoError(t, err)
		_, err = h.svc.FlipCard(ls.id, second)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			ls.mu.Lock()
			defer ls.mu.Unlock()
			return !ls.pair.BoardLocked()
		}, 2*time.Second, 5*time.Millisecond)
	}

	h.waitForSubmission(t, ls, shared.SubmissionSucceeded)

	ls.mu.Lock()
	exerciseID := ls.exerciseID
	attempt := ls.attempt
	ls.mu.Unlock()

	assert.Regexp(t, "^mm_", exerciseID)
	assert.True(t, attempt.Won)
	assert.NotNil(t, attempt.SubmittedAt)

	stored, err := h.store.GetAttemptByExerciseID(exerciseID)
	require.NoError(t, err)
	require.NotNil(t, stored, "attempt must be persisted")
	assert.Equal(t, shared.SubmissionSucceeded, stored.SubmissionStatus)

	h.metrics.mu.Lock()
	assert.Equal(t, 1, h.metrics.completed[shared.VariantPairMatch+":won"])
	assert.Equal(t, 1, h.metrics.submissions[shared.VariantPairMatch+":succeeded"])
	h.metrics.mu.Unlock()
}

func TestSequenceSubmitCompletesAndSubmits(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addSequenceSession(t, shared.GameModeUntimed)

	_, err := h.svc.StartSession(ls.id)
	require.NoError(t, err)

	h.solveOrder(t, ls)
	h.clock.Advance(40 * time.Second)

	resp, err := h.svc.SubmitOrder(ls.id)
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Won)
	assert.Regexp(t, "^sq_", resp.Result.ExerciseID)

	_, err = h.svc.SubmitOrder(ls.id)
	requireConflict(t, err)

	h.waitForSubmission(t, ls, shared.SubmissionSucceeded)

	require.Equal(t, 1, h.submitter.callCount())
	h.submitter.mu.Lock()
	call := h.submitter.calls[0]
	h.submitter.mu.Unlock()

	assert.Equal(t, shared.VariantSequence, call.variant)
	result, ok := call.payload.(SequenceOrderingResult)
	require.True(t, ok, "payload should be the sequence submission body")
	assert.Equal(t, resp.Result.ExerciseID, result.ExerciseID)
	assert.Equal(t, "dmr_01", result.ChallengeID)
	assert.Equal(t, 4, result.CorrectCount)
	assert.Equal(t, 40, result.TimeElapsed)
	assert.Equal(t, []int{0, 1, 2, 3}, result.UserOrder)
}

func TestNamingTimeoutCompletesSession(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addNamingSession(t)

	_, err := h.svc.StartSession(ls.id)
	require.NoError(t, err)

	for _, entry := range []string{"apple", "banana", "lychee"} {
		_, err := h.svc.SubmitEntry(ls.id, entry)
		require.NoError(t, err)
	}

	h.clock.Advance(31 * time.Second)
	h.svc.handleTimeout(ls)

	h.waitForSubmission(t, ls, shared.SubmissionSucceeded)

	ls.mu.Lock()
	exerciseID := ls.exerciseID
	ls.mu.Unlock()
	assert.Regexp(t, "^cn_", exerciseID)

	h.submitter.mu.Lock()
	result, ok := h.submitter.calls[0].payload.(CategoryNamingResult)
	h.submitter.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, "fruits", result.CategoryID)
	assert.Equal(t, []string{"apple", "banana", "lychee"}, result.CorrectEntries)
	assert.Equal(t, 1, result.RareEntriesCount)

	_, err = h.svc.SubmitEntry(ls.id, "mango")
	requireConflict(t, err)
}

func TestNamingEntryFlowAndHints(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addNamingSession(t)

	_, err := h.svc.SubmitEntry(ls.id, "apple")
	requireConflict(t, err)

	_, err = h.svc.StartSession(ls.id)
	require.NoError(t, err)

	outcome, err := h.svc.SubmitEntry(ls.id, "aple")
	require.NoError(t, err)
	assert.Equal(t, game.EntryAccepted, outcome.Status)
	assert.Equal(t, "apple", outcome.Word, "near misses resolve to the reference word")

	outcome, err = h.svc.SubmitEntry(ls.id, "Apple")
	require.NoError(t, err)
	assert.Equal(t, game.EntryDuplicate, outcome.Status)

	outcome, err = h.svc.SubmitEntry(ls.id, "zzzz")
	require.NoError(t, err)
	assert.Equal(t, game.EntryInvalid, outcome.Status)

	hint, err := h.svc.GetHint(ls.id)
	require.NoError(t, err)
	assert.False(t, hint.Available)
	assert.Equal(t, game.HintUnlockAfter, hint.UnlocksIn)

	h.clock.Advance(game.HintUnlockAfter * time.Second)
	hint, err = h.svc.GetHint(ls.id)
	require.NoError(t, err)
	assert.True(t, hint.Available)
	assert.NotEmpty(t, hint.Hints)
}

func TestFailedSubmissionArchivesAndRetries(t *testing.T) {
	h := newExerciseHarness(t)
	h.archiver.enabled = true
	h.submitter.setErr(&SubmissionError{
		StatusCode: 503,
		Message:    "The server had a problem saving your results. Please try again.",
		Retryable:  true,
	})

	ls := h.addSequenceSession(t, shared.GameModeUntimed)
	_, err := h.svc.StartSession(ls.id)
	require.NoError(t, err)
	h.solveOrder(t, ls)
	_, err = h.svc.SubmitOrder(ls.id)
	require.NoError(t, err)

	h.waitForSubmission(t, ls, shared.SubmissionFailed)

	ls.mu.Lock()
	exerciseID := ls.exerciseID
	submissionError := ls.submissionError
	ls.mu.Unlock()

	assert.Equal(t, "The server had a problem saving your results. Please try again.", submissionError)

	h.archiver.mu.Lock()
	_, archived := h.archiver.archived[exerciseID]
	h.archiver.mu.Unlock()
	assert.True(t, archived, "failed payloads go to the archive")

	h.submitter.setErr(nil)
	resp, err := h.svc.RetrySubmission(ls.id)
	require.NoError(t, err)
	assert.Equal(t, exerciseID, resp.Result.ExerciseID, "retry must reuse the exercise id")

	h.waitForSubmission(t, ls, shared.SubmissionSucceeded)
	assert.Equal(t, 2, h.submitter.callCount())

	h.submitter.mu.Lock()
	retried, ok := h.submitter.calls[1].payload.(SequenceOrderingResult)
	h.submitter.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, exerciseID, retried.ExerciseID)
}

func TestRetrySubmissionGuards(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addSequenceSession(t, shared.GameModeUntimed)

	_, err := h.svc.RetrySubmission(ls.id)
	requireConflict(t, err)

	_, err = h.svc.StartSession(ls.id)
	require.NoError(t, err)
	h.solveOrder(t, ls)
	_, err = h.svc.SubmitOrder(ls.id)
	require.NoError(t, err)
	h.waitForSubmission(t, ls, shared.SubmissionSucceeded)

	_, err = h.svc.RetrySubmission(ls.id)
	requireConflict(t, err)
}

func TestResetAfterCompletionReplaysAsFreshAttempt(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addSequenceSession(t, shared.GameModeUntimed)

	_, err := h.svc.StartSession(ls.id)
	require.NoError(t, err)
	h.solveOrder(t, ls)
	_, err = h.svc.SubmitOrder(ls.id)
	require.NoError(t, err)
	h.waitForSubmission(t, ls, shared.SubmissionSucceeded)

	ls.mu.Lock()
	firstExerciseID := ls.exerciseID
	ls.mu.Unlock()

	resp, err := h.svc.ResetSession(ls.id)
	require.NoError(t, err)
	assert.Equal(t, string(game.StateSetup), resp.State)
	assert.Nil(t, resp.Result, "reset discards the live result")

	stored, err := h.store.GetAttemptByExerciseID(firstExerciseID)
	require.NoError(t, err)
	require.NotNil(t, stored, "the persisted attempt survives a reset")

	_, err = h.svc.StartSession(ls.id)
	require.NoError(t, err)
	h.solveOrder(t, ls)
	resp, err = h.svc.SubmitOrder(ls.id)
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.NotEqual(t, firstExerciseID, resp.Result.ExerciseID, "a replay completes under a new exercise id")

	h.waitForSubmission(t, ls, shared.SubmissionSucceeded)
	assert.Equal(t, 2, h.store.count())
}

func TestSwapRejectedInline(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addSequenceSession(t, shared.GameModeUntimed)

	out, err := h.svc.SwapSteps(ls.id, 0, 1)
	require.NoError(t, err)
	assert.False(t, out.Accepted, "swaps before start are ignored, not errors")
	assert.Zero(t, out.Session.MovesUsed)

	_, err = h.svc.StartSession(ls.id)
	require.NoError(t, err)

	out, err = h.svc.SwapSteps(ls.id, 0, 99)
	require.NoError(t, err)
	assert.False(t, out.Accepted, "out-of-range swaps are ignored")
	assert.Zero(t, out.Session.MovesUsed)

	out, err = h.svc.SwapSteps(ls.id, 0, 1)
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	assert.Equal(t, 1, out.Session.MovesUsed)
}

func TestListAttemptsReturnsUserHistory(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addSequenceSession(t, shared.GameModeUntimed)
	ls.userID = "user-1"

	_, err := h.svc.StartSession(ls.id)
	require.NoError(t, err)
	h.solveOrder(t, ls)
	h.clock.Advance(20 * time.Second)
	_, err = h.svc.SubmitOrder(ls.id)
	require.NoError(t, err)
	h.waitForSubmission(t, ls, shared.SubmissionSucceeded)

	resp, err := h.svc.ListAttempts("user-1")
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)

	attempt := resp.Attempts[0]
	assert.Regexp(t, "^sq_", attempt.ExerciseID)
	assert.Equal(t, shared.VariantSequence, attempt.Variant)
	assert.Equal(t, "easy", attempt.Difficulty)
	assert.Equal(t, 20, attempt.TimeElapsed)
	assert.True(t, attempt.Won)
	assert.Equal(t, shared.SubmissionSucceeded, attempt.SubmissionStatus)

	other, err := h.svc.ListAttempts("someone-else")
	require.NoError(t, err)
	assert.Zero(t, other.Total)
}

func TestSnapshotHidesFaceDownCards(t *testing.T) {
	h := newExerciseHarness(t)
	ls := h.addPairSession(t, shared.GameModeChallenge)

	resp, err := h.svc.GetSession(ls.id)
	require.NoError(t, err)
	require.NotNil(t, resp.PairMatch)
	assert.Equal(t, game.ChallengeLives, resp.PairMatch.Lives)

	for i, c := range resp.PairMatch.Cards {
		assert.False(t, c.Flipped, "card %d", i)
		assert.Empty(t, c.Content, "face-down cards must not leak content")
		assert.Zero(t, c.PairID, "face-down cards must not leak pair ids")
	}
}
