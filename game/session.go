package game

import "time"

// State is the lifecycle position of a session. Transitions only ever move
// Setup -> Playing <-> Paused -> Completed; Reset returns to Setup and
// discards everything else.
type State string

const (
	StateSetup     State = "setup"
	StatePlaying   State = "playing"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// PauseInterval records one pause/resume round trip.
type PauseInterval struct {
	PausedAt  time.Time `json:"paused_at"`
	ResumedAt time.Time `json:"resumed_at"`
}

// session is the shared state-machine shape embedded by the three variant
// sessions. Elapsed time is always computed from the reference start instant,
// never accumulated tick by tick: on resume the start instant is shifted
// forward by the pause duration, so elapsed = now - startedAt holds in every
// Playing state and rounding can't compound across suspensions.
type session struct {
	state     State
	startedAt time.Time
	started   bool

	pausedAt time.Time
	pauses   []PauseInterval

	moves int

	completedAt  time.Time
	finalElapsed time.Duration
}

func (s *session) State() State {
	return s.state
}

func (s *session) Moves() int {
	return s.moves
}

func (s *session) Pauses() []PauseInterval {
	return s.pauses
}

func (s *session) addMove() {
	s.moves++
}

// Start moves Setup -> Playing and pins the start instant. Starting from any
// other state is a silent no-op.
func (s *session) Start(now time.Time) bool {
	if s.state != StateSetup {
		return false
	}
	s.state = StatePlaying
	s.startedAt = now
	s.started = true
	return true
}

// Pause freezes the clock. Legal only from Playing.
func (s *session) Pause(now time.Time) bool {
	if s.state != StatePlaying {
		return false
	}
	s.state = StatePaused
	s.pausedAt = now
	return true
}

// Resume shifts the reference start instant forward by the pause duration and
// returns to Playing. Legal only from Paused.
func (s *session) Resume(now time.Time) bool {
	if s.state != StatePaused {
		return false
	}
	pauseDur := now.Sub(s.pausedAt)
	if pauseDur < 0 {
		pauseDur = 0
	}
	s.startedAt = s.startedAt.Add(pauseDur)
	s.pauses = append(s.pauses, PauseInterval{PausedAt: s.pausedAt, ResumedAt: now})
	s.state = StatePlaying
	return true
}

// Elapsed reports play time net of pauses. It is monotonically non-decreasing
// while Playing, frozen while Paused, and fixed forever once Completed.
func (s *session) Elapsed(now time.Time) time.Duration {
	if !s.started {
		return 0
	}
	switch s.state {
	case StatePaused:
		return s.pausedAt.Sub(s.startedAt)
	case StateCompleted:
		return s.finalElapsed
	default:
		d := now.Sub(s.startedAt)
		if d < 0 {
			return 0
		}
		return d
	}
}

// ElapsedSeconds is Elapsed truncated to whole seconds, the unit every
// scoring formula and payload uses.
func (s *session) ElapsedSeconds(now time.Time) int {
	return int(s.Elapsed(now) / time.Second)
}

func (s *session) complete(now time.Time) {
	s.finalElapsed = s.Elapsed(now)
	s.state = StateCompleted
	s.completedAt = now
}

func (s *session) CompletedAt() time.Time {
	return s.completedAt
}

// reset returns the shared shape to Setup, discarding all in-session data.
func (s *session) reset() {
	*s = session{state: StateSetup}
}

func newSession() session {
	return session{state: StateSetup}
}
