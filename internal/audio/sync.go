package audio

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// State is the sync engine's view of the current question's playback.
type State string

const (
	// StateIdle means no question is active.
	StateIdle State = "Idle"

	// StatePending means playback was requested but the engine has not
	// reported an audible start yet.
	StatePending State = "Pending"

	// StatePlaying means playback is audible and within tolerance of
	// the authoritative position.
	StatePlaying State = "Playing"

	// StateBlocked means the engine refused to start (autoplay policy);
	// a user gesture may retry via Retry.
	StateBlocked State = "Blocked"

	// StateLocked means playback could not be brought within tolerance
	// of the authoritative position and is paused for this question.
	// There is no re-sync; the lockout lasts until the next question.
	StateLocked State = "Locked"
)

// SyncEngine reconciles local playback with the server-declared song
// position. It is driven entirely from the session loop: StartQuestion
// on a new Playing payload, HandleEvent for engine notifications and
// Retry on a user gesture. No method blocks.
type SyncEngine struct {
	engine Engine
	clock  clockwork.Clock

	// localStart estimates the local monotonic instant the song
	// started: now minus the authoritative progress at receipt time.
	localStart time.Time
	state      State
}

// NewSyncEngine wraps a playback engine.
func NewSyncEngine(engine Engine, clock clockwork.Clock) *SyncEngine {
	return &SyncEngine{
		engine: engine,
		clock:  clock,
		state:  StateIdle,
	}
}

// State returns the current playback sub-state.
func (s *SyncEngine) State() State {
	return s.state
}

// Position reports the engine's playback offset in seconds.
func (s *SyncEngine) Position() float64 {
	return s.engine.Position()
}

// StartQuestion begins playback for a new question. songProgressMS is
// the authoritative elapsed time at message receipt.
func (s *SyncEngine) StartQuestion(songURL string, songProgressMS int64) {
	s.localStart = s.clock.Now().Add(-time.Duration(songProgressMS) * time.Millisecond)
	s.state = StatePending
	s.engine.Load(songURL)

	log.Debug().
		Str("song_url", songURL).
		Int64("song_progress_ms", songProgressMS).
		Msg("question playback started")
}

// HandleEvent applies an asynchronous engine notification.
func (s *SyncEngine) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventStarted:
		s.reconcile()
	case EventError:
		log.Warn().Err(ev.Err).Msg("playback blocked, waiting for user gesture")
		s.state = StateBlocked
	}
}

// Retry re-attempts playback after an autoplay block. The caller gates
// it on a user gesture. Outside the Blocked state it is a no-op.
func (s *SyncEngine) Retry() {
	if s.state != StateBlocked {
		return
	}

	// Re-seek with elapsed time recomputed at the moment of the click,
	// then ask the engine to play; the Started event reconciles again.
	elapsed := s.clock.Since(s.localStart)
	if err := s.engine.Seek(elapsed.Seconds()); err != nil {
		log.Warn().Err(err).Msg("retry seek failed")
	}
	s.state = StatePending
	s.engine.Play()
}

// Pause halts playback, keeping the current question state.
func (s *SyncEngine) Pause() {
	s.engine.Pause()
}

// Teardown pauses the engine and clears its source. Called exactly once
// from session teardown.
func (s *SyncEngine) Teardown() {
	s.state = StateIdle
	if err := s.engine.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close audio engine")
	}
}

// reconcile corrects for the delay between deciding to play and the
// first audible sample, then applies the late-join lockout.
func (s *SyncEngine) reconcile() {
	elapsed := s.clock.Since(s.localStart)
	target := elapsed.Seconds()

	if err := s.engine.Seek(target); err != nil {
		log.Warn().Err(err).Float64("target_sec", target).Msg("sync seek failed")
	}

	gap := math.Abs(target - s.engine.Position())
	if gap > SyncTolerance.Seconds() {
		s.engine.Pause()
		s.state = StateLocked
		log.Warn().
			Float64("gap_sec", gap).
			Float64("target_sec", target).
			Msg("playback out of tolerance, locked for this question")
		return
	}

	s.state = StatePlaying
	log.Debug().Float64("position_sec", target).Msg("playback synchronized")
}

// Fraction converts a playback offset in seconds to a progress-bar
// fraction in [0, 1] over the fixed question duration.
func Fraction(seconds float64) float64 {
	return math.Min(1, seconds/QuestionDuration.Seconds())
}
