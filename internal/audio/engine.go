package audio

import "time"

// Protocol times are milliseconds, engine times are seconds.
const (
	// QuestionDuration is the fixed playback window of every question.
	QuestionDuration = 10 * time.Second

	// SyncTolerance is the largest gap between the authoritative
	// position and the engine position that still counts as in sync.
	SyncTolerance = time.Second

	// SampleInterval is the position sampler cadence.
	SampleInterval = 100 * time.Millisecond
)

// EventKind classifies asynchronous engine notifications.
type EventKind int

const (
	// EventStarted fires once playback is actually audible, after
	// buffering completes.
	EventStarted EventKind = iota

	// EventError fires when the engine cannot start playback, e.g. an
	// autoplay policy blocked it or the asset failed to load.
	EventError
)

// Event is an asynchronous notification from an Engine.
type Event struct {
	Kind EventKind
	Err  error
}

// Engine is the playback backend. It mirrors an HTML-audio style
// engine: Load begins buffering and an implicit playback attempt, and
// the outcome arrives asynchronously on Events. Positions are seconds.
type Engine interface {
	// Load replaces the current source and begins an autoplay attempt.
	Load(url string)

	// Play requests playback of the loaded source, e.g. a retry after
	// an autoplay block. The outcome arrives on Events.
	Play()

	// Pause halts playback without clearing the source.
	Pause()

	// Seek moves playback to the given offset in seconds.
	Seek(seconds float64) error

	// Position reports the current playback offset in seconds.
	Position() float64

	// Events delivers Started/Error notifications.
	Events() <-chan Event

	// Close pauses playback and clears the source.
	Close() error
}
