package audio

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// NopEngine is a silent Engine for headless runs: it produces no sound
// but advances its position on the wall clock so progress and
// submission timing still behave.
type NopEngine struct {
	clock  clockwork.Clock
	events chan Event

	playing   bool
	startedAt time.Time
	offset    time.Duration
}

// NewNopEngine builds a silent engine.
func NewNopEngine(clock clockwork.Clock) *NopEngine {
	return &NopEngine{
		clock:  clock,
		events: make(chan Event, 4),
	}
}

// Load resets position and reports an immediate audible start.
func (e *NopEngine) Load(url string) {
	e.offset = 0
	e.startedAt = e.clock.Now()
	e.playing = true
	e.emit(Event{Kind: EventStarted})
}

// Play resumes the silent clock.
func (e *NopEngine) Play() {
	if e.playing {
		return
	}
	e.startedAt = e.clock.Now()
	e.playing = true
	e.emit(Event{Kind: EventStarted})
}

// Pause freezes the position.
func (e *NopEngine) Pause() {
	if !e.playing {
		return
	}
	e.offset += e.clock.Since(e.startedAt)
	e.playing = false
}

// Seek moves the silent position.
func (e *NopEngine) Seek(seconds float64) error {
	e.offset = time.Duration(seconds * float64(time.Second))
	e.startedAt = e.clock.Now()
	return nil
}

// Position reports the silent position in seconds.
func (e *NopEngine) Position() float64 {
	pos := e.offset
	if e.playing {
		pos += e.clock.Since(e.startedAt)
	}
	return pos.Seconds()
}

// Events returns the notification channel.
func (e *NopEngine) Events() <-chan Event {
	return e.events
}

// Close stops the silent clock.
func (e *NopEngine) Close() error {
	e.playing = false
	e.offset = 0
	return nil
}

func (e *NopEngine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}
