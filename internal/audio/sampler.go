package audio

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// PositionReader is the read-only slice of Engine the sampler needs.
type PositionReader interface {
	Position() float64
}

// Sample is one playback position observation.
type Sample struct {
	Seconds  float64
	Fraction float64
}

// PositionSource emits playback position samples for progress
// rendering. The fixed-interval sampler is the current implementation;
// a server-driven heartbeat could replace it behind the same interface.
type PositionSource interface {
	Samples() <-chan Sample
	Stop()
}

// Sampler polls an engine position at a fixed cadence. Ticks that find
// the consumer busy are dropped rather than queued, so a stalled
// consumer never sees stale positions.
type Sampler struct {
	engine   PositionReader
	clock    clockwork.Clock
	interval time.Duration

	samples  chan Sample
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSampler starts polling immediately.
func NewSampler(engine PositionReader, clock clockwork.Clock, interval time.Duration) *Sampler {
	s := &Sampler{
		engine:   engine,
		clock:    clock,
		interval: interval,
		samples:  make(chan Sample, 1),
		stop:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Samples returns the sample channel.
func (s *Sampler) Samples() <-chan Sample {
	return s.samples
}

// Stop cancels the sampler. Safe to call more than once.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Sampler) run() {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.Chan():
			seconds := s.engine.Position()
			sample := Sample{Seconds: seconds, Fraction: Fraction(seconds)}
			select {
			case s.samples <- sample:
			default:
			}
		}
	}
}
