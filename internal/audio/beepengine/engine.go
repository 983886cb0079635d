// Package beepengine implements the audio.Engine interface on the
// beep speaker, fetching song previews over HTTP and decoding MP3.
package beepengine

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
	"github.com/tunequiz/client/internal/audio"
)

const speakerSampleRate = beep.SampleRate(44100)

// Engine plays one song preview at a time through the process-wide
// speaker. Load is asynchronous: the Started event fires once the asset
// is fetched, decoded and audible, matching the engine contract.
type Engine struct {
	volume float64
	client *http.Client
	events chan audio.Event

	mu       sync.Mutex
	gen      int
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
}

// New initializes the speaker and returns an engine.
func New(volume float64) (*Engine, error) {
	if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}
	return &Engine{
		volume: volume,
		client: &http.Client{Timeout: 30 * time.Second},
		events: make(chan audio.Event, 4),
	}, nil
}

// Load replaces the current source and starts fetching and playing it.
func (e *Engine) Load(url string) {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	e.clear()
	go e.load(url, gen)
}

// Play resumes a paused source. The Started event fires again so the
// caller can re-reconcile.
func (e *Engine) Play() {
	e.mu.Lock()
	ctrl := e.ctrl
	e.mu.Unlock()
	if ctrl == nil {
		return
	}

	speaker.Lock()
	ctrl.Paused = false
	speaker.Unlock()
	e.emit(audio.Event{Kind: audio.EventStarted})
}

// Pause halts playback, keeping the source.
func (e *Engine) Pause() {
	e.mu.Lock()
	ctrl := e.ctrl
	e.mu.Unlock()
	if ctrl == nil {
		return
	}

	speaker.Lock()
	ctrl.Paused = true
	speaker.Unlock()
}

// Seek moves playback to the given offset in seconds.
func (e *Engine) Seek(seconds float64) error {
	e.mu.Lock()
	streamer, format := e.streamer, e.format
	e.mu.Unlock()
	if streamer == nil {
		return fmt.Errorf("no source loaded")
	}

	n := format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if n < 0 {
		n = 0
	}
	if l := streamer.Len(); n >= l {
		n = l - 1
	}

	speaker.Lock()
	err := streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("failed to seek to %.2fs: %w", seconds, err)
	}
	return nil
}

// Position reports the playback offset in seconds.
func (e *Engine) Position() float64 {
	e.mu.Lock()
	streamer, format := e.streamer, e.format
	e.mu.Unlock()
	if streamer == nil {
		return 0
	}

	speaker.Lock()
	n := streamer.Position()
	speaker.Unlock()
	return format.SampleRate.D(n).Seconds()
}

// Events returns the notification channel.
func (e *Engine) Events() <-chan audio.Event {
	return e.events
}

// Close pauses playback and clears the source.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.gen++
	e.mu.Unlock()
	e.clear()
	return nil
}

func (e *Engine) load(url string, gen int) {
	resp, err := e.client.Get(url)
	if err != nil {
		e.fail(fmt.Errorf("failed to fetch song: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.fail(fmt.Errorf("song fetch returned status %d", resp.StatusCode))
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e.fail(fmt.Errorf("failed to read song body: %w", err))
		return
	}

	// Decode from memory so the stream is seekable.
	streamer, format, err := mp3.Decode(seekCloser{bytes.NewReader(data)})
	if err != nil {
		e.fail(fmt.Errorf("failed to decode song: %w", err))
		return
	}

	e.mu.Lock()
	if gen != e.gen {
		// A newer Load or Close superseded this download.
		e.mu.Unlock()
		streamer.Close()
		return
	}
	e.streamer = streamer
	e.format = format

	vol := &effects.Volume{
		Streamer: beep.Resample(4, format.SampleRate, speakerSampleRate, streamer),
		Base:     2,
		Volume:   math.Log2(math.Max(e.volume, 0.01)),
		Silent:   e.volume == 0,
	}
	e.ctrl = &beep.Ctrl{Streamer: vol}
	ctrl := e.ctrl
	e.mu.Unlock()

	speaker.Play(ctrl)
	e.emit(audio.Event{Kind: audio.EventStarted})
}

func (e *Engine) clear() {
	e.mu.Lock()
	streamer := e.streamer
	e.streamer = nil
	e.format = beep.Format{}
	e.ctrl = nil
	e.mu.Unlock()

	speaker.Clear()
	if streamer != nil {
		if err := streamer.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close song streamer")
		}
	}
}

func (e *Engine) fail(err error) {
	log.Warn().Err(err).Msg("playback failed")
	e.emit(audio.Event{Kind: audio.EventError, Err: err})
}

func (e *Engine) emit(ev audio.Event) {
	select {
	case e.events <- ev:
	default:
	}
}

// seekCloser adapts an in-memory reader to the io.ReadSeekCloser the
// MP3 decoder wants.
type seekCloser struct {
	*bytes.Reader
}

func (seekCloser) Close() error { return nil }
