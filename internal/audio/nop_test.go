package audio

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopEngineTracksTime(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := NewNopEngine(clock)

	engine.Load("https://cdn.example/song.mp3")
	select {
	case ev := <-engine.Events():
		assert.Equal(t, EventStarted, ev.Kind)
	default:
		t.Fatal("no started event after load")
	}

	clock.Advance(3200 * time.Millisecond)
	assert.InDelta(t, 3.2, engine.Position(), 1e-9)

	engine.Pause()
	clock.Advance(time.Second)
	assert.InDelta(t, 3.2, engine.Position(), 1e-9)

	engine.Play()
	clock.Advance(500 * time.Millisecond)
	assert.InDelta(t, 3.7, engine.Position(), 1e-9)

	require.NoError(t, engine.Seek(1.5))
	clock.Advance(100 * time.Millisecond)
	assert.InDelta(t, 1.6, engine.Position(), 1e-9)

	require.NoError(t, engine.Close())
	assert.Zero(t, engine.Position())
}
