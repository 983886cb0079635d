package submit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tunequiz/client/internal/identity"
)

type fixedPosition struct {
	seconds float64
}

func (p fixedPosition) Position() float64 { return p.seconds }

var testIdentity = identity.Identity{ID: "id-1", Name: "ada"}

func TestSubmitUsesAudioClock(t *testing.T) {
	tracker := NewTracker(testIdentity, fixedPosition{seconds: 3.2})
	tracker.Reset(0)

	msg, err := tracker.Submit(2)
	require.NoError(t, err)

	assert.Equal(t, "UserSubmitted", msg.Type)
	assert.Equal(t, "ada", msg.UserName)
	assert.Equal(t, "id-1", msg.UserID)
	assert.Equal(t, 2, msg.Choice)
	assert.Equal(t, int64(3200), msg.SubmittedAtMS)

	choice, ok := tracker.Choice()
	require.True(t, ok)
	assert.Equal(t, 2, choice)
}

func TestSubmitOncePerQuestion(t *testing.T) {
	tracker := NewTracker(testIdentity, fixedPosition{seconds: 1})
	tracker.Reset(0)

	_, err := tracker.Submit(1)
	require.NoError(t, err)

	_, err = tracker.Submit(3)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	// A duplicate Playing broadcast for the same question must not
	// re-open the submission.
	tracker.Reset(0)
	_, err = tracker.Submit(3)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	// The next question does.
	tracker.Reset(1)
	_, err = tracker.Submit(3)
	assert.NoError(t, err)
}

func TestSubmitWithoutQuestion(t *testing.T) {
	tracker := NewTracker(testIdentity, fixedPosition{seconds: 1})

	_, err := tracker.Submit(0)
	assert.ErrorIs(t, err, ErrNoQuestion)
}

func TestSubmittedAtClampedToQuestionDuration(t *testing.T) {
	tracker := NewTracker(testIdentity, fixedPosition{seconds: 12.4})
	tracker.Reset(0)

	msg, err := tracker.Submit(0)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), msg.SubmittedAtMS)

	tracker = NewTracker(testIdentity, fixedPosition{seconds: -0.5})
	tracker.Reset(0)

	msg, err = tracker.Submit(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), msg.SubmittedAtMS)
}
