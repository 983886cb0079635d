package submit

import (
	"errors"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/tunequiz/client/internal/audio"
	"github.com/tunequiz/client/internal/identity"
	"github.com/tunequiz/client/internal/protocol"
)

// ErrAlreadySubmitted is returned when a second answer is attempted for
// the same question.
var ErrAlreadySubmitted = errors.New("answer already submitted for this question")

// ErrNoQuestion is returned when submitting outside an active question.
var ErrNoQuestion = errors.New("no active question")

// Tracker records the single allowed answer per question. The timestamp
// is taken from the audio engine's clock, not wall clock, because the
// server scores speed bonuses against the timeline the player hears.
type Tracker struct {
	ident    identity.Identity
	position audio.PositionReader

	questionID int
	choice     *int
}

// NewTracker builds a tracker with no active question.
func NewTracker(ident identity.Identity, position audio.PositionReader) *Tracker {
	return &Tracker{
		ident:      ident,
		position:   position,
		questionID: -1,
	}
}

// Reset arms the tracker for a new question, clearing any pending
// submission. Calling it again with the same id keeps the pending
// submission, so duplicate Playing broadcasts cannot re-open a question.
func (t *Tracker) Reset(questionID int) {
	if questionID == t.questionID {
		return
	}
	t.questionID = questionID
	t.choice = nil
}

// Submit records the chosen answer and builds the outbound message.
// A second call for the same question is rejected.
func (t *Tracker) Submit(choice int) (protocol.UserSubmitted, error) {
	if t.questionID < 0 {
		return protocol.UserSubmitted{}, ErrNoQuestion
	}
	if t.choice != nil {
		return protocol.UserSubmitted{}, ErrAlreadySubmitted
	}

	submittedAtMS := int64(math.Round(t.position.Position() * 1000))
	if submittedAtMS < 0 {
		submittedAtMS = 0
	}
	if max := audio.QuestionDuration.Milliseconds(); submittedAtMS > max {
		submittedAtMS = max
	}

	t.choice = &choice
	log.Debug().
		Int("question_id", t.questionID).
		Int("choice", choice).
		Int64("submitted_at_ms", submittedAtMS).
		Msg("answer submitted")

	return protocol.NewUserSubmitted(t.ident.Name, t.ident.ID, choice, submittedAtMS), nil
}

// Choice returns the submitted choice index for the current question,
// with ok=false while none is pending.
func (t *Tracker) Choice() (int, bool) {
	if t.choice == nil {
		return 0, false
	}
	return *t.choice, true
}
