package session

import (
	"github.com/rs/zerolog/log"
	"github.com/tunequiz/client/internal/protocol"
)

// Phase is the session state governing what is rendered and which
// actions are valid. Transitions are driven exclusively by inbound
// messages and connection lifecycle events.
type Phase string

const (
	PhaseConnecting             Phase = "Connecting"
	PhaseWaitingForGame         Phase = "WaitingForGame"
	PhasePlaying                Phase = "Playing"
	PhaseWaitingForNextQuestion Phase = "WaitingForNextQuestion"
	PhaseEnded                  Phase = "Ended"

	// PhaseDisconnected is a terminal pseudo-phase surfaced when the
	// connection dies outside PhaseEnded. There is no recovery.
	PhaseDisconnected Phase = "Disconnected"
)

// Transition is the result of applying one inbound message.
type Transition struct {
	Phase Phase

	// Ignored is set for unrecognized message types and messages
	// arriving after disconnect; the phase is unchanged.
	Ignored bool

	// NewQuestion is set on a Playing transition whose question_id
	// differs from the stored one. Duplicate Playing broadcasts (e.g.
	// the initial sync sent to a late joiner's peers) keep it false so
	// audio is not restarted.
	NewQuestion bool

	Msg protocol.Inbound
}

// Machine classifies inbound messages into phases and payloads. The
// server is authoritative: any recognized message replaces the phase
// and payload atomically.
type Machine struct {
	phase      Phase
	questionID int

	playing *protocol.PlayingPayload
	results *protocol.WaitingForNextQuestionPayload
	users   []protocol.UserScore
}

// NewMachine starts in PhaseConnecting with no question seen.
func NewMachine() *Machine {
	return &Machine{
		phase:      PhaseConnecting,
		questionID: -1,
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// QuestionID returns the last seen question index, -1 before the first
// question.
func (m *Machine) QuestionID() int {
	return m.questionID
}

// Playing returns the current Playing payload, nil outside
// PhasePlaying.
func (m *Machine) Playing() *protocol.PlayingPayload {
	return m.playing
}

// Results returns the last question results, nil outside
// PhaseWaitingForNextQuestion.
func (m *Machine) Results() *protocol.WaitingForNextQuestionPayload {
	return m.results
}

// Users returns the participant list of the current payload.
func (m *Machine) Users() []protocol.UserScore {
	return m.users
}

// ConnectionOpened moves Connecting to WaitingForGame, pending the
// first message.
func (m *Machine) ConnectionOpened() {
	if m.phase == PhaseConnecting {
		m.phase = PhaseWaitingForGame
	}
}

// ConnectionClosed surfaces the disconnect. A close after the game
// ended is a normal teardown and keeps PhaseEnded; any other phase
// becomes the terminal PhaseDisconnected.
func (m *Machine) ConnectionClosed() Phase {
	if m.phase != PhaseEnded {
		m.phase = PhaseDisconnected
	}
	return m.phase
}

// Apply decodes a raw frame and transitions. Decode failures leave the
// phase unchanged and are reported; unrecognized types are ignored
// silently per the forward-compatibility policy.
func (m *Machine) Apply(raw []byte) (Transition, error) {
	if m.phase == PhaseDisconnected {
		return Transition{Phase: m.phase, Ignored: true}, nil
	}

	msg, err := protocol.Decode(raw)
	if err != nil {
		return Transition{Phase: m.phase, Ignored: true}, err
	}

	switch msg.Type {
	case protocol.MessageWaitingForGame:
		m.phase = PhaseWaitingForGame
		m.playing = nil
		m.results = nil
		m.questionID = -1
		m.users = msg.WaitingForGame.Users

	case protocol.MessagePlaying:
		newQuestion := msg.Playing.QuestionID != m.questionID
		m.phase = PhasePlaying
		m.playing = msg.Playing
		m.results = nil
		m.questionID = msg.Playing.QuestionID
		m.users = msg.Playing.Users
		return Transition{Phase: m.phase, NewQuestion: newQuestion, Msg: msg}, nil

	case protocol.MessageWaitingForNextQuestion:
		m.phase = PhaseWaitingForNextQuestion
		m.playing = nil
		m.results = msg.WaitingForNextQuestion
		m.users = msg.WaitingForNextQuestion.Users

	case protocol.MessageEnded:
		m.phase = PhaseEnded
		m.playing = nil
		m.results = nil
		m.users = msg.Ended.Users

	default:
		log.Debug().Str("type", string(msg.Type)).Msg("ignoring unrecognized message type")
		return Transition{Phase: m.phase, Ignored: true, Msg: msg}, nil
	}

	return Transition{Phase: m.phase, Msg: msg}, nil
}
