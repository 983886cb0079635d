package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/tunequiz/client/internal/audio"
	"github.com/tunequiz/client/internal/gateway"
	"github.com/tunequiz/client/internal/identity"
	"github.com/tunequiz/client/internal/protocol"
	"github.com/tunequiz/client/internal/scoreboard"
	"github.com/tunequiz/client/internal/submit"
)

var (
	// ErrDisconnected is returned by Run when the connection dies
	// before the game ends. There is no automatic reconnect.
	ErrDisconnected = errors.New("disconnected from room")

	// ErrClosed is returned for actions on a torn-down session.
	ErrClosed = errors.New("session closed")

	// ErrNotPlaying is returned when submitting outside a question.
	ErrNotPlaying = errors.New("no question in progress")

	// ErrLockedOut is returned when answering during a late-join
	// lockout.
	ErrLockedOut = errors.New("locked out of this question")
)

// Connection is the duplex connection slice the session drives.
// *gateway.Conn implements it.
type Connection interface {
	Inbound() <-chan []byte
	Send(message []byte) error
	Close() error
}

// Update is a snapshot pushed to the renderer after every processed
// event. Progress is set only on sampler ticks.
type Update struct {
	Phase      Phase
	Audio      audio.State
	QuestionID int
	Question   *protocol.Question
	Answer     string
	Board      []scoreboard.Row
	Progress   *audio.Sample
}

// Session owns the local projection of one game room: the phase
// machine, audio sync, submission tracking and scoreboard. All state is
// mutated from the single Run loop; inbound messages are processed
// strictly in arrival order and each message's side effects complete
// before the next is read.
type Session struct {
	room  string
	ident identity.Identity

	conn    Connection
	machine *Machine
	engine  audio.Engine
	sync    *audio.SyncEngine
	sampler audio.PositionSource
	tracker *submit.Tracker
	board   *scoreboard.Projector

	commands chan func()
	updates  chan Update

	closeOnce sync.Once
	done      chan struct{}
}

// New builds a session over an already-open connection. The identity is
// mandatory: without one the session refuses to exist.
func New(room string, provider identity.Provider, conn Connection, engine audio.Engine, clock clockwork.Clock) (*Session, error) {
	ident, ok := provider.Identity()
	if !ok {
		return nil, identity.ErrNoIdentity
	}

	return &Session{
		room:     room,
		ident:    ident,
		conn:     conn,
		machine:  NewMachine(),
		engine:   engine,
		sync:     audio.NewSyncEngine(engine, clock),
		sampler:  audio.NewSampler(engine, clock, audio.SampleInterval),
		tracker:  submit.NewTracker(ident, engine),
		board:    scoreboard.NewProjector(),
		commands: make(chan func()),
		updates:  make(chan Update, 16),
		done:     make(chan struct{}),
	}, nil
}

// Join checks the identity, dials the room and builds the session.
func Join(ctx context.Context, baseURL, room string, provider identity.Provider, engine audio.Engine, clock clockwork.Clock) (*Session, error) {
	ident, ok := provider.Identity()
	if !ok {
		return nil, identity.ErrNoIdentity
	}

	wsURL, err := gateway.RoomURL(baseURL, room, ident.ID, ident.Name)
	if err != nil {
		return nil, err
	}

	conn, err := gateway.Dial(ctx, wsURL, gateway.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", room, err)
	}

	return New(room, identity.Static{Value: ident}, conn, engine, clock)
}

// Updates returns the renderer feed. Snapshots are dropped, not queued,
// when the consumer lags.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Phase returns the current phase. Only meaningful between Run events
// for callers on the loop's update feed.
func (s *Session) Phase() Phase {
	return s.machine.Phase()
}

// Run drives the session until the connection dies or ctx is
// cancelled. It announces the local identity, then processes inbound
// frames, engine events, sampler ticks and user commands one at a time.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	s.machine.ConnectionOpened()
	if err := s.sendJSON(protocol.NewUserJoined(s.ident.Name, s.ident.ID)); err != nil {
		return fmt.Errorf("failed to announce join: %w", err)
	}
	s.emit(nil)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case raw, ok := <-s.conn.Inbound():
			if !ok {
				phase := s.machine.ConnectionClosed()
				s.emit(nil)
				if phase == PhaseDisconnected {
					log.Warn().Str("room", s.room).Msg("room connection lost")
					return ErrDisconnected
				}
				return nil
			}
			s.handleMessage(raw)

		case ev := <-s.engine.Events():
			s.sync.HandleEvent(ev)
			s.emit(nil)

		case sample := <-s.sampler.Samples():
			if s.machine.Phase() == PhasePlaying {
				s.emit(&sample)
			}

		case cmd := <-s.commands:
			cmd()
		}
	}
}

// Submit records the user's answer for the current question and sends
// it to the server. At most one submission per question is ever sent.
func (s *Session) Submit(choice int) error {
	return s.do(func() error {
		if s.machine.Phase() != PhasePlaying {
			return ErrNotPlaying
		}
		if s.sync.State() == audio.StateLocked {
			return ErrLockedOut
		}

		msg, err := s.tracker.Submit(choice)
		if err != nil {
			return err
		}
		if err := s.sendJSON(msg); err != nil {
			return err
		}
		s.emit(nil)
		return nil
	})
}

// RetryAudio re-attempts blocked playback. Callers gate it on a user
// gesture.
func (s *Session) RetryAudio() error {
	return s.do(func() error {
		s.sync.Retry()
		s.emit(nil)
		return nil
	})
}

// Close tears the session down: connection closed, sampler stopped,
// audio paused and cleared. All three run exactly once regardless of
// the phase at teardown time.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if err := s.conn.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close room connection")
		}
		s.sampler.Stop()
		s.sync.Teardown()
		log.Info().Str("room", s.room).Msg("session torn down")
	})
}

// handleMessage applies one inbound frame and its side effects.
func (s *Session) handleMessage(raw []byte) {
	tr, err := s.machine.Apply(raw)
	if err != nil {
		log.Warn().Err(err).Msg("dropping malformed message")
		return
	}
	if tr.Ignored {
		return
	}

	switch tr.Phase {
	case PhaseWaitingForGame:
		s.board.SetParticipants(tr.Msg.WaitingForGame.Users)

	case PhasePlaying:
		p := tr.Msg.Playing
		if tr.NewQuestion {
			s.tracker.Reset(p.QuestionID)
			s.sync.StartQuestion(p.Question.SongURL, p.SongProgressMS)
		}
		s.board.SetParticipants(p.Users)

	case PhaseWaitingForNextQuestion:
		s.board.ApplyResults(tr.Msg.WaitingForNextQuestion)

	case PhaseEnded:
		s.board.SetParticipants(tr.Msg.Ended.Users)
	}

	s.emit(nil)
}

// do runs fn on the session loop and waits for its result, so user
// actions never interleave with message handling.
func (s *Session) do(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case s.commands <- func() { errc <- fn() }:
	case <-s.done:
		return ErrClosed
	}
	select {
	case err := <-errc:
		return err
	case <-s.done:
		return ErrClosed
	}
}

func (s *Session) sendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode outbound message: %w", err)
	}
	return s.conn.Send(data)
}

// emit pushes a snapshot to the renderer, dropping it if the consumer
// is behind.
func (s *Session) emit(progress *audio.Sample) {
	u := Update{
		Phase:      s.machine.Phase(),
		Audio:      s.sync.State(),
		QuestionID: s.machine.QuestionID(),
		Board:      s.board.Rows(),
		Progress:   progress,
	}
	if p := s.machine.Playing(); p != nil {
		u.Question = &p.Question
	}
	if r := s.machine.Results(); r != nil {
		u.Answer = r.Answer
	}

	select {
	case s.updates <- u:
	default:
	}
}
