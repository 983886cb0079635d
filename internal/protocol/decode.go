package protocol

import (
	"encoding/json"
	"fmt"
)

// Inbound is the decoded form of a server message. Exactly one payload
// field is non-nil for the recognized types; all are nil for
// MessageUnknown.
type Inbound struct {
	Type                   MessageType
	WaitingForGame         *WaitingForGamePayload
	Playing                *PlayingPayload
	WaitingForNextQuestion *WaitingForNextQuestionPayload
	Ended                  *EndedPayload
}

type envelope struct {
	Type MessageType `json:"type"`
}

// Decode parses a raw inbound frame into a tagged union. Unrecognized
// type tags decode to MessageUnknown without error; malformed JSON or a
// payload that does not match its tag is an error.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Inbound{}, fmt.Errorf("failed to decode message envelope: %w", err)
	}

	switch env.Type {
	case MessageWaitingForGame:
		var payload WaitingForGamePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Inbound{}, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return Inbound{Type: env.Type, WaitingForGame: &payload}, nil

	case MessagePlaying:
		var payload PlayingPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Inbound{}, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return Inbound{Type: env.Type, Playing: &payload}, nil

	case MessageWaitingForNextQuestion:
		var payload WaitingForNextQuestionPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Inbound{}, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return Inbound{Type: env.Type, WaitingForNextQuestion: &payload}, nil

	case MessageEnded:
		var payload EndedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Inbound{}, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return Inbound{Type: env.Type, Ended: &payload}, nil

	default:
		return Inbound{Type: MessageUnknown}, nil
	}
}
