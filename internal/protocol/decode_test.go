package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlaying(t *testing.T) {
	raw := []byte(`{
		"type": "Playing",
		"question": {
			"question_type": "Song",
			"choices": ["a", "b", "c", "d"],
			"score": 10,
			"bonus": 5,
			"song_url": "https://cdn.example/preview.mp3"
		},
		"question_id": 3,
		"song_progress_ms": 4000,
		"users": [{"name": "ada", "score": 20}]
	}`)

	msg, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, MessagePlaying, msg.Type)
	require.NotNil(t, msg.Playing)

	assert.Equal(t, QuestionTypeSong, msg.Playing.Question.Type)
	assert.Equal(t, []string{"a", "b", "c", "d"}, msg.Playing.Question.Choices)
	assert.Equal(t, 3, msg.Playing.QuestionID)
	assert.Equal(t, int64(4000), msg.Playing.SongProgressMS)
	assert.Equal(t, []UserScore{{Name: "ada", Score: 20}}, msg.Playing.Users)
}

func TestDecodeWaitingForNextQuestion(t *testing.T) {
	raw := []byte(`{
		"type": "WaitingForNextQuestion",
		"answer": "b",
		"correct_submissions": [
			{"user_name": "ada", "score": 15, "submitted_at_ms": 3200}
		],
		"users": [{"name": "ada", "score": 35}, {"name": "bob", "score": 20}]
	}`)

	msg, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, MessageWaitingForNextQuestion, msg.Type)
	require.NotNil(t, msg.WaitingForNextQuestion)

	assert.Equal(t, "b", msg.WaitingForNextQuestion.Answer)
	require.Len(t, msg.WaitingForNextQuestion.CorrectSubmissions, 1)
	assert.Equal(t, int64(3200), msg.WaitingForNextQuestion.CorrectSubmissions[0].SubmittedAtMS)
}

func TestDecodeLobbyAndEnded(t *testing.T) {
	msg, err := Decode([]byte(`{"type": "WaitingForGame", "users": [{"name": "ada", "score": 0}]}`))
	require.NoError(t, err)
	require.Equal(t, MessageWaitingForGame, msg.Type)
	require.NotNil(t, msg.WaitingForGame)
	assert.Len(t, msg.WaitingForGame.Users, 1)

	msg, err = Decode([]byte(`{"type": "Ended", "users": []}`))
	require.NoError(t, err)
	require.Equal(t, MessageEnded, msg.Type)
	require.NotNil(t, msg.Ended)
}

func TestDecodeUnknownTypeIsNotAnError(t *testing.T) {
	msg, err := Decode([]byte(`{"type": "ServerGossip", "payload": 42}`))
	require.NoError(t, err)
	assert.Equal(t, MessageUnknown, msg.Type)
	assert.Nil(t, msg.Playing)
	assert.Nil(t, msg.WaitingForGame)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"type": `))
	require.Error(t, err)

	// Right tag, wrong payload shape.
	_, err = Decode([]byte(`{"type": "Playing", "question_id": "not-a-number"}`))
	require.Error(t, err)
}

func TestOutboundMessages(t *testing.T) {
	join, err := json.Marshal(NewUserJoined("ada", "id-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "UserJoined", "name": "ada", "id": "id-1"}`, string(join))

	sub, err := json.Marshal(NewUserSubmitted("ada", "id-1", 2, 3200))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "UserSubmitted",
		"user_name": "ada",
		"user_id": "id-1",
		"choice": 2,
		"submitted_at_ms": 3200
	}`, string(sub))
}
