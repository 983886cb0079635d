package protocol

// MessageType discriminates inbound server messages.
type MessageType string

const (
	MessageWaitingForGame         MessageType = "WaitingForGame"
	MessagePlaying                MessageType = "Playing"
	MessageWaitingForNextQuestion MessageType = "WaitingForNextQuestion"
	MessageEnded                  MessageType = "Ended"

	// MessageUnknown marks a recognized envelope carrying a type this
	// client does not understand. Unknown messages are ignored, not
	// treated as errors, so newer servers stay compatible.
	MessageUnknown MessageType = "Unknown"
)

// QuestionType is the kind of fact a question asks about.
type QuestionType string

const (
	QuestionTypeSong   QuestionType = "Song"
	QuestionTypeArtist QuestionType = "Artist"
	QuestionTypeAlbum  QuestionType = "Album"
)

// Question is a single quiz question as sent by the server.
type Question struct {
	Type    QuestionType `json:"question_type"`
	Choices []string     `json:"choices"`
	Score   int          `json:"score"`
	Bonus   int          `json:"bonus"`
	SongURL string       `json:"song_url"`
}

// UserScore is one participant's name and cumulative score.
type UserScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// WaitingForGamePayload is sent while the lobby waits for the owner to
// start a game, and again after a restart.
type WaitingForGamePayload struct {
	Users []UserScore `json:"users"`
}

// PlayingPayload describes the current question and the authoritative
// song progress at the instant the server built the message.
type PlayingPayload struct {
	Question       Question    `json:"question"`
	QuestionID     int         `json:"question_id"`
	SongProgressMS int64       `json:"song_progress_ms"`
	Users          []UserScore `json:"users"`
}

// CorrectSubmission is one correct answer for the finished question,
// with the score delta it earned and how far into the song it was made.
type CorrectSubmission struct {
	UserName      string `json:"user_name"`
	Score         int    `json:"score"`
	SubmittedAtMS int64  `json:"submitted_at_ms"`
}

// WaitingForNextQuestionPayload carries the results of the question
// that just ended.
type WaitingForNextQuestionPayload struct {
	Answer             string              `json:"answer"`
	CorrectSubmissions []CorrectSubmission `json:"correct_submissions"`
	Users              []UserScore         `json:"users"`
}

// EndedPayload is the final scoreboard.
type EndedPayload struct {
	Users []UserScore `json:"users"`
}

// UserJoined announces the local identity after the connection opens.
type UserJoined struct {
	Type string `json:"type"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

// NewUserJoined builds the join announcement.
func NewUserJoined(name, id string) UserJoined {
	return UserJoined{Type: "UserJoined", Name: name, ID: id}
}

// UserSubmitted is the answer submission for the current question.
// SubmittedAtMS is elapsed milliseconds into the song on the audio
// engine's clock.
type UserSubmitted struct {
	Type          string `json:"type"`
	UserName      string `json:"user_name"`
	UserID        string `json:"user_id"`
	Choice        int    `json:"choice"`
	SubmittedAtMS int64  `json:"submitted_at_ms"`
}

// NewUserSubmitted builds an answer submission message.
func NewUserSubmitted(userName, userID string, choice int, submittedAtMS int64) UserSubmitted {
	return UserSubmitted{
		Type:          "UserSubmitted",
		UserName:      userName,
		UserID:        userID,
		Choice:        choice,
		SubmittedAtMS: submittedAtMS,
	}
}
