package scoreboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tunequiz/client/internal/protocol"
)

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestRankingIsDescendingAndStable(t *testing.T) {
	p := NewProjector()
	p.SetParticipants([]protocol.UserScore{
		{Name: "ada", Score: 5},
		{Name: "bob", Score: 9},
		{Name: "cyd", Score: 5},
		{Name: "dee", Score: 9},
	})

	// Ties keep the server's relative order: bob before dee, ada
	// before cyd.
	assert.Equal(t, []string{"bob", "dee", "ada", "cyd"}, names(p.Rows()))
}

func TestApplyResultsOverlaysBonusesFastestFirst(t *testing.T) {
	p := NewProjector()
	p.ApplyResults(&protocol.WaitingForNextQuestionPayload{
		Answer: "b",
		CorrectSubmissions: []protocol.CorrectSubmission{
			{UserName: "bob", Score: 12, SubmittedAtMS: 4100},
			{UserName: "ada", Score: 15, SubmittedAtMS: 3200},
		},
		Users: []protocol.UserScore{
			{Name: "ada", Score: 35},
			{Name: "bob", Score: 40},
			{Name: "cyd", Score: 10},
		},
	})

	rows := p.Rows()
	require.Equal(t, []string{"bob", "ada", "cyd"}, names(rows))

	assert.True(t, rows[0].HasBonus)
	assert.Equal(t, 12, rows[0].Bonus)
	assert.Equal(t, int64(4100), rows[0].SubmittedAtMS)

	assert.True(t, rows[1].HasBonus)
	assert.Equal(t, 15, rows[1].Bonus)

	assert.False(t, rows[2].HasBonus)
	assert.Zero(t, rows[2].Bonus)
}

func TestApplyResultsDuplicateNames(t *testing.T) {
	// Matching is by display name; with a shared name the fastest
	// submission binds to the first unclaimed row of that name.
	p := NewProjector()
	p.ApplyResults(&protocol.WaitingForNextQuestionPayload{
		CorrectSubmissions: []protocol.CorrectSubmission{
			{UserName: "ada", Score: 10, SubmittedAtMS: 5000},
			{UserName: "ada", Score: 15, SubmittedAtMS: 2000},
		},
		Users: []protocol.UserScore{
			{Name: "ada", Score: 30},
			{Name: "ada", Score: 30},
		},
	})

	rows := p.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, 15, rows[0].Bonus)
	assert.Equal(t, 10, rows[1].Bonus)
}

func TestRowsReturnsACopy(t *testing.T) {
	p := NewProjector()
	p.SetParticipants([]protocol.UserScore{{Name: "ada", Score: 1}})

	rows := p.Rows()
	rows[0].Score = 99

	assert.Equal(t, 1, p.Rows()[0].Score)
}
