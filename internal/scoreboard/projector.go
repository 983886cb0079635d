package scoreboard

import (
	"sort"

	"github.com/tunequiz/client/internal/protocol"
)

// Row is one ranked scoreboard entry. Bonus is the per-question score
// delta overlaid after a question ends; HasBonus distinguishes a zero
// bonus from no bonus.
type Row struct {
	Name          string
	Score         int
	Bonus         int
	HasBonus      bool
	SubmittedAtMS int64
}

// Projector maintains the ranked participant view.
type Projector struct {
	rows []Row
}

// NewProjector builds an empty projector.
func NewProjector() *Projector {
	return &Projector{}
}

// SetParticipants replaces the view with the given participants, ranked
// by descending score. The sort is stable: ties keep the server's
// relative order.
func (p *Projector) SetParticipants(users []protocol.UserScore) {
	rows := make([]Row, len(users))
	for i, u := range users {
		rows[i] = Row{Name: u.Name, Score: u.Score}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	p.rows = rows
}

// ApplyResults re-ranks from the question results and overlays each
// correct submitter's bonus, fastest submission first. Matching is by
// display name: the results payload carries no participant id, so this
// stays compatible with existing servers.
func (p *Projector) ApplyResults(results *protocol.WaitingForNextQuestionPayload) {
	p.SetParticipants(results.Users)

	subs := make([]protocol.CorrectSubmission, len(results.CorrectSubmissions))
	copy(subs, results.CorrectSubmissions)
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].SubmittedAtMS < subs[j].SubmittedAtMS
	})

	for _, sub := range subs {
		for i := range p.rows {
			if p.rows[i].Name == sub.UserName && !p.rows[i].HasBonus {
				p.rows[i].Bonus = sub.Score
				p.rows[i].HasBonus = true
				p.rows[i].SubmittedAtMS = sub.SubmittedAtMS
				break
			}
		}
	}
}

// Rows returns the current ranked view.
func (p *Projector) Rows() []Row {
	out := make([]Row, len(p.rows))
	copy(out, p.rows)
	return out
}
