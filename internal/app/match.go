package app

import (
	"github.com/Seljaki2/bingo/internal/domain"
)

// Scoring rules: every correct answer is worth BaseScore, completing a
// bingo line adds BingoBonus on top.
const (
	BaseScore  = 10
	BingoBonus = 100
)

// match holds the live state of one play-through. It is only ever touched
// under the engine mutex.
type match struct {
	id          string
	ageGroupID  int
	categoryIDs []int
	questions   []domain.Question
	byQuestion  map[int]int
	players     []*domain.Player
	current     int
}

func newMatch(id string, ageGroupID int, categoryIDs []int, questions []domain.Question, userIDs []int) *match {
	m := &match{
		id:          id,
		ageGroupID:  ageGroupID,
		categoryIDs: categoryIDs,
		questions:   questions,
		byQuestion:  make(map[int]int, len(questions)),
	}
	for i := range questions {
		m.byQuestion[questions[i].ID] = i
	}
	for i, userID := range userIDs {
		m.players = append(m.players, &domain.Player{
			LocalID: i,
			UserID:  userID,
			Board:   domain.NewBoard(),
		})
	}
	return m
}

func (m *match) player(localID int) (*domain.Player, bool) {
	if localID < 0 || localID >= len(m.players) {
		return nil, false
	}
	return m.players[localID], true
}

func (m *match) question(questionID int) (domain.Question, bool) {
	i, ok := m.byQuestion[questionID]
	if !ok {
		return domain.Question{}, false
	}
	return m.questions[i], true
}

// advanceTurn rotates to the next player. Called once per successful
// submission, regardless of correctness.
func (m *match) advanceTurn() {
	m.current = (m.current + 1) % len(m.players)
}

func (m *match) snapshot() domain.MatchState {
	players := make([]domain.PlayerState, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p.Snapshot())
	}
	return domain.MatchState{
		MatchID:       m.id,
		AgeGroupID:    m.ageGroupID,
		CategoryIDs:   append([]int(nil), m.categoryIDs...),
		Questions:     m.questions,
		Players:       players,
		CurrentPlayer: m.current,
	}
}

// records projects every player, in join order, into one leaderboard row.
// The category attributed to the row is the first category of the match.
func (m *match) records() []domain.LeaderboardRecord {
	out := make([]domain.LeaderboardRecord, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, domain.LeaderboardRecord{
			MatchID:        m.id,
			UserID:         p.UserID,
			AgeGroupID:     m.ageGroupID,
			CategoryID:     m.categoryIDs[0],
			Score:          p.Score,
			CorrectCount:   p.CorrectCount,
			IncorrectCount: p.IncorrectCount,
		})
	}
	return out
}
