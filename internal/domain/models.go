package domain

import "time"

// AgeGroup is a question filter band (e.g. 6-8 years).
type AgeGroup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Category is a trivia topic questions belong to.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Question is one multiple-choice entry of a match's question set. The
// correct-option index deliberately never appears here; it stays behind the
// question store and is fetched per submission.
type Question struct {
	ID         int      `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	CategoryID int      `json:"categoryId"`
	AgeGroupID int      `json:"ageGroupId"`
}

// Player is one participant's mutable state within a match.
type Player struct {
	LocalID        int
	UserID         int
	Score          int
	CorrectCount   int
	IncorrectCount int
	Board          *Board
}

// RecordCorrect awards points for a correct answer. Score only increases.
func (p *Player) RecordCorrect(points int) {
	p.Score += points
	p.CorrectCount++
}

// RecordIncorrect counts a wrong answer without touching the score.
func (p *Player) RecordIncorrect() {
	p.IncorrectCount++
}

// PlayerState is a snapshot-friendly view of a player.
type PlayerState struct {
	LocalID        int       `json:"localId"`
	UserID         int       `json:"userId"`
	Score          int       `json:"score"`
	CorrectCount   int       `json:"correctCount"`
	IncorrectCount int       `json:"incorrectCount"`
	Board          BoardGrid `json:"board"`
}

// Snapshot projects the player into its transport view.
func (p *Player) Snapshot() PlayerState {
	return PlayerState{
		LocalID:        p.LocalID,
		UserID:         p.UserID,
		Score:          p.Score,
		CorrectCount:   p.CorrectCount,
		IncorrectCount: p.IncorrectCount,
		Board:          p.Board.Grid(),
	}
}

// MatchState captures a started match for transport to the caller.
type MatchState struct {
	MatchID       string        `json:"matchId"`
	AgeGroupID    int           `json:"ageGroupId"`
	CategoryIDs   []int         `json:"categoryIds"`
	Questions     []Question    `json:"questions"`
	Players       []PlayerState `json:"players"`
	CurrentPlayer int           `json:"currentPlayer"`
}

// AnswerResult summarizes the outcome of one submission.
type AnswerResult struct {
	QuestionID int       `json:"questionId"`
	Correct    bool      `json:"correct"`
	Bingo      bool      `json:"bingo"`
	AlreadyWon bool      `json:"alreadyWon"`
	Awarded    int       `json:"awarded"`
	TotalScore int       `json:"totalScore"`
	Board      BoardGrid `json:"board"`
	NextPlayer int       `json:"nextPlayer"`
}

// LeaderboardRecord is the persisted, append-only summary of one player's
// performance in one ended match.
type LeaderboardRecord struct {
	MatchID        string    `json:"matchId"`
	UserID         int       `json:"userId"`
	AgeGroupID     int       `json:"ageGroupId"`
	CategoryID     int       `json:"categoryId"`
	Score          int       `json:"score"`
	CorrectCount   int       `json:"correctCount"`
	IncorrectCount int       `json:"incorrectCount"`
	CreatedAt      time.Time `json:"createdAt"`
}
