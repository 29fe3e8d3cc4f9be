package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Seljaki2/bingo/internal/domain"
)

// QuestionStore loads question content and holds the answer keys. The
// correct-option index is looked up here per submission and never handed to
// the engine's callers.
type QuestionStore interface {
	LoadQuestions(ctx context.Context, ageGroupID int, categoryIDs []int) ([]domain.Question, error)
	CorrectAnswer(ctx context.Context, questionID int) (int, error)
	InsertQuestion(ctx context.Context, q domain.Question, correctOption int) (domain.Question, error)
	ListAgeGroups(ctx context.Context) ([]domain.AgeGroup, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// LeaderboardStore persists per-player match results.
type LeaderboardStore interface {
	InsertRecord(ctx context.Context, record domain.LeaderboardRecord) (domain.LeaderboardRecord, error)
	TopRecords(ctx context.Context, ageGroupID, limit int) ([]domain.LeaderboardRecord, error)
}

// GameEngine owns the single live match and exposes the match lifecycle.
// All operations are serialized under one mutex: a submission suspended on a
// store round trip must not interleave with another mutation of the match.
type GameEngine struct {
	mu          sync.Mutex
	questions   QuestionStore
	leaderboard LeaderboardStore
	rnd         *rand.Rand
	newMatchID  func() string
	match       *match
}

func NewGameEngine(questions QuestionStore, leaderboard LeaderboardStore) *GameEngine {
	return NewGameEngineWithHooks(questions, leaderboard, rand.New(rand.NewSource(time.Now().UnixNano())), uuid.NewString)
}

// NewGameEngineWithHooks is test-only for deterministic cell placement and
// match ids.
func NewGameEngineWithHooks(questions QuestionStore, leaderboard LeaderboardStore, rnd *rand.Rand, newMatchID func() string) *GameEngine {
	return &GameEngine{
		questions:   questions,
		leaderboard: leaderboard,
		rnd:         rnd,
		newMatchID:  newMatchID,
	}
}

// StartMatch loads the question set for the given filters and builds one
// fresh player session per user id, in the given order. A second start while
// a match is active is rejected rather than silently replacing it.
func (e *GameEngine) StartMatch(ctx context.Context, ageGroupID int, categoryIDs []int, userIDs []int) (domain.MatchState, error) {
	if len(categoryIDs) == 0 || len(userIDs) == 0 {
		return domain.MatchState{}, domain.ErrInvalidParameters
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.match != nil {
		return domain.MatchState{}, domain.ErrMatchInProgress
	}

	// A filter matching zero questions yields a degenerate but valid match.
	questions, err := e.questions.LoadQuestions(ctx, ageGroupID, categoryIDs)
	if err != nil {
		return domain.MatchState{}, fmt.Errorf("load questions: %w", err)
	}

	e.match = newMatch(e.newMatchID(), ageGroupID, categoryIDs, questions, userIDs)
	return e.match.snapshot(), nil
}

// SubmitAnswer validates one answer for one player. The authoritative
// correct-option index is fetched from the question store on every call;
// board and score mutate only after that lookup succeeds, so a store failure
// leaves the match untouched.
func (e *GameEngine) SubmitAnswer(ctx context.Context, playerLocalID, questionID, selectedOption int, target *domain.Cell) (domain.AnswerResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.match == nil {
		return domain.AnswerResult{}, domain.ErrNoActiveMatch
	}
	m := e.match

	player, ok := m.player(playerLocalID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrUnknownPlayer
	}

	// A player who already completed a line is done scoring.
	if player.Board.HasWinningLine() {
		return domain.AnswerResult{
			QuestionID: questionID,
			AlreadyWon: true,
			TotalScore: player.Score,
			Board:      player.Board.Grid(),
			NextPlayer: m.current,
		}, nil
	}

	if _, ok := m.question(questionID); !ok {
		return domain.AnswerResult{}, domain.ErrUnknownQuestion
	}

	correctOption, err := e.questions.CorrectAnswer(ctx, questionID)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("verify answer: %w", err)
	}

	result := domain.AnswerResult{QuestionID: questionID}
	if selectedOption == correctOption {
		player.RecordCorrect(BaseScore)
		result.Correct = true
		result.Awarded = BaseScore

		e.markBoard(player.Board, target)
		if player.Board.HasWinningLine() {
			player.Score += BingoBonus
			result.Bingo = true
			result.Awarded += BingoBonus
		}
	} else {
		player.RecordIncorrect()
	}

	m.advanceTurn()
	result.TotalScore = player.Score
	result.Board = player.Board.Grid()
	result.NextPlayer = m.current
	return result, nil
}

// markBoard prefers the caller-supplied cell and falls back to a random
// unmarked one, so a correct answer is never left unmarked.
func (e *GameEngine) markBoard(board *domain.Board, target *domain.Cell) {
	if target != nil {
		if err := board.Mark(*target); err == nil {
			return
		}
	}
	// Only fails on a full board, which a winning-line check already rules out.
	_, _ = board.MarkRandom(e.rnd)
}

// EndMatch persists one leaderboard record per player, in join order, and
// discards the match. If a store write fails the match stays active so the
// caller can retry or abandon it.
func (e *GameEngine) EndMatch(ctx context.Context) ([]domain.LeaderboardRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.match == nil {
		return nil, domain.ErrNoActiveMatch
	}

	stored := make([]domain.LeaderboardRecord, 0, len(e.match.players))
	for _, record := range e.match.records() {
		saved, err := e.leaderboard.InsertRecord(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("persist result for user %d: %w", record.UserID, err)
		}
		stored = append(stored, saved)
	}

	e.match = nil
	return stored, nil
}

// MatchState returns a snapshot of the live match, for callers that need to
// re-render after a reconnect.
func (e *GameEngine) MatchState() (domain.MatchState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.match == nil {
		return domain.MatchState{}, domain.ErrNoActiveMatch
	}
	return e.match.snapshot(), nil
}

// AgeGroups is a pass-through read for the menu layer.
func (e *GameEngine) AgeGroups(ctx context.Context) ([]domain.AgeGroup, error) {
	groups, err := e.questions.ListAgeGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list age groups: %w", err)
	}
	return groups, nil
}

// Categories is a pass-through read for the menu layer.
func (e *GameEngine) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := e.questions.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Leaderboard is a pass-through read of the persisted standings.
func (e *GameEngine) Leaderboard(ctx context.Context, ageGroupID, limit int) ([]domain.LeaderboardRecord, error) {
	records, err := e.leaderboard.TopRecords(ctx, ageGroupID, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return records, nil
}

// AddQuestion stores new question content, keeping the answer key behind the
// store boundary.
func (e *GameEngine) AddQuestion(ctx context.Context, q domain.Question, correctOption int) (domain.Question, error) {
	if q.Prompt == "" || len(q.Options) == 0 || correctOption < 0 || correctOption >= len(q.Options) {
		return domain.Question{}, domain.ErrInvalidParameters
	}
	stored, err := e.questions.InsertQuestion(ctx, q, correctOption)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return stored, nil
}
