package app_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/Seljaki2/bingo/internal/app"
	"github.com/Seljaki2/bingo/internal/domain"
	"github.com/Seljaki2/bingo/internal/infra/memory"
)

func TestMatchLifecycle(t *testing.T) {
	ctx := context.Background()
	engine, questions, leaderboard := newTestEngine(t)
	q := seedQuestion(t, questions, 1, 1, 1)

	state, err := engine.StartMatch(ctx, 1, []int{1}, []int{7, 9})
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	if state.MatchID != "match-1" {
		t.Fatalf("expected match id match-1, got %q", state.MatchID)
	}
	if len(state.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(state.Players))
	}
	for i, p := range state.Players {
		if p.Score != 0 || p.LocalID != i {
			t.Fatalf("player %d: unexpected initial state %+v", i, p)
		}
	}
	if state.Players[0].UserID != 7 || state.Players[1].UserID != 9 {
		t.Fatalf("players out of order: %+v", state.Players)
	}
	if len(state.Questions) != 1 || state.Questions[0].ID != q.ID {
		t.Fatalf("unexpected question set: %+v", state.Questions)
	}

	result, err := engine.SubmitAnswer(ctx, 0, q.ID, 1, nil)
	if err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	if !result.Correct || result.Bingo || result.AlreadyWon {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Awarded != app.BaseScore || result.TotalScore != app.BaseScore {
		t.Fatalf("expected %d points, got awarded=%d total=%d", app.BaseScore, result.Awarded, result.TotalScore)
	}
	if result.NextPlayer != 1 {
		t.Fatalf("expected turn to pass to player 1, got %d", result.NextPlayer)
	}

	records, err := engine.EndMatch(ctx)
	if err != nil {
		t.Fatalf("end match: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 leaderboard records, got %d", len(records))
	}
	if records[0].UserID != 7 || records[0].Score != app.BaseScore || records[0].CorrectCount != 1 {
		t.Fatalf("unexpected record for player 0: %+v", records[0])
	}
	if records[1].UserID != 9 || records[1].Score != 0 {
		t.Fatalf("unexpected record for player 1: %+v", records[1])
	}
	if records[0].MatchID != "match-1" || records[0].AgeGroupID != 1 || records[0].CategoryID != 1 {
		t.Fatalf("unexpected match attribution: %+v", records[0])
	}

	stored, err := leaderboard.TopRecords(ctx, 1, 0)
	if err != nil {
		t.Fatalf("top records: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 persisted records, got %d", len(stored))
	}
}

func TestStartMatchValidation(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t)

	if _, err := engine.StartMatch(ctx, 1, nil, []int{7}); !errors.Is(err, domain.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for empty categories, got %v", err)
	}
	if _, err := engine.StartMatch(ctx, 1, []int{1}, nil); !errors.Is(err, domain.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for empty users, got %v", err)
	}
}

func TestStartMatchRejectsSecondMatch(t *testing.T) {
	ctx := context.Background()
	engine, questions, _ := newTestEngine(t)
	seedQuestion(t, questions, 1, 1, 0)

	if _, err := engine.StartMatch(ctx, 1, []int{1}, []int{7}); err != nil {
		t.Fatalf("start match: %v", err)
	}
	if _, err := engine.StartMatch(ctx, 1, []int{1}, []int{9}); !errors.Is(err, domain.ErrMatchInProgress) {
		t.Fatalf("expected ErrMatchInProgress, got %v", err)
	}

	// The original match is untouched.
	state, err := engine.MatchState()
	if err != nil {
		t.Fatalf("match state: %v", err)
	}
	if len(state.Players) != 1 || state.Players[0].UserID != 7 {
		t.Fatalf("expected original match to survive, got %+v", state.Players)
	}
}

func TestStartMatchAllowsEmptyQuestionSet(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t)

	state, err := engine.StartMatch(ctx, 1, []int{99}, []int{7})
	if err != nil {
		t.Fatalf("start match with no matching questions: %v", err)
	}
	if len(state.Questions) != 0 {
		t.Fatalf("expected empty question set, got %d", len(state.Questions))
	}
}

func TestSubmitAnswerStateErrors(t *testing.T) {
	ctx := context.Background()
	engine, questions, _ := newTestEngine(t)
	q := seedQuestion(t, questions, 1, 1, 0)

	if _, err := engine.SubmitAnswer(ctx, 0, q.ID, 0, nil); !errors.Is(err, domain.ErrNoActiveMatch) {
		t.Fatalf("expected ErrNoActiveMatch, got %v", err)
	}

	if _, err := engine.StartMatch(ctx, 1, []int{1}, []int{7, 9}); err != nil {
		t.Fatalf("start match: %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, 5, q.ID, 0, nil); !errors.Is(err, domain.ErrUnknownPlayer) {
		t.Fatalf("expected ErrUnknownPlayer, got %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, 0, 9999, 0, nil); !errors.Is(err, domain.ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}

	// Failed submissions leave scores and turn order untouched.
	state, err := engine.MatchState()
	if err != nil {
		t.Fatalf("match state: %v", err)
	}
	if state.CurrentPlayer != 0 {
		t.Fatalf("expected turn index 0 after failed submissions, got %d", state.CurrentPlayer)
	}
	for _, p := range state.Players {
		if p.Score != 0 || p.CorrectCount != 0 || p.IncorrectCount != 0 {
			t.Fatalf("expected untouched player, got %+v", p)
		}
	}
}

func TestTurnRotatesRegardlessOfCorrectness(t *testing.T) {
	ctx := context.Background()
	engine, questions, _ := newTestEngine(t)
	q := seedQuestion(t, questions, 1, 1, 1)

	if _, err := engine.StartMatch(ctx, 1, []int{1}, []int{7, 9}); err != nil {
		t.Fatalf("start match: %v", err)
	}

	// Wrong answer still rotates the turn.
	result, err := engine.SubmitAnswer(ctx, 0, q.ID, 0, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Correct || result.NextPlayer != 1 {
		t.Fatalf("expected incorrect answer and turn 1, got %+v", result)
	}
	if result.TotalScore != 0 {
		t.Fatalf("wrong answer must not score, got %d", result.TotalScore)
	}

	result, err = engine.SubmitAnswer(ctx, 1, q.ID, 1, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct || result.NextPlayer != 0 {
		t.Fatalf("expected correct answer and turn wrap to 0, got %+v", result)
	}
}

func TestBingoBonusAndAlreadyWon(t *testing.T) {
	ctx := context.Background()
	engine, questions, _ := newTestEngine(t)
	q := seedQuestion(t, questions, 1, 1, 1)

	if _, err := engine.StartMatch(ctx, 1, []int{1}, []int{7}); err != nil {
		t.Fatalf("start match: %v", err)
	}

	// Complete the top row with targeted marks.
	var last domain.AnswerResult
	for col := 0; col < domain.BoardSize; col++ {
		target := &domain.Cell{Row: 0, Col: col}
		result, err := engine.SubmitAnswer(ctx, 0, q.ID, 1, target)
		if err != nil {
			t.Fatalf("submit col %d: %v", col, err)
		}
		if result.AlreadyWon {
			t.Fatalf("unexpected alreadyWon at col %d", col)
		}
		last = result
	}
	if !last.Bingo {
		t.Fatalf("expected bingo on completing the row, got %+v", last)
	}
	wantScore := domain.BoardSize*app.BaseScore + app.BingoBonus
	if last.TotalScore != wantScore || last.Awarded != app.BaseScore+app.BingoBonus {
		t.Fatalf("expected total %d, got %+v", wantScore, last)
	}

	// A won player cannot keep scoring or mutating the board.
	result, err := engine.SubmitAnswer(ctx, 0, q.ID, 1, &domain.Cell{Row: 1, Col: 0})
	if err != nil {
		t.Fatalf("submit after win: %v", err)
	}
	if !result.AlreadyWon || result.Correct || result.Bingo {
		t.Fatalf("expected alreadyWon only, got %+v", result)
	}
	if result.TotalScore != wantScore {
		t.Fatalf("score changed after win: %d", result.TotalScore)
	}
	if result.Board != last.Board {
		t.Fatalf("board changed after win")
	}
}

func TestTargetCellFallsBackToRandom(t *testing.T) {
	ctx := context.Background()
	engine, questions, _ := newTestEngine(t)
	q := seedQuestion(t, questions, 1, 1, 1)

	if _, err := engine.StartMatch(ctx, 1, []int{1}, []int{7}); err != nil {
		t.Fatalf("start match: %v", err)
	}

	// The free space is already marked, so the mark lands elsewhere.
	center := &domain.Cell{Row: domain.BoardSize / 2, Col: domain.BoardSize / 2}
	result, err := engine.SubmitAnswer(ctx, 0, q.ID, 1, center)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct {
		t.Fatalf("expected correct answer, got %+v", result)
	}
	if marks := countMarks(result.Board); marks != 2 {
		t.Fatalf("expected free space plus one fallback mark, got %d marks", marks)
	}

	// Out-of-bounds targets fall back the same way.
	result, err = engine.SubmitAnswer(ctx, 0, q.ID, 1, &domain.Cell{Row: -1, Col: 9})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if marks := countMarks(result.Board); marks != 3 {
		t.Fatalf("expected a third mark, got %d", marks)
	}
}

func TestSubmitAnswerPropagatesStoreFailure(t *testing.T) {
	ctx := context.Background()
	questions := memory.NewQuestionStore(nil, nil)
	q, err := questions.InsertQuestion(ctx, domain.Question{
		Prompt:     "prompt",
		Options:    []string{"a", "b"},
		CategoryID: 1,
		AgeGroupID: 1,
	}, 1)
	if err != nil {
		t.Fatalf("insert question: %v", err)
	}

	failing := &failingAnswerStore{QuestionStore: questions}
	engine := app.NewGameEngineWithHooks(failing, memory.NewLeaderboardStore(), rand.New(rand.NewSource(1)), staticIDs())

	if _, err := engine.StartMatch(ctx, 1, []int{1}, []int{7}); err != nil {
		t.Fatalf("start match: %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, 0, q.ID, 1, nil); err == nil {
		t.Fatalf("expected store failure to propagate")
	}

	state, err := engine.MatchState()
	if err != nil {
		t.Fatalf("match state: %v", err)
	}
	if state.CurrentPlayer != 0 || state.Players[0].Score != 0 || state.Players[0].IncorrectCount != 0 {
		t.Fatalf("expected no mutation on store failure, got %+v", state)
	}
}

func TestEndMatchIsNotRepeatable(t *testing.T) {
	ctx := context.Background()
	engine, questions, leaderboard := newTestEngine(t)
	seedQuestion(t, questions, 1, 1, 0)

	if _, err := engine.StartMatch(ctx, 1, []int{1}, []int{7, 9}); err != nil {
		t.Fatalf("start match: %v", err)
	}
	if _, err := engine.EndMatch(ctx); err != nil {
		t.Fatalf("end match: %v", err)
	}
	if _, err := engine.EndMatch(ctx); !errors.Is(err, domain.ErrNoActiveMatch) {
		t.Fatalf("expected ErrNoActiveMatch on second end, got %v", err)
	}

	records, err := leaderboard.TopRecords(ctx, 0, 0)
	if err != nil {
		t.Fatalf("top records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected exactly 2 records after double end, got %d", len(records))
	}
}

func TestAddQuestionValidation(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t)

	_, err := engine.AddQuestion(ctx, domain.Question{Prompt: "p", Options: []string{"a", "b"}}, 5)
	if !errors.Is(err, domain.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for bad answer index, got %v", err)
	}
	_, err = engine.AddQuestion(ctx, domain.Question{Options: []string{"a"}}, 0)
	if !errors.Is(err, domain.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for empty prompt, got %v", err)
	}
}

func newTestEngine(t *testing.T) (*app.GameEngine, *memory.QuestionStore, *memory.LeaderboardStore) {
	t.Helper()
	questions := memory.NewQuestionStore(
		[]domain.AgeGroup{{ID: 1, Name: "6-8 years"}},
		[]domain.Category{{ID: 1, Name: "Animals"}},
	)
	leaderboard := memory.NewLeaderboardStore()
	engine := app.NewGameEngineWithHooks(questions, leaderboard, rand.New(rand.NewSource(1)), staticIDs())
	return engine, questions, leaderboard
}

func seedQuestion(t *testing.T, store *memory.QuestionStore, ageGroupID, categoryID, correctOption int) domain.Question {
	t.Helper()
	q, err := store.InsertQuestion(context.Background(), domain.Question{
		Prompt:     "Which animal is the tallest?",
		Options:    []string{"Elephant", "Giraffe", "Horse"},
		CategoryID: categoryID,
		AgeGroupID: ageGroupID,
	}, correctOption)
	if err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

func staticIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("match-%d", n)
	}
}

func countMarks(grid domain.BoardGrid) int {
	marks := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell {
				marks++
			}
		}
	}
	return marks
}

type failingAnswerStore struct {
	app.QuestionStore
}

func (s *failingAnswerStore) CorrectAnswer(context.Context, int) (int, error) {
	return 0, errors.New("store unavailable")
}
