package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Seljaki2/bingo/internal/domain"
)

// Store implements the question and leaderboard stores on Postgres. Question
// options live as JSONB; the correct-option column is only ever read by
// CorrectAnswer and never joined into the question rows handed to matches.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) LoadQuestions(ctx context.Context, ageGroupID int, categoryIDs []int) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, prompt, options, COALESCE(image_url, ''), category_id, age_group_id
		 FROM questions
		 WHERE age_group_id=$1 AND category_id = ANY($2)
		 ORDER BY id`,
		ageGroupID, int32Slice(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.Prompt, &raw, &q.ImageURL, &q.CategoryID, &q.AgeGroupID); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) CorrectAnswer(ctx context.Context, questionID int) (int, error) {
	var option int
	err := s.pool.QueryRow(ctx, `SELECT correct_option FROM questions WHERE id=$1`, questionID).Scan(&option)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrUnknownQuestion
	}
	if err != nil {
		return 0, fmt.Errorf("load answer: %w", err)
	}
	return option, nil
}

func (s *Store) InsertQuestion(ctx context.Context, q domain.Question, correctOption int) (domain.Question, error) {
	raw, err := json.Marshal(q.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal options: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO questions (prompt, options, image_url, correct_option, category_id, age_group_id)
		 VALUES ($1, $2::jsonb, NULLIF($3, ''), $4, $5, $6)
		 RETURNING id`,
		q.Prompt, string(raw), q.ImageURL, correctOption, q.CategoryID, q.AgeGroupID).Scan(&q.ID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *Store) ListAgeGroups(ctx context.Context) ([]domain.AgeGroup, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM age_groups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list age groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.AgeGroup
	for rows.Next() {
		var g domain.AgeGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan age group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) InsertRecord(ctx context.Context, record domain.LeaderboardRecord) (domain.LeaderboardRecord, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO leaderboard (match_id, user_id, age_group_id, category_id, score, correct_count, incorrect_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		record.MatchID, record.UserID, record.AgeGroupID, record.CategoryID,
		record.Score, record.CorrectCount, record.IncorrectCount).Scan(&record.CreatedAt)
	if err != nil {
		return domain.LeaderboardRecord{}, fmt.Errorf("insert leaderboard record: %w", err)
	}
	return record, nil
}

func (s *Store) TopRecords(ctx context.Context, ageGroupID, limit int) ([]domain.LeaderboardRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT match_id, user_id, age_group_id, category_id, score, correct_count, incorrect_count, created_at
		 FROM leaderboard
		 WHERE $1 = 0 OR age_group_id = $1
		 ORDER BY score DESC, created_at ASC
		 LIMIT $2`,
		ageGroupID, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	defer rows.Close()

	var records []domain.LeaderboardRecord
	for rows.Next() {
		var r domain.LeaderboardRecord
		if err := rows.Scan(&r.MatchID, &r.UserID, &r.AgeGroupID, &r.CategoryID,
			&r.Score, &r.CorrectCount, &r.IncorrectCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func int32Slice(ids []int) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}
