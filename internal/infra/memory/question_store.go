package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Seljaki2/bingo/internal/domain"
)

// QuestionStore is a map-backed question bank (useful for tests/demos).
// Answer keys live in a separate map so the question values handed out never
// carry them.
type QuestionStore struct {
	mu         sync.RWMutex
	questions  map[int]domain.Question
	answers    map[int]int
	ageGroups  []domain.AgeGroup
	categories []domain.Category
	nextID     int
}

func NewQuestionStore(ageGroups []domain.AgeGroup, categories []domain.Category) *QuestionStore {
	return &QuestionStore{
		questions:  make(map[int]domain.Question),
		answers:    make(map[int]int),
		ageGroups:  ageGroups,
		categories: categories,
		nextID:     1,
	}
}

func (s *QuestionStore) LoadQuestions(_ context.Context, ageGroupID int, categoryIDs []int) ([]domain.Question, error) {
	wanted := make(map[int]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Question
	for _, q := range s.questions {
		if q.AgeGroupID != ageGroupID {
			continue
		}
		if _, ok := wanted[q.CategoryID]; !ok {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *QuestionStore) CorrectAnswer(_ context.Context, questionID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[questionID]
	if !ok {
		return 0, domain.ErrUnknownQuestion
	}
	return answer, nil
}

func (s *QuestionStore) InsertQuestion(_ context.Context, q domain.Question, correctOption int) (domain.Question, error) {
	if correctOption < 0 || correctOption >= len(q.Options) {
		return domain.Question{}, domain.ErrInvalidParameters
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == 0 {
		q.ID = s.nextID
		s.nextID++
	} else if q.ID >= s.nextID {
		s.nextID = q.ID + 1
	}
	s.questions[q.ID] = q
	s.answers[q.ID] = correctOption
	return q, nil
}

func (s *QuestionStore) ListAgeGroups(_ context.Context) ([]domain.AgeGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AgeGroup(nil), s.ageGroups...), nil
}

func (s *QuestionStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...), nil
}
