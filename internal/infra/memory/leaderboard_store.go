package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Seljaki2/bingo/internal/domain"
)

// LeaderboardStore is an in-memory, append-only implementation of
// app.LeaderboardStore.
type LeaderboardStore struct {
	mu      sync.RWMutex
	clock   func() time.Time
	records []domain.LeaderboardRecord
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{clock: time.Now}
}

func (s *LeaderboardStore) InsertRecord(_ context.Context, record domain.LeaderboardRecord) (domain.LeaderboardRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.CreatedAt = s.clock()
	s.records = append(s.records, record)
	return record, nil
}

// TopRecords returns standings for an age group ordered by score descending,
// earlier results first on ties. ageGroupID 0 means all age groups.
func (s *LeaderboardStore) TopRecords(_ context.Context, ageGroupID, limit int) ([]domain.LeaderboardRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LeaderboardRecord, 0, len(s.records))
	for _, record := range s.records {
		if ageGroupID != 0 && record.AgeGroupID != ageGroupID {
			continue
		}
		out = append(out, record)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
