package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Seljaki2/bingo/internal/app"
)

// AnswerCache caches answer-key lookups with TTL to avoid hitting the
// backing store on every submission. The cache stays server-side; callers of
// the engine still never see an answer key. All other store methods pass
// through unchanged.
type AnswerCache struct {
	app.QuestionStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[int]cachedAnswer
}

type cachedAnswer struct {
	option    int
	expiresAt time.Time
}

func NewAnswerCache(store app.QuestionStore, ttl time.Duration) *AnswerCache {
	return &AnswerCache{
		QuestionStore: store,
		ttl:           ttl,
		clock:         time.Now,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:         make(map[int]cachedAnswer),
	}
}

func (c *AnswerCache) CorrectAnswer(ctx context.Context, questionID int) (int, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[questionID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.option, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(strconv.Itoa(questionID), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[questionID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.option, nil
		}
		c.mu.RUnlock()

		option, err := c.QuestionStore.CorrectAnswer(ctx, questionID)
		if err != nil {
			return 0, err
		}

		c.mu.Lock()
		c.cache[questionID] = cachedAnswer{
			option:    option,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return option, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

func (c *AnswerCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
