package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/Seljaki2/bingo/internal/app"
)

// AnswerCache caches answer keys in Redis and falls back to the wrapped
// store on cache miss. Keys are stored as: SET question:answer:{questionID}
// {optionIndex} with a jittered TTL. The cache never leaves the server, so
// clients still have no path to the answer keys.
type AnswerCache struct {
	app.QuestionStore
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewAnswerCache(client *redis.Client, store app.QuestionStore, ttl time.Duration) *AnswerCache {
	return &AnswerCache{
		QuestionStore: store,
		client:        client,
		ttl:           ttl,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerCache) CorrectAnswer(ctx context.Context, questionID int) (int, error) {
	key := c.key(questionID)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		if option, convErr := strconv.Atoi(cached); convErr == nil {
			return option, nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, err := c.client.Get(ctx, key).Result(); err == nil {
			if option, convErr := strconv.Atoi(cached); convErr == nil {
				return option, nil
			}
		}

		option, err := c.QuestionStore.CorrectAnswer(ctx, questionID)
		if err != nil {
			return 0, err
		}

		// best-effort cache fill
		_ = c.client.Set(ctx, key, strconv.Itoa(option), c.ttlWithJitter()).Err()
		return option, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

func (c *AnswerCache) key(questionID int) string {
	return "question:answer:" + strconv.Itoa(questionID)
}

func (c *AnswerCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
