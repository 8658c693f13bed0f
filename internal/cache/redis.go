package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisCache кэш проекций в Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache создаёт кэш поверх готового клиента
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Generation(ctx context.Context, mentorID int64) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(mentorID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get projection generation: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) Get(ctx context.Context, mentorID, generation int64, key string) ([]model.ConcreteSlot, bool, error) {
	data, err := c.client.Get(ctx, entryKey(mentorID, generation, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get projection: %w", err)
	}

	var slots []model.ConcreteSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, false, fmt.Errorf("decode projection: %w", err)
	}
	return slots, true, nil
}

func (c *RedisCache) Set(ctx context.Context, mentorID, generation int64, key string, slots []model.ConcreteSlot) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode projection: %w", err)
	}

	if err := c.client.Set(ctx, entryKey(mentorID, generation, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set projection: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateMentor(ctx context.Context, mentorID int64) error {
	if err := c.client.Incr(ctx, generationKey(mentorID)).Err(); err != nil {
		return fmt.Errorf("bump projection generation: %w", err)
	}
	return nil
}
