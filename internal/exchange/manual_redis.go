package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"inscripciones/pkg/sentinel"
)

const manualRateKeyPrefix = "tasa:manual:"

// RedisManualStore is the production implementation of ManualStore. TTL-bound
// keys make the override die with the session without a cleanup job.
type RedisManualStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisManualStore(client *redis.Client, ttl time.Duration) *RedisManualStore {
	return &RedisManualStore{client: client, ttl: ttl}
}

func (s *RedisManualStore) Get(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	raw, err := s.client.Get(ctx, manualRateKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, sentinel.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get manual rate: %w", err)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored manual rate %q: %w", raw, err)
	}
	return value, nil
}

func (s *RedisManualStore) Set(ctx context.Context, sessionID string, value decimal.Decimal) error {
	if err := s.client.Set(ctx, manualRateKeyPrefix+sessionID, value.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("set manual rate: %w", err)
	}
	return nil
}

func (s *RedisManualStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, manualRateKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("clear manual rate: %w", err)
	}
	return nil
}
