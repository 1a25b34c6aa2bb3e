package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/segyhp/repayment-engine/internal/config"
	"github.com/segyhp/repayment-engine/internal/domain"
)

// optimistic retries when another writer touches the key between WATCH and EXEC
const maxWatchRetries = 3

// NewRedisClient returns a client for the configured Redis, or nil when none is configured
func NewRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.RedisEnabled() {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// NewLoanCache picks the Redis cache when client is set and the noop cache otherwise
func NewLoanCache(client *redis.Client, ttl time.Duration) LoanCache {
	if client == nil {
		return NewNoopLoanCache()
	}
	return NewRedisLoanCache(client, ttl)
}

type redisLoanCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLoanCache caches loan summaries in Redis with the given TTL
func NewRedisLoanCache(client *redis.Client, ttl time.Duration) LoanCache {
	return &redisLoanCache{client: client, ttl: ttl}
}

func summaryKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:%s:summary", loanID)
}

func (c *redisLoanCache) GetSummary(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, bool, error) {
	return decodeSummary(c.client.Get(ctx, summaryKey(loanID)))
}

// SetSummary stores summary unless the cached entry is at least as recent
func (c *redisLoanCache) SetSummary(ctx context.Context, summary *domain.LoanSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	key := summaryKey(summary.LoanID)

	write := func(tx *redis.Tx) error {
		current, ok, err := decodeSummary(tx.Get(ctx, key))
		if err == nil && ok && !current.UpdatedAt.Before(summary.UpdatedAt) {
			return nil
		}
		// a corrupt entry is simply replaced

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err = c.client.Watch(ctx, write, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (c *redisLoanCache) Invalidate(ctx context.Context, loanID uuid.UUID) error {
	return c.client.Del(ctx, summaryKey(loanID)).Err()
}

func decodeSummary(cmd *redis.StringCmd) (*domain.LoanSummary, bool, error) {
	val, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary domain.LoanSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, false, fmt.Errorf("decode cached summary: %w", err)
	}

	return &summary, true, nil
}

type noopLoanCache struct{}

// NewNoopLoanCache is used when Redis is not configured
func NewNoopLoanCache() LoanCache {
	return noopLoanCache{}
}

func (noopLoanCache) GetSummary(context.Context, uuid.UUID) (*domain.LoanSummary, bool, error) {
	return nil, false, nil
}

func (noopLoanCache) SetSummary(context.Context, *domain.LoanSummary) error { return nil }

func (noopLoanCache) Invalidate(context.Context, uuid.UUID) error { return nil }
