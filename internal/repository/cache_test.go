package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/segyhp/repayment-engine/internal/config"
	"github.com/segyhp/repayment-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Uses REDIS_TEST_ADDR when set, e.g. localhost:6379, and an in-process miniredis otherwise
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return client
}

func TestRedisLoanCache(t *testing.T) {
	client := setupRedis(t)
	cache := NewRedisLoanCache(client, time.Minute)
	ctx := context.Background()

	summary := &domain.LoanSummary{
		LoanID:            uuid.New(),
		CurrencyCode:      "IDR",
		OutstandingAmount: 250000,
		Status:            domain.LoanStatusDue,
	}

	_, ok, err := cache.GetSummary(ctx, summary.LoanID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SetSummary(ctx, summary))

	ttl, err := client.TTL(ctx, summaryKey(summary.LoanID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	got, ok, err := cache.GetSummary(ctx, summary.LoanID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, summary, got)

	require.NoError(t, cache.Invalidate(ctx, summary.LoanID))

	_, ok, err = cache.GetSummary(ctx, summary.LoanID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLoanCache_CorruptEntry(t *testing.T) {
	client := setupRedis(t)
	cache := NewRedisLoanCache(client, time.Minute)
	ctx := context.Background()
	loanID := uuid.New()

	require.NoError(t, client.Set(ctx, summaryKey(loanID), "{not json", time.Minute).Err())
	t.Cleanup(func() { client.Del(ctx, summaryKey(loanID)) })

	_, ok, err := cache.GetSummary(ctx, loanID)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisLoanCache_NewerSummaryWins(t *testing.T) {
	client := setupRedis(t)
	cache := NewRedisLoanCache(client, time.Minute)
	ctx := context.Background()

	loanID := uuid.New()
	t.Cleanup(func() { client.Del(ctx, summaryKey(loanID)) })

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	stale := &domain.LoanSummary{LoanID: loanID, CurrencyCode: "VND", OutstandingAmount: 300, Status: domain.LoanStatusDue, UpdatedAt: at}
	fresh := &domain.LoanSummary{LoanID: loanID, CurrencyCode: "VND", OutstandingAmount: 0, Status: domain.LoanStatusRepaid, UpdatedAt: at.Add(time.Second)}

	// a repayment commits and caches its result before a slower read-through lands
	require.NoError(t, cache.SetSummary(ctx, fresh))
	require.NoError(t, cache.SetSummary(ctx, stale))

	got, ok, err := cache.GetSummary(ctx, loanID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fresh, got)

	newer := *fresh
	newer.UpdatedAt = at.Add(time.Minute)
	require.NoError(t, cache.SetSummary(ctx, &newer))

	got, _, err = cache.GetSummary(ctx, loanID)
	require.NoError(t, err)
	assert.Equal(t, newer.UpdatedAt, got.UpdatedAt)
}

func TestRedisLoanCache_ReplacesCorruptEntry(t *testing.T) {
	client := setupRedis(t)
	cache := NewRedisLoanCache(client, time.Minute)
	ctx := context.Background()
	loanID := uuid.New()

	require.NoError(t, client.Set(ctx, summaryKey(loanID), "{not json", time.Minute).Err())
	t.Cleanup(func() { client.Del(ctx, summaryKey(loanID)) })

	summary := &domain.LoanSummary{LoanID: loanID, CurrencyCode: "VND", OutstandingAmount: 10, Status: domain.LoanStatusDue}
	require.NoError(t, cache.SetSummary(ctx, summary))

	got, ok, err := cache.GetSummary(ctx, loanID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, summary, got)
}

func TestNewRedisClient(t *testing.T) {
	assert.Nil(t, NewRedisClient(&config.Config{}))

	client := NewRedisClient(&config.Config{Redis: config.RedisConfig{Host: "cache", Port: "6380", DB: 2}})
	require.NotNil(t, client)
	t.Cleanup(func() { client.Close() })
	assert.Equal(t, "cache:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)
}

func TestNewLoanCache(t *testing.T) {
	assert.IsType(t, noopLoanCache{}, NewLoanCache(nil, time.Minute))

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { client.Close() })
	assert.IsType(t, &redisLoanCache{}, NewLoanCache(client, time.Minute))
}

func TestSummaryKey(t *testing.T) {
	id := uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000001")
	assert.Equal(t, "loan:6f1c2a4e-0000-4000-8000-000000000001:summary", summaryKey(id))
}
