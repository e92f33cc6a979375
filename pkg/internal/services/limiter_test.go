package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	viper.Set("limiter.quota", 3)
	viper.Set("limiter.window", time.Minute)

	limiterNow = time.Now
	t.Cleanup(func() { limiterNow = time.Now })

	return mr
}

func TestTryAcquireQuota(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := TryAcquire(ctx, "author-1")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, int64(3-i-1), decision.Remaining)
	}

	decision, err := TryAcquire(ctx, "author-1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Zero(t, decision.Remaining)
}

func TestTryAcquireConcurrent(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	// Simultaneous attempts for one key must not be admitted past the
	// quota; the check and the slot consumption happen as one redis
	// script, so racing callers cannot all see the pre-add count.
	var wg sync.WaitGroup
	var allowed atomic.Int64
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := TryAcquire(ctx, "author-1")
			if assert.NoError(t, err) && decision.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3), allowed.Load())
}

func TestTryAcquireKeysAreIndependent(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := TryAcquire(ctx, "author-1")
		require.NoError(t, err)
	}

	decision, err := TryAcquire(ctx, "author-2")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestTryAcquireWindowSlides(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	now := time.Now()
	limiterNow = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := TryAcquire(ctx, "author-1")
		require.NoError(t, err)
	}

	decision, err := TryAcquire(ctx, "author-1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	// Once the window has elapsed the old hits fall out of the count.
	limiterNow = func() time.Time { return now.Add(time.Minute + time.Second) }

	decision, err = TryAcquire(ctx, "author-1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestTryAcquireRecordsRejections(t *testing.T) {
	mr := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := TryAcquire(ctx, "author-1")
		require.NoError(t, err)
	}

	hits, err := RedisClient.Get(ctx, limiterHitPrefix+"author-1").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(2), hits)

	// The counter expires on its own even if the report job never runs.
	assert.Greater(t, mr.TTL(limiterHitPrefix+"author-1"), time.Duration(0))

	DoLimiterReport()

	err = RedisClient.Get(ctx, limiterHitPrefix+"author-1").Err()
	assert.ErrorIs(t, err, redis.Nil)
}
