package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chirpfeed/chirp/pkg/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	limiterKeyPrefix = "ratelimit:"
	limiterHitPrefix = "ratelimit_rejected:"

	DefaultLimiterQuota  = 3
	DefaultLimiterWindow = time.Minute
)

// RedisClient backs the rate limiter. The counters live in redis so the
// quota holds across every running instance of this service.
var RedisClient *redis.Client

// limiterNow is swapped out in tests to step through the window.
var limiterNow = time.Now

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	if _, err := RedisClient.Ping(context.Background()).Result(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	return nil
}

func limiterRule() (int64, time.Duration) {
	quota := viper.GetInt64("limiter.quota")
	if quota <= 0 {
		quota = DefaultLimiterQuota
	}
	window := viper.GetDuration("limiter.window")
	if window <= 0 {
		window = DefaultLimiterWindow
	}
	return quota, window
}

// slidingWindowScript sheds everything older than the window, counts
// the rest and consumes one slot if the quota allows, all inside redis.
// Check and record must be one atomic step: two round trips would let
// concurrent attempts for the same key read the same pre-add count and
// all get admitted.
var slidingWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[2]) then
	return {0, 0}
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {1, tonumber(ARGV[2]) - count - 1}
`)

// TryAcquire checks and consumes one slot of the caller's sliding-window
// posting quota. Each accepted attempt is a member of a per-key sorted
// set scored by its timestamp.
func TryAcquire(ctx context.Context, key string) (models.RateLimitDecision, error) {
	quota, window := limiterRule()

	now := limiterNow()
	bucket := limiterKeyPrefix + key

	res, err := slidingWindowScript.Run(ctx, RedisClient, []string{bucket},
		strconv.FormatInt(now.Add(-window).UnixNano(), 10),
		quota,
		strconv.FormatInt(now.UnixNano(), 10),
		uuid.NewString(),
		window.Milliseconds(),
	).Result()
	if err != nil {
		return models.RateLimitDecision{}, fmt.Errorf("unable to check limiter window: %w", err)
	}

	reply, ok := res.([]interface{})
	if !ok || len(reply) != 2 {
		return models.RateLimitDecision{}, fmt.Errorf("unexpected limiter script reply: %v", res)
	}

	allowed, _ := reply[0].(int64)
	remaining, _ := reply[1].(int64)

	if allowed == 0 {
		pipe := RedisClient.Pipeline()
		pipe.Incr(ctx, limiterHitPrefix+key)
		pipe.Expire(ctx, limiterHitPrefix+key, 2*time.Hour)
		pipe.Exec(ctx)
		return models.RateLimitDecision{Allowed: false, Key: key, Remaining: 0}, nil
	}

	return models.RateLimitDecision{Allowed: true, Key: key, Remaining: remaining}, nil
}

// DoLimiterReport logs how many posting attempts each author had
// rejected since the last report, then clears the counters. Scheduled
// hourly from main.
func DoLimiterReport() {
	ctx := context.Background()

	var cursor uint64
	for {
		keys, next, err := RedisClient.Scan(ctx, cursor, limiterHitPrefix+"*", 100).Result()
		if err != nil {
			log.Warn().Err(err).Msg("An error occurred when scanning limiter counters...")
			return
		}

		for _, key := range keys {
			hits, err := RedisClient.GetDel(ctx, key).Int64()
			if err != nil {
				continue
			}
			log.Info().
				Str("author", key[len(limiterHitPrefix):]).
				Int64("rejected", hits).
				Msg("Rate limiter activity report.")
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
}
