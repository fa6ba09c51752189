package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	e "notesauth/internal/core/domain/errors"
	"notesauth/internal/core/domain/logging"
	ratelimiter "notesauth/internal/core/domain/rate_limiter"
	"time"

	"github.com/go-redis/redis/v9"
)

// Redis counts calls per key in fixed windows. A Redis failure lets the call through.
type Redis struct {
	redisClient *redis.Client
	log         logging.Logger
	now         func() time.Time
}

func NewRedis(redisClient *redis.Client, log logging.Logger, now func() time.Time) *Redis {
	if redisClient == nil {
		panic(e.NewNilArgumentError("redisClient"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &Redis{redisClient: redisClient, log: log, now: now}
}

func (r *Redis) CheckLimit(ctx context.Context, key string, limit ratelimiter.Limit) ratelimiter.Result {
	k, d := windowKey(key, limit.Interval, r.now())

	cmds, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, d)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return ratelimiter.NotAllowed()
	}
	if err != nil {
		r.log.Error(ctx, "Could not check rate limit due to Redis client error.", logging.Entry("err", err))
		return ratelimiter.Allowed()
	}
	intCmd := cmds[0].(*redis.IntCmd)
	if intCmd.Val() > int64(limit.Value) {
		return ratelimiter.NotAllowed()
	}
	return ratelimiter.Allowed()
}

func windowKey(key string, interval ratelimiter.Interval, now time.Time) (string, time.Duration) {
	switch interval {
	case ratelimiter.Hour:
		return fmt.Sprintf("%s::h%d", key, now.Unix()/int64(time.Hour.Seconds())), time.Hour
	case ratelimiter.Minute:
		return fmt.Sprintf("%s::m%d", key, now.Unix()/int64(time.Minute.Seconds())), time.Minute
	default:
		panic("invalid rate limiting interval")
	}
}

// AllowAlways is used when no Redis is configured.
type AllowAlways struct{}

func NewAllowAlways() *AllowAlways {
	return &AllowAlways{}
}

func (a *AllowAlways) CheckLimit(ctx context.Context, key string, limit ratelimiter.Limit) ratelimiter.Result {
	return ratelimiter.Allowed()
}
