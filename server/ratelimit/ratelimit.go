// Package ratelimit caps how often a caller may hit an endpoint, using fixed
// one minute windows counted in redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/Daskott/zantag/shared"
	"github.com/redis/go-redis/v9"
)

const (
	KEY_PREFIX = "zantag:ratelimit"
	WINDOW     = time.Minute

	LeadSubmissions = "leads"
	LoginAttempts   = "login"
)

type Limiter struct {
	client *redis.Client
	limits map[string]int
	now    func() time.Time
}

// NewClient connects to url, returning nil when no url is set.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// NewLimiter returns a limiter over client. A nil client allows everything.
func NewLimiter(client *redis.Client, config shared.RedisConfig) *Limiter {
	return &Limiter{
		client: client,
		limits: map[string]int{
			LeadSubmissions: config.LeadSubmissionsPerMinute,
			LoginAttempts:   config.LoginAttemptsPerMinute,
		},
		now: time.Now,
	}
}

// Allow counts one hit for id in bucket & reports whether it is within the
// bucket's per minute limit. When redis fails the hit is allowed & the error
// returned for logging.
func (l *Limiter) Allow(ctx context.Context, bucket, id string) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}

	limit := l.limits[bucket]
	if limit <= 0 {
		return true, nil
	}

	key := l.key(bucket, id)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, WINDOW)
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("ratelimit %v: %w", bucket, err)
	}

	return incr.Val() <= int64(limit), nil
}

func (l *Limiter) key(bucket, id string) string {
	return fmt.Sprintf("%v:%v:%v:%v", KEY_PREFIX, bucket, id, l.now().Unix()/int64(WINDOW.Seconds()))
}
