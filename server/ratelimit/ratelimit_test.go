package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/Daskott/zantag/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithoutRedis(t *testing.T) {
	limiter := NewLimiter(nil, shared.RedisConfig{LeadSubmissionsPerMinute: 1})

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(context.Background(), LeadSubmissions, "127.0.0.1")
		require.Nil(t, err)
		assert.True(t, allowed)
	}

	var nilLimiter *Limiter
	allowed, err := nilLimiter.Allow(context.Background(), LoginAttempts, "x")
	assert.Nil(t, err)
	assert.True(t, allowed)
}

func TestAllowFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	limiter := NewLimiter(client, shared.RedisConfig{LoginAttemptsPerMinute: 3})

	allowed, err := limiter.Allow(context.Background(), LoginAttempts, "jane@acme.io")
	assert.NotNil(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(context.Background(), LeadSubmissions, "127.0.0.1")
	assert.Nil(t, err, "buckets without a limit never reach redis")
	assert.True(t, allowed)
}

func TestKey(t *testing.T) {
	limiter := NewLimiter(nil, shared.RedisConfig{})
	limiter.now = func() time.Time { return time.Unix(600, 0) }

	assert.Equal(t, "zantag:ratelimit:login:jane@acme.io:10", limiter.key(LoginAttempts, "jane@acme.io"))
}

func TestNewClientWithoutURL(t *testing.T) {
	client, err := NewClient(context.Background(), "")
	assert.Nil(t, err)
	assert.Nil(t, client)

	_, err = NewClient(context.Background(), "not a url")
	assert.NotNil(t, err)
}
