// Package cache stores classification results keyed by the normalized text
// they were computed from.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/dasmlab/myanlang/pkg/langid"
)

const keyPrefix = "myanlang:classify:"

var lookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "myanlang_cache_lookups_total",
		Help: "Total number of classification cache lookups by result",
	},
	[]string{"result"},
)

// Cache stores classification results.
type Cache interface {
	Get(ctx context.Context, text string) (langid.Result, bool, error)
	Set(ctx context.Context, text string, res langid.Result, ttl time.Duration) error
}

// Key returns the storage key for text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Nop never stores anything.
type Nop struct{}

// Get implements Cache.
func (Nop) Get(context.Context, string) (langid.Result, bool, error) {
	return langid.Result{}, false, nil
}

// Set implements Cache.
func (Nop) Set(context.Context, string, langid.Result, time.Duration) error { return nil }

// Redis stores results as JSON strings in Redis.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// Dial connects to a Redis server and verifies it responds to PING.
func Dial(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedis(client), nil
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, text string) (langid.Result, bool, error) {
	data, err := r.client.Get(ctx, Key(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		lookupsTotal.WithLabelValues("miss").Inc()
		return langid.Result{}, false, nil
	}
	if err != nil {
		lookupsTotal.WithLabelValues("error").Inc()
		return langid.Result{}, false, fmt.Errorf("redis get: %w", err)
	}

	var res langid.Result
	if err := json.Unmarshal(data, &res); err != nil {
		lookupsTotal.WithLabelValues("error").Inc()
		return langid.Result{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	lookupsTotal.WithLabelValues("hit").Inc()
	return res, true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, text string, res langid.Result, ttl time.Duration) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := r.client.Set(ctx, Key(text), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
