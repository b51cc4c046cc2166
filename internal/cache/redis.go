// Package cache keeps assembled box scores in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/courtside/internal/store"
)

// ErrCacheMiss is returned when a game is not cached.
var ErrCacheMiss = errors.New("cache miss")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisCache handles box score caching
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRedisCacheFromClient(client, ttl), nil
}

// NewRedisCacheFromClient wraps an existing client. A ttl of 0 keeps entries
// until they are overwritten.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// BoxscoreKey is the cache key of one game.
func BoxscoreKey(league, gameID string) string {
	return fmt.Sprintf("boxscore:%s:%s", league, gameID)
}

// SetBoxscore caches an assembled game.
func (rc *RedisCache) SetBoxscore(ctx context.Context, game *store.GameBoxscore) error {
	data, err := EncodeBoxscore(game)
	if err != nil {
		return err
	}
	return rc.client.Set(ctx, BoxscoreKey(game.League, game.GameID), data, rc.ttl).Err()
}

// GetBoxscore returns a cached game or ErrCacheMiss.
func (rc *RedisCache) GetBoxscore(ctx context.Context, league, gameID string) (*store.GameBoxscore, error) {
	data, err := rc.client.Get(ctx, BoxscoreKey(league, gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return DecodeBoxscore(data)
}

// DeleteBoxscore evicts a game.
func (rc *RedisCache) DeleteBoxscore(ctx context.Context, league, gameID string) error {
	return rc.client.Del(ctx, BoxscoreKey(league, gameID)).Err()
}

// EncodeBoxscore serializes a game for the cache.
func EncodeBoxscore(game *store.GameBoxscore) ([]byte, error) {
	if game == nil {
		return nil, errors.New("nil boxscore")
	}
	data, err := json.Marshal(game)
	if err != nil {
		return nil, fmt.Errorf("encoding boxscore %s: %w", game.GameID, err)
	}
	return data, nil
}

// DecodeBoxscore is the inverse of EncodeBoxscore.
func DecodeBoxscore(data []byte) (*store.GameBoxscore, error) {
	var game store.GameBoxscore
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("decoding cached boxscore: %w", err)
	}
	return &game, nil
}
