// Package publisher announces assembled box scores on Redis streams.
package publisher

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/courtside/internal/store"
)

// StreamPrefix is followed by the league key.
const StreamPrefix = "games.boxscore."

// RedisPublisher publishes box scores to Redis streams
type RedisPublisher struct {
	client *redis.Client
	maxLen int64
	source string
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(redisURL string, maxLen int64) (*RedisPublisher, error) {
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

	return NewRedisPublisherFromClient(client, maxLen), nil
}

// NewRedisPublisherFromClient creates a publisher from an existing client.
// maxLen trims each stream approximately; 0 disables trimming.
func NewRedisPublisherFromClient(client *redis.Client, maxLen int64) *RedisPublisher {
	return &RedisPublisher{client: client, maxLen: maxLen}
}

// WithSource tags every published entry with the publishing instance, so a
// consumer in the same process can skip its own entries.
func (rp *RedisPublisher) WithSource(source string) *RedisPublisher {
	rp.source = source
	return rp
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// StreamName is the stream a league's box scores go to.
func StreamName(league string) string {
	return StreamPrefix + league
}

// BoxscoreEvent is the field set of one stream entry.
func BoxscoreEvent(game *store.GameBoxscore, now time.Time) (map[string]interface{}, error) {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(game)
	if err != nil {
		return nil, fmt.Errorf("encoding boxscore %s: %w", game.GameID, err)
	}
	home, away := game.Score()
	return map[string]interface{}{
		"game_id":    game.GameID,
		"league":     game.League,
		"home_score": home,
		"away_score": away,
		"data":       string(data),
		"timestamp":  now.Unix(),
	}, nil
}

// PublishBoxscore appends a box score to its league stream.
func (rp *RedisPublisher) PublishBoxscore(ctx context.Context, game *store.GameBoxscore) error {
	values, err := BoxscoreEvent(game, time.Now())
	if err != nil {
		return err
	}
	if rp.source != "" {
		values["source"] = rp.source
	}

	args := &redis.XAddArgs{
		Stream: StreamName(game.League),
		Values: values,
	}
	if rp.maxLen > 0 {
		args.MaxLen = rp.maxLen
		args.Approx = true
	}
	if err := rp.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", args.Stream, err)
	}
	return nil
}
