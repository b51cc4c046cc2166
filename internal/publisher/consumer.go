package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/store"
)

const (
	readCount    = 100
	readBlock    = time.Second
	retryBackoff = time.Second
)

// Consumer reads box score streams through a consumer group and hands each
// decoded game to a callback.
type Consumer struct {
	client   *redis.Client
	group    string
	consumer string
	streams  []string
	skip     string
	handle   func(*store.GameBoxscore)
	log      *logrus.Entry
}

// NewConsumer subscribes to the streams of the given leagues.
func NewConsumer(client *redis.Client, group, consumer string, leagues []string, handle func(*store.GameBoxscore), logger *logrus.Logger) *Consumer {
	streams := make([]string, 0, len(leagues))
	for _, l := range leagues {
		streams = append(streams, StreamName(l))
	}
	return &Consumer{
		client:   client,
		group:    group,
		consumer: consumer,
		streams:  streams,
		handle:   handle,
		log:      logging.Component(logger, "stream-consumer"),
	}
}

// SkipSource drops entries published with the given source tag.
func (c *Consumer) SkipSource(source string) *Consumer {
	c.skip = source
	return c
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for _, stream := range c.streams {
		err := c.client.XGroupCreateMkStream(ctx, stream, c.group, "$").Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("create group on %s: %w", stream, err)
		}
	}

	args := make([]string, 0, 2*len(c.streams))
	args = append(args, c.streams...)
	for range c.streams {
		args = append(args, ">")
	}

	c.log.WithField("streams", c.streams).Info("consuming")
	for {
		if ctx.Err() != nil {
			return nil
		}

		res, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  args,
			Count:    readCount,
			Block:    readBlock,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.WithError(err).Warn("stream read failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryBackoff):
			}
			continue
		}

		for _, s := range res {
			for _, msg := range s.Messages {
				c.process(ctx, s.Stream, msg)
			}
		}
	}
}

func (c *Consumer) process(ctx context.Context, stream string, msg redis.XMessage) {
	game, err := DecodeEvent(msg.Values)
	switch {
	case c.skip != "" && msg.Values["source"] == c.skip:
		// Already delivered in-process.
	case err != nil:
		c.log.WithError(err).WithFields(logrus.Fields{"stream": stream, "id": msg.ID}).Warn("skipping malformed entry")
	default:
		c.handle(game)
	}

	if err := c.client.XAck(ctx, stream, c.group, msg.ID).Err(); err != nil {
		c.log.WithError(err).WithField("id", msg.ID).Warn("ack failed")
	}
}

// DecodeEvent reverses BoxscoreEvent.
func DecodeEvent(values map[string]interface{}) (*store.GameBoxscore, error) {
	data, ok := values["data"].(string)
	if !ok || data == "" {
		return nil, errors.New("entry has no data field")
	}
	var game store.GameBoxscore
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(data, &game); err != nil {
		return nil, fmt.Errorf("decoding boxscore: %w", err)
	}
	return &game, nil
}
