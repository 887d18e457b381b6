// Package events publishes store change events to Redis streams.
package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"storefront/commerce/internal/config"
	"storefront/commerce/internal/domain/event"
)

type Publisher interface {
	Publish(ctx context.Context, e event.Event) (string, error) // Returns message ID
}

type RedisPublisher struct {
	redisClient  *redis.Client
	streamPrefix string
	maxLen       int64
}

func NewRedisPublisher(redisClient *redis.Client, cfg config.EventsConfig) *RedisPublisher {
	return &RedisPublisher{
		redisClient:  redisClient,
		streamPrefix: cfg.StreamPrefix,
		maxLen:       cfg.MaxLen,
	}
}

// StreamName returns the stream an event type is written to.
func (p *RedisPublisher) StreamName(eventType string) string {
	return p.streamPrefix + eventType
}

func (p *RedisPublisher) Publish(ctx context.Context, e event.Event) (string, error) {
	eventType := e.EventType()
	streamName := p.StreamName(eventType)

	value, err := e.EventValue()
	if err != nil {
		return "", fmt.Errorf("failed to serialize event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"event_type": eventType,
			"event_data": string(value),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	messageID, err := p.redisClient.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add event to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Published %s to stream %s with message ID: %s", eventType, streamName, messageID)
	return messageID, nil
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, event.Event) (string, error) {
	return "", nil
}
