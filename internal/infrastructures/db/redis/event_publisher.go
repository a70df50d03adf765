package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/voyago/tripmatch/internal/domain/ports"
)

const defaultChannel = "tripmatch:completed"

// EventPublisher announces terminal matching transitions on a Redis channel so
// presentation clients can refresh without polling the store.
type EventPublisher struct {
	redis   *redis.Client
	channel string
}

func NewEventPublisher(redisClient *redis.Client, channel string) *EventPublisher {
	if strings.TrimSpace(channel) == "" {
		channel = defaultChannel
	}
	return &EventPublisher{redis: redisClient, channel: channel}
}

func (p *EventPublisher) PublishMatchCompleted(ctx context.Context, event ports.MatchEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal match event: %w", err)
	}

	if err := p.redis.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish match event: %w", err)
	}

	return nil
}
