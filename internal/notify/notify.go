package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event describes one accepted workflow transition for downstream consumers
// (dashboards, inbox services). Delivery is best effort; the workflow engine
// never blocks or rolls back on a failed publish.
type Event struct {
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Nop discards every event. Used in tests and when redis is not configured.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

const eventsChannel = "governance.events"

// RedisPublisher publishes transition events to a redis pub/sub channel.
type RedisPublisher struct {
	rdb   *redis.Client
	clock func() time.Time
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, clock: time.Now}
}

func (p *RedisPublisher) Notify(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = p.clock().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	return nil
}
