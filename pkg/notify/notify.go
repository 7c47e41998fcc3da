// Package notify pushes fire-and-forget change notifications so connected
// dashboards can refresh a collection. Delivery is best effort: a failed
// publish is logged and never fails the request that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vendaops/vendaops-backend/pkg/logger"
	"github.com/vendaops/vendaops-backend/pkg/redis"
)

// Collections that emit change broadcasts.
const (
	CollectionOrders    = "orders"
	CollectionProducts  = "products"
	CollectionInventory = "inventory"
)

// Event is the payload published on a collection's broadcast channel.
type Event struct {
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	EntityID   string    `json:"entity_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Broadcaster fans out change events to interested listeners.
type Broadcaster interface {
	Broadcast(ctx context.Context, collection, action, entityID string)
}

// RedisBroadcaster publishes events over Redis pub/sub.
type RedisBroadcaster struct {
	client *redis.Client
	logger *logger.Logger
}

// NewRedisBroadcaster wires a broadcaster over an established Redis client.
func NewRedisBroadcaster(client *redis.Client, logg *logger.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, logger: logg}
}

// Broadcast publishes the event. Errors are swallowed after logging so the
// originating write path never observes them.
func (b *RedisBroadcaster) Broadcast(ctx context.Context, collection, action, entityID string) {
	event := Event{
		Collection: collection,
		Action:     action,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error(b.logger.WithField(ctx, "collection", collection), "marshal broadcast event", err)
		return
	}
	channel := b.client.BroadcastChannel(collection)
	if err := b.client.Publish(ctx, channel, payload); err != nil {
		b.logger.Error(b.logger.WithField(ctx, "channel", channel), "publish broadcast event", err)
	}
}

// NoopBroadcaster drops every event. Used when Redis is not configured and in
// tests.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Broadcast(context.Context, string, string, string) {}
