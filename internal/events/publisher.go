// Package events broadcasts connection events over redis pub/sub so the
// surrounding platform (admin UI, audit consumers) can observe listing
// ownership changes without polling.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/pkg/logger"
)

// Channel is the pub/sub channel connection events are published on.
const Channel = "trader-link:connection-events"

// Publisher sends connection events to redis. Publishing is fire-and-forget
// with its own timeout; a broken broker never blocks or fails the mutation
// that triggered the event.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a redis-backed event publisher.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish serializes the event and sends it asynchronously.
func (p *Publisher) Publish(_ context.Context, evt domain.ConnectionEvent) {
	body, err := json.Marshal(evt)
	if err != nil {
		logger.Error("marshal connection event", "error", err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := p.client.Publish(ctx, Channel, body).Err(); err != nil {
			logger.Error("publish connection event", "listing_id", evt.ListingID, "error", err)
		}
	}()
}
