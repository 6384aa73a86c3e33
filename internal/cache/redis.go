package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/pkg/logger"
)

// Redis is a go-redis backed resolution cache. Cache errors degrade to
// misses; they never surface to the read path.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a redis resolution cache. ttl <= 0 uses DefaultTTL.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, accountID string) ([]domain.ListingSummary, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+accountID).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("resolution cache read failed", "account_id", accountID, "error", err)
		}
		return nil, false
	}
	var out []domain.ListingSummary
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("resolution cache entry corrupt, dropping", "account_id", accountID, "error", err)
		c.client.Del(ctx, keyPrefix+accountID)
		return nil, false
	}
	return out, true
}

func (c *Redis) Put(ctx context.Context, accountID string, listings []domain.ListingSummary) {
	raw, err := json.Marshal(listings)
	if err != nil {
		logger.Warn("resolution cache encode failed", "account_id", accountID, "error", err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+accountID, raw, c.ttl).Err(); err != nil {
		logger.Warn("resolution cache write failed", "account_id", accountID, "error", err)
	}
}

func (c *Redis) Invalidate(ctx context.Context, accountID string) {
	if err := c.client.Del(ctx, keyPrefix+accountID).Err(); err != nil {
		logger.Warn("resolution cache invalidate failed", "account_id", accountID, "error", err)
	}
}
