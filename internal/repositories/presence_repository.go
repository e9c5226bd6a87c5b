package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// PresenceCache keeps one TTL-keyed record per online user
type PresenceCache interface {
	Touch(ctx context.Context, userID string, online bool) error
	Online(ctx context.Context, userID string) (bool, error)
}

// RedisPresenceCache implements PresenceCache with keys that expire after models.PresenceTTL
type RedisPresenceCache struct {
	client *redis.Client
}

func NewRedisPresenceCache(client *redis.Client) *RedisPresenceCache {
	return &RedisPresenceCache{client: client}
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

// Touch refreshes the record on a heartbeat, or clears it when going offline
func (c *RedisPresenceCache) Touch(ctx context.Context, userID string, online bool) error {
	if !online {
		if err := c.client.Del(ctx, presenceKey(userID)).Err(); err != nil {
			return fmt.Errorf("clear presence: %w", err)
		}
		return nil
	}
	if err := c.client.Set(ctx, presenceKey(userID), "1", models.PresenceTTL).Err(); err != nil {
		return fmt.Errorf("set presence: %w", err)
	}
	return nil
}

func (c *RedisPresenceCache) Online(ctx context.Context, userID string) (bool, error) {
	err := c.client.Get(ctx, presenceKey(userID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get presence: %w", err)
	}
	return true, nil
}
