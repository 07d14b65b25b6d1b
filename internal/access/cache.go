package access

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-checkin/internal/models"
)

const tokenKeyPrefix = "badge_token:"

// RedisTokenCache caches participant-by-token lookups so a busy scanner
// doesn't hit Postgres for every re-scan of the same badge.
type RedisTokenCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisTokenCache(client *redis.Client, ttl time.Duration) *RedisTokenCache {
	return &RedisTokenCache{Client: client, TTL: ttl}
}

// GetParticipant returns the cached participant, or (nil, nil) on a miss.
func (c *RedisTokenCache) GetParticipant(ctx context.Context, token string) (*models.Participant, error) {
	payload, err := c.Client.Get(ctx, tokenKeyPrefix+token).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var participant models.Participant
	if err := json.Unmarshal([]byte(payload), &participant); err != nil {
		return nil, err
	}
	return &participant, nil
}

func (c *RedisTokenCache) SetParticipant(ctx context.Context, token string, participant *models.Participant) error {
	payload, err := json.Marshal(participant)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, tokenKeyPrefix+token, payload, c.TTL).Err()
}

// Invalidate drops a cached token, used after a participant edit.
func (c *RedisTokenCache) Invalidate(ctx context.Context, token string) error {
	return c.Client.Del(ctx, tokenKeyPrefix+token).Err()
}
