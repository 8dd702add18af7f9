package ledger

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	requestKeyPrefix = "txn:req:"
	requestKeyTTL    = 24 * time.Hour
)

// RedisGuard rejects duplicate transaction submissions using SETNX.
type RedisGuard struct {
	client *redis.Client
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

func (g *RedisGuard) Reserve(ctx context.Context, requestID string) (bool, error) {
	return g.client.SetNX(ctx, requestKeyPrefix+requestID, 1, requestKeyTTL).Result()
}
