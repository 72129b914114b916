package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisReplyCache хранит ответы в Redis с точным TTL на запись.
// Срок жизни обеспечивает сам Redis, отдельная уборка не нужна.
type RedisReplyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReplyCache(client *redis.Client, ttl time.Duration) (*RedisReplyCache, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisReplyCache{client: client, ttl: ttl}, nil
}

func (c *RedisReplyCache) key(addr string, requestID uint32) string {
	return fmt.Sprintf("facility_booking:dedup:%s:%d", addr, requestID)
}

func (c *RedisReplyCache) Lookup(ctx context.Context, addr string, requestID uint32) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.key(addr, requestID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("dedup lookup: %w", err)
	}
	return val, true, nil
}

func (c *RedisReplyCache) Record(ctx context.Context, addr string, requestID uint32, reply []byte) error {
	if err := c.client.Set(ctx, c.key(addr, requestID), reply, c.ttl).Err(); err != nil {
		return fmt.Errorf("dedup record: %w", err)
	}
	return nil
}
