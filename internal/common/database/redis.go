// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"loandesk/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs the lead read-through cache.
type RedisClient struct {
	Client  *redis.Client
	leadTTL time.Duration
}

func NewRedis(cfg config.RedisConfig, clientName string) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	return &RedisClient{
		Client:  rdb,
		leadTTL: time.Duration(cfg.LeadTTL) * time.Second,
	}
}

// LeadTTL is how long a cached lead stays valid.
func (c *RedisClient) LeadTTL() time.Duration {
	return c.leadTTL
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s failed: %w", c.Client.Options().Addr, err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
