// Package database holds the shared Redis connection behind the
// distributed provider rate limiter.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pagegen-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

const defaultPoolSize = 10

type RedisClient struct {
	client *redis.Client
	addr   string
}

func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is empty")
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 2,
	})
	return &RedisClient{client: rdb, addr: cfg.Address}, nil
}

// Connect creates the client and checks it answers PING.
func Connect(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	c, err := NewRedis(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.addr, err)
	}
	return nil
}

// Scripter exposes the script commands the sliding window limiter runs.
func (c *RedisClient) Scripter() redis.Scripter {
	return c.client
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}
