// Package redis provides the Redis client, the generic JSON cache used for
// read-through caching, and the case-statistics cache adapter.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
)

// Client wraps the go-redis client with config-driven construction.
type Client struct {
	rdb    *redis.Client
	logger logging.Logger
}

// NewClient connects and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeCache, "redis connection failed")
	}

	logger.Info("connected to redis", logging.String("addr", cfg.Addr))
	return &Client{rdb: rdb, logger: logger}, nil
}

// Raw returns the underlying go-redis client.
func (c *Client) Raw() *redis.Client {
	return c.rdb
}

// HealthCheck verifies the connection.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeCache, "redis health check failed")
	}
	return nil
}

// Close releases the client.
func (c *Client) Close() error {
	return c.rdb.Close()
}
