package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 5 * time.Second

// Config holds the connection settings for the plan cache store.
type Config struct {
	Addr     string
	Password string
	DB       int
	// PoolSize caps open connections; zero keeps the go-redis default.
	PoolSize int
	// PingTimeout bounds the startup connectivity check.
	PingTimeout time.Duration
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
	}
}

// Connect opens a client and fails unless the server answers a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	client := redis.NewClient(cfg.options())

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
