// Package cache provides Valkey (Redis-compatible) client initialization
// and the rendered-page cache used by the public site.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"corpsite/internal/config"
)

// ConnectValkey creates a Valkey client and verifies the connection with a ping.
func ConnectValkey(cfg config.ValkeyConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}
