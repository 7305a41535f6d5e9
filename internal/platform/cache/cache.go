// Package cache connects to the Dragonfly/Redis instance that holds the
// leaderboards.
package cache

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 3 * time.Second
	healthTimeout  = 2 * time.Second
)

// Cache wraps a Redis/Dragonfly client.
type Cache struct {
	Client *redis.Client
}

// Option tunes the client before it connects.
type Option func(*redis.Options)

// WithPoolSize caps open connections. Zero keeps the driver default.
func WithPoolSize(n int) Option {
	return func(o *redis.Options) {
		if n > 0 {
			o.PoolSize = n
		}
	}
}

// WithTimeout sets the read and write timeouts. Dialing gets the same
// budget plus a second for the handshake.
func WithTimeout(d time.Duration) Option {
	return func(o *redis.Options) {
		if d > 0 {
			o.ReadTimeout = d
			o.WriteTimeout = d
			o.DialTimeout = d + time.Second
		}
	}
}

// ParseURL validates a redis:// or rediss:// URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New connects and pings the server. The server flavour is logged once
// since Dragonfly and Redis report themselves differently.
func New(ctx context.Context, url string, opts ...Option) (*Cache, error) {
	ro, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	WithTimeout(defaultTimeout)(ro)
	for _, opt := range opts {
		opt(ro)
	}

	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache at %s: %w", ro.Addr, err)
	}

	c := &Cache{Client: client}
	if info, err := client.Info(ctx, "server").Result(); err == nil {
		name, version := serverVersion(info)
		slog.Info("cache connected", "addr", ro.Addr, "db", ro.DB, "server", name, "version", version)
	}
	return c, nil
}

// serverVersion picks the product and version out of INFO server output.
func serverVersion(info string) (name, version string) {
	name, version = "redis", "unknown"
	sc := bufio.NewScanner(strings.NewReader(info))
	for sc.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if !ok {
			continue
		}
		switch key {
		case "dragonfly_version":
			return "dragonfly", val
		case "redis_version":
			version = val
		}
	}
	return name, version
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck pings with its own short deadline so a stalled server cannot
// hold up readiness checks.
func (c *Cache) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache ping: %w", err)
	}
	return nil
}
