package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection options. Zero values fall back to defaults.
type Config struct {
	// URL, when set, is parsed with redis.ParseURL and takes precedence over Addr.
	URL             string
	Addr            string
	Username        string
	Password        string
	DB              int
	UseTLS          bool
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	MaxRetries      int
	MaxRetryBackoff time.Duration
	MinRetryBackoff time.Duration
}

// New returns a configured redis.Client and verifies connectivity with PING.
// Call the returned closer during shutdown.
func New(ctx context.Context, cfg Config) (*redis.Client, func(), error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}

	opts.DialTimeout = defaultDuration(cfg.DialTimeout, 3*time.Second)
	opts.ReadTimeout = defaultDuration(cfg.ReadTimeout, 2*time.Second)
	opts.WriteTimeout = defaultDuration(cfg.WriteTimeout, 2*time.Second)
	opts.PoolSize = defaultInt(cfg.PoolSize, 10)
	opts.MinIdleConns = defaultInt(cfg.MinIdleConns, 2)
	opts.MaxRetries = defaultInt(cfg.MaxRetries, 3)
	opts.MinRetryBackoff = defaultDuration(cfg.MinRetryBackoff, 50*time.Millisecond)
	opts.MaxRetryBackoff = defaultDuration(cfg.MaxRetryBackoff, 500*time.Millisecond)

	if cfg.UseTLS && opts.TLSConfig == nil {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	closer := func() {
		_ = client.Close()
	}
	return client, closer, nil
}

func defaultDuration(v, d time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return d
}

func defaultInt(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}
