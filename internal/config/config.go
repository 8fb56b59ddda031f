// Package config parses command-line configuration for the lrucache binary.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"lrucache/internal/store"
)

type (
	// Config holds every setting of the lrucache binary.
	Config struct {
		Capacity    int
		MetricsAddr string
		Namespace   string
		ReportEvery time.Duration
		Redis       Redis
	}

	// Redis configures the optional Redis backing store.
	Redis struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
		TTL      time.Duration
	}
)

// ErrInvalid is wrapped by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid configuration")

// Parse reads flags from args (without the program name) and validates them.
func Parse(args []string, output io.Writer) (Config, error) {
	var c Config

	fs := flag.NewFlagSet("lrucache", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.IntVar(&c.Capacity, "capacity", 3, "maximum number of cache entries")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", "", "serve /metrics and /health on this address (empty disables)")
	fs.StringVar(&c.Namespace, "namespace", "lru", "prometheus metric namespace")
	fs.DurationVar(&c.ReportEvery, "report-every", 10*time.Second, "log cache stats at this interval while serving (0 disables)")
	fs.StringVar(&c.Redis.Addr, "redis-addr", "", "back the cache with redis at this address (empty uses an in-memory store)")
	fs.StringVar(&c.Redis.Password, "redis-password", "", "redis password")
	fs.IntVar(&c.Redis.DB, "redis-db", 0, "redis database number")
	fs.StringVar(&c.Redis.Prefix, "redis-prefix", store.DefaultPrefix, "key prefix in redis")
	fs.DurationVar(&c.Redis.TTL, "redis-ttl", 0, "expiry for keys written to redis (0 keeps them)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that numeric settings are in range.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalid, c.Capacity)
	}
	if c.ReportEvery < 0 {
		return fmt.Errorf("%w: report-every must not be negative", ErrInvalid)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("%w: redis-db must not be negative", ErrInvalid)
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("%w: redis-ttl must not be negative", ErrInvalid)
	}
	return nil
}

// RedisOptions converts the redis flags for store.NewRedis.
func (c Config) RedisOptions() store.RedisOptions {
	return store.RedisOptions{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Prefix:   c.Redis.Prefix,
		TTL:      c.Redis.TTL,
	}
}
