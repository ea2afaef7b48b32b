package session

import (
	"context"
	"os"
	"time"
)

// Config selects the session backend.
type Config struct {
	// RedisAddr enables the Redis store when set.
	RedisAddr string
	TTL       time.Duration
}

// DefaultConfig keeps sessions in memory for DefaultTTL.
func DefaultConfig() Config {
	return Config{TTL: DefaultTTL}
}

// ConfigFromEnv reads TALKIE_REDIS_ADDR and TALKIE_SESSION_TTL.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.RedisAddr = os.Getenv("TALKIE_REDIS_ADDR")
	if v := os.Getenv("TALKIE_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TTL = d
		}
	}
	return cfg
}

// Open builds the configured store. The returned close function releases
// the backend connection.
func Open(ctx context.Context, cfg Config) (Store, func() error, error) {
	if cfg.RedisAddr == "" {
		return NewMemoryStore(cfg.TTL), func() error { return nil }, nil
	}
	rdb, err := DialRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	rs := NewRedisStore(rdb, cfg.TTL)
	return rs, rs.Close, nil
}
