// Package cache provides the short-lived key/value storage used for
// authorization codes and login sessions.
//
// Backends:
//   - Memory (in-process, development and tests)
//   - Redis (distributed, production)
package cache

import (
	"strings"
	"time"
)

// Cache is the narrow surface consumed by the code and session stores.
// Values are opaque bytes; a zero ttl means the backend default.
type Cache interface {
	Get(key string) (value []byte, ok bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

// Config selects and tunes a backend.
type Config struct {
	Kind  string // "memory" | "redis"
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Memory struct {
		DefaultTTL string
	}
}

// Open builds a Cache for the configuration. Unknown kinds fall back to
// memory.
func Open(cfg Config) (Cache, error) {
	switch strings.ToLower(cfg.Kind) {
	case "redis":
		return NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), nil
	default:
		d, _ := time.ParseDuration(cfg.Memory.DefaultTTL)
		if d == 0 {
			d = 2 * time.Minute
		}
		return NewMemory(d), nil
	}
}
