package cache

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a Redis instance.
type Redis struct{ c *rdb.Client }

// NewRedis builds a Redis cache client. The connection is lazy; a failed
// backend surfaces as cache misses.
func NewRedis(addr, password string, db int) *Redis {
	return &Redis{c: rdb.NewClient(&rdb.Options{Addr: addr, Password: password, DB: db})}
}

func (r *Redis) Get(k string) ([]byte, bool) {
	b, err := r.c.Get(context.Background(), k).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *Redis) Set(k string, v []byte, ttl time.Duration) {
	_ = r.c.Set(context.Background(), k, v, ttl).Err()
}

func (r *Redis) Delete(k string) { _ = r.c.Del(context.Background(), k).Err() }

// Ping checks the backend connection.
func (r *Redis) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// Close releases the underlying client.
func (r *Redis) Close() error { return r.c.Close() }
