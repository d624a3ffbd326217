package store

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/grantkit/internal/store/core"
)

// CacheClient is the narrow cache surface the decorator needs;
// internal/cache satisfies it directly.
type CacheClient interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

const clientKeyPrefix = "client:"

// CachedClients decorates a repository with a read-through cache on client
// lookups. Cache misses are coalesced per client ID, so a burst of
// requests for an uncached client costs one database query.
type CachedClients struct {
	core.Repository

	cache CacheClient
	ttl   time.Duration
	sf    singleflight.Group
}

func NewCachedClients(repo core.Repository, cache CacheClient, ttl time.Duration) *CachedClients {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedClients{Repository: repo, cache: cache, ttl: ttl}
}

func (c *CachedClients) GetClientByID(ctx context.Context, clientID string) (*core.Client, error) {
	key := clientKeyPrefix + clientID
	if raw, ok := c.cache.Get(key); ok {
		var cl core.Client
		if err := json.Unmarshal(raw, &cl); err == nil {
			return &cl, nil
		}
		c.cache.Delete(key)
	}

	v, err, _ := c.sf.Do(clientID, func() (any, error) {
		cl, err := c.Repository.GetClientByID(ctx, clientID)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(cl); err == nil {
			c.cache.Set(key, raw, c.ttl)
		}
		return cl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Client), nil
}

func (c *CachedClients) UpsertClient(ctx context.Context, cl *core.Client) error {
	if err := c.Repository.UpsertClient(ctx, cl); err != nil {
		return err
	}
	c.cache.Delete(clientKeyPrefix + cl.ID)
	return nil
}

func (c *CachedClients) DeleteClient(ctx context.Context, clientID string) error {
	if err := c.Repository.DeleteClient(ctx, clientID); err != nil {
		return err
	}
	c.cache.Delete(clientKeyPrefix + clientID)
	return nil
}
