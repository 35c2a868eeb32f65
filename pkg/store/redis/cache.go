// Package redis puts a read-through Redis cache in front of a payload store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/store"
)

// KeyPrefix namespaces cached payloads. Each stored revision is cached under
// its own key, see Key.
const KeyPrefix = "graphscope:payload"

// Key returns the cache key of revision rev.
func Key(rev int64) string {
	return fmt.Sprintf("%s:%d", KeyPrefix, rev)
}

// CacheRequests counts cache lookups by result (hit, miss, error).
var CacheRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "graphscope_cache_requests_total",
		Help: "Total number of payload cache lookups",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(CacheRequests)
}

// Cache wraps a store.PayloadStore. Reads are served from Redis when
// possible; writes go to the backing store and drop the cached copy. Redis
// failures never fail a read, they only cost a trip to the backing store.
type Cache struct {
	client *redis.Client
	next   store.PayloadStore
	ttl    time.Duration
	log    *slog.Logger
}

var _ store.PayloadStore = (*Cache)(nil)

// NewCache returns a cache in front of next. A ttl of 0 keeps entries until
// the next write. A nil logger discards.
func NewCache(client *redis.Client, next store.PayloadStore, ttl time.Duration, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		client: client,
		next:   next,
		ttl:    ttl,
		log:    log.With("component", "cache"),
	}
}

// LoadPayload returns the cached copy of the current revision, filling the
// cache from the backing store on a miss. A fill is skipped when the revision
// moved while the backing store was being read, so a slow reader can never
// cache a dataset that has already been replaced.
func (c *Cache) LoadPayload(ctx context.Context) (*graph.Payload, error) {
	info, err := c.next.Info(ctx)
	if err != nil {
		return c.next.LoadPayload(ctx)
	}
	key := Key(info.Revision)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p graph.Payload
		uerr := json.Unmarshal(data, &p)
		if uerr == nil {
			CacheRequests.WithLabelValues("hit").Inc()
			return &p, nil
		}
		CacheRequests.WithLabelValues("error").Inc()
		c.log.Warn("dropping undecodable cache entry", "key", key, "err", uerr)
	case errors.Is(err, redis.Nil):
		CacheRequests.WithLabelValues("miss").Inc()
	default:
		CacheRequests.WithLabelValues("error").Inc()
		c.log.Warn("cache read failed", "key", key, "err", err)
	}

	p, err := c.next.LoadPayload(ctx)
	if err != nil {
		return nil, err
	}
	after, err := c.next.Info(ctx)
	if err != nil || after.Revision != info.Revision {
		c.log.Debug("revision moved during load, not caching", "revision", info.Revision, "now", after.Revision)
		return p, nil
	}
	c.fill(ctx, key, p)
	return p, nil
}

func (c *Cache) fill(ctx context.Context, key string, p *graph.Payload) {
	data, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("failed to marshal payload for cache", "err", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "key", key, "err", err)
	}
}

// ReplacePayload writes through to the backing store and invalidates the
// cached copy.
func (c *Cache) ReplacePayload(ctx context.Context, p *graph.Payload) (store.Info, error) {
	info, err := c.next.ReplacePayload(ctx, p)
	if err != nil {
		return store.Info{}, err
	}
	if err := c.Invalidate(ctx); err != nil {
		c.log.Warn("cache invalidation failed", "revision", info.Revision, "err", err)
	}
	return info, nil
}

// Info is answered by the backing store.
func (c *Cache) Info(ctx context.Context) (store.Info, error) {
	return c.next.Info(ctx)
}

// Invalidate drops every cached revision.
func (c *Cache) Invalidate(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, KeyPrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
