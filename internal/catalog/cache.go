package catalog

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-catalog/pkg/redis"
)

// Cache stores the raw catalog between loads. A miss is (nil, nil).
type Cache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Put(ctx context.Context, snapshot *Snapshot) error
	Invalidate(ctx context.Context) error
}

// SnapshotCache keeps the serialized catalog in redis.
type SnapshotCache struct {
	store redis.SnapshotStore
	ttl   time.Duration
}

// NewSnapshotCache builds a redis-backed snapshot cache.
func NewSnapshotCache(store redis.SnapshotStore, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{store: store, ttl: ttl}
}

// Get returns the cached snapshot, or nil when nothing is cached. Cached
// snapshots carry version 0; the loader assigns its own version on install.
func (c *SnapshotCache) Get(ctx context.Context) (*Snapshot, error) {
	raw, err := c.store.Get(ctx, c.store.CatalogSnapshotKey())
	if err != nil {
		if redis.IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}
	return UnmarshalPayload(0, []byte(raw))
}

// Put writes the snapshot with the configured TTL.
func (c *SnapshotCache) Put(ctx context.Context, snapshot *Snapshot) error {
	raw, err := snapshot.MarshalPayload()
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.store.CatalogSnapshotKey(), string(raw), c.ttl)
}

// Invalidate drops the cached snapshot.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	return c.store.Del(ctx, c.store.CatalogSnapshotKey())
}
