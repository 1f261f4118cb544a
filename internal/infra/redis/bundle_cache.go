package redis

import (
	"context"
	"time"

	"github.com/kilka221/assistant/internal/domain/model"
	"github.com/kilka221/assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.SessionStore = (*CachedStore)(nil)

// CachedStore decorates a SessionStore with a Redis read/write-through
// cache for bundle blobs. Identity index operations pass through; the
// index is tiny and read rarely.
type CachedStore struct {
	inner  repository.SessionStore
	client RedisClient
	ttl    time.Duration
}

func NewCachedStore(inner repository.SessionStore, client RedisClient, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl}
}

func bundleKey(identityID string) string { return "session_bundle:" + identityID }

func (c *CachedStore) ListIdentities(ctx context.Context) ([]model.Identity, error) {
	return c.inner.ListIdentities(ctx)
}

func (c *CachedStore) SaveIdentity(ctx context.Context, id model.Identity) error {
	return c.inner.SaveIdentity(ctx, id)
}

func (c *CachedStore) FindIdentity(ctx context.Context, id string) (*model.Identity, error) {
	return c.inner.FindIdentity(ctx, id)
}

func (c *CachedStore) DeleteIdentity(ctx context.Context, id string) error {
	if err := c.inner.DeleteIdentity(ctx, id); err != nil {
		return err
	}
	_ = c.client.Del(ctx, bundleKey(id))
	return nil
}

func (c *CachedStore) LoadBundle(ctx context.Context, identityID string) ([]byte, error) {
	if data, err := c.client.Get(ctx, bundleKey(identityID)); err == nil {
		return []byte(data), nil
	}
	blob, err := c.inner.LoadBundle(ctx, identityID)
	if err != nil {
		return nil, err
	}
	_ = c.client.Set(ctx, bundleKey(identityID), blob, c.ttl)
	return blob, nil
}

func (c *CachedStore) SaveBundle(ctx context.Context, identityID string, blob []byte) error {
	if err := c.inner.SaveBundle(ctx, identityID, blob); err != nil {
		return err
	}
	_ = c.client.Set(ctx, bundleKey(identityID), blob, c.ttl)
	return nil
}

func (c *CachedStore) DeleteBundle(ctx context.Context, identityID string) error {
	if err := c.inner.DeleteBundle(ctx, identityID); err != nil {
		return err
	}
	_ = c.client.Del(ctx, bundleKey(identityID))
	return nil
}
