package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ursais/web-api/pkg/endpoint"
)

// CachingRepository decorates a Repository with Redis caching for the hot
// request-path lookup. Keys:
//   - webapi:endpoint:route:<route> -> JSON record (FindByRoute)
//
// A sentinel marks known-missing routes so floods of unknown routes do not
// hammer the database. Writes invalidate by route.
type CachingRepository struct {
	Repository
	rdb *redis.Client
	ttl time.Duration
}

const missSentinel = "!"

func NewCachingRepository(inner Repository, rdb *redis.Client, ttl time.Duration) *CachingRepository {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &CachingRepository{Repository: inner, rdb: rdb, ttl: ttl}
}

func routeKey(route string) string { return "webapi:endpoint:route:" + route }

func (c *CachingRepository) FindByRoute(ctx context.Context, route string) (*endpoint.Endpoint, error) {
	if bs, err := c.rdb.Get(ctx, routeKey(route)).Bytes(); err == nil {
		if string(bs) == missSentinel {
			return nil, nil
		}
		var e endpoint.Endpoint
		if json.Unmarshal(bs, &e) == nil {
			return &e, nil
		}
	}
	e, err := c.Repository.FindByRoute(ctx, route)
	if err != nil {
		return nil, err
	}
	if e == nil {
		_ = c.rdb.Set(ctx, routeKey(route), missSentinel, c.ttl).Err()
		return nil, nil
	}
	if bs, err := json.Marshal(e); err == nil {
		_ = c.rdb.Set(ctx, routeKey(route), bs, c.ttl).Err()
	}
	return e, nil
}

func (c *CachingRepository) Create(ctx context.Context, e *endpoint.Endpoint) error {
	if err := c.Repository.Create(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx, e.Route)
	return nil
}

func (c *CachingRepository) Update(ctx context.Context, e *endpoint.Endpoint) error {
	// The route may have changed; drop the old key too.
	var oldRoute string
	if prev, err := c.Repository.Get(ctx, e.ID); err == nil {
		oldRoute = prev.Route
	}
	if err := c.Repository.Update(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx, e.Route, oldRoute)
	return nil
}

func (c *CachingRepository) Delete(ctx context.Context, id string) error {
	var route string
	if prev, err := c.Repository.Get(ctx, id); err == nil {
		route = prev.Route
	}
	if err := c.Repository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, route)
	return nil
}

func (c *CachingRepository) Duplicate(ctx context.Context, id string) (*endpoint.Endpoint, error) {
	dup, err := c.Repository.Duplicate(ctx, id)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, dup.Route)
	return dup, nil
}

func (c *CachingRepository) invalidate(ctx context.Context, routes ...string) {
	for _, r := range routes {
		if r != "" {
			_ = c.rdb.Del(ctx, routeKey(r)).Err()
		}
	}
}
