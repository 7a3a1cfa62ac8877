package redis

import (
	"context"
	"errors"
	"time"
)

// ForkCache stores verdicts of fork-ancestry checks. The webhook handler
// asks GitLab whether the pushed project is a fork of a task repository;
// the answer is stable for the lifetime of the project, so caching it
// saves one API round-trip per push.
type ForkCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewForkCache creates a new ForkCache with the given verdict TTL.
// A zero ttl falls back to TTLForkVerdict.
func NewForkCache(cache *Cache, ttl time.Duration) *ForkCache {
	if ttl <= 0 {
		ttl = TTLForkVerdict
	}
	return &ForkCache{
		cache: cache,
		ttl:   ttl,
	}
}

// Get returns the cached verdict for a project.
// The second return value is false on cache miss.
func (f *ForkCache) Get(ctx context.Context, projectID int64) (isFork bool, ok bool, err error) {
	val, err := f.cache.GetString(ctx, ForkKey(projectID))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return false, false, nil
		}
		return false, false, err
	}

	return val == "1", true, nil
}

// Set records the verdict for a project.
func (f *ForkCache) Set(ctx context.Context, projectID int64, isFork bool) error {
	val := "0"
	if isFork {
		val = "1"
	}
	return f.cache.SetString(ctx, ForkKey(projectID), val, f.ttl)
}

// Invalidate drops the verdict for a project.
func (f *ForkCache) Invalidate(ctx context.Context, projectID int64) error {
	return f.cache.Delete(ctx, ForkKey(projectID))
}
