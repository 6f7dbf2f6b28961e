// Package cache is the gateway's query cache. Reads go through Fetch; every
// successful mutation invalidates the affected keys so the next read refetches.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/TusharChow20/project-Chef-Lokal/internal/events"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
)

type entry struct {
	value   any
	expires time.Time
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	gen     uint64
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key joins query key parts, e.g. Key("orders", "chef", chefID).
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

// Fetch returns the cached value for key or loads it. Concurrent loads of the
// same key by the same session share one call; different sessions never run
// under each other's credential. The shared load is detached from the caller
// that started it, so one caller giving up does not fail the rest. A value
// loaded while an invalidation happened is returned but not stored.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flightKey(ctx, key), func() (any, error) {
		val, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.set(key, val, gen)
		return val, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, _ := res.Val.(T)
		return typed, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// flightKey separa las cargas por sesión.
func flightKey(ctx context.Context, key string) string {
	cred, ok := remote.CredentialFrom(ctx)
	if !ok {
		return key
	}
	return key + "\x00" + cred.SessionID + "\x00" + cred.Token
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) set(key string, value any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.entries[key] = entry{value: value, expires: c.now().Add(c.ttl)}
}

// Invalidate drops every key equal to, or nested under, one of the prefixes.
func (c *Cache) Invalidate(prefixes ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	dropped := 0
	for key := range c.entries {
		for _, p := range prefixes {
			if key == p || strings.HasPrefix(key, p+"/") {
				delete(c.entries, key)
				dropped++
				break
			}
		}
	}
	return dropped
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Attach subscribes the cache to invalidation events published on bus.
func (c *Cache) Attach(bus events.Bus) func() {
	return bus.Subscribe(events.CacheInvalidate, func(ctx context.Context, e events.Event) {
		n := c.Invalidate(e.Keys...)
		log.Debug().Strs("keys", e.Keys).Int("dropped", n).Msg("cache: invalidated")
	})
}
