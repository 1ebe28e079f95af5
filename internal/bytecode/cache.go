package bytecode

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Cache stores compiled modules keyed by the SHA-256 of their source text,
// so a fleet of `compile` invocations sharing a backend never recompiles
// identical source. An empty address (the default) keeps everything
// in-process.
type Cache struct {
	mu    sync.Mutex
	local map[string][]byte
	redis *redis.Client
}

// NewCache builds a Cache. addr empty means in-memory only, matching the
// zero-configuration default (SPEC_FULL.md's ambient config section).
func NewCache(addr string) *Cache {
	c := &Cache{local: make(map[string][]byte)}
	if addr != "" {
		c.redis = redis.NewClient(&redis.Options{Addr: addr})
	}
	return c
}

// Close releases the redis connection, if any.
func (c *Cache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// Key derives the cache key for a source string.
func Key(source string) string {
	return "nxb:" + NewFileHasher().HashString(source)
}

// Get returns the cached module bytes for key, if present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.redis != nil {
		val, err := c.redis.Get(ctx, key).Bytes()
		if err != nil {
			return nil, false
		}
		return val, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.local[key]
	return v, ok
}

// Put stores module bytes under key.
func (c *Cache) Put(ctx context.Context, key string, module []byte) error {
	if c.redis != nil {
		return c.redis.Set(ctx, key, module, 0).Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.local[key] = module
	return nil
}
