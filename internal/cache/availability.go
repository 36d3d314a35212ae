// Package cache provides the availability cache: a short-TTL memo of the
// free-table list per (location, date, time) slot. Entries hold the free
// tables, not a selected combination, so they are independent of party
// size. Invalidation is deliberately coarse: every reservation create or
// cancel flushes all availability entries. Flushing more than necessary is
// always safe; flushing less than necessary is the bug to avoid. A stricter
// implementation could scope the flush to (location, date), but correctness
// does not depend on it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mesaYaApi/internal/model"
)

// keyPrefix namespaces availability entries so InvalidateAll never touches
// unrelated keys (e.g. the rate limiter's buckets).
const keyPrefix = "availability:"

// Key builds the cache key for one slot: availability:{loc}:{date}:{time}.
func Key(location, date, clock string) string {
	return fmt.Sprintf("%s%s:%s:%s", keyPrefix, location, date, clock)
}

// Availability is the cache contract consumed by the reservation service.
// Get misses (absent, expired or unreadable entries) return ok=false; cache
// failures are never fatal to the request path.
type Availability interface {
	Get(ctx context.Context, location, date, clock string) ([]model.Table, bool)
	Set(ctx context.Context, location, date, clock string, tables []model.Table)
	InvalidateAll(ctx context.Context)
}

// RedisAvailability stores entries in Redis with a TTL.
type RedisAvailability struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisAvailability returns a Redis-backed availability cache. A zero or
// negative TTL falls back to 5 minutes.
func NewRedisAvailability(rdb *redis.Client, ttl time.Duration) *RedisAvailability {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisAvailability{rdb: rdb, ttl: ttl}
}

func (c *RedisAvailability) Get(ctx context.Context, location, date, clock string) ([]model.Table, bool) {
	bs, err := c.rdb.Get(ctx, Key(location, date, clock)).Bytes()
	if err != nil {
		return nil, false
	}
	var tables []model.Table
	if err := json.Unmarshal(bs, &tables); err != nil {
		return nil, false
	}
	return tables, true
}

func (c *RedisAvailability) Set(ctx context.Context, location, date, clock string, tables []model.Table) {
	bs, err := json.Marshal(tables)
	if err != nil {
		return
	}
	if err := c.rdb.SetEx(ctx, Key(location, date, clock), bs, c.ttl).Err(); err != nil {
		log.Printf("availability-cache: set failed: %v", err)
	}
}

// InvalidateAll deletes every availability:* key. It scans rather than
// flushing the database so co-tenant keys survive.
func (c *RedisAvailability) InvalidateAll(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("availability-cache: scan failed: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("availability-cache: flush failed: %v", err)
	}
}

// MemoryAvailability is an in-process availability cache. It backs tests
// and is the graceful fallback when Redis is unreachable at startup.
type MemoryAvailability struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	tables    []model.Table
	expiresAt time.Time
}

// NewMemoryAvailability returns an in-memory availability cache. A zero or
// negative TTL falls back to 5 minutes.
func NewMemoryAvailability(ttl time.Duration) *MemoryAvailability {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryAvailability{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryAvailability) Get(_ context.Context, location, date, clock string) ([]model.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[Key(location, date, clock)]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.tables, true
}

func (c *MemoryAvailability) Set(_ context.Context, location, date, clock string, tables []model.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key(location, date, clock)] = memoryEntry{tables: tables, expiresAt: c.now().Add(c.ttl)}
}

func (c *MemoryAvailability) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
}
