// Package cache memoizes retrieval results for a short time.
//
// Information Hiding:
// - Entry ordering used for oldest-first eviction hidden
// - Expiry checks hidden behind Get
// - A single mutex guards the whole structure; the bound is small
package cache

import (
	"container/list"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/richinex/chatrag/model"
)

// Defaults for the process-wide evidence cache.
const (
	DefaultTTL      = 5 * time.Minute
	DefaultCapacity = 100
)

type entry struct {
	key       string
	items     []model.Evidence
	createdAt time.Time
}

// Cache is a bounded, TTL-based store of evidence lists.
// Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	order    *list.List // front = oldest
	entries  map[string]*list.Element
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCapacity overrides the maximum number of entries.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:      DefaultTTL,
		capacity: DefaultCapacity,
		now:      time.Now,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the items stored under key. Entries older than the TTL
// are discarded and reported as a miss.
func (c *Cache) Get(key string) ([]model.Evidence, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().Sub(e.createdAt) > c.ttl {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	return copyItems(e.items), true
}

// Put stores items under key. A rewrite of an existing key refreshes its
// age. When the bound is exceeded the oldest entry is evicted.
func (c *Cache) Put(key string, items []model.Evidence) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}

	el := c.order.PushBack(&entry{
		key:       key,
		items:     copyItems(items),
		createdAt: c.now(),
	})
	c.entries[key] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Key builds a deterministic cache key from a tool name and its arguments.
// Arguments are rendered as sorted key=value pairs.
func Key(tool string, args map[string]any) string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(tool)
	for _, name := range names {
		fmt.Fprintf(&b, "|%s=%v", name, normalize(args[name]))
	}
	return b.String()
}

func normalize(v any) any {
	switch val := v.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(val))
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	default:
		return val
	}
}

func copyItems(items []model.Evidence) []model.Evidence {
	if items == nil {
		return nil
	}
	out := make([]model.Evidence, len(items))
	copy(out, items)
	return out
}
