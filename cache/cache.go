// Package cache provides a thread-safe TTL+LRU cache for parsed device
// data, with transparent compression of large payloads.
package cache

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zlib"
)

const (
	// DefaultMaxSize bounds the number of entries per cache instance
	DefaultMaxSize = 1000

	// DefaultTTL applies when Set is called with ttl <= 0
	DefaultTTL = 5 * time.Minute

	// DefaultCompressThreshold is the serialized size above which
	// compression is attempted
	DefaultCompressThreshold = 1024
)

// compression is kept only when it shrinks the payload by at least 10%;
// compressing data that won't shrink wastes CPU on both ends
const compressKeepRatio = 0.9

// entry is the stored form of a cached value. The payload is immutable
// once stored; only recency and the access count mutate on hits.
type entry struct {
	data        []byte
	timestamp   time.Time
	ttl         time.Duration
	accessCount int
	compressed  bool
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.timestamp) > e.ttl
}

// Stats is a point-in-time snapshot of cache counters
type Stats struct {
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	Evictions     uint64  `json:"evictions"`
	Compressions  uint64  `json:"compressions"`
	TotalRequests uint64  `json:"total_requests"`
	HitRate       float64 `json:"hit_rate"`
	Size          int     `json:"size"`
	MemoryBytes   int     `json:"memory_bytes"`
}

// Cache is a TTL+LRU cache keyed by an ordered tuple of string parts.
// Values are serialized on Set and deserialized on Get, so callers own
// what they get back. A single mutex serializes all operations on one
// instance; independent instances do not contend with each other.
type Cache[V any] struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *entry]

	maxSize           int
	defaultTTL        time.Duration
	compressThreshold int

	hits          uint64
	misses        uint64
	evictions     uint64
	compressions  uint64
	totalRequests uint64
}

// New creates a cache holding at most maxSize entries. Non-positive
// arguments fall back to the package defaults.
func New[V any](maxSize int, defaultTTL time.Duration) *Cache[V] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	// error only possible for non-positive size, which is guarded above
	entries, _ := lru.New[string, *entry](maxSize)
	return &Cache[V]{
		entries:           entries,
		maxSize:           maxSize,
		defaultTTL:        defaultTTL,
		compressThreshold: DefaultCompressThreshold,
	}
}

// Key joins the parts deterministically and hashes them to a fixed
// digest, bounding key memory regardless of command length.
func Key(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached value for the key parts. An expired entry
// counts as a miss and is removed. A payload that fails to decode is
// purged and reported as a miss; corruption never reaches the caller.
func (c *Cache[V]) Get(parts ...string) (V, bool) {
	var zero V
	key := Key(parts...)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests++

	e, ok := c.entries.Get(key) // hit promotes to most recently used
	if !ok {
		c.misses++
		return zero, false
	}
	if e.expired(time.Now()) {
		c.entries.Remove(key)
		c.misses++
		return zero, false
	}

	value, err := decode[V](e.data, e.compressed)
	if err != nil {
		c.entries.Remove(key)
		c.misses++
		return zero, false
	}

	e.accessCount++
	c.hits++
	return value, true
}

// Set stores the value under the key parts. Any prior entry is removed
// first, restarting its TTL, and the new entry lands as most recently
// used. Insertions over capacity evict from the LRU end.
func (c *Cache[V]) Set(value V, ttl time.Duration, parts ...string) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, compressed, err := c.encode(value)
	if err != nil {
		return // unserializable values are silently not cached
	}

	key := Key(parts...)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Remove(key)

	e := &entry{
		data:       data,
		timestamp:  time.Now(),
		ttl:        ttl,
		compressed: compressed,
	}
	if c.entries.Add(key, e) {
		c.evictions++
	}
	if compressed {
		c.compressions++
	}
}

// Invalidate removes the entry for the key parts, reporting whether
// one was present.
func (c *Cache[V]) Invalidate(parts ...string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Remove(Key(parts...))
}

// Clear drops every entry and resets all counters.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Purge()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
	c.compressions = 0
	c.totalRequests = 0
}

// RemoveExpired sweeps out entries whose age exceeds their own TTL,
// independent of read traffic, and returns how many were removed.
func (c *Cache[V]) RemoveExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for _, key := range c.entries.Keys() {
		if e, ok := c.entries.Peek(key); ok && e.expired(now) {
			c.entries.Remove(key)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.totalRequests
	if total == 0 {
		total = 1
	}
	memory := 0
	for _, key := range c.entries.Keys() {
		if e, ok := c.entries.Peek(key); ok {
			memory += len(e.data)
		}
	}
	return Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		Compressions:  c.compressions,
		TotalRequests: c.totalRequests,
		HitRate:       float64(c.hits) / float64(total) * 100,
		Size:          c.entries.Len(),
		MemoryBytes:   memory,
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

func (c *Cache[V]) encode(value V) (data []byte, compressed bool, err error) {
	serialized, err := json.Marshal(value)
	if err != nil {
		return nil, false, err
	}
	if len(serialized) <= c.compressThreshold {
		return serialized, false, nil
	}

	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, 6)
	if err != nil {
		return serialized, false, nil
	}
	if _, err := w.Write(serialized); err != nil {
		return serialized, false, nil
	}
	if err := w.Close(); err != nil {
		return serialized, false, nil
	}
	if !keepCompressed(len(serialized), buf.Len()) {
		return serialized, false, nil
	}
	return buf.Bytes(), true, nil
}

// keepCompressed applies the savings rule: the compressed form is
// stored only when it is at least 10% smaller than the original.
func keepCompressed(original, compressed int) bool {
	return float64(compressed) <= float64(original)*compressKeepRatio
}

func decode[V any](data []byte, compressed bool) (V, error) {
	var value V
	if compressed {
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return value, err
		}
		defer r.Close()
		data, err = io.ReadAll(r)
		if err != nil {
			return value, err
		}
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, err
	}
	return value, nil
}
