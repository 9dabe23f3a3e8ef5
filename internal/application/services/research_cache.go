package services

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/providers"
)

const defaultCacheSize = 512

type cacheEntry struct {
	result    entities.ResearchResult
	createdAt time.Time
	ttl       time.Duration
}

// ResearchCache memoizes research results by normalized fingerprint with
// per-entry TTL. Expiry is lazy: stale entries are dropped on the next
// Get rather than proactively purged. The LRU only bounds memory.
type ResearchCache struct {
	lru        *expirable.LRU[string, cacheEntry]
	defaultTTL time.Duration
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

var _ providers.ResearchCacheProvider = (*ResearchCache)(nil)

// NewResearchCache creates a cache holding at most size entries with the
// given default TTL.
func NewResearchCache(size int, defaultTTL time.Duration) *ResearchCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &ResearchCache{
		// entry TTLs are enforced at Get time, so the LRU itself never expires
		lru:        expirable.NewLRU[string, cacheEntry](size, nil, 0),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Fingerprint computes the normalized cache key for a (gameTitle,
// question) pair.
func Fingerprint(gameTitle, question string) string {
	return normalize(gameTitle) + "|" + normalize(question)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Get returns a non-expired entry for the pair, or ok=false.
func (c *ResearchCache) Get(gameTitle, question string) (*entities.ResearchResult, bool) {
	key := Fingerprint(gameTitle, question)
	entry, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if c.now().Sub(entry.createdAt) >= entry.ttl {
		c.lru.Remove(key)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	result := entry.result
	return &result, true
}

// Set stores or overwrites the entry for the pair. A non-positive ttl
// falls back to the cache default.
func (c *ResearchCache) Set(gameTitle, question string, result *entities.ResearchResult, ttl time.Duration) {
	if result == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.lru.Add(Fingerprint(gameTitle, question), cacheEntry{
		result:    *result,
		createdAt: c.now(),
		ttl:       ttl,
	})
}

// Len returns the number of stored entries, expired ones included until
// their next Get.
func (c *ResearchCache) Len() int {
	return c.lru.Len()
}

// Stats returns the hit and miss counters.
func (c *ResearchCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
