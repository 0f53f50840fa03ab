package intel

import (
	"fmt"
	"time"

	"argus/core"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LookupCache caches successful provider lookups so repeat submissions of
// the same indicator don't burn API quota. Error entries are never cached:
// a transient provider failure should not poison later enrichments.
type LookupCache struct {
	lru *expirable.LRU[string, core.ExternalIntel]
}

// NewLookupCache creates a cache bounded by size with a per-entry TTL
func NewLookupCache(size int, ttl time.Duration) *LookupCache {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LookupCache{
		lru: expirable.NewLRU[string, core.ExternalIntel](size, nil, ttl),
	}
}

func cacheKey(slug string, t core.IndicatorType, value string) string {
	return fmt.Sprintf("%s|%s|%s", slug, t, value)
}

// Get retrieves a cached lookup result
func (c *LookupCache) Get(slug string, t core.IndicatorType, value string) (core.ExternalIntel, bool) {
	return c.lru.Get(cacheKey(slug, t, value))
}

// Set stores a successful lookup result
func (c *LookupCache) Set(slug string, t core.IndicatorType, value string, intel core.ExternalIntel) {
	c.lru.Add(cacheKey(slug, t, value), intel)
}
