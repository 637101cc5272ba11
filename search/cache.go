package search

import (
	"slices"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/storage"
)

// resultCache memoizes ranked results of successful searches.
type resultCache struct {
	cache *gocache.Cache
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		cache: gocache.New(ttl, 2*ttl),
	}
}

// cacheKey derives the cache key from the normalized needle.
func cacheKey(pattern storage.Pattern) string {
	return "search:" + strconv.FormatUint(uint64(core.IDFromContent(pattern.Needle())), 16)
}

func (c *resultCache) get(pattern storage.Pattern) ([]core.SearchResult, bool) {
	if val, found := c.cache.Get(cacheKey(pattern)); found {
		return slices.Clone(val.([]core.SearchResult)), true
	}
	return nil, false
}

func (c *resultCache) set(pattern storage.Pattern, results []core.SearchResult) {
	c.cache.SetDefault(cacheKey(pattern), slices.Clone(results))
}

func (c *resultCache) flush() {
	c.cache.Flush()
}
