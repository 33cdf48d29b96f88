// Package cache implements the lookup cache of spec.md §4.6: a
// short-TTL memoisation of GetFiltersForDomain results keyed by
// (domain, is_whitelist), reset wholesale on every store ingest.
//
// It wraps github.com/patrickmn/go-cache (seen in the pack's
// AdguardTeam-dnsproxy go.mod), which is already internally
// mutex-guarded — satisfying spec.md §5's "safe for concurrent read
// and occasional write" requirement without any locking of our own.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/katari-dev/abpfilter/internal/filter"
)

// DefaultTTL is the cache entry lifetime spec.md §4.6 names as the
// default ("10 minutes").
const DefaultTTL = 10 * time.Minute

// cleanupInterval controls how often go-cache sweeps expired entries.
// Eviction is otherwise lazy (spec.md §4.6), so this only bounds
// memory growth from keys that are never looked up again.
const cleanupInterval = 2 * time.Minute

// Cache memoises materialised UrlFilter lists by (domain,
// wantWhitelist).
type Cache struct {
	ttl  time.Duration
	impl *gocache.Cache
}

// New creates a Cache with the given entry TTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, impl: gocache.New(ttl, cleanupInterval)}
}

func key(domain string, wantWhitelist bool) string {
	if wantWhitelist {
		return domain + "\x00w"
	}
	return domain + "\x00b"
}

// Get returns the cached filter list for (domain, wantWhitelist), if
// present and unexpired.
func (c *Cache) Get(domain string, wantWhitelist bool) ([]*filter.UrlFilter, bool) {
	v, ok := c.impl.Get(key(domain, wantWhitelist))
	if !ok {
		return nil, false
	}
	filters, ok := v.([]*filter.UrlFilter)
	return filters, ok
}

// Set stores filters for (domain, wantWhitelist) with the cache's
// configured TTL.
func (c *Cache) Set(domain string, wantWhitelist bool, filters []*filter.UrlFilter) {
	c.impl.Set(key(domain, wantWhitelist), filters, c.ttl)
}

// Reset evicts every cached entry. Called whenever the store is
// re-ingested, per spec.md §4.6 ("cache is fully reset on any ingest
// operation").
func (c *Cache) Reset() {
	evicted := c.impl.ItemCount()
	c.impl.Flush()
	log.Debug().Int("evicted", evicted).Msg("lookup cache reset")
}

// Close drops every cached entry, like Reset but without logging; it is
// what store.Close calls. go-cache has no explicit Close, so flushing
// is all it does.
func (c *Cache) Close() {
	c.impl.Flush()
}

// Len reports the number of entries currently cached (including ones
// past TTL but not yet swept), for the CLI's `stats` command.
func (c *Cache) Len() int {
	return c.impl.ItemCount()
}
