package proof

import (
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/flow-consensus/ifcore/model/chain"
)

// mrootCacheEntry pairs a proven finality_mroot with the time its freshness
// window expires, implementing spec §4.6's "implementation-defined cache
// TTL"; stale entries are garbage-collected on read.
type mrootCacheEntry struct {
	mroot  chain.Identifier
	expiry time.Time
}

// MrootCache is a bounded, TTL-expiring cache of proven finality_mroot
// values keyed by block id, backed by github.com/hashicorp/golang-lru —
// the same LRU the pack uses elsewhere for bounded lookup caches.
type MrootCache struct {
	lru *lru.Cache
	ttl time.Duration
	now func() time.Time
}

// NewMrootCache creates a cache holding up to size entries, each valid
// for ttl after being recorded.
func NewMrootCache(size int, ttl time.Duration) (*MrootCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &MrootCache{lru: c, ttl: ttl, now: time.Now}, nil
}

// Record stores mroot as the proven finality merkle root for blockID,
// valid for this cache's TTL from now.
func (c *MrootCache) Record(blockID chain.Identifier, mroot chain.Identifier) {
	c.lru.Add(blockID, mrootCacheEntry{mroot: mroot, expiry: c.now().Add(c.ttl)})
}

// Lookup returns the previously proven finality_mroot for blockID, if one
// is cached and has not expired. An expired entry is evicted and reported
// as absent.
func (c *MrootCache) Lookup(blockID chain.Identifier) (chain.Identifier, bool) {
	raw, ok := c.lru.Get(blockID)
	if !ok {
		return chain.Identifier{}, false
	}
	entry := raw.(mrootCacheEntry)
	if c.now().After(entry.expiry) {
		c.lru.Remove(blockID)
		return chain.Identifier{}, false
	}
	return entry.mroot, true
}
