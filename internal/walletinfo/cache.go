package walletinfo

import (
	"context"
	"sync"
	"time"

	"github.com/kivu-cash/kivu_cash/internal/gateway"
)

// Lookup abstracts the gateway's balance-lookup route.
type Lookup interface {
	LookupWallet(ctx context.Context) (gateway.WalletInfo, error)
}

// Cache shields the PSP balance-lookup endpoint from repeated polling by
// serving a short-TTL snapshot. A failed refresh propagates to the caller
// rather than silently returning stale data; Last exposes the previous
// snapshot for callers that want an explicit fallback.
type Cache struct {
	mu        sync.Mutex
	lookup    Lookup
	ttl       time.Duration
	info      gateway.WalletInfo
	fetchedAt time.Time
}

// NewCache builds a cache refreshing through lookup at most once per ttl.
func NewCache(lookup Lookup, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{lookup: lookup, ttl: ttl}
}

// Get returns the cached wallet info if it is younger than the TTL and no
// forced refresh was requested; otherwise it refreshes from the gateway.
func (c *Cache) Get(ctx context.Context, forceRefresh bool) (gateway.WalletInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh && !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl {
		return c.info, nil
	}

	info, err := c.lookup.LookupWallet(ctx)
	if err != nil {
		return gateway.WalletInfo{}, err
	}
	c.info = info
	c.fetchedAt = time.Now()
	return info, nil
}

// Last returns the most recent successfully fetched snapshot, if any.
func (c *Cache) Last() (gateway.WalletInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info, !c.fetchedAt.IsZero()
}
