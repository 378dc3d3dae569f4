package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"assetdesk/internal/domain/filter"
	"assetdesk/internal/domain/reports"
	"assetdesk/pkg/logger"
)

// DomainNamespace holds the filter option domains.
const DomainNamespace = "domains"

// Compile-time check.
var _ reports.DomainCache = (*DomainCache)(nil)

// HitObserver is told about cache hits and misses.
type HitObserver interface {
	CacheResult(namespace string, hit bool)
}

// DomainCache stores filter option lists as JSON in a Store.
// Store errors are logged and treated as misses.
type DomainCache struct {
	store    Store
	ttl      time.Duration
	observer HitObserver
}

// NewDomainCache creates a domain cache. observer may be nil.
func NewDomainCache(store Store, ttl time.Duration, observer HitObserver) *DomainCache {
	return &DomainCache{store: store, ttl: ttl, observer: observer}
}

// domainKey keeps the domain kind (lookup or distinct) as a sub-namespace,
// so a single kind can be flushed.
func domainKey(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return Key(DomainNamespace+":"+kind, key)
}

func (c *DomainCache) GetOptions(ctx context.Context, key string) ([]filter.Option, bool) {
	data, ok, err := c.store.Get(ctx, domainKey(key))
	if err != nil {
		logger.Warn(ctx, "domain cache read failed", "key", key, "error", err)
	}
	if !ok || err != nil {
		c.observe(false)
		return nil, false
	}

	var opts []filter.Option
	if err := json.Unmarshal(data, &opts); err != nil {
		logger.Warn(ctx, "domain cache entry is corrupt", "key", key, "error", err)
		c.observe(false)
		return nil, false
	}
	if opts == nil {
		opts = []filter.Option{}
	}
	c.observe(true)
	return opts, true
}

func (c *DomainCache) SetOptions(ctx context.Context, key string, opts []filter.Option) {
	if opts == nil {
		opts = []filter.Option{}
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, domainKey(key), data, c.ttl); err != nil {
		logger.Warn(ctx, "domain cache write failed", "key", key, "error", err)
	}
}

func (c *DomainCache) observe(hit bool) {
	if c.observer != nil {
		c.observer.CacheResult(DomainNamespace, hit)
	}
}
