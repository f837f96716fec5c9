package ledger

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"medchain/internal/domain/models"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medchain_ledger_cache_hits_total",
		Help: "Total number of private ledger reads served from the LRU cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medchain_ledger_cache_misses_total",
		Help: "Total number of private ledger reads that went to the store.",
	})
)

// Cache is an LRU of committed records with a TTL.
// Each process has its own cache, so a TTL bounds staleness when several
// instances write to the same ledger.
type Cache struct {
	lru *expirable.LRU[string, *models.Record]
}

// NewCache creates a cache holding at most maxSize records for ttl each
func NewCache(maxSize int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, *models.Record](maxSize, nil, ttl)}
}

// Get returns a copy of the cached record
func (c *Cache) Get(key string) (*models.Record, bool) {
	val, ok := c.lru.Get(key)
	if ok {
		cacheHitsTotal.Inc()
		return val.Clone(), true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set adds or replaces the record under key
func (c *Cache) Set(key string, record *models.Record) {
	c.lru.Add(key, record.Clone())
}

// Delete removes key from the cache
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}
