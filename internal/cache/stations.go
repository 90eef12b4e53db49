package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/bbernstein/chargemap/internal/config"
	"github.com/bbernstein/chargemap/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

type stationCacheEntry struct {
	stations  []models.RawStation
	expiresAt time.Time
}

// StationCache keeps recent backend station batches keyed by region request.
type StationCache struct {
	lru    *lru.Cache[string, *stationCacheEntry]
	ttl    time.Duration
	clock  clock
	mu     sync.Mutex
	hits   uint64
	misses uint64
}

// NewStationCache returns nil when caching is disabled in cfg, which callers
// treat as "no cache".
func NewStationCache(cfg *config.CacheConfig) (*StationCache, error) {
	if cfg == nil {
		cfg = config.DefaultCacheConfig()
	}
	if !cfg.EnableStationCache {
		return nil, nil
	}

	lruCache, err := lru.New[string, *stationCacheEntry](cfg.StationLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &StationCache{
		lru:   lruCache,
		ttl:   cfg.GetStationLRUTTL(),
		clock: systemClock{},
	}, nil
}

// Key builds the cache key for a metroCd/cityCd pair.
func Key(regionCode, subRegionCode string) string {
	return fmt.Sprintf("%s:%s", regionCode, subRegionCode)
}

func (c *StationCache) Get(key string) ([]models.RawStation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if ok && c.clock.Now().Before(entry.expiresAt) {
		c.hits++
		return entry.stations, true
	}
	if ok {
		c.lru.Remove(key)
	}
	c.misses++
	return nil, false
}

func (c *StationCache) Set(key string, stations []models.RawStation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, &stationCacheEntry{
		stations:  stations,
		expiresAt: c.clock.Now().Add(c.ttl),
	})
}

// Stats returns hit and miss counts.
func (c *StationCache) Stats() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]uint64{
		"hits":   c.hits,
		"misses": c.misses,
	}
}

func (c *StationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
