package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig controls the in-memory cache of raw station batches. Geocoding
// results are never cached.
type CacheConfig struct {
	StationLRUSize       int
	StationLRUTTLMinutes int
	EnableStationCache   bool
}

const (
	defaultStationLRUSize    = 64
	defaultStationTTLMinutes = 10
)

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		StationLRUSize:       defaultStationLRUSize,
		StationLRUTTLMinutes: defaultStationTTLMinutes,
		EnableStationCache:   true,
	}
}

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		StationLRUSize:       getEnvInt("STATION_CACHE_SIZE", defaultStationLRUSize),
		StationLRUTTLMinutes: getEnvInt("STATION_CACHE_TTL_MINUTES", defaultStationTTLMinutes),
		EnableStationCache:   getEnvBool("STATION_CACHE_ENABLED", true),
	}

	log.Debug().
		Int("StationLRUSize", config.StationLRUSize).
		Int("StationLRUTTLMinutes", config.StationLRUTTLMinutes).
		Bool("EnableStationCache", config.EnableStationCache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetStationLRUTTL() time.Duration {
	return time.Duration(c.StationLRUTTLMinutes) * time.Minute
}
