package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bbernstein/chargemap/internal/config"
	"github.com/bbernstein/chargemap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *mockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func createTestStations() []models.RawStation {
	return []models.RawStation{
		{"stnPlace": "강남역 공영주차장", "stnAddr": "서울 강남구 강남대로 396"},
		{"stnPlace": "역삼동 주민센터", "stnAddr": "서울 강남구 역삼로 7길 16"},
	}
}

func newTestCache(t *testing.T, size, ttlMinutes int) (*StationCache, *mockClock) {
	t.Helper()

	c, err := NewStationCache(&config.CacheConfig{
		StationLRUSize:       size,
		StationLRUTTLMinutes: ttlMinutes,
		EnableStationCache:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, c)

	clk := &mockClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c.clock = clk
	return c, clk
}

func TestNewStationCache(t *testing.T) {
	t.Parallel()

	c, err := NewStationCache(nil)
	require.NoError(t, err)
	assert.NotNil(t, c)

	c, err = NewStationCache(&config.CacheConfig{EnableStationCache: false})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = NewStationCache(&config.CacheConfig{EnableStationCache: true, StationLRUSize: 0})
	assert.Error(t, err)
}

func TestStationCacheGetSet(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, 10, 5)
	key := Key("11", "68")
	assert.Equal(t, "11:68", key)

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, createTestStations())
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, createTestStations(), got)

	assert.Equal(t, map[string]uint64{"hits": 1, "misses": 1}, c.Stats())
}

func TestStationCacheExpiration(t *testing.T) {
	t.Parallel()

	c, clk := newTestCache(t, 10, 5)
	key := Key("22", "")
	c.Set(key, createTestStations())

	clk.Advance(4 * time.Minute)
	_, ok := c.Get(key)
	assert.True(t, ok)

	clk.Advance(2 * time.Minute)
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestStationCacheEviction(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, 2, 5)
	for i := 0; i < 3; i++ {
		c.Set(Key(fmt.Sprintf("%d", 11+i), ""), createTestStations())
	}

	_, ok := c.Get(Key("11", ""))
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get(Key("13", ""))
	assert.True(t, ok)
}

func TestStationCacheClear(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, 10, 5)
	c.Set(Key("11", ""), createTestStations())
	c.Clear()

	_, ok := c.Get(Key("11", ""))
	assert.False(t, ok)
}

func TestStationCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, 100, 5)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key(fmt.Sprintf("%d", i%5), "")
			c.Set(key, createTestStations())
			_, _ = c.Get(key)
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.Equal(t, uint64(50), stats["hits"]+stats["misses"])
}
