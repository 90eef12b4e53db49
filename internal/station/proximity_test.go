package station

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bbernstein/chargemap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAddressResolver struct {
	mu      sync.Mutex
	calls   []string
	resolve func(ctx context.Context, address string) models.GeocodeOutcome
}

func (m *mockAddressResolver) ResolveAddress(ctx context.Context, address string) models.GeocodeOutcome {
	m.mu.Lock()
	m.calls = append(m.calls, address)
	m.mu.Unlock()
	return m.resolve(ctx, address)
}

func (m *mockAddressResolver) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// tableResolver resolves addresses found in coords and fails everything else.
func tableResolver(coords map[string]models.Coordinate) *mockAddressResolver {
	return &mockAddressResolver{
		resolve: func(_ context.Context, address string) models.GeocodeOutcome {
			if c, ok := coords[address]; ok {
				return models.Resolved(c)
			}
			return models.Unresolved("no result")
		},
	}
}

func rawStation(name, address string) models.RawStation {
	raw := models.RawStation{}
	if name != "" {
		raw["stnPlace"] = name
	}
	if address != "" {
		raw["stnAddr"] = address
	}
	return raw
}

func stationNames(batch models.RankedBatch) []string {
	names := make([]string, len(batch.Stations))
	for i, s := range batch.Stations {
		names[i] = s.Name
	}
	return names
}

var seoulUser = models.Coordinate{Lat: 37.50, Lon: 127.03}

func TestResolveRanksByDistance(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(map[string]models.Coordinate{
		"addr-a": {Lat: 37.51, Lon: 127.05},
		"addr-c": {Lat: 37.40, Lon: 126.90},
	})
	batch := []models.RawStation{
		rawStation("A", "addr-a"),
		rawStation("B", "addr-b"),
		rawStation("C", "addr-c"),
	}

	ranked := NewProximityResolver(resolver, 0).Resolve(context.Background(), seoulUser, batch)

	require.Equal(t, 3, ranked.Len())
	assert.Equal(t, []string{"A", "C", "B (addr-b)"}, stationNames(ranked))

	a, c, b := ranked.Stations[0], ranked.Stations[1], ranked.Stations[2]
	require.NotNil(t, a.DistanceKm)
	assert.InDelta(t, 2.1, *a.DistanceKm, 0.1)
	require.NotNil(t, c.DistanceKm)
	assert.InDelta(t, 16.0, *c.DistanceKm, 0.2)
	assert.Nil(t, b.DistanceKm)
	assert.Nil(t, b.Coordinate)
	require.NotNil(t, b.Address)
	assert.Equal(t, "addr-b", *b.Address)

	nearest, ok := ranked.Nearest()
	require.True(t, ok)
	assert.Equal(t, "A", nearest.Name)
	assert.Equal(t, batch[0], nearest.Raw)
	assert.Equal(t, 3, resolver.callCount())
}

func TestResolveEmptyBatch(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(nil)
	p := NewProximityResolver(resolver, 0)

	for _, batch := range [][]models.RawStation{nil, {}} {
		ranked := p.Resolve(context.Background(), seoulUser, batch)
		assert.Equal(t, 0, ranked.Len())
		assert.NotNil(t, ranked.Stations)
		_, ok := ranked.Nearest()
		assert.False(t, ok)
	}
	assert.Equal(t, 0, resolver.callCount())
}

func TestResolveAllUnresolvedKeepsOrder(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(nil)
	batch := []models.RawStation{
		rawStation("first", "x-1"),
		rawStation("second", ""),
		rawStation("third", "x-3"),
		rawStation("", "x-4"),
	}

	ranked := NewProximityResolver(resolver, 0).Resolve(context.Background(), seoulUser, batch)

	assert.Equal(t, []string{"first (x-1)", "second", "third (x-3)", "Unnamed (x-4)"}, stationNames(ranked))
	assert.Equal(t, 0, ranked.Resolved())
	_, ok := ranked.Nearest()
	assert.False(t, ok)
	for i, s := range ranked.Stations {
		assert.Nil(t, s.Coordinate, i)
		assert.Nil(t, s.DistanceKm, i)
	}
}

func TestResolveMissingAddressSkipsLookup(t *testing.T) {
	t.Parallel()

	resolver := tableResolver(map[string]models.Coordinate{"addr": {Lat: 37.5, Lon: 127.0}})
	batch := []models.RawStation{
		rawStation("no address", ""),
		rawStation("", ""),
		rawStation("has address", "addr"),
	}

	ranked := NewProximityResolver(resolver, 0).Resolve(context.Background(), seoulUser, batch)

	assert.Equal(t, []string{"has address", "no address", UnnamedStation}, stationNames(ranked))
	assert.Nil(t, ranked.Stations[1].Address)
	assert.Equal(t, []string{"addr"}, resolver.calls)
}

func TestResolveCounts(t *testing.T) {
	t.Parallel()

	// N stations, K with addresses, F of those K fail to geocode.
	const n, k, f = 40, 30, 7
	coords := make(map[string]models.Coordinate)
	batch := make([]models.RawStation, 0, n)
	for i := 0; i < n; i++ {
		if i < k {
			address := fmt.Sprintf("addr-%d", i)
			if i >= f {
				coords[address] = models.Coordinate{Lat: 37.0 + float64(i)*0.01, Lon: 127.0}
			}
			batch = append(batch, rawStation(fmt.Sprintf("s%d", i), address))
		} else {
			batch = append(batch, rawStation(fmt.Sprintf("s%d", i), ""))
		}
	}

	resolver := tableResolver(coords)
	ranked := NewProximityResolver(resolver, 0).Resolve(context.Background(), seoulUser, batch)

	assert.Equal(t, n, ranked.Len())
	assert.Equal(t, k-f, ranked.Resolved())
	assert.Equal(t, k, resolver.callCount())
	assertRankedInvariant(t, ranked)
}

func TestResolveStableTies(t *testing.T) {
	t.Parallel()

	same := models.Coordinate{Lat: 37.52, Lon: 127.04}
	resolver := tableResolver(map[string]models.Coordinate{
		"tie-1": same,
		"tie-2": same,
		"tie-3": same,
		"near":  seoulUser,
	})
	batch := []models.RawStation{
		rawStation("t1", "tie-1"),
		rawStation("u1", "bad-1"),
		rawStation("t2", "tie-2"),
		rawStation("u2", ""),
		rawStation("t3", "tie-3"),
		rawStation("n", "near"),
	}

	p := NewProximityResolver(resolver, 0)
	for run := 0; run < 20; run++ {
		ranked := p.Resolve(context.Background(), seoulUser, batch)
		assert.Equal(t, []string{"n", "t1", "t2", "t3", "u1 (bad-1)", "u2"}, stationNames(ranked))
		assert.Equal(t, 0.0, *ranked.Stations[0].DistanceKm)
	}
}

func TestResolveFansOutBeforeAwaiting(t *testing.T) {
	t.Parallel()

	const n = 12
	var arrived sync.WaitGroup
	arrived.Add(n)
	allArrived := make(chan struct{})
	go func() {
		arrived.Wait()
		close(allArrived)
	}()

	resolver := &mockAddressResolver{
		resolve: func(ctx context.Context, address string) models.GeocodeOutcome {
			arrived.Done()
			// Each lookup blocks until every lookup has started.
			select {
			case <-allArrived:
				return models.Resolved(models.Coordinate{Lat: 37.5, Lon: 127.0})
			case <-time.After(2 * time.Second):
				return models.Unresolved("lookups were serialized")
			}
		},
	}

	batch := make([]models.RawStation, n)
	for i := range batch {
		batch[i] = rawStation(fmt.Sprintf("s%d", i), fmt.Sprintf("addr-%d", i))
	}

	ranked := NewProximityResolver(resolver, 0).Resolve(context.Background(), seoulUser, batch)
	assert.Equal(t, n, ranked.Resolved())
}

func TestResolveWaitsForSlowLookups(t *testing.T) {
	t.Parallel()

	resolver := &mockAddressResolver{
		resolve: func(_ context.Context, address string) models.GeocodeOutcome {
			switch address {
			case "fails-fast":
				return models.Unresolved("no result")
			case "slow":
				time.Sleep(50 * time.Millisecond)
				return models.Resolved(models.Coordinate{Lat: 37.6, Lon: 127.0})
			default:
				return models.Resolved(models.Coordinate{Lat: 37.51, Lon: 127.03})
			}
		},
	}
	batch := []models.RawStation{
		rawStation("slow", "slow"),
		rawStation("bad", "fails-fast"),
		rawStation("quick", "quick"),
	}

	ranked := NewProximityResolver(resolver, 0).Resolve(context.Background(), seoulUser, batch)

	assert.Equal(t, []string{"quick", "slow", "bad (fails-fast)"}, stationNames(ranked))
}

func TestResolveRespectsConcurrencyCap(t *testing.T) {
	t.Parallel()

	var inFlight, peak int32
	resolver := &mockAddressResolver{
		resolve: func(context.Context, string) models.GeocodeOutcome {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return models.Resolved(models.Coordinate{Lat: 37.5, Lon: 127.0})
		},
	}

	batch := make([]models.RawStation, 20)
	for i := range batch {
		batch[i] = rawStation(fmt.Sprintf("s%d", i), fmt.Sprintf("addr-%d", i))
	}

	ranked := NewProximityResolver(resolver, 3).Resolve(context.Background(), seoulUser, batch)

	assert.Equal(t, 20, ranked.Resolved())
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func assertRankedInvariant(t *testing.T, ranked models.RankedBatch) {
	t.Helper()

	seenUnresolved := false
	prev := -1.0
	for i, s := range ranked.Stations {
		assert.Equal(t, s.Coordinate != nil, s.DistanceKm != nil, "entry %d", i)
		if s.DistanceKm == nil {
			seenUnresolved = true
			continue
		}
		assert.False(t, seenUnresolved, "resolved entry %d after an unresolved one", i)
		assert.GreaterOrEqual(t, *s.DistanceKm, prev, "entry %d out of order", i)
		prev = *s.DistanceKm
	}
}
