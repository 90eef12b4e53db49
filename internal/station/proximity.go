package station

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bbernstein/chargemap/internal/geo"
	"github.com/bbernstein/chargemap/internal/models"
	"github.com/rs/zerolog/log"
)

// UnnamedStation is shown for stations the backend sent without a name.
const UnnamedStation = "Unnamed"

// ProximityResolver geocodes a station batch concurrently and ranks it by
// distance from the user.
type ProximityResolver struct {
	resolver models.AddressResolver
	// maxInFlight caps concurrent lookups; 0 means every lookup starts at once.
	maxInFlight int
}

func NewProximityResolver(resolver models.AddressResolver, maxInFlight int) *ProximityResolver {
	if maxInFlight < 0 {
		maxInFlight = 0
	}
	return &ProximityResolver{
		resolver:    resolver,
		maxInFlight: maxInFlight,
	}
}

// Resolve returns one entry per station in batch. Every lookup is started
// before any is awaited, and Resolve waits for all of them; a failed lookup
// only leaves its own entry without a coordinate.
func (p *ProximityResolver) Resolve(ctx context.Context, user models.Coordinate, batch []models.RawStation) models.RankedBatch {
	if len(batch) == 0 {
		return models.RankedBatch{Stations: []models.ResolvedStation{}}
	}

	results := make([]models.ResolvedStation, len(batch))

	var sem chan struct{}
	if p.maxInFlight > 0 {
		sem = make(chan struct{}, p.maxInFlight)
	}

	var wg sync.WaitGroup
	launched := 0
	for i, raw := range batch {
		name := raw.Name()
		if name == "" {
			name = UnnamedStation
		}

		address := raw.Address()
		if address == "" {
			log.Warn().Str("station", name).Msg("Station has no address")
			results[i] = models.ResolvedStation{Name: name, Raw: raw}
			continue
		}

		launched++
		wg.Add(1)
		go func(i int, raw models.RawStation, name, address string) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			outcome := p.resolver.ResolveAddress(ctx, address)
			results[i] = newResolvedStation(user, raw, name, address, outcome)
		}(i, raw, name, address)
	}

	wg.Wait()

	ranked := rank(results)
	log.Debug().
		Int("stations", len(ranked.Stations)).
		Int("lookups", launched).
		Int("resolved", ranked.Resolved()).
		Msg("Resolved station batch")

	return ranked
}

func newResolvedStation(user models.Coordinate, raw models.RawStation, name, address string, outcome models.GeocodeOutcome) models.ResolvedStation {
	if !outcome.Resolved {
		return models.ResolvedStation{
			Name:    fmt.Sprintf("%s (%s)", name, address),
			Address: &address,
			Raw:     raw,
		}
	}

	coord := outcome.Coordinate
	distance := geo.Distance(user, coord)
	return models.ResolvedStation{
		Name:       name,
		Address:    &address,
		Coordinate: &coord,
		DistanceKm: &distance,
		Raw:        raw,
	}
}

// rank orders stations by ascending distance with unresolved stations last.
// The sort is stable, so ties and unresolved stations keep batch order.
func rank(stations []models.ResolvedStation) models.RankedBatch {
	sort.SliceStable(stations, func(i, j int) bool {
		a, b := stations[i], stations[j]
		if !a.HasDistance() || !b.HasDistance() {
			return a.HasDistance() && !b.HasDistance()
		}
		return *a.DistanceKm < *b.DistanceKm
	})
	return models.RankedBatch{Stations: stations}
}
