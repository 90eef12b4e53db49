// Package locator runs the nearby charging station pipeline: find the user,
// resolve their region, fetch the region's stations, geocode and rank them,
// and hand the ranking to a renderer.
package locator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bbernstein/chargemap/internal/geo"
	"github.com/bbernstein/chargemap/internal/models"
	"github.com/bbernstein/chargemap/internal/region"
	"github.com/rs/zerolog/log"
)

const (
	StatusLocating     = "Finding current location..."
	StatusRegionLookup = "Looking up region code..."
	StatusLoading      = "Loading charging stations..."
	StatusEmpty        = "No charging stations found nearby."
)

// BatchResolver geocodes and ranks a station batch.
type BatchResolver interface {
	Resolve(ctx context.Context, user models.Coordinate, batch []models.RawStation) models.RankedBatch
}

type Deps struct {
	Location   models.LocationProvider
	Reverse    models.ReverseGeocoder
	Translator *region.Translator
	Stations   models.StationQuerier
	Resolver   BatchResolver
	Renderer   models.Renderer
}

// Result describes one completed run.
type Result struct {
	User          models.Coordinate
	Region        models.RegionDescriptor
	RegionCode    string
	SubRegionCode string
	Batch         models.RankedBatch
}

// Empty reports whether the region had no stations at all.
func (r *Result) Empty() bool {
	return r.Batch.Len() == 0
}

// Locator runs the pipeline. Starting a run cancels any run still in flight,
// and only the most recent run may write to the renderer.
type Locator struct {
	deps Deps

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc

	renderMu sync.Mutex
}

func New(deps Deps) *Locator {
	if deps.Translator == nil {
		deps.Translator = region.Default()
	}
	if deps.Renderer == nil {
		deps.Renderer = discardRenderer{}
	}
	return &Locator{deps: deps}
}

// Locate runs the pipeline once. Terminal failures are shown through the
// renderer's status and returned; an empty region is not an error.
func (l *Locator) Locate(ctx context.Context) (*Result, error) {
	gen, ctx, done := l.begin(ctx)
	defer done()

	l.status(gen, StatusLocating)
	user, err := l.deps.Location.Locate(ctx)
	if err == nil && !geo.ValidCoordinate(user) {
		err = fmt.Errorf("coordinate out of range: %f,%f", user.Lat, user.Lon)
	}
	if err != nil {
		return nil, l.fail(gen, NewLocationUnavailableError(err))
	}

	l.status(gen, StatusRegionLookup)
	desc, err := l.deps.Reverse.ReverseGeocode(ctx, user)
	if err == nil && desc == nil {
		err = errors.New("no region returned")
	}
	if err != nil {
		return nil, l.fail(gen, NewRegionLookupError(err))
	}

	regionCode, err := l.deps.Translator.Translate(desc.Name)
	if err != nil {
		return nil, l.fail(gen, err)
	}
	subRegionCode, ok := region.SubRegionCode(desc.Code)
	if !ok {
		log.Warn().Str("code", desc.Code).Msg("Administrative code too short for a city code")
	}

	log.Debug().
		Str("region", desc.Name).
		Str("metro_cd", regionCode).
		Str("city_cd", subRegionCode).
		Msg("Translated region")

	l.status(gen, StatusLoading)
	raw, err := l.deps.Stations.FetchStations(ctx, regionCode, subRegionCode)
	if err != nil {
		return nil, l.fail(gen, NewStationFetchError(err))
	}

	batch := l.deps.Resolver.Resolve(ctx, user, raw)
	if err := ctx.Err(); err != nil {
		// Lookups cut short by cancellation are not geocoding failures.
		return nil, l.fail(gen, err)
	}

	result := &Result{
		User:          user,
		Region:        *desc,
		RegionCode:    regionCode,
		SubRegionCode: subRegionCode,
		Batch:         batch,
	}
	if !l.publish(gen, result) {
		return nil, ErrSuperseded
	}
	return result, nil
}

func (l *Locator) begin(parent context.Context) (uint64, context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	gen := l.generation
	l.cancel = cancel
	l.mu.Unlock()

	return gen, ctx, func() {
		l.mu.Lock()
		if l.generation == gen {
			l.cancel = nil
		}
		l.mu.Unlock()
		cancel()
	}
}

func (l *Locator) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation == gen
}

func (l *Locator) status(gen uint64, msg string) {
	l.renderMu.Lock()
	defer l.renderMu.Unlock()
	if l.current(gen) {
		l.deps.Renderer.Status(msg)
	}
}

// publish renders the result if gen is still the latest run.
func (l *Locator) publish(gen uint64, result *Result) bool {
	l.renderMu.Lock()
	defer l.renderMu.Unlock()

	if !l.current(gen) {
		log.Debug().Uint64("generation", gen).Msg("Dropping stale result")
		return false
	}

	if result.Empty() {
		l.deps.Renderer.Status(StatusEmpty)
	}
	l.deps.Renderer.Render(result.Batch)
	return true
}

func (l *Locator) fail(gen uint64, err error) error {
	if !l.current(gen) {
		return ErrSuperseded
	}
	log.Error().Err(err).Msg("Station lookup failed")
	l.status(gen, StatusMessage(err))
	return err
}

// StatusMessage returns the user-facing text for a terminal error.
func StatusMessage(err error) string {
	var (
		locationErr    *LocationUnavailableError
		regionErr      *RegionLookupError
		unsupportedErr *region.UnsupportedRegionError
		fetchErr       *StationFetchError
	)
	switch {
	case errors.As(err, &locationErr):
		return fmt.Sprintf("Could not get your current location (%v)", locationErr.Err)
	case errors.As(err, &regionErr):
		return "Could not look up the administrative region for your location."
	case errors.As(err, &unsupportedErr):
		return fmt.Sprintf("Unsupported region: %s", unsupportedErr.Name)
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("Error loading charging station information: %v", fetchErr.Err)
	case errors.Is(err, ErrSuperseded):
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "Station lookup timed out."
	case errors.Is(err, context.Canceled):
		return "Station lookup cancelled."
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}

// FixedLocation is a LocationProvider for a position supplied by the caller.
type FixedLocation models.Coordinate

func (f FixedLocation) Locate(context.Context) (models.Coordinate, error) {
	return models.Coordinate(f), nil
}

type discardRenderer struct{}

func (discardRenderer) Status(string)             {}
func (discardRenderer) Render(models.RankedBatch) {}

// Pipeline holds the shared dependencies for servers that receive the user's
// position with each request. Every call runs on its own Locator.
type Pipeline struct {
	Reverse    models.ReverseGeocoder
	Translator *region.Translator
	Stations   models.StationQuerier
	Resolver   BatchResolver
}

func (p Pipeline) LocateAt(ctx context.Context, user models.Coordinate, renderer models.Renderer) (*Result, error) {
	return New(Deps{
		Location:   FixedLocation(user),
		Reverse:    p.Reverse,
		Translator: p.Translator,
		Stations:   p.Stations,
		Resolver:   p.Resolver,
		Renderer:   renderer,
	}).Locate(ctx)
}
