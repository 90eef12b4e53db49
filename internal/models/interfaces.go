package models

import "context"

type LocationProvider interface {
	Locate(ctx context.Context) (Coordinate, error)
}

type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, coord Coordinate) (*RegionDescriptor, error)
}

// AddressResolver turns a postal address into a coordinate. Implementations
// must report failures through the outcome rather than panicking or blocking
// past ctx.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, address string) GeocodeOutcome
}

type StationQuerier interface {
	FetchStations(ctx context.Context, regionCode, subRegionCode string) ([]RawStation, error)
}

// Renderer is the presentation boundary. Status replaces the progress or error
// message; Render receives a finished ranking.
type Renderer interface {
	Status(msg string)
	Render(batch RankedBatch)
}
