package models

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RegionDescriptor is what reverse geocoding yields for a coordinate: the
// top-level region name and the composite administrative code.
type RegionDescriptor struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// GeocodeOutcome is the result of a single address lookup. A lookup that fails
// is reported as an unresolved outcome, never as an error.
type GeocodeOutcome struct {
	Coordinate Coordinate
	Resolved   bool
	Reason     string
}

func Resolved(c Coordinate) GeocodeOutcome {
	return GeocodeOutcome{Coordinate: c, Resolved: true}
}

func Unresolved(reason string) GeocodeOutcome {
	return GeocodeOutcome{Reason: reason}
}
