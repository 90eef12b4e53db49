package models

import "strings"

const (
	fieldAddress = "stnAddr"
	fieldName    = "stnPlace"
)

// RawStation is a station record as returned by the backend. Only the address and
// name are read; every other field is carried through untouched.
type RawStation map[string]any

// Address returns the station address, or "" when absent or blank.
func (s RawStation) Address() string {
	return s.stringField(fieldAddress)
}

// Name returns the station display name, or "" when absent or blank.
func (s RawStation) Name() string {
	return s.stringField(fieldName)
}

func (s RawStation) stringField(key string) string {
	if s == nil {
		return ""
	}
	v, ok := s[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// ResolvedStation is a station after geocoding and distance computation.
// DistanceKm is set if and only if Coordinate is set.
type ResolvedStation struct {
	Name       string      `json:"name"`
	Address    *string     `json:"address,omitempty"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	DistanceKm *float64    `json:"distanceKm,omitempty"`
	Raw        RawStation  `json:"raw,omitempty"`
}

func (s ResolvedStation) HasDistance() bool {
	return s.DistanceKm != nil
}

// RankedBatch holds resolved stations ordered by ascending distance, with every
// unresolved station after the resolved ones in their original batch order.
type RankedBatch struct {
	Stations []ResolvedStation `json:"stations"`
}

func (b RankedBatch) Len() int {
	return len(b.Stations)
}

// Nearest returns the first station when it has a distance.
func (b RankedBatch) Nearest() (*ResolvedStation, bool) {
	if len(b.Stations) == 0 || !b.Stations[0].HasDistance() {
		return nil, false
	}
	nearest := b.Stations[0]
	return &nearest, true
}

// Resolved counts stations with a known distance.
func (b RankedBatch) Resolved() int {
	n := 0
	for _, s := range b.Stations {
		if s.HasDistance() {
			n++
		}
	}
	return n
}
