package render

import (
	"fmt"
	"strings"

	"github.com/bbernstein/chargemap/internal/models"
)

const noAddress = "No address information"

// StationView is the presentation form of one ranked station.
type StationView struct {
	Rank          int      `json:"rank"`
	Name          string   `json:"name"`
	Address       *string  `json:"address,omitempty"`
	Lat           *float64 `json:"lat,omitempty"`
	Lon           *float64 `json:"lon,omitempty"`
	DistanceKm    *float64 `json:"distanceKm,omitempty"`
	Text          string   `json:"text"`
	DirectionsURL string   `json:"directionsUrl,omitempty"`
	SearchURL     string   `json:"searchUrl"`

	// Raw carries the backend's fields (charger counts etc.) unchanged.
	Raw models.RawStation `json:"raw,omitempty"`
}

// Views converts a ranked batch to views, keeping its order.
func Views(batch models.RankedBatch) []StationView {
	views := make([]StationView, 0, batch.Len())
	for i, s := range batch.Stations {
		v := StationView{
			Rank:       i + 1,
			Name:       s.Name,
			Address:    s.Address,
			DistanceKm: s.DistanceKm,
			Text:       ListText(i+1, s),
			SearchURL:  SearchLink(s),
			Raw:        s.Raw,
		}
		if s.Coordinate != nil {
			lat, lon := s.Coordinate.Lat, s.Coordinate.Lon
			v.Lat, v.Lon = &lat, &lon
		}
		if link, ok := DirectionsLink(s); ok {
			v.DirectionsURL = link
		}
		views = append(views, v)
	}
	return views
}

// ListText formats one list row. Unresolved stations whose name already
// carries the address are not given it twice.
func ListText(rank int, s models.ResolvedStation) string {
	if s.DistanceKm != nil {
		return fmt.Sprintf("%d. %s - %.2f km", rank, s.Name, *s.DistanceKm)
	}
	address := noAddress
	if s.Address != nil && *s.Address != "" {
		address = *s.Address
		if strings.HasSuffix(s.Name, "("+address+")") {
			return fmt.Sprintf("%d. %s", rank, s.Name)
		}
	}
	return fmt.Sprintf("%d. %s (%s)", rank, s.Name, address)
}

// NearestText formats the highlight line for the nearest station.
func NearestText(s models.ResolvedStation) string {
	if s.DistanceKm == nil {
		return ""
	}
	return fmt.Sprintf("Nearest charging station - %s (%.2f km)", s.Name, *s.DistanceKm)
}
