package station

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bbernstein/chargemap/internal/cache"
	"github.com/bbernstein/chargemap/internal/models"
	"github.com/bbernstein/chargemap/pkg/http/client"
	"github.com/rs/zerolog/log"
)

const stationsPath = "/stations/"

var ErrMissingRegionCode = errors.New("region code is required")

// FetchError reports a non-success status from the station backend.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("station backend returned status %d", e.StatusCode)
}

// Service fetches raw station batches from the backend for a region.
type Service struct {
	httpClient client.Interface
	cache      *cache.StationCache
}

var _ models.StationQuerier = (*Service)(nil)

// NewService creates a station service. stationCache may be nil.
func NewService(httpClient client.Interface, stationCache *cache.StationCache) *Service {
	return &Service{
		httpClient: httpClient,
		cache:      stationCache,
	}
}

// FetchStations returns the station batch for metroCd regionCode and, when not
// blank, cityCd subRegionCode. A payload without a data field is an empty batch.
func (s *Service) FetchStations(ctx context.Context, regionCode, subRegionCode string) ([]models.RawStation, error) {
	regionCode = strings.TrimSpace(regionCode)
	subRegionCode = strings.TrimSpace(subRegionCode)
	if regionCode == "" {
		return nil, ErrMissingRegionCode
	}

	key := cache.Key(regionCode, subRegionCode)
	if s.cache != nil {
		if stations, ok := s.cache.Get(key); ok {
			log.Debug().Str("key", key).Msg("Cache HIT for station batch")
			return stations, nil
		}
		log.Debug().Str("key", key).Msg("Cache MISS for station batch, calling backend")
	}

	query := url.Values{"metroCd": {regionCode}}
	if subRegionCode != "" {
		query.Set("cityCd", subRegionCode)
	}

	resp, err := s.httpClient.Get(ctx, stationsPath, query)
	if err != nil {
		return nil, fmt.Errorf("fetching stations: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from station backend")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	var payload struct {
		Data []models.RawStation `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	stations := payload.Data
	if stations == nil {
		stations = []models.RawStation{}
	}

	log.Debug().
		Str("metro_cd", regionCode).
		Str("city_cd", subRegionCode).
		Int("station_count", len(stations)).
		Msg("Fetched station batch")

	if s.cache != nil {
		s.cache.Set(key, stations)
	}

	return stations, nil
}
