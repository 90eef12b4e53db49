// Package app wires configuration into a ready-to-run station pipeline.
package app

import (
	"fmt"

	"github.com/bbernstein/chargemap/internal/cache"
	"github.com/bbernstein/chargemap/internal/config"
	"github.com/bbernstein/chargemap/internal/geocode"
	"github.com/bbernstein/chargemap/internal/locator"
	"github.com/bbernstein/chargemap/internal/region"
	"github.com/bbernstein/chargemap/internal/station"
	"github.com/bbernstein/chargemap/pkg/http/client"
	"github.com/rs/zerolog/log"
)

// NewPipeline builds the geocoder, station service and resolver described by cfg.
func NewPipeline(cfg *config.Config) (locator.Pipeline, error) {
	translator, err := region.NewTranslator(cfg.RegionAliases)
	if err != nil {
		return locator.Pipeline{}, fmt.Errorf("building region table: %w", err)
	}

	stationCache, err := cache.NewStationCache(cfg.Cache)
	if err != nil {
		return locator.Pipeline{}, fmt.Errorf("creating station cache: %w", err)
	}

	if cfg.KakaoAPIKey == "" {
		log.Warn().Msg("KAKAO_REST_API_KEY is not set; geocoding requests will be rejected")
	}

	kakao := geocode.NewKakaoGeocoder(client.New(client.Options{
		BaseURL: cfg.KakaoBaseURL,
		Timeout: cfg.HTTPTimeout,
		Headers: geocode.AuthHeaders(cfg.KakaoAPIKey),
	}))

	stations := station.NewService(client.New(client.Options{
		BaseURL: cfg.StationsBaseURL,
		Timeout: cfg.HTTPTimeout,
	}), stationCache)

	log.Debug().
		Str("kakao_base_url", cfg.KakaoBaseURL).
		Str("stations_base_url", cfg.StationsBaseURL).
		Int("max_concurrent_lookups", cfg.MaxConcurrentLookups).
		Bool("station_cache", stationCache != nil).
		Msg("Pipeline configured")

	return locator.Pipeline{
		Reverse:    kakao,
		Translator: translator,
		Stations:   stations,
		Resolver:   station.NewProximityResolver(kakao, cfg.MaxConcurrentLookups),
	}, nil
}
