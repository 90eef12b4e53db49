// Package geocode talks to the Kakao Local REST API for forward geocoding of
// station addresses and reverse geocoding of the user's position.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bbernstein/chargemap/internal/models"
	"github.com/bbernstein/chargemap/pkg/http/client"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://dapi.kakao.com"

	addressSearchPath = "/v2/local/search/address.json"
	regionCodePath    = "/v2/local/geo/coord2regioncode.json"
)

type KakaoGeocoder struct {
	httpClient client.Interface
}

var (
	_ models.AddressResolver = (*KakaoGeocoder)(nil)
	_ models.ReverseGeocoder = (*KakaoGeocoder)(nil)
)

func NewKakaoGeocoder(httpClient client.Interface) *KakaoGeocoder {
	return &KakaoGeocoder{httpClient: httpClient}
}

// AuthHeaders returns the headers the Kakao API expects for a REST API key.
func AuthHeaders(apiKey string) map[string]string {
	return map[string]string{"Authorization": "KakaoAK " + apiKey}
}

type addressSearchResponse struct {
	Documents []struct {
		AddressName string `json:"address_name"`
		X           string `json:"x"`
		Y           string `json:"y"`
	} `json:"documents"`
}

type regionCodeResponse struct {
	Documents []struct {
		RegionType  string `json:"region_type"`
		Code        string `json:"code"`
		Region1Name string `json:"region_1depth_name"`
		Region2Name string `json:"region_2depth_name"`
	} `json:"documents"`
}

// ResolveAddress looks up one address and takes the provider's first candidate.
// Every failure comes back as an unresolved outcome.
func (g *KakaoGeocoder) ResolveAddress(ctx context.Context, address string) models.GeocodeOutcome {
	outcome := g.resolveAddress(ctx, address)
	if !outcome.Resolved {
		log.Warn().Str("address", address).Str("reason", outcome.Reason).Msg("Address geocoding failed")
	}
	return outcome
}

func (g *KakaoGeocoder) resolveAddress(ctx context.Context, address string) models.GeocodeOutcome {
	if strings.TrimSpace(address) == "" {
		return models.Unresolved("empty address")
	}

	resp, err := g.httpClient.Get(ctx, addressSearchPath, url.Values{"query": {address}})
	if err != nil {
		return models.Unresolved(fmt.Sprintf("request failed: %v", err))
	}
	if resp == nil {
		return models.Unresolved("no response from geocoder")
	}
	if resp.StatusCode != http.StatusOK {
		return models.Unresolved(fmt.Sprintf("status %d", resp.StatusCode))
	}

	var body addressSearchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return models.Unresolved(fmt.Sprintf("decoding response: %v", err))
	}
	if len(body.Documents) == 0 {
		return models.Unresolved("no result")
	}

	first := body.Documents[0]
	lat, err := strconv.ParseFloat(first.Y, 64)
	if err != nil {
		return models.Unresolved(fmt.Sprintf("invalid latitude %q", first.Y))
	}
	lon, err := strconv.ParseFloat(first.X, 64)
	if err != nil {
		return models.Unresolved(fmt.Sprintf("invalid longitude %q", first.X))
	}

	return models.Resolved(models.Coordinate{Lat: lat, Lon: lon})
}

// ReverseGeocode returns the top-level region name and administrative code
// for a coordinate.
func (g *KakaoGeocoder) ReverseGeocode(ctx context.Context, coord models.Coordinate) (*models.RegionDescriptor, error) {
	query := url.Values{
		"x": {strconv.FormatFloat(coord.Lon, 'f', -1, 64)},
		"y": {strconv.FormatFloat(coord.Lat, 'f', -1, 64)},
	}

	resp, err := g.httpClient.Get(ctx, regionCodePath, query)
	if err != nil {
		return nil, fmt.Errorf("fetching region code: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from geocoder")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching region code: status %d", resp.StatusCode)
	}

	var body regionCodeResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("decoding region code response: %w", err)
	}
	if len(body.Documents) == 0 || body.Documents[0].Code == "" {
		return nil, fmt.Errorf("no region code for %f,%f", coord.Lat, coord.Lon)
	}

	first := body.Documents[0]
	log.Debug().
		Str("region", first.Region1Name).
		Str("code", first.Code).
		Msg("Reverse geocoded position")

	return &models.RegionDescriptor{
		Name: first.Region1Name,
		Code: first.Code,
	}, nil
}
