package handler

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/chargemap/internal/api"
	"github.com/bbernstein/chargemap/internal/locator"
	"github.com/bbernstein/chargemap/internal/models"
	"github.com/bbernstein/chargemap/internal/render"
	"github.com/rs/zerolog/log"
)

// NearbyLocator runs the station pipeline for a position given by the caller.
type NearbyLocator interface {
	LocateAt(ctx context.Context, user models.Coordinate, renderer models.Renderer) (*locator.Result, error)
}

type StationsHandler struct {
	locator NearbyLocator
}

func NewStationsHandler(l NearbyLocator) *StationsHandler {
	return &StationsHandler{
		locator: l,
	}
}

// HandleRequest serves API Gateway requests of the form ?lat=..&lon=..
func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	user, err := api.ParseCoordinates(request.QueryStringParameters)
	if err != nil {
		return api.Error(err.Error(), api.StatusCode(err))
	}

	result, err := h.locate(ctx, user)
	if err != nil {
		return api.Error(api.ErrorMessage(err), api.StatusCode(err))
	}
	return api.Success(api.NewStationsResponse(result))
}

func (h *StationsHandler) locate(ctx context.Context, user models.Coordinate) (*locator.Result, error) {
	collector := render.NewCollector()
	result, err := h.locator.LocateAt(ctx, user, collector)
	if err != nil {
		log.Warn().
			Err(err).
			Float64("lat", user.Lat).
			Float64("lon", user.Lon).
			Strs("statuses", collector.Statuses()).
			Msg("Nearby station lookup failed")
		return nil, err
	}

	log.Info().
		Float64("lat", user.Lat).
		Float64("lon", user.Lon).
		Str("metro_cd", result.RegionCode).
		Int("stations", result.Batch.Len()).
		Int("resolved", result.Batch.Resolved()).
		Msg("Nearby station lookup complete")
	return result, nil
}
