package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/chargemap/internal/geo"
	"github.com/bbernstein/chargemap/internal/locator"
	"github.com/bbernstein/chargemap/internal/models"
	"github.com/bbernstein/chargemap/internal/region"
	"github.com/bbernstein/chargemap/internal/render"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

type RegionInfo struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	MetroCd string `json:"metroCd"`
	CityCd  string `json:"cityCd,omitempty"`
}

type StationsResponse struct {
	APIResponse
	Region   RegionInfo           `json:"region"`
	Nearest  *render.StationView  `json:"nearest,omitempty"`
	Stations []render.StationView `json:"stations"`
	Resolved int                  `json:"resolved"`
	Message  string               `json:"message,omitempty"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewStationsResponse(result *locator.Result) *StationsResponse {
	views := render.Views(result.Batch)
	resp := &StationsResponse{
		APIResponse: APIResponse{ResponseType: "stations"},
		Region: RegionInfo{
			Name:    result.Region.Name,
			Code:    result.Region.Code,
			MetroCd: result.RegionCode,
			CityCd:  result.SubRegionCode,
		},
		Stations: views,
		Resolved: result.Batch.Resolved(),
	}
	if _, ok := result.Batch.Nearest(); ok {
		resp.Nearest = &views[0]
	}
	if result.Empty() {
		resp.Message = locator.StatusEmpty
	}
	return resp
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

var jsonHeaders = map[string]string{
	"Content-Type":                "application/json",
	"Access-Control-Allow-Origin": "*",
}

// Success wraps body in a Lambda proxy response.
func Success(body any) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    jsonHeaders,
		Body:       string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    jsonHeaders,
		Body:       string(body),
	}, nil
}

// WriteJSON writes body with the given status to an HTTP response.
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	for k, v := range jsonHeaders {
		w.Header().Set(k, v)
	}
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// StatusCode maps a pipeline error to an HTTP status.
func StatusCode(err error) int {
	var (
		invalidErr     InvalidCoordinatesError
		unsupportedErr *region.UnsupportedRegionError
		regionErr      *locator.RegionLookupError
		fetchErr       *locator.StationFetchError
		locationErr    *locator.LocationUnavailableError
	)
	switch {
	case errors.As(err, &invalidErr), errors.As(err, &locationErr):
		return http.StatusBadRequest
	case errors.As(err, &unsupportedErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &regionErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, locator.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the client-facing text for a pipeline error.
func ErrorMessage(err error) string {
	var invalidErr InvalidCoordinatesError
	if errors.As(err, &invalidErr) {
		return invalidErr.Error()
	}
	if msg := locator.StatusMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}

// ParseCoordinates reads the required lat and lon parameters.
func ParseCoordinates(params map[string]string) (models.Coordinate, error) {
	latStr, hasLat := params["lat"]
	lonStr, hasLon := params["lon"]

	if !hasLat || !hasLon {
		return models.Coordinate{}, InvalidCoordinatesError{Reason: "lat and lon are required"}
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.Coordinate{}, InvalidCoordinatesError{Reason: "lat is not a number"}
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return models.Coordinate{}, InvalidCoordinatesError{Reason: "lon is not a number"}
	}

	coord := models.Coordinate{Lat: lat, Lon: lon}
	if !geo.ValidCoordinate(coord) {
		return models.Coordinate{}, InvalidCoordinatesError{Reason: "out of range"}
	}

	return coord, nil
}

type InvalidCoordinatesError struct {
	Reason string
}

func (e InvalidCoordinatesError) Error() string {
	if e.Reason == "" {
		return "Invalid coordinates"
	}
	return "Invalid coordinates: " + e.Reason
}
