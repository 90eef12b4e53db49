package locator

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned by a run that finished after a newer run started.
var ErrSuperseded = errors.New("superseded by a newer request")

// LocationUnavailableError means the user's position could not be determined.
type LocationUnavailableError struct {
	Err error
}

func (e *LocationUnavailableError) Error() string {
	return fmt.Sprintf("location unavailable: %v", e.Err)
}

func (e *LocationUnavailableError) Unwrap() error {
	return e.Err
}

func NewLocationUnavailableError(err error) *LocationUnavailableError {
	return &LocationUnavailableError{Err: err}
}

// RegionLookupError means reverse geocoding of the user's position failed.
type RegionLookupError struct {
	Err error
}

func (e *RegionLookupError) Error() string {
	return fmt.Sprintf("region lookup failed: %v", e.Err)
}

func (e *RegionLookupError) Unwrap() error {
	return e.Err
}

func NewRegionLookupError(err error) *RegionLookupError {
	return &RegionLookupError{Err: err}
}

// StationFetchError means the station backend call failed.
type StationFetchError struct {
	Err error
}

func (e *StationFetchError) Error() string {
	return fmt.Sprintf("station fetch failed: %v", e.Err)
}

func (e *StationFetchError) Unwrap() error {
	return e.Err
}

func NewStationFetchError(err error) *StationFetchError {
	return &StationFetchError{Err: err}
}
