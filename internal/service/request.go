// README: Validated trip request accepted by the estimator.
package service

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"taxipred/internal/modules/features"
)

const (
	MinAddressLength = 3
	MinPassengers    = 1
	MaxPassengers    = 8
	DefaultPassenger = 1
)

var ErrValidation = errors.New("validation failed")

// ValidationError names the offending request field by its JSON key.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TripRequest is immutable once built; use NewTripRequest.
type TripRequest struct {
	pickup     string
	dropoff    string
	weather    features.Weather
	passengers int
}

// NewTripRequest applies defaults (Clear weather, one passenger) for nil
// arguments and validates. Addresses are kept exactly as given.
func NewTripRequest(pickup, dropoff string, weather *string, passengers *int) (TripRequest, error) {
	r := TripRequest{
		pickup:     pickup,
		dropoff:    dropoff,
		weather:    features.WeatherClear,
		passengers: DefaultPassenger,
	}
	if weather != nil {
		w, err := features.ParseWeather(*weather)
		if err != nil {
			return TripRequest{}, &ValidationError{Field: "weather", Message: "weather must be one of Clear, Rain, Snow"}
		}
		r.weather = w
	}
	if passengers != nil {
		r.passengers = *passengers
	}
	if err := r.Validate(); err != nil {
		return TripRequest{}, err
	}
	return r, nil
}

func (r TripRequest) Validate() error {
	if utf8.RuneCountInString(r.pickup) < MinAddressLength {
		return &ValidationError{Field: "pickup_address", Message: fmt.Sprintf("pickup_address must be at least %d characters", MinAddressLength)}
	}
	if utf8.RuneCountInString(r.dropoff) < MinAddressLength {
		return &ValidationError{Field: "dropoff_address", Message: fmt.Sprintf("dropoff_address must be at least %d characters", MinAddressLength)}
	}
	if _, err := features.ParseWeather(string(r.weather)); err != nil {
		return &ValidationError{Field: "weather", Message: "weather must be one of Clear, Rain, Snow"}
	}
	if r.passengers < MinPassengers || r.passengers > MaxPassengers {
		return &ValidationError{Field: "passenger_count", Message: fmt.Sprintf("passenger_count must be between %d and %d", MinPassengers, MaxPassengers)}
	}
	return nil
}

func (r TripRequest) Pickup() string            { return r.pickup }
func (r TripRequest) Dropoff() string           { return r.dropoff }
func (r TripRequest) Weather() features.Weather { return r.weather }
func (r TripRequest) Passengers() int           { return r.passengers }
