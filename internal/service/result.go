// README: Estimator output and its wire shape.
package service

import (
	"encoding/json"
	"math"

	"taxipred/internal/types"
)

// PredictionResult values are already rounded for presentation.
type PredictionResult struct {
	PredictedPrice float64
	DistanceKm     float64
	DurationMin    float64
	Pickup         types.Coordinate
	Dropoff        types.Coordinate
	Route          []types.Coordinate
}

type predictionResultJSON struct {
	PredictedPrice float64      `json:"predicted_price"`
	DistanceKm     float64      `json:"distance_km"`
	DurationMin    float64      `json:"duration_min"`
	PickupLat      float64      `json:"pickup_lat"`
	PickupLon      float64      `json:"pickup_lon"`
	DropoffLat     float64      `json:"dropoff_lat"`
	DropoffLon     float64      `json:"dropoff_lon"`
	Route          [][2]float64 `json:"route"`
}

// MarshalJSON emits the route as [lat, lon] pairs and never as null.
func (r PredictionResult) MarshalJSON() ([]byte, error) {
	route := make([][2]float64, 0, len(r.Route))
	for _, c := range r.Route {
		route = append(route, c.Pair())
	}
	return json.Marshal(predictionResultJSON{
		PredictedPrice: r.PredictedPrice,
		DistanceKm:     r.DistanceKm,
		DurationMin:    r.DurationMin,
		PickupLat:      r.Pickup.Lat,
		PickupLon:      r.Pickup.Lon,
		DropoffLat:     r.Dropoff.Lat,
		DropoffLon:     r.Dropoff.Lon,
		Route:          route,
	})
}

func (r *PredictionResult) UnmarshalJSON(data []byte) error {
	var raw predictionResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = PredictionResult{
		PredictedPrice: raw.PredictedPrice,
		DistanceKm:     raw.DistanceKm,
		DurationMin:    raw.DurationMin,
		Pickup:         types.Coordinate{Lat: raw.PickupLat, Lon: raw.PickupLon},
		Dropoff:        types.Coordinate{Lat: raw.DropoffLat, Lon: raw.DropoffLon},
		Route:          make([]types.Coordinate, 0, len(raw.Route)),
	}
	for _, p := range raw.Route {
		r.Route = append(r.Route, types.Coordinate{Lat: p[0], Lon: p[1]})
	}
	return nil
}

// roundTo rounds ties to even, so 11.25 becomes 11.2 and 12.125 becomes 12.12.
func roundTo(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.RoundToEven(x*p) / p
}
