package domain

import (
	"context"
	"time"
)

// FlightRepository is the persistence contract for flight records.
// This follows the Dependency Inversion Principle - domain defines the interface.
type FlightRepository interface {
	// InitSchema drops and recreates the flight table. Destructive.
	InitSchema(ctx context.Context) error

	// Store appends records. Exact-duplicate rows collapse to one; row-level
	// failures are logged and swallowed (the batch is best-effort).
	Store(ctx context.Context, records []FlightRecord) error

	// Query returns records whose date falls inclusively within [from, to].
	// A zero from or to leaves that bound open; two zero bounds return the
	// entire table.
	Query(ctx context.Context, from, to time.Time) ([]FlightRecord, error)

	// Health checks storage connectivity.
	Health(ctx context.Context) error
}

// WeatherGateway fetches per-airport weather snapshots. Implementations never
// return an error for external-service failures; they degrade to the default
// snapshot instead.
type WeatherGateway interface {
	// GetWeather returns the snapshot for one airport on one date.
	GetWeather(ctx context.Context, airportCode string, coords Coordinates, date time.Time) WeatherSnapshot

	// GetBulkWeather fetches all requested airports independently; a failure
	// for one airport does not abort the others.
	GetBulkWeather(ctx context.Context, airports map[string]Coordinates, date time.Time) map[string]WeatherSnapshot
}

// RecordGenerator produces the synthetic flight records for one day.
type RecordGenerator interface {
	Generate(weather map[string]WeatherSnapshot, date time.Time) ([]FlightRecord, error)
}

// PredictionRequest is the input for a delay prediction.
type PredictionRequest struct {
	Temperature   *float64 `json:"temperature" validate:"required"`
	Precipitation *float64 `json:"precipitation" validate:"required"`
	Date          string   `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// PredictionResponse is a point estimate with a confidence interval.
type PredictionResponse struct {
	Prediction float64 `json:"prediction"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	Confidence float64 `json:"confidence"`
}
