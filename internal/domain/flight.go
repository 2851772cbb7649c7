package domain

import "time"

// FlightRecord is one simulated flight-delay observation. Records are created
// in bulk per collection day, persisted append-only, and never mutated.
type FlightRecord struct {
	Date          time.Time `json:"date"`
	Airline       string    `json:"airline"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DelayMinutes  float64   `json:"delay_minutes"`
	Temperature   float64   `json:"temperature"`
	Precipitation float64   `json:"precipitation"`
	Condition     Condition `json:"weather_condition"`
	WeatherDelay  bool      `json:"weather_delay"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection float64   `json:"wind_direction"`
	Visibility    float64   `json:"visibility"`
	CloudCoverage float64   `json:"cloud_coverage"`
	Humidity      float64   `json:"humidity"`
	Pressure      float64   `json:"pressure"`
}

// DelayParams are the mean and standard deviation of a normal distribution
// feeding one additive delay factor.
type DelayParams struct {
	Mu    float64
	Sigma float64
}

// Airlines is the fixed carrier set.
var Airlines = []string{"Delta", "United", "American", "Southwest", "JetBlue"}

// AirlineDelayParams parameterizes the per-airline delay factor.
var AirlineDelayParams = map[string]DelayParams{
	"Delta":     {15, 10},
	"United":    {20, 5},
	"American":  {10, 14},
	"Southwest": {12, 8},
	"JetBlue":   {30, 7},
}

// AirportCoordinates is the universe of valid origin/destination codes.
var AirportCoordinates = map[string]Coordinates{
	"SEA": {47.4484, -122.3790},
	"LAX": {33.9416, -118.4085},
	"LGA": {40.7766, -73.8742},
	"DFW": {32.8998, -97.0403},
	"MIA": {25.7959, -80.2870},
}

// AirportDelayParams parameterizes the per-origin delay factor.
var AirportDelayParams = map[string]DelayParams{
	"SEA": {30, 10},
	"LAX": {15, 3.75},
	"LGA": {10, 4},
	"DFW": {15, 8},
	"MIA": {12, 6},
}

// AirportCodes returns the airport set in a stable order.
func AirportCodes() []string {
	return []string{"DFW", "LAX", "LGA", "MIA", "SEA"}
}
