package domain

import "time"

// Condition is a normalized weather condition bucket.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionSnow         Condition = "Snow"
	ConditionFog          Condition = "Fog"
	ConditionThunderstorm Condition = "Thunderstorm"
)

// WeatherSnapshot holds one airport's conditions for one date.
//
// Numeric fields are pointers because upstream observation payloads report
// every measurement as a nullable value; a nil field means the source did not
// report it. The gateway fills every field before handing a snapshot to
// callers, but consumers must tolerate partial snapshots.
type WeatherSnapshot struct {
	Temperature   *float64  `json:"temperature"`    // degrees Fahrenheit
	Precipitation *float64  `json:"precipitation"`  // inches per hour
	WindSpeed     *float64  `json:"wind_speed"`     // miles per hour
	WindDirection *float64  `json:"wind_direction"` // degrees
	Visibility    *float64  `json:"visibility"`     // miles
	CloudCoverage *float64  `json:"cloud_coverage"` // 0-100
	Humidity      *float64  `json:"humidity"`       // 0-100
	Pressure      *float64  `json:"pressure"`       // hPa
	Condition     Condition `json:"weather_condition"`
	Timestamp     time.Time `json:"timestamp"`
}

// Float is a convenience for building snapshot literals.
func Float(v float64) *float64 { return &v }

// DefaultSnapshot returns the fixed fallback vector used whenever the
// external weather service cannot be reached or returns garbage.
func DefaultSnapshot() WeatherSnapshot {
	return WeatherSnapshot{
		Temperature:   Float(68.0),
		Precipitation: Float(0),
		WindSpeed:     Float(0),
		WindDirection: Float(0),
		Visibility:    Float(10),
		CloudCoverage: Float(0),
		Humidity:      Float(50),
		Pressure:      Float(1013.25),
		Condition:     ConditionClear,
		Timestamp:     time.Now().UTC(),
	}
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
