package weather

import (
	"strings"

	"github.com/aeroweather/backend/internal/domain"
)

// conditionTable maps vendor condition phrases to normalized conditions.
// Matching is case-insensitive substring search in table order, so broader
// phrases ("RAIN") catch anything their more specific variants would.
var conditionTable = []struct {
	phrase    string
	condition domain.Condition
}{
	{"CLEAR", domain.ConditionClear},
	{"SUNNY", domain.ConditionClear},
	{"FAIR", domain.ConditionClear},
	{"MOSTLY CLEAR", domain.ConditionClear},
	{"PARTLY CLOUDY", domain.ConditionClouds},
	{"MOSTLY CLOUDY", domain.ConditionClouds},
	{"CLOUDY", domain.ConditionClouds},
	{"OVERCAST", domain.ConditionClouds},
	{"RAIN", domain.ConditionRain},
	{"LIGHT RAIN", domain.ConditionRain},
	{"HEAVY RAIN", domain.ConditionRain},
	{"DRIZZLE", domain.ConditionRain},
	{"SHOWERS", domain.ConditionRain},
	{"SNOW", domain.ConditionSnow},
	{"LIGHT SNOW", domain.ConditionSnow},
	{"HEAVY SNOW", domain.ConditionSnow},
	{"SNOW SHOWERS", domain.ConditionSnow},
	{"FOG", domain.ConditionFog},
	{"MIST", domain.ConditionFog},
	{"HAZE", domain.ConditionFog},
	{"THUNDERSTORM", domain.ConditionThunderstorm},
	{"THUNDERSTORMS", domain.ConditionThunderstorm},
	{"T-STORM", domain.ConditionThunderstorm},
}

// MapCondition normalizes a free-text condition description. Empty or
// unrecognized descriptions map to Clear.
func MapCondition(description string) domain.Condition {
	if description == "" {
		return domain.ConditionClear
	}

	upper := strings.ToUpper(description)
	for _, entry := range conditionTable {
		if strings.Contains(upper, entry.phrase) {
			return entry.condition
		}
	}

	return domain.ConditionClear
}

// cloudCoverageValues translates METAR-style layer amount codes into percent
// sky coverage.
var cloudCoverageValues = map[string]int{
	"CLR": 0,
	"FEW": 25,
	"SCT": 50,
	"BKN": 75,
	"OVC": 100,
	"VV":  100,
}

// ParseCloudCoverage returns the maximum coverage across all layers; the most
// severe layer dominates. No layers means clear sky.
func ParseCloudCoverage(amounts []string) int {
	maxCoverage := 0
	for _, amount := range amounts {
		coverage := cloudCoverageValues[strings.ToUpper(amount)]
		if coverage > maxCoverage {
			maxCoverage = coverage
		}
	}
	return maxCoverage
}

// ToFahrenheit converts a Celsius reading; a nil reading falls back to 68.0F.
func ToFahrenheit(celsius *float64) float64 {
	if celsius == nil {
		return 68.0
	}
	return (*celsius * 9 / 5) + 32
}

// MetersPerSecondToMPH converts wind speed; a nil reading falls back to 0.
func MetersPerSecondToMPH(ms *float64) float64 {
	if ms == nil {
		return 0
	}
	return *ms * 2.237
}

// MetersToMiles converts visibility; a nil reading falls back to 10 miles.
func MetersToMiles(meters *float64) float64 {
	if meters == nil {
		return 10.0
	}
	return *meters * 0.000621371
}

// PascalsToHPa converts barometric pressure; a nil reading falls back to the
// standard atmosphere, 1013.25 hPa.
func PascalsToHPa(pascals *float64) float64 {
	if pascals == nil {
		return 1013.25
	}
	return *pascals / 100
}
