package simulator

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aeroweather/backend/internal/domain"
)

// meanFlightsPerRoute is the Poisson mean for daily flight counts on one
// (airline, origin, destination) triple.
const meanFlightsPerRoute = 5

// Simulator generates stochastic flight-delay records for one day from a
// weather snapshot per airport. The random source is injected so tests can
// pin a seed; production callers pass nil and get a time-seeded source.
type Simulator struct {
	src rand.Source
}

// New creates a Simulator. A nil source is replaced by a time-seeded one.
func New(src rand.Source) *Simulator {
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	return &Simulator{src: src}
}

// Generate emits records for every (airline, origin, destination) triple with
// origin != destination. The snapshot for an airport may be partial or absent
// entirely; each missing field falls back to an independent draw from a broad
// default distribution.
func (s *Simulator) Generate(weather map[string]domain.WeatherSnapshot, date time.Time) ([]domain.FlightRecord, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("simulator: target date is required")
	}

	poisson := distuv.Poisson{Lambda: meanFlightsPerRoute, Src: s.src}
	airports := domain.AirportCodes()

	var records []domain.FlightRecord
	for _, airline := range domain.Airlines {
		for _, origin := range airports {
			for _, dest := range airports {
				if origin == dest {
					continue
				}

				snapshot := weather[origin]
				numFlights := int(poisson.Rand())
				for i := 0; i < numFlights; i++ {
					records = append(records, s.simulateFlight(airline, origin, dest, snapshot, date))
				}
			}
		}
	}

	return records, nil
}

func (s *Simulator) simulateFlight(airline, origin, dest string, snapshot domain.WeatherSnapshot, date time.Time) domain.FlightRecord {
	record := domain.FlightRecord{
		Date:          date,
		Airline:       airline,
		Origin:        origin,
		Destination:   dest,
		Temperature:   s.valueOr(snapshot.Temperature, s.normal(50, 15)),
		Precipitation: s.valueOr(snapshot.Precipitation, s.beta(2, 5)),
		Condition:     snapshot.Condition,
		WindSpeed:     s.valueOr(snapshot.WindSpeed, s.uniform(0, 20)),
		WindDirection: s.valueOr(snapshot.WindDirection, s.uniformInt(0, 360)),
		Visibility:    s.valueOr(snapshot.Visibility, s.uniform(5, 15)),
		CloudCoverage: s.valueOr(snapshot.CloudCoverage, s.uniformInt(0, 100)),
		Humidity:      s.valueOr(snapshot.Humidity, s.uniformInt(30, 90)),
		Pressure:      s.valueOr(snapshot.Pressure, s.normal(1013, 5)),
	}
	if record.Condition == "" {
		record.Condition = domain.ConditionClear
	}

	// Additive delay model: airline and origin-airport factors, a linear
	// precipitation term, a mild cold-weather term, and a regime shift when
	// precipitation is heavy (snow regime dominates rain regime below
	// freezing).
	alpha := 0.0
	if record.Precipitation >= 0.3 {
		alpha = s.normalDraw(10, 3)
		if record.Temperature <= 32 {
			alpha = s.normalDraw(25, 5)
		}
	}

	airlineParams := domain.AirlineDelayParams[airline]
	airportParams := domain.AirportDelayParams[origin]
	airlineFactor := s.normalDraw(airlineParams.Mu, airlineParams.Sigma)
	airportFactor := s.normalDraw(airportParams.Mu, airportParams.Sigma)
	tempFactor := (100 - record.Temperature) * 0.01

	baseDelay := 0.5*airlineFactor + 0.5*airportFactor + record.Precipitation*20 + tempFactor + alpha
	record.DelayMinutes = math.Max(0, baseDelay)
	record.WeatherDelay = record.DelayMinutes > 30

	return record
}

// valueOr returns the snapshot field if present, otherwise invokes the
// fallback draw. The draw function is lazy so absent fields cost exactly one
// random variate and present fields cost none.
func (s *Simulator) valueOr(v *float64, draw func() float64) float64 {
	if v != nil {
		return *v
	}
	return draw()
}

func (s *Simulator) normal(mu, sigma float64) func() float64 {
	return func() float64 { return s.normalDraw(mu, sigma) }
}

func (s *Simulator) normalDraw(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}

func (s *Simulator) beta(alpha, beta float64) func() float64 {
	return func() float64 {
		return distuv.Beta{Alpha: alpha, Beta: beta, Src: s.src}.Rand()
	}
}

func (s *Simulator) uniform(min, max float64) func() float64 {
	return func() float64 {
		return distuv.Uniform{Min: min, Max: max, Src: s.src}.Rand()
	}
}

func (s *Simulator) uniformInt(min, max float64) func() float64 {
	return func() float64 {
		return math.Floor(distuv.Uniform{Min: min, Max: max, Src: s.src}.Rand())
	}
}
