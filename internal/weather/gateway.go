package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aeroweather/backend/internal/domain"
)

// DefaultBaseURL points at the National Weather Service observation API.
const DefaultBaseURL = "https://api.weather.gov"

const cacheTTL = 30 * time.Minute

// Gateway fetches current observations per airport. It caches results per
// (airport, date) and falls back to the fixed default snapshot on any external
// failure: the gateway never returns an error to its caller.
type Gateway struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker

	mu    sync.Mutex
	cache map[string]cacheEntry

	// now is swappable in tests to exercise cache expiry.
	now func() time.Time
}

type cacheEntry struct {
	snapshot  domain.WeatherSnapshot
	fetchedAt time.Time
}

// NewGateway creates a Gateway. A nil client gets a 10-second-timeout default.
func NewGateway(client *http.Client, baseURL string) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nws",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Gateway{
		baseURL: baseURL,
		client:  client,
		breaker: cb,
		cache:   make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// GetWeather returns the snapshot for one airport on one date. Cache hits
// younger than 30 minutes are returned unchanged; everything else triggers a
// fresh fetch, degrading to the default snapshot on failure. Failed fetches
// are not cached, so the next call tries the service again.
func (g *Gateway) GetWeather(ctx context.Context, airportCode string, coords domain.Coordinates, date time.Time) domain.WeatherSnapshot {
	key := airportCode + "_" + date.Format("2006-01-02")

	g.mu.Lock()
	if entry, ok := g.cache[key]; ok && g.now().Sub(entry.fetchedAt) < cacheTTL {
		g.mu.Unlock()
		return entry.snapshot
	}
	g.mu.Unlock()

	snapshot, err := g.fetchObservation(ctx, coords)
	if err != nil {
		log.Printf("weather: fetch failed for %s: %v", airportCode, err)
		return domain.DefaultSnapshot()
	}

	g.mu.Lock()
	g.cache[key] = cacheEntry{snapshot: snapshot, fetchedAt: g.now()}
	g.mu.Unlock()

	return snapshot
}

// GetBulkWeather fetches all requested airports independently. An airport
// whose fetch fails simply receives the default snapshot.
func (g *Gateway) GetBulkWeather(ctx context.Context, airports map[string]domain.Coordinates, date time.Time) map[string]domain.WeatherSnapshot {
	result := make(map[string]domain.WeatherSnapshot, len(airports))
	for code, coords := range airports {
		result[code] = g.GetWeather(ctx, code, coords, date)
	}
	return result
}

// quantValue mirrors the NWS QuantitativeValue payload shape; Value is null
// when the station did not report the measurement.
type quantValue struct {
	Value *float64 `json:"value"`
}

type observationProperties struct {
	Temperature           quantValue `json:"temperature"`
	WindChill             quantValue `json:"windChill"`
	HeatIndex             quantValue `json:"heatIndex"`
	RelativeHumidity      quantValue `json:"relativeHumidity"`
	BarometricPressure    quantValue `json:"barometricPressure"`
	WindSpeed             quantValue `json:"windSpeed"`
	WindDirection         quantValue `json:"windDirection"`
	Visibility            quantValue `json:"visibility"`
	PrecipitationLastHour quantValue `json:"precipitationLastHour"`
	TextDescription       string     `json:"textDescription"`
	CloudLayers           []struct {
		Amount string `json:"amount"`
	} `json:"cloudLayers"`
}

// fetchObservation performs the three-hop lookup: geographic point -> nearest
// observation station -> latest observation. The whole sequence runs inside
// the circuit breaker so a flapping upstream fails fast to defaults.
func (g *Gateway) fetchObservation(ctx context.Context, coords domain.Coordinates) (domain.WeatherSnapshot, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		var points struct {
			Properties struct {
				ObservationStations string `json:"observationStations"`
			} `json:"properties"`
		}
		pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", g.baseURL, coords.Lat, coords.Lon)
		if err := g.getJSON(ctx, pointsURL, &points); err != nil {
			return nil, fmt.Errorf("resolve point: %w", err)
		}
		if points.Properties.ObservationStations == "" {
			return nil, fmt.Errorf("point response missing observation stations URL")
		}

		var stations struct {
			Features []struct {
				ID string `json:"id"`
			} `json:"features"`
		}
		if err := g.getJSON(ctx, points.Properties.ObservationStations, &stations); err != nil {
			return nil, fmt.Errorf("resolve stations: %w", err)
		}
		if len(stations.Features) == 0 {
			return nil, fmt.Errorf("no observation stations for point")
		}

		var observation struct {
			Properties observationProperties `json:"properties"`
		}
		latestURL := stations.Features[0].ID + "/observations/latest"
		if err := g.getJSON(ctx, latestURL, &observation); err != nil {
			return nil, fmt.Errorf("fetch observation: %w", err)
		}

		return buildSnapshot(observation.Properties), nil
	})
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	return result.(domain.WeatherSnapshot), nil
}

func (g *Gateway) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/geo+json")
	req.Header.Set("User-Agent", "(aeroweather-backend, ops@aeroweather.example)")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// buildSnapshot converts raw observation properties into a normalized
// snapshot, applying unit conversions and per-field fallbacks.
func buildSnapshot(p observationProperties) domain.WeatherSnapshot {
	return domain.WeatherSnapshot{
		Temperature:   domain.Float(ToFahrenheit(p.Temperature.Value)),
		Precipitation: domain.Float(valueOr(p.PrecipitationLastHour.Value, 0)),
		WindSpeed:     domain.Float(MetersPerSecondToMPH(p.WindSpeed.Value)),
		WindDirection: domain.Float(valueOr(p.WindDirection.Value, 0)),
		Visibility:    domain.Float(MetersToMiles(p.Visibility.Value)),
		CloudCoverage: domain.Float(float64(ParseCloudCoverage(cloudAmounts(p.CloudLayers)))),
		Humidity:      domain.Float(valueOr(p.RelativeHumidity.Value, 50)),
		Pressure:      domain.Float(PascalsToHPa(p.BarometricPressure.Value)),
		Condition:     MapCondition(p.TextDescription),
		Timestamp:     time.Now().UTC(),
	}
}

func cloudAmounts(layers []struct {
	Amount string `json:"amount"`
}) []string {
	amounts := make([]string, 0, len(layers))
	for _, l := range layers {
		amounts = append(amounts, l.Amount)
	}
	return amounts
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
