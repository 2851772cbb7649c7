package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aeroweather/backend/internal/domain"
)

var testCoords = domain.Coordinates{Lat: 47.4484, Lon: -122.3790}

// newObservationServer fakes the three-hop point/stations/observation API.
// tempC is the Celsius reading the latest observation reports.
func newObservationServer(t *testing.T, tempC float64) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/points/"):
			fmt.Fprintf(w, `{"properties":{"observationStations":"%s/stations"}}`, srv.URL)
		case r.URL.Path == "/stations":
			fmt.Fprintf(w, `{"features":[{"id":"%s/stations/KSEA"}]}`, srv.URL)
		case r.URL.Path == "/stations/KSEA/observations/latest":
			fmt.Fprintf(w, `{"properties":{
				"temperature":{"value":%v},
				"windSpeed":{"value":10},
				"windDirection":{"value":180},
				"visibility":{"value":16093.44},
				"relativeHumidity":{"value":80},
				"barometricPressure":{"value":101325},
				"precipitationLastHour":{"value":null},
				"textDescription":"Light Rain",
				"cloudLayers":[{"amount":"FEW"},{"amount":"BKN"}]
			}}`, tempC)
		default:
			http.NotFound(w, r)
		}
	}))
	return srv
}

func TestGetWeatherParsesObservation(t *testing.T) {
	srv := newObservationServer(t, 0)
	defer srv.Close()

	g := NewGateway(srv.Client(), srv.URL)
	snap := g.GetWeather(context.Background(), "SEA", testCoords, time.Now())

	if got := *snap.Temperature; got != 32.0 {
		t.Errorf("temperature = %v, want 32.0", got)
	}
	if got := *snap.WindSpeed; got != 22.37 {
		t.Errorf("wind speed = %v, want 22.37", got)
	}
	if got := *snap.Visibility; got < 9.99 || got > 10.01 {
		t.Errorf("visibility = %v, want ~10 miles", got)
	}
	if got := *snap.CloudCoverage; got != 75 {
		t.Errorf("cloud coverage = %v, want 75 (BKN dominates FEW)", got)
	}
	if got := *snap.Pressure; got != 1013.25 {
		t.Errorf("pressure = %v, want 1013.25", got)
	}
	if got := *snap.Precipitation; got != 0 {
		t.Errorf("precipitation = %v, want 0 for null reading", got)
	}
	if snap.Condition != domain.ConditionRain {
		t.Errorf("condition = %q, want Rain", snap.Condition)
	}
}

func TestGetWeatherDegradesToDefaultOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGateway(srv.Client(), srv.URL)
	snap := g.GetWeather(context.Background(), "SEA", testCoords, time.Now())

	want := domain.DefaultSnapshot()
	if *snap.Temperature != *want.Temperature ||
		*snap.Precipitation != *want.Precipitation ||
		*snap.WindSpeed != *want.WindSpeed ||
		*snap.WindDirection != *want.WindDirection ||
		*snap.Visibility != *want.Visibility ||
		*snap.CloudCoverage != *want.CloudCoverage ||
		*snap.Humidity != *want.Humidity ||
		*snap.Pressure != *want.Pressure ||
		snap.Condition != want.Condition {
		t.Errorf("failure snapshot %+v does not equal default vector", snap)
	}
}

func TestGetWeatherCachesPerAirportAndDate(t *testing.T) {
	srv := newObservationServer(t, 20)
	defer srv.Close()

	g := NewGateway(srv.Client(), srv.URL)
	date := time.Date(2024, 12, 11, 0, 0, 0, 0, time.UTC)

	first := g.GetWeather(context.Background(), "SEA", testCoords, date)
	srv.Close() // later calls can only succeed from cache

	second := g.GetWeather(context.Background(), "SEA", testCoords, date)
	if *first.Temperature != *second.Temperature {
		t.Errorf("cached snapshot differs: %v vs %v", *first.Temperature, *second.Temperature)
	}
	if *second.Temperature != 68.0 {
		t.Errorf("cached temperature = %v, want 68.0 (20C)", *second.Temperature)
	}

	// A different date misses the cache; with the server gone it degrades.
	other := g.GetWeather(context.Background(), "SEA", testCoords, date.AddDate(0, 0, 1))
	if other.Condition != domain.ConditionClear || *other.Temperature != 68.0 {
		t.Errorf("cache miss should degrade to default, got %+v", other)
	}
}

func TestGetWeatherCacheExpires(t *testing.T) {
	srv := newObservationServer(t, 20)
	defer srv.Close()

	g := NewGateway(srv.Client(), srv.URL)
	current := time.Date(2024, 12, 11, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return current }

	date := time.Date(2024, 12, 11, 0, 0, 0, 0, time.UTC)
	g.GetWeather(context.Background(), "SEA", testCoords, date)
	srv.Close()

	// Entry older than the TTL forces a refetch, which now fails.
	current = current.Add(31 * time.Minute)
	snap := g.GetWeather(context.Background(), "SEA", testCoords, date)
	if snap.Condition != domain.ConditionClear || *snap.CloudCoverage != 0 {
		t.Errorf("expired cache entry should not be served, got %+v", snap)
	}
}

func TestGetBulkWeatherIsolatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGateway(srv.Client(), srv.URL)
	result := g.GetBulkWeather(context.Background(), domain.AirportCoordinates, time.Now())

	if len(result) != len(domain.AirportCoordinates) {
		t.Fatalf("got %d snapshots, want %d", len(result), len(domain.AirportCoordinates))
	}
	for code, snap := range result {
		if *snap.Temperature != 68.0 {
			t.Errorf("airport %s should receive the default snapshot, got temp %v", code, *snap.Temperature)
		}
	}
}
