package simulator

import (
	"testing"
	"time"

	"golang.org/x/exp/rand"

	"github.com/aeroweather/backend/internal/domain"
)

func defaultWeather() map[string]domain.WeatherSnapshot {
	weather := make(map[string]domain.WeatherSnapshot)
	for _, code := range domain.AirportCodes() {
		weather[code] = domain.DefaultSnapshot()
	}
	return weather
}

func TestGenerateStructuralProperties(t *testing.T) {
	sim := New(rand.NewSource(1))
	date := time.Date(2024, 12, 11, 0, 0, 0, 0, time.UTC)

	records, err := sim.Generate(defaultWeather(), date)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected records to be generated")
	}

	validAirports := make(map[string]bool)
	for _, code := range domain.AirportCodes() {
		validAirports[code] = true
	}
	validAirlines := make(map[string]bool)
	for _, a := range domain.Airlines {
		validAirlines[a] = true
	}

	for _, rec := range records {
		if rec.Origin == rec.Destination {
			t.Fatalf("record with origin == destination: %s", rec.Origin)
		}
		if !validAirports[rec.Origin] || !validAirports[rec.Destination] {
			t.Fatalf("record with airport outside fixed set: %s -> %s", rec.Origin, rec.Destination)
		}
		if !validAirlines[rec.Airline] {
			t.Fatalf("record with airline outside fixed set: %s", rec.Airline)
		}
		if rec.DelayMinutes < 0 {
			t.Fatalf("negative delay: %v", rec.DelayMinutes)
		}
		if rec.WeatherDelay != (rec.DelayMinutes > 30) {
			t.Fatalf("weather_delay inconsistent with delay %v", rec.DelayMinutes)
		}
		if !rec.Date.Equal(date) {
			t.Fatalf("record date %v, want %v", rec.Date, date)
		}
	}
}

func TestGenerateUsesSnapshotValues(t *testing.T) {
	sim := New(rand.NewSource(7))
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	records, err := sim.Generate(defaultWeather(), date)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, rec := range records {
		if rec.Temperature != 68.0 {
			t.Fatalf("temperature = %v, want snapshot value 68.0", rec.Temperature)
		}
		if rec.Precipitation != 0 {
			t.Fatalf("precipitation = %v, want snapshot value 0", rec.Precipitation)
		}
		if rec.Condition != domain.ConditionClear {
			t.Fatalf("condition = %q, want Clear", rec.Condition)
		}
	}
}

func TestGeneratePerFieldFallback(t *testing.T) {
	sim := New(rand.NewSource(3))
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// Snapshots carrying only a temperature: every other field must be drawn
	// from the broad default distributions.
	weather := make(map[string]domain.WeatherSnapshot)
	for _, code := range domain.AirportCodes() {
		weather[code] = domain.WeatherSnapshot{Temperature: domain.Float(55)}
	}

	records, err := sim.Generate(weather, date)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	sawPrecip := false
	for _, rec := range records {
		if rec.Temperature != 55 {
			t.Fatalf("temperature = %v, want pinned 55", rec.Temperature)
		}
		if rec.Condition != domain.ConditionClear {
			t.Fatalf("missing condition should fall back to Clear, got %q", rec.Condition)
		}
		if rec.Precipitation < 0 || rec.Precipitation > 1 {
			t.Fatalf("fallback precipitation %v outside Beta(2,5) support", rec.Precipitation)
		}
		if rec.Precipitation > 0 {
			sawPrecip = true
		}
		if rec.WindSpeed < 0 || rec.WindSpeed > 20 {
			t.Fatalf("fallback wind speed %v outside [0,20]", rec.WindSpeed)
		}
		if rec.Humidity < 30 || rec.Humidity >= 90 {
			t.Fatalf("fallback humidity %v outside [30,90)", rec.Humidity)
		}
	}
	if !sawPrecip {
		t.Error("expected at least one nonzero fallback precipitation draw")
	}
}

func TestGenerateMissingAirportSnapshot(t *testing.T) {
	sim := New(rand.NewSource(11))
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// No weather at all: the simulator still produces a full day of records.
	records, err := sim.Generate(map[string]domain.WeatherSnapshot{}, date)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected records despite missing weather")
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	date := time.Date(2024, 12, 11, 0, 0, 0, 0, time.UTC)

	a, err := New(rand.NewSource(42)).Generate(defaultWeather(), date)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := New(rand.NewSource(42)).Generate(defaultWeather(), date)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("seeded runs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded runs diverge at record %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateRejectsZeroDate(t *testing.T) {
	sim := New(rand.NewSource(1))
	if _, err := sim.Generate(defaultWeather(), time.Time{}); err == nil {
		t.Fatal("expected error for zero date")
	}
}
