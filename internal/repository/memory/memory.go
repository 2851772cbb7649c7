package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aeroweather/backend/internal/domain"
	"github.com/aeroweather/backend/pkg/utils"
)

// FlightRepository is an in-memory domain.FlightRepository used for tests and
// for running without a database. It mirrors the PostgreSQL implementation's
// semantics: append-only storage with exact-duplicate collapse and inclusive
// date-range queries.
type FlightRepository struct {
	mu      sync.RWMutex
	records []domain.FlightRecord
	seen    map[string]struct{}
}

// NewFlightRepository creates an empty in-memory repository.
func NewFlightRepository() *FlightRepository {
	return &FlightRepository{seen: make(map[string]struct{})}
}

// InitSchema discards all stored records.
func (r *FlightRepository) InitSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	r.seen = make(map[string]struct{})
	return nil
}

// Store appends records, collapsing rows identical to an already stored row.
func (r *FlightRepository) Store(ctx context.Context, records []domain.FlightRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		key := recordKey(rec)
		if _, dup := r.seen[key]; dup {
			continue
		}
		r.seen[key] = struct{}{}
		r.records = append(r.records, rec)
	}
	return nil
}

// Query returns records whose date falls inclusively within [from, to]. Zero
// bounds are open.
func (r *FlightRepository) Query(ctx context.Context, from, to time.Time) ([]domain.FlightRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []domain.FlightRecord
	for _, rec := range r.records {
		day := utils.DateOnly(rec.Date)
		if !from.IsZero() && day.Before(utils.DateOnly(from)) {
			continue
		}
		if !to.IsZero() && day.After(utils.DateOnly(to)) {
			continue
		}
		results = append(results, rec)
	}
	return results, nil
}

// Health always succeeds for the in-memory repository.
func (r *FlightRepository) Health(ctx context.Context) error {
	return nil
}

func recordKey(rec domain.FlightRecord) string {
	return fmt.Sprintf("%s|%s|%s|%s|%v|%v|%v|%s|%t|%v|%v|%v|%v|%v|%v",
		rec.Date.Format("2006-01-02"), rec.Airline, rec.Origin, rec.Destination,
		rec.DelayMinutes, rec.Temperature, rec.Precipitation, rec.Condition,
		rec.WeatherDelay, rec.WindSpeed, rec.WindDirection, rec.Visibility,
		rec.CloudCoverage, rec.Humidity, rec.Pressure,
	)
}
