package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aeroweather/backend/internal/domain"
)

// FlightRepository implements domain.FlightRepository on PostgreSQL.
type FlightRepository struct {
	pool *pgxpool.Pool
}

// NewFlightRepository creates a new PostgreSQL repository
func NewFlightRepository(pool *pgxpool.Pool) *FlightRepository {
	return &FlightRepository{pool: pool}
}

// InitSchema drops and recreates the flight_data table. All prior rows are
// discarded. Failures here are fatal and propagate to the caller.
func (r *FlightRepository) InitSchema(ctx context.Context) error {
	statements := []string{
		`DROP TABLE IF EXISTS flight_data`,
		`CREATE TABLE flight_data (
			id BIGSERIAL PRIMARY KEY,
			date DATE NOT NULL,
			airline TEXT NOT NULL,
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			delay_minutes DOUBLE PRECISION NOT NULL,
			temperature DOUBLE PRECISION,
			precipitation DOUBLE PRECISION,
			weather_condition TEXT,
			weather_delay BOOLEAN,
			wind_speed DOUBLE PRECISION,
			wind_direction DOUBLE PRECISION,
			visibility DOUBLE PRECISION,
			cloud_coverage INTEGER,
			humidity INTEGER,
			pressure DOUBLE PRECISION,
			collection_timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// Exact-duplicate rows collapse to one: the unique index spans every
		// value column, and Store inserts with ON CONFLICT DO NOTHING.
		`CREATE UNIQUE INDEX flight_data_dedup_idx ON flight_data (
			date, airline, origin, destination, delay_minutes, temperature,
			precipitation, weather_condition, weather_delay, wind_speed,
			wind_direction, visibility, cloud_coverage, humidity, pressure
		)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: failed to initialize schema: %w", err)
		}
	}

	return nil
}

// Store appends records. Rows identical to an existing row are skipped by the
// dedup index; row-level errors are logged and swallowed so one bad row does
// not sink the batch.
func (r *FlightRepository) Store(ctx context.Context, records []domain.FlightRecord) error {
	query := `
		INSERT INTO flight_data (
			date, airline, origin, destination, delay_minutes, temperature,
			precipitation, weather_condition, weather_delay, wind_speed,
			wind_direction, visibility, cloud_coverage, humidity, pressure
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT DO NOTHING
	`

	stored := 0
	for _, rec := range records {
		_, err := r.pool.Exec(ctx, query,
			rec.Date, rec.Airline, rec.Origin, rec.Destination, rec.DelayMinutes,
			rec.Temperature, rec.Precipitation, string(rec.Condition), rec.WeatherDelay,
			rec.WindSpeed, rec.WindDirection, rec.Visibility,
			int(rec.CloudCoverage), int(rec.Humidity), rec.Pressure,
		)
		if err != nil {
			log.Printf("postgres: failed to store flight record: %v", err)
			continue
		}
		stored++
	}

	log.Printf("postgres: stored %d/%d flight records", stored, len(records))
	return nil
}

// Query returns records whose date falls inclusively within [from, to]. Zero
// bounds are open; two zero bounds return the entire table.
func (r *FlightRepository) Query(ctx context.Context, from, to time.Time) ([]domain.FlightRecord, error) {
	query := `
		SELECT date, airline, origin, destination, delay_minutes, temperature,
			   precipitation, weather_condition, weather_delay, wind_speed,
			   wind_direction, visibility, cloud_coverage, humidity, pressure
		FROM flight_data
	`
	var args []interface{}
	switch {
	case !from.IsZero() && !to.IsZero():
		query += ` WHERE date BETWEEN $1 AND $2`
		args = append(args, from, to)
	case !from.IsZero():
		query += ` WHERE date >= $1`
		args = append(args, from)
	case !to.IsZero():
		query += ` WHERE date <= $1`
		args = append(args, to)
	}
	query += ` ORDER BY date, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query flight records: %w", err)
	}
	defer rows.Close()

	var results []domain.FlightRecord
	for rows.Next() {
		var rec domain.FlightRecord
		var condition string
		var cloudCoverage, humidity int
		err := rows.Scan(
			&rec.Date, &rec.Airline, &rec.Origin, &rec.Destination, &rec.DelayMinutes,
			&rec.Temperature, &rec.Precipitation, &condition, &rec.WeatherDelay,
			&rec.WindSpeed, &rec.WindDirection, &rec.Visibility,
			&cloudCoverage, &humidity, &rec.Pressure,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan flight row: %w", err)
		}
		rec.Condition = domain.Condition(condition)
		rec.CloudCoverage = float64(cloudCoverage)
		rec.Humidity = float64(humidity)
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read flight rows: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *FlightRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
