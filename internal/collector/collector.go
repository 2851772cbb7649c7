package collector

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/aeroweather/backend/internal/domain"
	"github.com/aeroweather/backend/pkg/utils"
)

// Collector walks a date range day by day, fetching weather and generating
// flight records per day, then cleans and persists the combined batch. All
// dependencies are injected so the pipeline can run against stub gateways and
// in-memory repositories.
type Collector struct {
	gateway   domain.WeatherGateway
	generator domain.RecordGenerator
	repo      domain.FlightRepository
}

// Summary describes one collection run.
type Summary struct {
	RunID      string `json:"run_id"`
	Days       int    `json:"days"`
	DaysFailed int    `json:"days_failed"`
	Records    int    `json:"records"`
}

// New creates a Collector.
func New(gateway domain.WeatherGateway, generator domain.RecordGenerator, repo domain.FlightRepository) *Collector {
	return &Collector{gateway: gateway, generator: generator, repo: repo}
}

// Run collects data for every calendar day in [start, end] inclusive. A
// per-day failure is logged and that day skipped; it does not halt subsequent
// days. With force set, the database is reinitialized first and all prior
// data discarded. Zero collected days end the run as a no-op. After a write,
// the stored range is re-queried and an empty result is a data-integrity
// failure that propagates.
func (c *Collector) Run(ctx context.Context, start, end time.Time, force bool) (Summary, error) {
	runID := uuid.NewString()
	summary := Summary{RunID: runID}

	start = utils.DateOnly(start)
	end = utils.DateOnly(end)
	if end.Before(start) {
		return summary, fmt.Errorf("collector: end date %s precedes start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	if force {
		log.Printf("collector[%s]: force flag set, reinitializing database", runID)
		if err := c.repo.InitSchema(ctx); err != nil {
			return summary, fmt.Errorf("collector: failed to reinitialize database: %w", err)
		}
	}

	log.Printf("collector[%s]: collecting from %s to %s", runID,
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	var all []domain.FlightRecord
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		weather := c.gateway.GetBulkWeather(ctx, domain.AirportCoordinates, day)
		records, err := c.generator.Generate(weather, day)
		if err != nil {
			log.Printf("collector[%s]: skipping %s: %v", runID, day.Format("2006-01-02"), err)
			summary.DaysFailed++
			continue
		}

		all = append(all, records...)
		summary.Days++
	}

	if len(all) == 0 {
		log.Printf("collector[%s]: no data collected for any day; nothing to store", runID)
		return summary, nil
	}

	cleaned := Clean(all)
	summary.Records = len(cleaned)

	if err := c.repo.Store(ctx, cleaned); err != nil {
		return summary, fmt.Errorf("collector: failed to store records: %w", err)
	}

	stored, err := c.repo.Query(ctx, start, end)
	if err != nil {
		return summary, fmt.Errorf("collector: post-write verification query failed: %w", err)
	}
	if len(stored) == 0 {
		return summary, fmt.Errorf("collector: no records found after store; persistence silently dropped the batch")
	}

	log.Printf("collector[%s]: stored %d records over %d days (%d failed)",
		runID, summary.Records, summary.Days, summary.DaysFailed)
	return summary, nil
}

// InitializeHistorical collects a trailing one-year window ending today and
// returns the verified stored rows.
func (c *Collector) InitializeHistorical(ctx context.Context, force bool) ([]domain.FlightRecord, error) {
	end := utils.DateOnly(time.Now().UTC())
	start := end.AddDate(0, 0, -365)

	if _, err := c.Run(ctx, start, end, force); err != nil {
		return nil, err
	}

	return c.repo.Query(ctx, start, end)
}

// Clean deduplicates exact-duplicate records and fills missing values:
// temperature with the batch mean, precipitation and delay with zero, and the
// condition with Clear. Missing numeric values are represented as NaN.
func Clean(records []domain.FlightRecord) []domain.FlightRecord {
	seen := make(map[string]struct{}, len(records))
	cleaned := make([]domain.FlightRecord, 0, len(records))

	var tempSum float64
	var tempCount int
	for _, rec := range records {
		if !math.IsNaN(rec.Temperature) {
			tempSum += rec.Temperature
			tempCount++
		}
	}
	meanTemp := 0.0
	if tempCount > 0 {
		meanTemp = tempSum / float64(tempCount)
	}

	for _, rec := range records {
		if math.IsNaN(rec.Temperature) {
			rec.Temperature = meanTemp
		}
		if math.IsNaN(rec.Precipitation) {
			rec.Precipitation = 0
		}
		if math.IsNaN(rec.DelayMinutes) {
			rec.DelayMinutes = 0
			rec.WeatherDelay = false
		}
		if rec.Condition == "" {
			rec.Condition = domain.ConditionClear
		}
		rec.Date = utils.DateOnly(rec.Date)

		key := fmt.Sprintf("%s|%s|%s|%s|%v|%v|%v|%s|%t|%v|%v|%v|%v|%v|%v",
			rec.Date.Format("2006-01-02"), rec.Airline, rec.Origin, rec.Destination,
			rec.DelayMinutes, rec.Temperature, rec.Precipitation, rec.Condition,
			rec.WeatherDelay, rec.WindSpeed, rec.WindDirection, rec.Visibility,
			rec.CloudCoverage, rec.Humidity, rec.Pressure,
		)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, rec)
	}

	return cleaned
}
