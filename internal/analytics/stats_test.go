package analytics

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/aeroweather/backend/internal/domain"
)

func TestPearsonCorrelationPerfectLinear(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{2, 4, 6, 8, 10, 12, 14, 16}

	corr := PearsonCorrelation(x, y)
	if corr.Coefficient == nil || math.Abs(*corr.Coefficient-1) > 1e-9 {
		t.Errorf("coefficient = %v, want 1", corr.Coefficient)
	}
	if corr.PValue == nil || *corr.PValue > 1e-9 {
		t.Errorf("p-value = %v, want ~0 for perfect correlation", corr.PValue)
	}
}

func TestPearsonCorrelationUncorrelated(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	y := []float64{5, -3, 8, 1, -7, 4, -2, 9, 0, 3}

	corr := PearsonCorrelation(x, y)
	if corr.Coefficient == nil || math.Abs(*corr.Coefficient) > 0.6 {
		t.Errorf("coefficient = %v, expected weak correlation", corr.Coefficient)
	}
	if corr.PValue == nil || *corr.PValue < 0.05 {
		t.Errorf("p-value = %v, expected no significance on noise", corr.PValue)
	}
}

func TestPearsonCorrelationUndefined(t *testing.T) {
	corr := PearsonCorrelation([]float64{1, 2}, []float64{3, 4})
	if corr.Coefficient != nil || corr.PValue != nil {
		t.Errorf("n < 3 should yield nil fields, got %+v", corr)
	}

	// A constant column has zero variance; the coefficient does not exist.
	constant := []float64{68, 68, 68, 68}
	varying := []float64{1, 2, 3, 4}
	corr = PearsonCorrelation(constant, varying)
	if corr.Coefficient != nil || corr.PValue != nil {
		t.Errorf("constant column should yield nil fields, got %+v", corr)
	}
}

// A collection run against the default weather snapshot stores a constant
// temperature column; the resulting report must still serialize.
func TestAnalyzeConstantColumnSerializes(t *testing.T) {
	day := time.Date(2024, 12, 11, 0, 0, 0, 0, time.UTC)
	var records []domain.FlightRecord
	for i := 0; i < 20; i++ {
		records = append(records, domain.FlightRecord{
			Date:         day,
			Airline:      "Delta",
			Origin:       "SEA",
			Destination:  "LAX",
			DelayMinutes: float64(i),
			Temperature:  68.0,
			Condition:    domain.ConditionClear,
		})
	}

	report := Analyze(records)
	if report.TemperatureCorrelation.Coefficient != nil {
		t.Errorf("constant temperature should have nil coefficient, got %v",
			*report.TemperatureCorrelation.Coefficient)
	}

	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("report failed to serialize: %v", err)
	}
	if !strings.Contains(string(raw), `"coefficient":null`) {
		t.Errorf("undefined correlation should serialize as null, got %s", raw)
	}
}

func TestSeverityBucketsQuartiles(t *testing.T) {
	delays := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	labels := SeverityBuckets(delays)

	counts := map[string]int{}
	for _, l := range labels {
		counts[l]++
	}
	for _, want := range SeverityLabels {
		if counts[want] == 0 {
			t.Errorf("bucket %q received no rows: %v", want, counts)
		}
	}
	// The largest delay lands in the most severe bucket.
	if labels[len(labels)-1] != "Severe" {
		t.Errorf("max delay bucketed as %q, want Severe", labels[len(labels)-1])
	}
	if labels[0] != "Low" {
		t.Errorf("min delay bucketed as %q, want Low", labels[0])
	}
}

func TestSeverityBucketsDegenerateDistribution(t *testing.T) {
	// Fewer than 4 distinct values cannot form 4 quartile bins; everything
	// falls back to "Low" rather than failing.
	delays := []float64{5, 5, 5, 5, 5, 5, 7, 7}
	labels := SeverityBuckets(delays)
	for i, l := range labels {
		if l != "Low" {
			t.Fatalf("labels[%d] = %q, want Low for degenerate distribution", i, l)
		}
	}

	// Tiny inputs degrade the same way.
	for _, l := range SeverityBuckets([]float64{1, 2}) {
		if l != "Low" {
			t.Fatalf("short input bucketed as %q, want Low", l)
		}
	}
}

func TestAnalyzeReport(t *testing.T) {
	day := time.Date(2024, 12, 11, 0, 0, 0, 0, time.UTC)
	var records []domain.FlightRecord
	for i := 0; i < 40; i++ {
		delay := float64(i)
		records = append(records, domain.FlightRecord{
			Date:          day,
			Airline:       "Delta",
			Origin:        "SEA",
			Destination:   "LAX",
			DelayMinutes:  delay,
			Temperature:   80 - delay, // colder days delay more
			Precipitation: delay / 40,
			WeatherDelay:  delay > 30,
		})
	}

	report := Analyze(records)

	if report.Basic.TotalFlights != 40 {
		t.Errorf("total flights = %d, want 40", report.Basic.TotalFlights)
	}
	if report.Basic.MaxDelay != 39 || report.Basic.MinDelay != 0 {
		t.Errorf("delay extremes = [%v, %v], want [0, 39]", report.Basic.MinDelay, report.Basic.MaxDelay)
	}
	if c := report.TemperatureCorrelation.Coefficient; c == nil || *c > -0.99 {
		t.Errorf("temperature correlation = %v, want strongly negative", c)
	}
	if c := report.PrecipitationCorrelation.Coefficient; c == nil || *c < 0.99 {
		t.Errorf("precipitation correlation = %v, want strongly positive", c)
	}
	if len(report.Severity) != 4 {
		t.Fatalf("got %d severity buckets, want 4", len(report.Severity))
	}
	// Mean delay rises with severity.
	for i := 1; i < len(report.Severity); i++ {
		if report.Severity[i].MeanDelay <= report.Severity[i-1].MeanDelay {
			t.Errorf("severity %q mean %v not above %q mean %v",
				report.Severity[i].Label, report.Severity[i].MeanDelay,
				report.Severity[i-1].Label, report.Severity[i-1].MeanDelay)
		}
	}
}

func TestDelayCategory(t *testing.T) {
	cases := []struct {
		delay float64
		want  string
	}{
		{0, "No Delay"},
		{10, "No Delay"},
		{15, "Minor"},
		{40, "Significant"},
		{41, "Severe"},
	}
	for _, tc := range cases {
		if got := DelayCategory(tc.delay); got != tc.want {
			t.Errorf("DelayCategory(%v) = %q, want %q", tc.delay, got, tc.want)
		}
	}
}
