package analytics

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/aeroweather/backend/internal/domain"
)

// FeatureColumns is the fixed model input order.
var FeatureColumns = []string{
	"temperature",
	"precipitation",
	"day_of_week",
	"month",
	"temp_precip_interaction",
	"severe_weather",
}

// Scaler standardizes features to zero mean and unit variance per column.
// Statistics are fixed at train time and reused at inference.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// fitScaler computes per-column population mean and standard deviation.
func fitScaler(rows [][]float64) Scaler {
	if len(rows) == 0 {
		return Scaler{}
	}

	cols := len(rows[0])
	s := Scaler{Mean: make([]float64, cols), Std: make([]float64, cols)}

	for j := 0; j < cols; j++ {
		for _, row := range rows {
			s.Mean[j] += row[j]
		}
		s.Mean[j] /= float64(len(rows))

		var sq float64
		for _, row := range rows {
			d := row[j] - s.Mean[j]
			sq += d * d
		}
		s.Std[j] = math.Sqrt(sq / float64(len(rows)))
		if s.Std[j] == 0 {
			s.Std[j] = 1 // constant column; leave values centered at zero
		}
	}

	return s
}

// Transform standardizes one feature row.
func (s Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// TransformAll standardizes a feature matrix.
func (s Scaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}

// severeThresholds are the training-set percentile cut points behind the
// severe-weather flag.
type severeThresholds struct {
	TempLow20    float64 `json:"temp_low_20"`
	TempHigh80   float64 `json:"temp_high_80"`
	PrecipHigh80 float64 `json:"precip_high_80"`
}

func computeSevereThresholds(records []domain.FlightRecord) severeThresholds {
	temps := make([]float64, len(records))
	precips := make([]float64, len(records))
	for i, rec := range records {
		temps[i] = rec.Temperature
		precips[i] = rec.Precipitation
	}
	sort.Float64s(temps)
	sort.Float64s(precips)

	return severeThresholds{
		TempLow20:    stat.Quantile(0.2, stat.Empirical, temps, nil),
		TempHigh80:   stat.Quantile(0.8, stat.Empirical, temps, nil),
		PrecipHigh80: stat.Quantile(0.8, stat.Empirical, precips, nil),
	}
}

// buildTrainingFeatures engineers the training feature matrix. Severe weather
// at train time means cold temperature (below the 20th percentile) combined
// with heavy precipitation (above the 80th percentile).
func buildTrainingFeatures(records []domain.FlightRecord, th severeThresholds) [][]float64 {
	rows := make([][]float64, len(records))
	for i, rec := range records {
		severe := 0.0
		if rec.Temperature < th.TempLow20 && rec.Precipitation > th.PrecipHigh80 {
			severe = 1
		}
		rows[i] = featureRow(rec.Temperature, rec.Precipitation, rec.Date, severe)
	}
	return rows
}

// buildInferenceFeatures engineers a single prediction row. The severe flag
// here uses the 80th-percentile thresholds of BOTH temperature and
// precipitation (upper tails), which differs from the training-time
// definition above (temperature lower tail). This asymmetry is carried over
// from the system being reimplemented; unifying the two would silently change
// the model's input semantics, so it stays until there is an explicit product
// decision.
func buildInferenceFeatures(temp, precip float64, date time.Time, th severeThresholds) []float64 {
	severe := 0.0
	if temp > th.TempHigh80 && precip > th.PrecipHigh80 {
		severe = 1
	}
	return featureRow(temp, precip, date, severe)
}

func featureRow(temp, precip float64, date time.Time, severe float64) []float64 {
	return []float64{
		temp,
		precip,
		float64(mondayIndexedWeekday(date)),
		float64(date.Month()),
		temp * precip,
		severe,
	}
}

// mondayIndexedWeekday returns 0 for Monday through 6 for Sunday.
func mondayIndexedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
