package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aeroweather/backend/internal/domain"
	"github.com/aeroweather/backend/pkg/utils"
)

// SeverityLabels are the quartile-derived delay buckets, least to most severe.
var SeverityLabels = []string{"Low", "Moderate", "High", "Severe"}

// Correlation is a Pearson correlation coefficient with its two-sided
// p-value. Both fields are nil when the correlation is undefined (fewer than
// three samples, or a zero-variance column), serialized as JSON null. NaN
// must never appear here: encoding/json refuses to marshal it, which would
// turn an undefined correlation into a failed response.
type Correlation struct {
	Coefficient *float64 `json:"coefficient"`
	PValue      *float64 `json:"p_value"`
}

// BasicStats summarizes a record set.
type BasicStats struct {
	AvgDelay        float64 `json:"avg_delay"`
	TotalFlights    int     `json:"total_flights"`
	WeatherDelayPct float64 `json:"weather_delay_pct"`
	MaxDelay        float64 `json:"max_delay"`
	MinDelay        float64 `json:"min_delay"`
}

// SeverityStat aggregates delays within one severity bucket.
type SeverityStat struct {
	Label            string  `json:"label"`
	Count            int     `json:"count"`
	MeanDelay        float64 `json:"mean_delay"`
	DelayProbability float64 `json:"delay_probability"`
}

// Report is the output of Analyze.
type Report struct {
	Basic                    BasicStats     `json:"basic"`
	TemperatureCorrelation   Correlation    `json:"temperature_correlation"`
	PrecipitationCorrelation Correlation    `json:"precipitation_correlation"`
	Severity                 []SeverityStat `json:"severity"`
}

// Analyze computes correlation and severity-bucketed aggregate statistics for
// a record set.
func Analyze(records []domain.FlightRecord) Report {
	n := len(records)
	temps := make([]float64, n)
	precips := make([]float64, n)
	delays := make([]float64, n)
	for i, rec := range records {
		temps[i] = rec.Temperature
		precips[i] = rec.Precipitation
		delays[i] = rec.DelayMinutes
	}

	report := Report{
		Basic:                    computeBasicStats(records, delays),
		TemperatureCorrelation:   PearsonCorrelation(temps, delays),
		PrecipitationCorrelation: PearsonCorrelation(precips, delays),
	}

	buckets := SeverityBuckets(delays)
	byLabel := make(map[string]*SeverityStat, len(SeverityLabels))
	for i, label := range buckets {
		s, ok := byLabel[label]
		if !ok {
			s = &SeverityStat{Label: label}
			byLabel[label] = s
		}
		s.Count++
		s.MeanDelay += delays[i]
		if records[i].WeatherDelay {
			s.DelayProbability++
		}
	}
	for _, label := range SeverityLabels {
		s, ok := byLabel[label]
		if !ok {
			continue
		}
		s.MeanDelay = utils.RoundTo(s.MeanDelay/float64(s.Count), 2)
		s.DelayProbability = utils.RoundTo(s.DelayProbability/float64(s.Count), 2)
		report.Severity = append(report.Severity, *s)
	}

	return report
}

func computeBasicStats(records []domain.FlightRecord, delays []float64) BasicStats {
	if len(records) == 0 {
		return BasicStats{}
	}

	stats := BasicStats{
		TotalFlights: len(records),
		MaxDelay:     delays[0],
		MinDelay:     delays[0],
	}
	weatherDelays := 0
	for i, rec := range records {
		stats.AvgDelay += delays[i]
		stats.MaxDelay = math.Max(stats.MaxDelay, delays[i])
		stats.MinDelay = math.Min(stats.MinDelay, delays[i])
		if rec.WeatherDelay {
			weatherDelays++
		}
	}
	stats.AvgDelay = utils.RoundTo(stats.AvgDelay/float64(len(records)), 2)
	stats.WeatherDelayPct = utils.RoundTo(float64(weatherDelays)/float64(len(records))*100, 2)
	return stats
}

// PearsonCorrelation computes the Pearson correlation coefficient between two
// equal-length samples and its two-sided p-value from the Student's-t
// distribution with n-2 degrees of freedom. An undefined correlation (too few
// samples, or either column constant) yields nil fields.
func PearsonCorrelation(x, y []float64) Correlation {
	n := len(x)
	if n < 3 || n != len(y) {
		return Correlation{}
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return Correlation{} // zero-variance column
	}

	// Perfect correlation makes the t statistic blow up; the p-value is zero
	// by construction.
	if math.Abs(r) >= 1 {
		return Correlation{Coefficient: domain.Float(r), PValue: domain.Float(0)}
	}

	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * tdist.CDF(-math.Abs(t))

	return Correlation{Coefficient: domain.Float(r), PValue: domain.Float(p)}
}

// SeverityBuckets assigns each delay value a quartile-derived severity label.
// Cut points are the quartiles of the data at hand; when the distribution is
// too degenerate to yield four distinct bins (heavily tied values), every row
// falls back to "Low" instead of failing.
func SeverityBuckets(delays []float64) []string {
	labels := make([]string, len(delays))
	for i := range labels {
		labels[i] = SeverityLabels[0]
	}
	if len(delays) < 4 {
		return labels
	}

	sorted := append([]float64(nil), delays...)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q2 := stat.Quantile(0.50, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	min := sorted[0]
	max := sorted[len(sorted)-1]

	edges := []float64{min, q1, q2, q3, max}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return labels // degenerate distribution; everything stays "Low"
		}
	}

	for i, d := range delays {
		switch {
		case d <= q1:
			labels[i] = SeverityLabels[0]
		case d <= q2:
			labels[i] = SeverityLabels[1]
		case d <= q3:
			labels[i] = SeverityLabels[2]
		default:
			labels[i] = SeverityLabels[3]
		}
	}
	return labels
}

// DelayCategory buckets a delay into fixed bins for dashboard display.
func DelayCategory(delayMinutes float64) string {
	switch {
	case delayMinutes <= 10:
		return "No Delay"
	case delayMinutes <= 20:
		return "Minor"
	case delayMinutes <= 40:
		return "Significant"
	default:
		return "Severe"
	}
}
