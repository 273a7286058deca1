package anomaly

import (
	"math"
	"time"

	"customer-analytics-system/internal/domain/customer"
)

// TimeSeriesPoint is one calendar day of transaction volume with a
// volume-based anomaly score. This score measures the whole population's
// deviation over time and is a different statistical object from the
// per-customer anomaly score: the two must not be conflated.
type TimeSeriesPoint struct {
	Date             time.Time `json:"date"`
	TransactionCount float64   `json:"transaction_count"`
	TotalAmount      float64   `json:"total_amount"`
	UniqueProducts   float64   `json:"unique_products"`
	AnomalyScore     float64   `json:"anomaly_score"`
}

// BuildTimeSeries produces one row per calendar day over the trailing
// window, zero-filling days without data. The window anchors on now; if
// no data falls within it, it anchors on the latest available date
// instead, so static or historical datasets still render. Each day's
// score is min(|count-mean|/std/3, 1) with mean/std over the built
// window (std of 0 scores every day 0).
func BuildTimeSeries(points []customer.DailyPoint, days int, now time.Time) []TimeSeriesPoint {
	if days <= 0 || len(points) == 0 {
		return []TimeSeriesPoint{}
	}

	anchor := now.UTC().Truncate(24 * time.Hour)
	windowStart := anchor.AddDate(0, 0, -(days - 1))

	latest := time.Time{}
	inWindow := false
	for _, p := range points {
		day := p.Date.UTC().Truncate(24 * time.Hour)
		if day.After(latest) {
			latest = day
		}
		if !day.Before(windowStart) && !day.After(anchor) {
			inWindow = true
		}
	}
	if !inWindow {
		anchor = latest
		windowStart = anchor.AddDate(0, 0, -(days - 1))
	}

	byDay := make(map[time.Time]customer.DailyPoint, len(points))
	for _, p := range points {
		byDay[p.Date.UTC().Truncate(24*time.Hour)] = p
	}

	series := make([]TimeSeriesPoint, 0, days)
	counts := make([]float64, 0, days)
	for day := windowStart; !day.After(anchor); day = day.AddDate(0, 0, 1) {
		p := byDay[day]
		series = append(series, TimeSeriesPoint{
			Date:             day,
			TransactionCount: p.Count,
			TotalAmount:      p.TotalAmount,
			UniqueProducts:   p.UniqueProducts,
		})
		counts = append(counts, p.Count)
	}

	stats := computeStats(counts)
	for i := range series {
		z := 0.0
		if stats.Std != 0 {
			z = math.Abs(series[i].TransactionCount-stats.Mean) / stats.Std
		}
		series[i].AnomalyScore = math.Min(z/3, 1)
	}
	return series
}
