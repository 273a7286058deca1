package anomaly

import (
	"math"

	"customer-analytics-system/internal/domain/customer"
)

// maxForecastDelta bounds how far the fitted trend may shift a score per
// projection step.
const maxForecastDelta = 0.15

// Forecast projects one customer's anomaly score a week and a month out
// from a linear trend over recent daily transaction counts.
type Forecast struct {
	CustomerID     string  `json:"customer_id"`
	CustomerName   string  `json:"customer_name"`
	CurrentScore   float64 `json:"current_score"`
	NextWeekScore  float64 `json:"next_week_score"`
	NextMonthScore float64 `json:"next_month_score"`
	Confidence     float64 `json:"confidence"`
	Trend          string  `json:"trend"`
	ChurnRisk      float64 `json:"churn_risk"`
}

// ForecastScore fits an ordinary least-squares slope over
// (day index, transaction count) and extrapolates the anomaly score.
// The slope is normalised by the mean count, then clamped to
// ±0.15 per step; the month projection doubles the delta rather than
// fitting a second model. Confidence shrinks with day-to-day
// variability: clamp01(1 - std/(2·mean)). Churn risk is the fixed blend
// 0.5·score + 0.5·severity/5.
func ForecastScore(dp DataPoint, dailyCounts []customer.DailyPoint) Forecast {
	counts := make([]float64, len(dailyCounts))
	for i, p := range dailyCounts {
		counts[i] = p.Count
	}

	delta := 0.0
	confidence := 0.0
	if len(counts) > 0 {
		stats := computeStats(counts)
		if stats.Mean > 0 {
			slope := olsSlope(counts)
			delta = clampDelta(slope / stats.Mean)
			confidence = clamp01(1 - stats.Std/(2*stats.Mean))
		}
	}

	return Forecast{
		CustomerID:     dp.CustomerID,
		CustomerName:   dp.CustomerName,
		CurrentScore:   dp.AnomalyScore,
		NextWeekScore:  clamp01(dp.AnomalyScore + delta),
		NextMonthScore: clamp01(dp.AnomalyScore + 2*delta),
		Confidence:     confidence,
		Trend:          TrendFromDelta(delta),
		ChurnRisk:      0.5*dp.AnomalyScore + 0.5*float64(dp.Severity)/5,
	}
}

// TopByScore returns the n highest-scoring data points without mutating
// the input order.
func TopByScore(points []DataPoint, n int) []DataPoint {
	sorted := make([]DataPoint, len(points))
	copy(sorted, points)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].AnomalyScore > sorted[j-1].AnomalyScore; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// olsSlope fits y = a + b·x over x = 0..n-1 and returns b.
func olsSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func clampDelta(delta float64) float64 {
	return math.Max(-maxForecastDelta, math.Min(maxForecastDelta, delta))
}
