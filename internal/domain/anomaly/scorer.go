package anomaly

import (
	"math"
	"time"

	"customer-analytics-system/internal/domain/customer"
)

// featureCount is the fixed number of scored features.
const featureCount = 6

// Score converts one customer's metric row and the batch baseline into a
// scored data point.
//
// Per feature: z = |value-mean|/std (0 when std is 0), the saturated
// contribution is min(z/3, 1), and the per-feature severity is ceil(z)
// clamped to [1,5]. The aggregate score is the mean of the six saturated
// contributions, so it is bounded to [0,1] by construction. The overall
// severity derives from the aggregate score, not from the worst feature:
// a single extreme feature can sit at level 5 while the customer as a
// whole stays low. Both views are intentional and kept independent.
func Score(row customer.MetricRow, baseline Baseline, detectedAt time.Time) DataPoint {
	features := make([]Feature, 0, featureCount)
	contributionSum := 0.0

	for _, key := range FeatureKeys() {
		stats := baseline[key]
		value := FeatureValue(row, key)

		z := 0.0
		if stats.Std != 0 {
			z = math.Abs(value-stats.Mean) / stats.Std
		}
		contribution01 := math.Min(z/3, 1)
		contributionSum += contribution01

		features = append(features, Feature{
			Name:  key,
			Value: value,
			NormalRange: [2]float64{
				stats.Mean - 2*stats.Std,
				stats.Mean + 2*stats.Std,
			},
			Severity:     severityFromZ(z),
			ZScore:       z,
			Contribution: contribution01 * 100,
		})
	}

	score := contributionSum / featureCount

	return DataPoint{
		CustomerID:       row.CustomerID,
		CustomerName:     row.CustomerName,
		AnomalyScore:     score,
		Severity:         severityFromScore(score),
		Region:           row.Region,
		State:            row.State,
		Country:          row.Country,
		Segment:          row.Segment,
		DetectionDate:    detectedAt,
		TransactionCount: row.TransactionCount,
		TotalAmount:      row.TotalAmount,
		AvgAmount:        row.AvgAmount,
		Features:         features,
	}
}

// ScoreAll scores every row in the batch against the supplied baseline,
// preserving input order.
func ScoreAll(rows []customer.MetricRow, baseline Baseline, detectedAt time.Time) []DataPoint {
	points := make([]DataPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, Score(row, baseline, detectedAt))
	}
	return points
}

// severityFromScore maps the aggregate [0,1] score to levels 1..5.
func severityFromScore(score float64) Severity {
	level := int(math.Ceil(score * 5))
	return clampSeverity(level)
}

// severityFromZ maps a single feature's z-score to levels 1..5.
func severityFromZ(z float64) Severity {
	level := int(math.Ceil(z))
	return clampSeverity(level)
}

func clampSeverity(level int) Severity {
	if level < 1 {
		return SeverityLow
	}
	if level > 5 {
		return SeverityCritical
	}
	return Severity(level)
}
