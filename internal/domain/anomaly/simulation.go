package anomaly

import (
	"customer-analytics-system/internal/domain/customer"
)

// SimulationBaseline packages the batch baseline with one customer's raw
// feature snapshot so an interactive what-if client can perturb inputs
// and re-score locally.
type SimulationBaseline struct {
	CustomerID   string             `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	Baseline     Baseline           `json:"baseline"`
	Snapshot     map[string]float64 `json:"snapshot"`
	CurrentScore float64            `json:"current_score"`
}

// NewSimulationBaseline builds the simulation payload for one customer.
func NewSimulationBaseline(row customer.MetricRow, baseline Baseline, currentScore float64) SimulationBaseline {
	return SimulationBaseline{
		CustomerID:   row.CustomerID,
		CustomerName: row.CustomerName,
		Baseline:     baseline,
		Snapshot:     FeatureSnapshot(row),
		CurrentScore: currentScore,
	}
}

// Fixed deltas for the what-if threshold rules.
const (
	rescoreOutOfRangeDelta = 0.2
	rescoreDriftDelta      = 0.1
	rescoreDriftRatio      = 1.3
)

// ApproximateRescore estimates an anomaly score for a perturbed feature
// vector using coarse threshold rules: a feature outside its normal
// range [mean-2σ, mean+2σ] adds 0.2, a feature drifted beyond ±30% of the
// mean adds 0.1. This mirrors the simplified client-side what-if rules
// and is NOT the authoritative scorer; use Score for real detection.
func ApproximateRescore(baseline Baseline, features map[string]float64) float64 {
	score := 0.0
	for _, key := range FeatureKeys() {
		stats, ok := baseline[key]
		if !ok {
			continue
		}
		value, ok := features[key]
		if !ok {
			continue
		}

		switch {
		case value < stats.Mean-2*stats.Std || value > stats.Mean+2*stats.Std:
			score += rescoreOutOfRangeDelta
		case stats.Mean != 0 && (value > rescoreDriftRatio*stats.Mean || value < stats.Mean/rescoreDriftRatio):
			score += rescoreDriftDelta
		}
	}
	return clamp01(score)
}
