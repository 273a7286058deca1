package anomaly

import (
	"math"

	"customer-analytics-system/internal/domain/customer"
)

// ComputeBaseline calculates population statistics for each of the six
// features over the batch. Non-finite values are filtered per feature; if
// a feature has no finite values left, the whole computation fails fast
// with ErrEmptyBaseline instead of propagating NaN to the scorer.
func ComputeBaseline(rows []customer.MetricRow) (Baseline, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	baseline := make(Baseline, len(FeatureKeys()))
	for _, key := range FeatureKeys() {
		values := make([]float64, 0, len(rows))
		for _, row := range rows {
			v := FeatureValue(row, key)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			return nil, ErrEmptyBaseline
		}
		baseline[key] = computeStats(values)
	}

	return baseline, nil
}

// computeStats returns population mean/std/min/max of a non-empty slice.
func computeStats(values []float64) BaselineStats {
	n := float64(len(values))

	sum := 0.0
	minV := values[0]
	maxV := values[0]
	for _, v := range values {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	mean := sum / n

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= n

	return BaselineStats{
		Mean: mean,
		Std:  math.Sqrt(variance),
		Min:  minV,
		Max:  maxV,
	}
}
