package anomaly

import (
	"math"
	"testing"
)

func TestNewSimulationBaseline(t *testing.T) {
	row := testRow("c1", 10, 100, 10, 3, 5, 2)
	baseline := Baseline{
		FeatureTransactionCount: {Mean: 10, Std: 2},
	}

	sim := NewSimulationBaseline(row, baseline, 0.42)
	if sim.CustomerID != "c1" || sim.CurrentScore != 0.42 {
		t.Fatalf("unexpected simulation payload: %+v", sim)
	}
	if len(sim.Snapshot) != 6 {
		t.Fatalf("snapshot should carry all 6 features, got %d", len(sim.Snapshot))
	}
	if sim.Snapshot[FeatureTotalAmount] != 100 {
		t.Fatalf("snapshot total_amount = %v, want 100", sim.Snapshot[FeatureTotalAmount])
	}
}

func TestApproximateRescore(t *testing.T) {
	baseline := Baseline{}
	for _, key := range FeatureKeys() {
		baseline[key] = BaselineStats{Mean: 100, Std: 10}
	}

	normal := map[string]float64{}
	for _, key := range FeatureKeys() {
		normal[key] = 100
	}
	if score := ApproximateRescore(baseline, normal); score != 0 {
		t.Fatalf("on-baseline vector should score 0, got %v", score)
	}

	// One feature pushed outside the normal range, one drifted past
	// 1.3x the mean but still inside the range.
	perturbed := map[string]float64{}
	for _, key := range FeatureKeys() {
		perturbed[key] = 100
	}
	perturbed[FeatureTotalAmount] = 200    // beyond mean+2*std
	perturbed[FeatureAvgAmount] = 115      // within range and below 1.3x mean
	score := ApproximateRescore(baseline, perturbed)
	if math.Abs(score-0.2) > 1e-12 {
		t.Fatalf("score = %v, want 0.2", score)
	}

	// Every feature out of range saturates at 1.
	extreme := map[string]float64{}
	for _, key := range FeatureKeys() {
		extreme[key] = 1000
	}
	if score := ApproximateRescore(baseline, extreme); score != 1 {
		t.Fatalf("saturated score = %v, want 1", score)
	}
}

func TestApproximateRescoreDriftBand(t *testing.T) {
	// Wide std keeps the 2-sigma range from triggering, isolating the
	// 1.3x drift rule.
	baseline := Baseline{FeatureTotalAmount: {Mean: 100, Std: 100}}
	features := map[string]float64{FeatureTotalAmount: 140}

	score := ApproximateRescore(baseline, features)
	if math.Abs(score-0.1) > 1e-12 {
		t.Fatalf("drift-only score = %v, want 0.1", score)
	}
}

func TestApproximateRescoreIsNotAuthoritative(t *testing.T) {
	// Sanity guard against conflating the two strategies: the threshold
	// rules quantise to 0.1 steps, the authoritative scorer does not.
	baseline := Baseline{}
	for _, key := range FeatureKeys() {
		baseline[key] = BaselineStats{Mean: 100, Std: 10}
	}
	row := testRow("c", 104, 104, 104, 104, 104, 104)

	authoritative := Score(row, baseline, scoreTestTime).AnomalyScore
	approximate := ApproximateRescore(baseline, FeatureSnapshot(row))
	if authoritative == 0 {
		t.Fatalf("expected non-zero authoritative score")
	}
	if approximate != 0 {
		t.Fatalf("threshold rules should ignore sub-band drift, got %v", approximate)
	}
}
