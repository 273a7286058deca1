package anomaly

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"customer-analytics-system/internal/domain/customer"
)

func testRow(id string, txCount, total, avg, products, daysSince, daysBetween float64) customer.MetricRow {
	return customer.MetricRow{
		CustomerID:                 id,
		CustomerName:               "Customer " + id,
		State:                      "CA",
		Country:                    "US",
		Region:                     "West",
		Segment:                    "Enterprise",
		TransactionCount:           txCount,
		TotalAmount:                total,
		AvgAmount:                  avg,
		UniqueProducts:             products,
		DaysSinceLastTransaction:   daysSince,
		AvgDaysBetweenTransactions: daysBetween,
	}
}

func TestComputeBaselinePopulationStats(t *testing.T) {
	rows := []customer.MetricRow{
		testRow("c1", 10, 100, 10, 3, 5, 2),
		testRow("c2", 20, 200, 10, 5, 15, 4),
		testRow("c3", 30, 300, 10, 7, 25, 6),
	}

	baseline, err := ComputeBaseline(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := baseline[FeatureTransactionCount]
	if stats.Mean != 20 {
		t.Fatalf("mean = %v, want 20", stats.Mean)
	}
	// Population variance: ((10)^2 + 0 + (10)^2) / 3.
	wantStd := math.Sqrt(200.0 / 3.0)
	if math.Abs(stats.Std-wantStd) > 1e-12 {
		t.Fatalf("std = %v, want %v", stats.Std, wantStd)
	}
	if stats.Min != 10 || stats.Max != 30 {
		t.Fatalf("min/max = %v/%v, want 10/30", stats.Min, stats.Max)
	}

	if len(baseline) != 6 {
		t.Fatalf("expected stats for 6 features, got %d", len(baseline))
	}
}

func TestComputeBaselineFiltersNonFinite(t *testing.T) {
	rows := []customer.MetricRow{
		testRow("c1", 10, 100, 10, 3, 5, 2),
		testRow("c2", math.NaN(), 200, 10, 5, 15, 4),
		testRow("c3", math.Inf(1), 300, 10, 7, 25, 6),
	}

	baseline, err := ComputeBaseline(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := baseline[FeatureTransactionCount]
	if stats.Mean != 10 || stats.Std != 0 {
		t.Fatalf("expected single-value stats after filtering, got %+v", stats)
	}
}

func TestComputeBaselineEmptyBatch(t *testing.T) {
	if _, err := ComputeBaseline(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestComputeBaselineAllNonFinite(t *testing.T) {
	rows := []customer.MetricRow{
		testRow("c1", math.NaN(), 100, 10, 3, 5, 2),
	}
	if _, err := ComputeBaseline(rows); !errors.Is(err, ErrEmptyBaseline) {
		t.Fatalf("expected ErrEmptyBaseline, got %v", err)
	}
}

func TestBaselineAndScorerDeterministic(t *testing.T) {
	rows := []customer.MetricRow{
		testRow("c1", 10, 100, 10, 3, 5, 2),
		testRow("c2", 25, 900, 36, 8, 1, 3),
		testRow("c3", 4, 120, 30, 2, 40, 10),
	}
	detectedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := ComputeBaseline(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeBaseline(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("baseline not deterministic")
	}

	pointsA := ScoreAll(rows, first, detectedAt)
	pointsB := ScoreAll(rows, second, detectedAt)
	if !reflect.DeepEqual(pointsA, pointsB) {
		t.Fatalf("scoring not deterministic")
	}
}
