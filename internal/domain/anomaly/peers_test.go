package anomaly

import (
	"math"
	"testing"

	"customer-analytics-system/internal/domain/customer"
)

func TestComparePeers(t *testing.T) {
	target := testRow("t", 20, 400, 20, 8, 3, 2)
	rows := []customer.MetricRow{
		target,
		testRow("p1", 10, 100, 10, 4, 5, 4),
		testRow("p2", 10, 100, 10, 4, 5, 4),
	}

	items := ComparePeers(target, rows)
	if len(items) != 4 {
		t.Fatalf("expected 4 metrics, got %d", len(items))
	}

	byMetric := make(map[string]ComparisonItem)
	for _, item := range items {
		byMetric[item.Metric] = item
	}

	avgValue := byMetric["Average Transaction Value"]
	if avgValue.PeerMean != 10 {
		t.Fatalf("peer mean = %v, want 10", avgValue.PeerMean)
	}
	if math.Abs(avgValue.PercentDiff-100) > 1e-9 {
		t.Fatalf("percent diff = %v, want 100", avgValue.PercentDiff)
	}
	if avgValue.Trend != TrendUp {
		t.Fatalf("trend = %q, want up", avgValue.Trend)
	}

	// Fewer days between purchases than peers is favorable, so the
	// polarity flips: value below the peer mean reads as "up".
	recency := byMetric["Days Between Transactions"]
	if recency.CustomerValue != 2 || recency.PeerMean != 4 {
		t.Fatalf("unexpected recency values: %+v", recency)
	}
	if recency.Trend != TrendUp {
		t.Fatalf("inverted trend = %q, want up", recency.Trend)
	}
	if math.Abs(recency.PercentDiff+50) > 1e-9 {
		t.Fatalf("percent diff = %v, want -50", recency.PercentDiff)
	}
}

func TestComparePeersNoPeers(t *testing.T) {
	target := testRow("t", 20, 400, 20, 8, 3, 2)
	lonely := testRow("other", 10, 100, 10, 4, 5, 4)
	lonely.Segment = "SMB"

	items := ComparePeers(target, []customer.MetricRow{target, lonely})
	for _, item := range items {
		if item.PeerMean != 0 {
			t.Fatalf("expected zero peer mean, got %+v", item)
		}
		if item.PercentDiff != 0 {
			t.Fatalf("expected zero diff on zero peer, got %+v", item)
		}
	}
}

func TestPercentDiffGuards(t *testing.T) {
	if d := percentDiff(10, 0); d != 0 {
		t.Fatalf("zero peer should yield 0, got %v", d)
	}
	if d := percentDiff(math.NaN(), 10); d != 0 {
		t.Fatalf("NaN value should yield 0, got %v", d)
	}
	if d := percentDiff(10, math.Inf(1)); d != 0 {
		t.Fatalf("infinite peer should yield 0, got %v", d)
	}
	if d := percentDiff(5, -10); math.Abs(d-150) > 1e-9 {
		t.Fatalf("negative peer uses |peer|: got %v, want 150", d)
	}
}
