package anomaly

import (
	"math"

	"customer-analytics-system/internal/domain/customer"
)

// ComparisonItem compares one of a customer's metrics against the mean
// of same-segment peers.
type ComparisonItem struct {
	Metric        string  `json:"metric"`
	CustomerValue float64 `json:"customer_value"`
	PeerMean      float64 `json:"peer_mean"`
	PercentDiff   float64 `json:"percent_diff"`
	Trend         string  `json:"trend"`
}

// peerMetrics lists the compared metrics in display order. invert flips
// the trend polarity: for days-between-transactions a lower value means
// healthier recency, so spending more often than peers reads as "up".
var peerMetrics = []struct {
	name    string
	feature string
	invert  bool
}{
	{"Average Transaction Value", FeatureAvgAmount, false},
	{"Transaction Frequency", FeatureTransactionCount, false},
	{"Product Variety", FeatureUniqueProducts, false},
	{"Days Between Transactions", FeatureAvgDaysBetweenTransactions, true},
}

// ComparePeers builds the per-metric comparison of target against the
// mean of all other customers sharing its segment. With no peers, every
// item carries a zero peer mean and zero difference.
func ComparePeers(target customer.MetricRow, rows []customer.MetricRow) []ComparisonItem {
	peers := make([]customer.MetricRow, 0, len(rows))
	for _, row := range rows {
		if row.CustomerID == target.CustomerID {
			continue
		}
		if row.Segment == target.Segment {
			peers = append(peers, row)
		}
	}

	items := make([]ComparisonItem, 0, len(peerMetrics))
	for _, metric := range peerMetrics {
		value := FeatureValue(target, metric.feature)

		peerMean := 0.0
		if len(peers) > 0 {
			sum := 0.0
			for _, peer := range peers {
				sum += FeatureValue(peer, metric.feature)
			}
			peerMean = sum / float64(len(peers))
		}

		diff := percentDiff(value, peerMean)
		items = append(items, ComparisonItem{
			Metric:        metric.name,
			CustomerValue: value,
			PeerMean:      peerMean,
			PercentDiff:   diff,
			Trend:         deltaTrend(value-peerMean, metric.invert),
		})
	}
	return items
}

// percentDiff is (customer-peer)/|peer|*100, 0 on a zero or non-finite
// denominator or operand.
func percentDiff(value, peer float64) float64 {
	if peer == 0 || math.IsNaN(value) || math.IsInf(value, 0) || math.IsNaN(peer) || math.IsInf(peer, 0) {
		return 0
	}
	return (value - peer) / math.Abs(peer) * 100
}

func deltaTrend(delta float64, invert bool) string {
	if invert {
		delta = -delta
	}
	switch {
	case delta > 0:
		return TrendUp
	case delta < 0:
		return TrendDown
	default:
		return TrendStable
	}
}
