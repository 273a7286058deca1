package anomaly

import (
	"sort"

	"customer-analytics-system/internal/domain/customer"
)

// Trend labels shared by category distributions and forecasts. The
// ±0.01 dead-band keeps noise-level deltas from flapping between
// directions.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"

	trendDeadBand = 0.01
)

// GroupRate is one row of a region or segment breakdown: how many
// customers fall in the group and what share of them are anomalous.
type GroupRate struct {
	Key            string  `json:"key"`
	TotalCustomers int     `json:"total_customers"`
	AnomalousCount int     `json:"anomalous_count"`
	Rate           float64 `json:"rate"` // percent
}

// CategoryDistributionItem extends a group rate with a short-window
// trend direction.
type CategoryDistributionItem struct {
	GroupRate
	Trend string `json:"trend"`
}

// GroupRates computes anomaly rates per group key. The denominator comes
// from the unfiltered population, the numerator from the filtered
// anomaly set, so a group's rate reflects its true prevalence. Results
// are sorted by rate descending, key ascending for ties.
func GroupRates(rows []customer.MetricRow, filtered []DataPoint, keyOf func(customer.MetricRow) string) []GroupRate {
	totals := make(map[string]int)
	for _, row := range rows {
		totals[keyOf(row)]++
	}

	anomalous := make(map[string]int)
	anomalousIDs := make(map[string]bool, len(filtered))
	for _, dp := range filtered {
		anomalousIDs[dp.CustomerID] = true
	}
	for _, row := range rows {
		if anomalousIDs[row.CustomerID] {
			anomalous[keyOf(row)]++
		}
	}

	rates := make([]GroupRate, 0, len(totals))
	for key, total := range totals {
		count := anomalous[key]
		rates = append(rates, GroupRate{
			Key:            key,
			TotalCustomers: total,
			AnomalousCount: count,
			Rate:           float64(count) / float64(total) * 100,
		})
	}

	sort.SliceStable(rates, func(i, j int) bool {
		if rates[i].Rate != rates[j].Rate {
			return rates[i].Rate > rates[j].Rate
		}
		return rates[i].Key < rates[j].Key
	})
	return rates
}

// RegionKey and SegmentKey are the group extractors for the two standard
// breakdowns.
func RegionKey(row customer.MetricRow) string  { return row.Region }
func SegmentKey(row customer.MetricRow) string { return row.Segment }

// CategoryDistribution builds per-category anomaly rates over the full
// window and derives a trend per category by comparing the share of
// transactions attributable to anomalous customers in the trailing
// seven days against the preceding seven days.
func CategoryDistribution(fullWindow, recentWindow, previousWindow []customer.CategoryStat, filtered []DataPoint) []CategoryDistributionItem {
	anomalousIDs := make(map[string]bool, len(filtered))
	for _, dp := range filtered {
		anomalousIDs[dp.CustomerID] = true
	}

	type categoryAgg struct {
		customers map[string]bool
		anomalous map[string]bool
	}
	byCategory := make(map[string]*categoryAgg)
	for _, stat := range fullWindow {
		agg, ok := byCategory[stat.Category]
		if !ok {
			agg = &categoryAgg{
				customers: make(map[string]bool),
				anomalous: make(map[string]bool),
			}
			byCategory[stat.Category] = agg
		}
		agg.customers[stat.CustomerID] = true
		if anomalousIDs[stat.CustomerID] {
			agg.anomalous[stat.CustomerID] = true
		}
	}

	recentShare := anomalousTxShare(recentWindow, anomalousIDs)
	previousShare := anomalousTxShare(previousWindow, anomalousIDs)

	items := make([]CategoryDistributionItem, 0, len(byCategory))
	for category, agg := range byCategory {
		total := len(agg.customers)
		count := len(agg.anomalous)
		items = append(items, CategoryDistributionItem{
			GroupRate: GroupRate{
				Key:            category,
				TotalCustomers: total,
				AnomalousCount: count,
				Rate:           float64(count) / float64(total) * 100,
			},
			Trend: TrendFromDelta(recentShare[category] - previousShare[category]),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Rate != items[j].Rate {
			return items[i].Rate > items[j].Rate
		}
		return items[i].Key < items[j].Key
	})
	return items
}

// anomalousTxShare returns, per category, the fraction of transactions
// in the window that belong to anomalous customers.
func anomalousTxShare(window []customer.CategoryStat, anomalousIDs map[string]bool) map[string]float64 {
	totals := make(map[string]int64)
	anomalous := make(map[string]int64)
	for _, stat := range window {
		totals[stat.Category] += stat.TxCount
		if anomalousIDs[stat.CustomerID] {
			anomalous[stat.Category] += stat.TxCount
		}
	}

	shares := make(map[string]float64, len(totals))
	for category, total := range totals {
		if total > 0 {
			shares[category] = float64(anomalous[category]) / float64(total)
		}
	}
	return shares
}

// TrendFromDelta maps a delta to a trend label using the dead-band.
func TrendFromDelta(delta float64) string {
	switch {
	case delta > trendDeadBand:
		return TrendUp
	case delta < -trendDeadBand:
		return TrendDown
	default:
		return TrendStable
	}
}
