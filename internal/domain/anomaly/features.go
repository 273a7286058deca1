package anomaly

import "customer-analytics-system/internal/domain/customer"

// Feature keys, in the fixed scoring order. Ordering matters: the scorer
// and the baseline calculator iterate features in this order so repeated
// runs over the same batch are bit-identical.
const (
	FeatureTransactionCount           = "transaction_count"
	FeatureTotalAmount                = "total_amount"
	FeatureAvgAmount                  = "avg_amount"
	FeatureUniqueProducts             = "unique_products"
	FeatureDaysSinceLastTransaction   = "days_since_last_transaction"
	FeatureAvgDaysBetweenTransactions = "avg_days_between_transactions"
)

// FeatureKeys returns the six feature names in scoring order.
func FeatureKeys() []string {
	return []string{
		FeatureTransactionCount,
		FeatureTotalAmount,
		FeatureAvgAmount,
		FeatureUniqueProducts,
		FeatureDaysSinceLastTransaction,
		FeatureAvgDaysBetweenTransactions,
	}
}

// FeatureValue extracts the named feature from a metric row.
func FeatureValue(row customer.MetricRow, feature string) float64 {
	switch feature {
	case FeatureTransactionCount:
		return row.TransactionCount
	case FeatureTotalAmount:
		return row.TotalAmount
	case FeatureAvgAmount:
		return row.AvgAmount
	case FeatureUniqueProducts:
		return row.UniqueProducts
	case FeatureDaysSinceLastTransaction:
		return row.DaysSinceLastTransaction
	case FeatureAvgDaysBetweenTransactions:
		return row.AvgDaysBetweenTransactions
	}
	return 0
}

// FeatureSnapshot returns a customer's raw feature vector keyed by
// feature name.
func FeatureSnapshot(row customer.MetricRow) map[string]float64 {
	snapshot := make(map[string]float64, len(FeatureKeys()))
	for _, key := range FeatureKeys() {
		snapshot[key] = FeatureValue(row, key)
	}
	return snapshot
}
