package customer

import (
	"context"
	"time"
)

// MetricsFilter narrows the customer metrics query.
type MetricsFilter struct {
	DateRange DateRange
}

// MetricsRepository is the storage collaborator contract. Implementations
// return one row per customer with at least one qualifying transaction,
// ordered by total amount descending and capped at a fixed row limit.
type MetricsRepository interface {
	// GetCustomerMetrics returns the pre-aggregated metric rows for the
	// current batch.
	GetCustomerMetrics(ctx context.Context, filter MetricsFilter) ([]MetricRow, error)

	// GetDailyTransactionSeries returns per-day transaction volume for
	// the trailing number of days. customerID narrows the series to a
	// single customer when non-empty.
	GetDailyTransactionSeries(ctx context.Context, days int, customerID string) ([]DailyPoint, error)

	// GetCategoryCustomerStats returns per-category per-customer
	// transaction counts within [start, end).
	GetCategoryCustomerStats(ctx context.Context, start, end time.Time) ([]CategoryStat, error)
}
