package customer

import (
	"time"
)

// MetricRow holds pre-aggregated transaction metrics for one customer.
// Rows are produced fresh per request by the storage layer and are
// immutable once read.
type MetricRow struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`

	// Geography
	State   string `json:"state"`
	Country string `json:"country"`
	Region  string `json:"region"`

	// Segment label used for peer grouping
	Segment string `json:"segment"`

	// Feature values
	TransactionCount           float64 `json:"transaction_count"`
	TotalAmount                float64 `json:"total_amount"`
	AvgAmount                  float64 `json:"avg_amount"`
	UniqueProducts             float64 `json:"unique_products"`
	DaysSinceLastTransaction   float64 `json:"days_since_last_transaction"`
	AvgDaysBetweenTransactions float64 `json:"avg_days_between_transactions"`
}

// DailyPoint is one calendar day of transaction volume, either for the
// whole population or for a single customer.
type DailyPoint struct {
	Date           time.Time `json:"date"`
	Count          float64   `json:"count"`
	TotalAmount    float64   `json:"total_amount"`
	UniqueProducts float64   `json:"unique_products"`
}

// CategoryStat associates one customer with a product category over a
// date window, with the number of qualifying transactions.
type CategoryStat struct {
	Category   string `json:"category"`
	CustomerID string `json:"customer_id"`
	TxCount    int64  `json:"tx_count"`
}

// DateRange bounds a metrics query. Zero values mean unbounded.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}
