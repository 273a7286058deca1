package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"customer-analytics-system/internal/domain/customer"
)

// metricsRowLimit caps the batch size for performance; the dashboard
// never needs more than the top customers by revenue.
const metricsRowLimit = 5000

// customerMetricsModel scans the aggregate query. Money columns come
// back as decimals and are converted to float64 at the domain boundary.
type customerMetricsModel struct {
	CustomerID                 string          `gorm:"column:customer_id"`
	CustomerName               string          `gorm:"column:customer_name"`
	State                      string          `gorm:"column:state"`
	Country                    string          `gorm:"column:country"`
	Region                     string          `gorm:"column:region"`
	Segment                    string          `gorm:"column:segment"`
	TransactionCount           int64           `gorm:"column:transaction_count"`
	TotalAmount                decimal.Decimal `gorm:"column:total_amount"`
	AvgAmount                  decimal.Decimal `gorm:"column:avg_amount"`
	UniqueProducts             int64           `gorm:"column:unique_products"`
	DaysSinceLastTransaction   float64         `gorm:"column:days_since_last_transaction"`
	AvgDaysBetweenTransactions float64         `gorm:"column:avg_days_between_transactions"`
}

type dailySeriesModel struct {
	Date           time.Time       `gorm:"column:date"`
	Count          int64           `gorm:"column:count"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount"`
	UniqueProducts int64           `gorm:"column:unique_products"`
}

type categoryStatModel struct {
	Category   string `gorm:"column:category"`
	CustomerID string `gorm:"column:customer_id"`
	TxCount    int64  `gorm:"column:tx_count"`
}

// MetricsRepository implements customer.MetricsRepository on PostgreSQL.
type MetricsRepository struct {
	db *gorm.DB
}

// NewMetricsRepository creates a new metrics repository.
func NewMetricsRepository(client *Client) *MetricsRepository {
	return &MetricsRepository{db: client.DB()}
}

// GetCustomerMetrics returns one pre-aggregated row per customer with at
// least one qualifying transaction, ordered by total amount descending.
func (r *MetricsRepository) GetCustomerMetrics(ctx context.Context, filter customer.MetricsFilter) ([]customer.MetricRow, error) {
	query := `
		SELECT
			c.id AS customer_id,
			c.name AS customer_name,
			c.state,
			c.country,
			c.region,
			c.segment,
			COUNT(t.id) AS transaction_count,
			COALESCE(SUM(t.amount), 0) AS total_amount,
			COALESCE(AVG(t.amount), 0) AS avg_amount,
			COUNT(DISTINCT t.product_id) AS unique_products,
			EXTRACT(EPOCH FROM (NOW() - MAX(t.created_at))) / 86400 AS days_since_last_transaction,
			CASE
				WHEN COUNT(t.id) <= 1 THEN 0
				ELSE EXTRACT(EPOCH FROM (MAX(t.created_at) - MIN(t.created_at))) / 86400 / (COUNT(t.id) - 1)
			END AS avg_days_between_transactions
		FROM customers c
		JOIN transactions t ON t.customer_id = c.id
		WHERE 1=1`

	args := make([]interface{}, 0, 2)
	if !filter.DateRange.Start.IsZero() {
		query += " AND t.created_at >= ?"
		args = append(args, filter.DateRange.Start)
	}
	if !filter.DateRange.End.IsZero() {
		query += " AND t.created_at < ?"
		args = append(args, filter.DateRange.End)
	}

	query += `
		GROUP BY c.id, c.name, c.state, c.country, c.region, c.segment
		ORDER BY total_amount DESC
		LIMIT ?`
	args = append(args, metricsRowLimit)

	var models []customerMetricsModel
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query customer metrics: %w", err)
	}

	rows := make([]customer.MetricRow, 0, len(models))
	for _, m := range models {
		rows = append(rows, customer.MetricRow{
			CustomerID:                 m.CustomerID,
			CustomerName:               m.CustomerName,
			State:                      m.State,
			Country:                    m.Country,
			Region:                     m.Region,
			Segment:                    m.Segment,
			TransactionCount:           float64(m.TransactionCount),
			TotalAmount:                m.TotalAmount.InexactFloat64(),
			AvgAmount:                  m.AvgAmount.InexactFloat64(),
			UniqueProducts:             float64(m.UniqueProducts),
			DaysSinceLastTransaction:   m.DaysSinceLastTransaction,
			AvgDaysBetweenTransactions: m.AvgDaysBetweenTransactions,
		})
	}
	return rows, nil
}

// GetDailyTransactionSeries returns per-day volume for the trailing
// window, optionally narrowed to one customer.
func (r *MetricsRepository) GetDailyTransactionSeries(ctx context.Context, days int, customerID string) ([]customer.DailyPoint, error) {
	query := `
		SELECT
			DATE_TRUNC('day', t.created_at) AS date,
			COUNT(t.id) AS count,
			COALESCE(SUM(t.amount), 0) AS total_amount,
			COUNT(DISTINCT t.product_id) AS unique_products
		FROM transactions t
		WHERE t.created_at >= NOW() - ? * INTERVAL '1 day'`

	args := []interface{}{days}
	if customerID != "" {
		query += " AND t.customer_id = ?"
		args = append(args, customerID)
	}
	query += `
		GROUP BY DATE_TRUNC('day', t.created_at)
		ORDER BY date`

	var models []dailySeriesModel
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query daily series: %w", err)
	}

	points := make([]customer.DailyPoint, 0, len(models))
	for _, m := range models {
		points = append(points, customer.DailyPoint{
			Date:           m.Date,
			Count:          float64(m.Count),
			TotalAmount:    m.TotalAmount.InexactFloat64(),
			UniqueProducts: float64(m.UniqueProducts),
		})
	}
	return points, nil
}

// GetCategoryCustomerStats returns per-category per-customer transaction
// counts within [start, end).
func (r *MetricsRepository) GetCategoryCustomerStats(ctx context.Context, start, end time.Time) ([]customer.CategoryStat, error) {
	query := `
		SELECT
			p.category,
			t.customer_id,
			COUNT(t.id) AS tx_count
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		WHERE 1=1`

	args := make([]interface{}, 0, 2)
	if !start.IsZero() {
		query += " AND t.created_at >= ?"
		args = append(args, start)
	}
	if !end.IsZero() {
		query += " AND t.created_at < ?"
		args = append(args, end)
	}
	query += `
		GROUP BY p.category, t.customer_id`

	var models []categoryStatModel
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query category stats: %w", err)
	}

	stats := make([]customer.CategoryStat, 0, len(models))
	for _, m := range models {
		stats = append(stats, customer.CategoryStat{
			Category:   m.Category,
			CustomerID: m.CustomerID,
			TxCount:    m.TxCount,
		})
	}
	return stats, nil
}
