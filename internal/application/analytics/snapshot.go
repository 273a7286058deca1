package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/domain/customer"
	"customer-analytics-system/internal/pkg/metrics"
)

// Snapshot is one fully scored batch: the raw rows, the population
// baseline, and every customer's data point. All sibling accessors
// (dashboard, distributions, peers, forecasts) derive from the same
// snapshot so one dashboard load does not re-fetch and re-score per
// endpoint.
type Snapshot struct {
	Rows     []customer.MetricRow `json:"rows"`
	Baseline anomaly.Baseline     `json:"baseline"`
	Points   []anomaly.DataPoint  `json:"points"`
	TakenAt  time.Time            `json:"taken_at"`
}

// Row returns the metric row for a customer ID.
func (s *Snapshot) Row(customerID string) (customer.MetricRow, bool) {
	for _, row := range s.Rows {
		if row.CustomerID == customerID {
			return row, true
		}
	}
	return customer.MetricRow{}, false
}

// Point returns the scored data point for a customer ID.
func (s *Snapshot) Point(customerID string) (anomaly.DataPoint, bool) {
	for _, dp := range s.Points {
		if dp.CustomerID == customerID {
			return dp, true
		}
	}
	return anomaly.DataPoint{}, false
}

// SnapshotCache memoizes scored snapshots keyed by the filter tuple.
// Implementations return (nil, nil) on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (*Snapshot, error)
	Set(ctx context.Context, key string, snapshot *Snapshot) error
}

// SnapshotProvider loads metric rows from storage and scores them,
// memoizing the result per filter tuple when a cache is attached.
// Correctness never depends on the cache: every miss runs the full
// batch recomputation.
type SnapshotProvider struct {
	repo   customer.MetricsRepository
	cache  SnapshotCache
	logger zerolog.Logger
	now    func() time.Time
}

// NewSnapshotProvider creates a snapshot provider. cache may be nil.
func NewSnapshotProvider(repo customer.MetricsRepository, cache SnapshotCache, logger zerolog.Logger) *SnapshotProvider {
	return &SnapshotProvider{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Take fetches the row batch for the date range and scores every row
// against a freshly computed baseline. An empty batch returns
// customer.ErrEmptyBatch so callers can degrade to empty results.
func (p *SnapshotProvider) Take(ctx context.Context, dateRange customer.DateRange) (*Snapshot, error) {
	key := snapshotKey(dateRange)
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, key)
		if err != nil {
			p.logger.Warn().Err(err).Msg("snapshot cache read failed")
		} else if cached != nil {
			metrics.ObserveSnapshotCache(true)
			return cached, nil
		}
		metrics.ObserveSnapshotCache(false)
	}

	rows, err := p.repo.GetCustomerMetrics(ctx, customer.MetricsFilter{DateRange: dateRange})
	if err != nil {
		return nil, fmt.Errorf("fetch customer metrics: %w", err)
	}
	if len(rows) == 0 {
		return nil, customer.ErrEmptyBatch
	}

	baseline, err := anomaly.ComputeBaseline(rows)
	if err != nil {
		return nil, fmt.Errorf("compute baseline: %w", err)
	}

	takenAt := p.now()
	snapshot := &Snapshot{
		Rows:     rows,
		Baseline: baseline,
		Points:   anomaly.ScoreAll(rows, baseline, takenAt),
		TakenAt:  takenAt,
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, snapshot); err != nil {
			p.logger.Warn().Err(err).Msg("snapshot cache write failed")
		}
	}
	return snapshot, nil
}

// snapshotKey builds the cache key from the filter tuple. The unbounded
// range gets a stable key instead of one derived from zero timestamps.
func snapshotKey(dateRange customer.DateRange) string {
	if dateRange.IsZero() {
		return "analytics:snapshot:all"
	}
	return fmt.Sprintf("analytics:snapshot:%d:%d", dateRange.Start.Unix(), dateRange.End.Unix())
}
