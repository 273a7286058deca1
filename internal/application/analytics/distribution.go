package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/domain/customer"
)

// categoryTrendWindow is the length of each of the two comparison
// windows used for the category trend.
const categoryTrendWindow = 7 * 24 * time.Hour

// DistributionInput carries the boundary filter parameters for the
// region, segment, and category breakdowns.
type DistributionInput struct {
	Filter    anomaly.FilterParams
	DateRange customer.DateRange
}

// DistributionUseCase builds the segmentation breakdowns.
type DistributionUseCase struct {
	provider *SnapshotProvider
	repo     customer.MetricsRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDistributionUseCase creates the distribution use case.
func NewDistributionUseCase(provider *SnapshotProvider, repo customer.MetricsRepository, logger zerolog.Logger) *DistributionUseCase {
	return &DistributionUseCase{
		provider: provider,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
	}
}

// Regions returns the per-region anomaly rates.
func (uc *DistributionUseCase) Regions(ctx context.Context, input DistributionInput) ([]anomaly.GroupRate, error) {
	return uc.groupRates(ctx, input, anomaly.RegionKey)
}

// Segments returns the per-segment anomaly rates.
func (uc *DistributionUseCase) Segments(ctx context.Context, input DistributionInput) ([]anomaly.GroupRate, error) {
	return uc.groupRates(ctx, input, anomaly.SegmentKey)
}

func (uc *DistributionUseCase) groupRates(ctx context.Context, input DistributionInput, keyOf func(customer.MetricRow) string) ([]anomaly.GroupRate, error) {
	snapshot, err := uc.provider.Take(ctx, input.DateRange)
	if err != nil {
		if errors.Is(err, customer.ErrEmptyBatch) {
			return []anomaly.GroupRate{}, nil
		}
		return nil, err
	}
	filtered := anomaly.Filter(snapshot.Points, input.Filter)
	return anomaly.GroupRates(snapshot.Rows, filtered, keyOf), nil
}

// Categories returns per-category anomaly rates with a trailing-window
// trend. The full-range stats and the two trend windows are fetched
// concurrently alongside the scored snapshot.
func (uc *DistributionUseCase) Categories(ctx context.Context, input DistributionInput) ([]anomaly.CategoryDistributionItem, error) {
	now := uc.now()
	recentStart := now.Add(-categoryTrendWindow)
	previousStart := now.Add(-2 * categoryTrendWindow)

	var (
		snapshot *Snapshot
		full     []customer.CategoryStat
		recent   []customer.CategoryStat
		previous []customer.CategoryStat
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = uc.provider.Take(gctx, input.DateRange)
		return err
	})
	g.Go(func() error {
		var err error
		full, err = uc.repo.GetCategoryCustomerStats(gctx, input.DateRange.Start, now)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = uc.repo.GetCategoryCustomerStats(gctx, recentStart, now)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = uc.repo.GetCategoryCustomerStats(gctx, previousStart, recentStart)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, customer.ErrEmptyBatch) {
			return []anomaly.CategoryDistributionItem{}, nil
		}
		return nil, err
	}

	filtered := anomaly.Filter(snapshot.Points, input.Filter)
	return anomaly.CategoryDistribution(full, recent, previous, filtered), nil
}
