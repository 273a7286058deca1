package analytics

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/domain/customer"
)

const (
	// defaultForecastTop is how many top anomalies are projected when
	// the caller supplies no count.
	defaultForecastTop = 5

	// forecastHistoryDays is the trailing window the trend is fitted on.
	forecastHistoryDays = 30

	// forecastFetchConcurrency bounds parallel per-customer series
	// fetches.
	forecastFetchConcurrency = 4
)

// ForecastInput carries the boundary filter parameters plus the top-N
// anomaly count to project.
type ForecastInput struct {
	Filter    anomaly.FilterParams
	DateRange customer.DateRange
	Top       int
}

// ForecastUseCase projects anomaly scores for the top anomalies.
type ForecastUseCase struct {
	provider    *SnapshotProvider
	repo        customer.MetricsRepository
	logger      zerolog.Logger
	defaultTop  int
	historyDays int
}

// NewForecastUseCase creates the forecast use case.
func NewForecastUseCase(provider *SnapshotProvider, repo customer.MetricsRepository, logger zerolog.Logger) *ForecastUseCase {
	return &ForecastUseCase{
		provider:    provider,
		repo:        repo,
		logger:      logger,
		defaultTop:  defaultForecastTop,
		historyDays: forecastHistoryDays,
	}
}

// SetDefaults overrides the top-N count used when a request supplies
// none and the trailing history window the trend is fitted on.
// Non-positive values are ignored.
func (uc *ForecastUseCase) SetDefaults(top, historyDays int) {
	if top > 0 {
		uc.defaultTop = top
	}
	if historyDays > 0 {
		uc.historyDays = historyDays
	}
}

// Execute fetches the per-customer daily series for the top-N anomalies
// concurrently and fits each forecast. Output order follows the score
// ranking.
func (uc *ForecastUseCase) Execute(ctx context.Context, input ForecastInput) ([]anomaly.Forecast, error) {
	top := input.Top
	if top <= 0 {
		top = uc.defaultTop
	}

	snapshot, err := uc.provider.Take(ctx, input.DateRange)
	if err != nil {
		if errors.Is(err, customer.ErrEmptyBatch) {
			return []anomaly.Forecast{}, nil
		}
		return nil, err
	}

	filtered := anomaly.Filter(snapshot.Points, input.Filter)
	ranked := anomaly.TopByScore(filtered, top)

	forecasts := make([]anomaly.Forecast, len(ranked))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(forecastFetchConcurrency)
	for i, dp := range ranked {
		i, dp := i, dp
		g.Go(func() error {
			series, err := uc.repo.GetDailyTransactionSeries(gctx, uc.historyDays, dp.CustomerID)
			if err != nil {
				return err
			}
			forecast := anomaly.ForecastScore(dp, series)
			mu.Lock()
			forecasts[i] = forecast
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return forecasts, nil
}
